package main

import (
	"fmt"
	"os"

	"github.com/chazu/linkage/pkg/session"
)

type CmdReplay struct {
	global *GlobalOptions

	Script string `short:"s" long:"script" description:"Event script YAML file" required:"true"`
}

func init() {
	_, err := parser.AddCommand("replay",
		"Replay input events",
		"Apply a recorded event script to a mechanism and print the resulting share code",
		&CmdReplay{global: &globalOpts})
	if err != nil {
		panic(err)
	}
}

func (cmd CmdReplay) Usage() string {
	return "[file.linkage|sharecode]"
}

func (cmd CmdReplay) Execute(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("Too many arguments, Usage: %s", cmd.Usage())
	}
	data, err := os.ReadFile(cmd.Script)
	if err != nil {
		return err
	}
	script, err := session.ParseScript(data)
	if err != nil {
		return err
	}

	var app *App
	if len(args) == 1 {
		app, err = cmd.global.Open(args[0])
	} else {
		app, err = cmd.global.NewApp()
	}
	if err != nil {
		return err
	}
	if err := app.Replay(script); err != nil {
		return err
	}

	code, err := app.Share()
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, code)
	return nil
}
