package main

import (
	"fmt"
	"os"
)

type CmdEncode struct {
	global *GlobalOptions
}

type CmdDecode struct {
	global *GlobalOptions
}

func init() {
	_, err := parser.AddCommand("encode",
		"Encode a mechanism",
		"Print the share code of a mechanism",
		&CmdEncode{global: &globalOpts})
	if err != nil {
		panic(err)
	}
	_, err = parser.AddCommand("decode",
		"Decode a share code",
		"Print a share code as DSL source",
		&CmdDecode{global: &globalOpts})
	if err != nil {
		panic(err)
	}
}

func (cmd CmdEncode) Usage() string {
	return "file.linkage"
}

func (cmd CmdEncode) Execute(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("Input missing, Usage: %s", cmd.Usage())
	}
	app, err := cmd.global.Open(args[0])
	if err != nil {
		return err
	}
	code, err := app.Share()
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, code)
	return nil
}

func (cmd CmdDecode) Usage() string {
	return "sharecode"
}

func (cmd CmdDecode) Execute(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("Share code missing, Usage: %s", cmd.Usage())
	}
	app, err := cmd.global.NewApp()
	if err != nil {
		return err
	}
	if err := app.LoadShare(args[0]); err != nil {
		return err
	}
	src, err := app.Source()
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, src)
	return nil
}
