package main

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type CmdPath struct {
	global *GlobalOptions

	Ref     string `short:"r" long:"ref" description:"Point to trace (DSL name or pN)" required:"true"`
	Samples int    `short:"n" long:"samples" description:"Samples over one turn" default:"100"`
}

type CmdFit struct {
	global *GlobalOptions

	Ref    string `short:"r" long:"ref" description:"Point to fit (DSL name or pN)" required:"true"`
	Target string `short:"t" long:"target" description:"Target path YAML file" required:"true"`
	Steps  int    `short:"n" long:"steps" description:"Optimizer steps" default:"1000"`
}

func init() {
	_, err := parser.AddCommand("path",
		"Trace a point",
		"Print the path of a point over one turn as YAML",
		&CmdPath{global: &globalOpts})
	if err != nil {
		panic(err)
	}
	_, err = parser.AddCommand("fit",
		"Fit a path",
		"Run the optimizer toward a target path and print the new share code",
		&CmdFit{global: &globalOpts})
	if err != nil {
		panic(err)
	}
}

func (cmd CmdPath) Usage() string {
	return "file.linkage|sharecode"
}

func (cmd CmdPath) Execute(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("Input missing, Usage: %s", cmd.Usage())
	}
	app, err := cmd.global.Open(args[0])
	if err != nil {
		return err
	}
	ref, err := app.Ref(cmd.Ref)
	if err != nil {
		return err
	}
	path, err := app.Path(ref, cmd.Samples)
	if err != nil {
		return err
	}
	return yaml.NewEncoder(os.Stdout).Encode(pathDoc{Ref: cmd.Ref, Points: fromPoints(path)})
}

func (cmd CmdFit) Usage() string {
	return "file.linkage|sharecode"
}

func (cmd CmdFit) Execute(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("Input missing, Usage: %s", cmd.Usage())
	}
	data, err := os.ReadFile(cmd.Target)
	if err != nil {
		return err
	}
	var doc pathDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("Failed to read target %s: %w", cmd.Target, err)
	}

	app, err := cmd.global.Open(args[0])
	if err != nil {
		return err
	}
	ref, err := app.Ref(cmd.Ref)
	if err != nil {
		return err
	}
	stats, err := app.Fit(context.Background(), ref, toPoints(doc.Points), cmd.Steps)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "steps %d accepted %d rejected %d skipped %d error %g\n",
		stats.Steps, stats.Accepted, stats.Rejected, stats.Skipped, stats.Error)

	code, err := app.Share()
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, code)
	return nil
}
