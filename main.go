// Command linkage builds, animates and fits planar linkages from the
// command line. Mechanisms are read from DSL files or share codes.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"

	"github.com/chazu/linkage/pkg/config"
	"github.com/chazu/linkage/pkg/geom"
)

type GlobalOptions struct {
	Config  string `short:"c" long:"config" description:"Config file path (YAML)"`
	Verbose bool   `short:"v" long:"verbose" description:"Log optimizer steps"`
}

var globalOpts = GlobalOptions{}
var parser = flags.NewParser(&globalOpts, flags.HelpFlag|flags.PassDoubleDash)

func main() {
	if err := Run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func Run(args []string) error {
	_, err := parser.ParseArgs(args)
	var e *flags.Error
	if errors.As(err, &e) && e.Type == flags.ErrHelp {
		parser.WriteHelp(os.Stdout)
		return nil
	}
	return err
}

// NewApp loads the configuration and builds an App logging to stderr.
func (g *GlobalOptions) NewApp() (*App, error) {
	cfg := config.Default()
	if g.Config != "" {
		var err error
		if cfg, err = config.Load(g.Config); err != nil {
			return nil, err
		}
	}
	level := slog.LevelWarn
	if g.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return NewApp(cfg, log)
}

// Open builds an App and loads input into it. input is a DSL file when
// such a file exists, otherwise a share code.
func (g *GlobalOptions) Open(input string) (*App, error) {
	app, err := g.NewApp()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(input); statErr != nil {
		if err := app.LoadShare(input); err != nil {
			return nil, fmt.Errorf("%s is neither a readable file nor a share code: %w", input, err)
		}
		return app, nil
	}

	src, err := os.ReadFile(input)
	if err != nil {
		return nil, err
	}
	res := app.Evaluate(string(src))
	if len(res.Errors) > 0 {
		msgs := make([]string, 0, len(res.Errors))
		for _, e := range res.Errors {
			if e.Line > 0 {
				msgs = append(msgs, fmt.Sprintf("%s:%d: %s", input, e.Line, e.Message))
			} else {
				msgs = append(msgs, fmt.Sprintf("%s: %s", input, e.Message))
			}
		}
		return nil, errors.New(strings.Join(msgs, "\n"))
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "%s: warning: %s\n", input, w.Message)
	}
	return app, nil
}

// point is the YAML form of a geom.Point.
type point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// pathDoc is the YAML document written by path and read by fit.
type pathDoc struct {
	Ref    string  `yaml:"ref,omitempty"`
	Points []point `yaml:"points"`
}

func toPoints(ps []point) []geom.Point {
	out := make([]geom.Point, len(ps))
	for i, p := range ps {
		out[i] = geom.Pt(p.X, p.Y)
	}
	return out
}

func fromPoints(ps []geom.Point) []point {
	out := make([]point, len(ps))
	for i, p := range ps {
		out[i] = point{X: p.X, Y: p.Y}
	}
	return out
}
