package main

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chazu/linkage/pkg/geom"
	"github.com/chazu/linkage/pkg/render/sdfx"
)

type CmdRender struct {
	global *GlobalOptions

	At     time.Duration `long:"at" description:"Elapsed time of the frame" default:"0s"`
	Mouse  string        `long:"mouse" description:"Pointer position as x,y"`
	Output string        `short:"o" long:"output" description:"Output file (.svg or .dxf)" required:"true"`
	Scale  float64       `long:"scale" description:"SVG units per mechanism unit" default:"500"`
}

func init() {
	_, err := parser.AddCommand("render",
		"Render a frame",
		"Render one frame of a mechanism to SVG or DXF",
		&CmdRender{global: &globalOpts})
	if err != nil {
		panic(err)
	}
}

func (cmd CmdRender) Usage() string {
	return "file.linkage|sharecode"
}

func (cmd CmdRender) Execute(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("Input missing, Usage: %s", cmd.Usage())
	}

	mouse, err := parseMouse(cmd.Mouse)
	if err != nil {
		return err
	}

	app, err := cmd.global.Open(args[0])
	if err != nil {
		return err
	}
	frame, err := app.FrameAt(cmd.At, mouse)
	if err != nil {
		return err
	}

	switch ext := strings.ToLower(filepath.Ext(cmd.Output)); ext {
	case ".svg":
		s := sdfx.NewSVG(cmd.Output, cmd.Scale)
		frame.Replay(s)
		return s.Save()
	case ".dxf":
		d := sdfx.NewDXF(cmd.Output)
		frame.Replay(d)
		return d.Save()
	default:
		return fmt.Errorf("Unsupported output format %q", ext)
	}
}

// parseMouse reads "x,y". An empty string places the pointer nowhere.
func parseMouse(s string) (geom.Point, error) {
	if s == "" {
		return geom.Pt(math.NaN(), math.NaN()), nil
	}
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geom.Point{}, fmt.Errorf("Bad pointer position %q, want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return geom.Point{}, fmt.Errorf("Bad pointer position %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return geom.Point{}, fmt.Errorf("Bad pointer position %q: %w", s, err)
	}
	return geom.Pt(x, y), nil
}
