package interact

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/chazu/linkage/pkg/geom"
	"github.com/chazu/linkage/pkg/linkage"
	"github.com/chazu/linkage/pkg/optimize"
)

// Step size factors applied by the + and - keys.
const (
	StepGrow   = 1.01
	StepShrink = 0.99
)

// Keys the controller understands.
const (
	KeyEscape   = "Escape"
	KeyTrace    = "t"
	KeyOptimize = "o"
	KeyGrow     = "+"
	KeyShrink   = "-"
)

// Options tunes the controller. Distances are in mechanism units.
type Options struct {
	AngularRate    float64 // radians per millisecond of elapsed time
	ClickThreshold float64 // hit-test radius around solved points
	DragThreshold  float64 // pointer travel beyond which a press is a drag
	Mode           Mode
	Logger         *slog.Logger
}

// DefaultOptions returns the stock tuning: slow rotation, slider mode.
func DefaultOptions() Options {
	return Options{
		AngularRate:    0.001,
		ClickThreshold: 0.05,
		DragThreshold:  0.01,
		Mode:           ModeSlider,
	}
}

// Capture is the optimize-capture lifecycle.
type Capture int

const (
	CaptureIdle       Capture = iota
	CaptureWaiting            // armed, the next press starts recording
	CaptureDrawing            // recording pointer positions
	CaptureOptimizing         // recorded path handed to the optimizer
)

func (c Capture) String() string {
	switch c {
	case CaptureIdle:
		return "idle"
	case CaptureWaiting:
		return "waiting"
	case CaptureDrawing:
		return "drawing"
	case CaptureOptimizing:
		return "optimizing"
	default:
		return fmt.Sprintf("Capture(%d)", int(c))
	}
}

// press tracks one pointer-down until the matching pointer-up.
type press struct {
	hit   bool
	ref   linkage.Ref
	start geom.Point
	moved bool
}

// Controller owns the editing state around one mechanism. It is driven
// by a single goroutine; nothing here locks.
type Controller struct {
	m    *linkage.Mechanism
	opt  *optimize.Optimizer
	opts Options
	log  *slog.Logger

	mode  Mode
	state State
	press *press

	trace   linkage.Ref
	tracing bool

	capture    Capture
	captureRef linkage.Ref
	path       []geom.Point
}

// NewController wires a controller to m and the optimizer that fits it.
func NewController(m *linkage.Mechanism, opt *optimize.Optimizer, opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		m:     m,
		opt:   opt,
		opts:  opts,
		log:   log,
		mode:  opts.Mode,
		state: None{},
	}
}

// Mechanism returns the mechanism being edited.
func (c *Controller) Mechanism() *linkage.Mechanism { return c.m }

// Optimizer returns the optimizer fitting the mechanism.
func (c *Controller) Optimizer() *optimize.Optimizer { return c.opt }

// Options returns the controller's tuning.
func (c *Controller) Options() Options { return c.opts }

// Mode returns the active construction mode.
func (c *Controller) Mode() Mode { return c.mode }

// SetMode switches the construction mode without touching collected clicks.
func (c *Controller) SetMode(m Mode) { c.mode = m }

// State returns the collected clicks.
func (c *Controller) State() State { return c.state }

// Trace returns the traced ref, if any.
func (c *Controller) Trace() (linkage.Ref, bool) { return c.trace, c.tracing }

// Capture returns the capture phase and the recorded path.
func (c *Controller) Capture() (Capture, []geom.Point) { return c.capture, c.path }

// Theta converts elapsed time to a drive angle.
func (c *Controller) Theta(elapsed time.Duration) float64 {
	return float64(elapsed) / float64(time.Millisecond) * c.opts.AngularRate
}

// ---------------------------------------------------------------------------
// Pointer input
// ---------------------------------------------------------------------------

// MouseDown hit-tests p and starts tracking a press. An armed capture
// begins recording here.
func (c *Controller) MouseDown(elapsed time.Duration, p geom.Point) {
	ref, hit := c.m.PointAt(c.Theta(elapsed), p, c.opts.ClickThreshold)
	c.press = &press{hit: hit, ref: ref, start: p}
	if c.capture == CaptureWaiting {
		c.capture = CaptureDrawing
		c.path = []geom.Point{p}
	}
}

// MouseMove records capture samples, or drags the pressed point once the
// pointer has travelled past the drag threshold.
func (c *Controller) MouseMove(elapsed time.Duration, p geom.Point) error {
	if c.capture == CaptureDrawing {
		c.path = append(c.path, p)
		return nil
	}
	if c.press == nil || geom.Dist(c.press.start, p) <= c.opts.DragThreshold {
		return nil
	}
	c.press.moved = true
	if !c.press.hit {
		return nil
	}
	_, err := c.m.MovePoint(c.Theta(elapsed), c.press.ref, p)
	return err
}

// MouseUp ends a press. A capture hands its path to the optimizer; a
// press that never became a drag is a click and advances the click state.
func (c *Controller) MouseUp(elapsed time.Duration, p geom.Point) error {
	pr := c.press
	c.press = nil
	if pr == nil {
		return nil
	}

	if c.capture == CaptureDrawing {
		c.capture = CaptureOptimizing
		if err := c.opt.Start(c.captureRef, c.path); err != nil {
			c.capture = CaptureIdle
			return err
		}
		c.log.Info("optimizer started", "ref", c.captureRef, "samples", len(c.path))
		return nil
	}

	if pr.moved || geom.Dist(pr.start, p) > c.opts.DragThreshold {
		return nil
	}
	c.Click(elapsed, Click{Hit: pr.hit, Ref: pr.ref, P: p})
	return nil
}

// Click feeds one click through Reduce and Dispatch.
func (c *Controller) Click(elapsed time.Duration, click Click) Result {
	theta := c.Theta(elapsed)
	next, res := Dispatch(c.m, c.mode, theta, Reduce(c.state, click))
	c.state = next

	switch {
	case res.Op == OpNone:
	case res.OK:
		c.log.Info("constructed", "op", res.Op, "ref", res.Ref, "mode", c.mode)
	case res.Op == OpSlider:
		c.log.Info("slider rolled back", "mode", c.mode)
	default:
		c.log.Info("construction rejected", "op", res.Op, "mode", c.mode)
	}
	return res
}

// ---------------------------------------------------------------------------
// Keys
// ---------------------------------------------------------------------------

// Key handles a key press. Unknown keys are ignored.
func (c *Controller) Key(key string) {
	switch key {
	case KeyEscape:
		c.state = None{}
		if c.m.Optimizing() {
			c.log.Info("optimizer stopped", "stats", c.opt.Stats())
		}
		c.m.StopOptimizing()
		c.capture = CaptureIdle
		c.path = nil

	case KeyTrace:
		s, ok := c.state.(P)
		if !ok {
			return
		}
		if c.tracing && c.trace == s.Ref {
			c.tracing = false
		} else {
			c.trace, c.tracing = s.Ref, true
		}
		c.state = None{}

	case KeyOptimize:
		if _, none := c.state.(None); none && c.tracing {
			c.capture = CaptureWaiting
			c.captureRef = c.trace
			c.path = nil
		}

	case KeyGrow:
		c.m.ScaleStepSize(StepGrow)
	case KeyShrink:
		c.m.ScaleStepSize(StepShrink)
	}
}

// ---------------------------------------------------------------------------
// Background work and drawing support
// ---------------------------------------------------------------------------

// Step performs one optimizer step if a fit is running.
func (c *Controller) Step() optimize.Outcome {
	out := c.opt.Step()
	if out == optimize.OutcomeAccepted {
		c.log.Debug("optimizer step accepted", "error", c.opt.Stats().Error, "step_size", c.m.StepSize())
	}
	return out
}

// Preview returns the rubber-band polyline for the current click state.
func (c *Controller) Preview(sol *linkage.Solution, mouse geom.Point) []geom.Point {
	return Preview(c.state, mouse, sol.Points)
}
