package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chazu/linkage/pkg/config"
	"github.com/chazu/linkage/pkg/engine"
	"github.com/chazu/linkage/pkg/geom"
	"github.com/chazu/linkage/pkg/interact"
	"github.com/chazu/linkage/pkg/linkage"
	"github.com/chazu/linkage/pkg/optimize"
	"github.com/chazu/linkage/pkg/render"
	"github.com/chazu/linkage/pkg/scene"
	"github.com/chazu/linkage/pkg/session"
	"github.com/chazu/linkage/pkg/share"
)

// App is the binding layer between a front end (or the CLI) and one
// editing session. It exposes methods that take and return plain values.
type App struct {
	cfg    config.Config
	log    *slog.Logger
	engine *engine.Engine
	scene  scene.Options

	mu       sync.Mutex
	loop     *session.Loop
	names    map[string]linkage.Ref
	ctx      context.Context // non-nil while started
	onChange func(code string)
}

// EvalErrorData is a JSON-serializable eval error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the result of loading DSL source.
type EvalResult struct {
	Code     string          `json:"code"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates an App holding the default mechanism.
func NewApp(cfg config.Config, log *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	eng := engine.NewEngine()
	eng.Timeout = cfg.EvalTimeout

	sc := scene.DefaultOptions()
	sc.TraceSamples = cfg.TraceSamples
	sc.HitMarkerRadius = cfg.HitMarkerRadius

	a := &App{cfg: cfg, log: log, engine: eng, scene: sc}
	if err := a.install(linkage.DefaultSpec(), nil); err != nil {
		return nil, err
	}
	return a, nil
}

// OnChange registers fn to receive the share code after every mechanism
// change. fn runs on the session turn and must not call back into App.
func (a *App) OnChange(fn func(code string)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onChange = fn
}

// install replaces the session with one built around spec. A running
// session is stopped and its replacement started.
func (a *App) install(spec linkage.Spec, names map[string]linkage.Ref) error {
	m := linkage.New(spec)
	loop, err := session.Build(m, a.cfg, a.log)
	if err != nil {
		return err
	}
	m.OnChange(func() { a.changed(m) })

	a.mu.Lock()
	old, ctx := a.loop, a.ctx
	a.loop, a.names = loop, names
	a.mu.Unlock()

	if old != nil {
		old.Stop()
	}
	if ctx != nil {
		return loop.Start(ctx)
	}
	return nil
}

func (a *App) changed(m *linkage.Mechanism) {
	a.mu.Lock()
	fn := a.onChange
	a.mu.Unlock()
	if fn == nil {
		return
	}
	code, err := share.Encode(a.cfg.ShareVersion, m.Spec())
	if err != nil {
		a.log.Error("encode after change", "err", err)
		return
	}
	fn(code)
}

func (a *App) current() *session.Loop {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loop
}

// Start runs the session in the background until ctx is done or
// Shutdown is called.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	a.ctx = ctx
	loop := a.loop
	a.mu.Unlock()
	return loop.Start(ctx)
}

// Shutdown stops background turns.
func (a *App) Shutdown() {
	a.mu.Lock()
	a.ctx = nil
	loop := a.loop
	a.mu.Unlock()
	loop.Stop()
}

// ---------------------------------------------------------------------------
// Loading and sharing
// ---------------------------------------------------------------------------

// Evaluate takes DSL source and, when it evaluates cleanly, replaces the
// mechanism. Errors leave the current mechanism in place.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	res, err := a.engine.EvaluateFull(source)
	if err != nil {
		a.log.Error("evaluate", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	for _, e := range res.Errors {
		result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
	}
	if len(result.Errors) > 0 {
		return result
	}
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.Message})
	}

	if err := a.install(*res.Spec, res.Names); err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	code, err := share.Encode(a.cfg.ShareVersion, *res.Spec)
	if err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	result.Code = code
	return result
}

// LoadShare replaces the mechanism with the one encoded in code. The
// leading '#' of a URL fragment is accepted.
func (a *App) LoadShare(code string) error {
	spec, err := share.Decode(code)
	if err != nil {
		return err
	}
	return a.install(spec, nil)
}

// Spec returns a copy of the current mechanism's spec.
func (a *App) Spec() (linkage.Spec, error) {
	var spec linkage.Spec
	err := a.current().Do(func(c *interact.Controller) {
		spec = c.Mechanism().Spec()
	})
	return spec, err
}

// Share returns the share code of the current mechanism.
func (a *App) Share() (string, error) {
	spec, err := a.Spec()
	if err != nil {
		return "", err
	}
	return share.Encode(a.cfg.ShareVersion, spec)
}

// Source returns the current mechanism as DSL source.
func (a *App) Source() (string, error) {
	spec, err := a.Spec()
	if err != nil {
		return "", err
	}
	return engine.Format(spec), nil
}

// Ref resolves a point name from the last evaluated source, or a
// canonical name like "p3".
func (a *App) Ref(name string) (linkage.Ref, error) {
	a.mu.Lock()
	ref, ok := a.names[name]
	a.mu.Unlock()
	if ok {
		return ref, nil
	}
	var n int
	if _, err := fmt.Sscanf(name, "p%d", &n); err == nil && fmt.Sprintf("p%d", n) == name {
		return linkage.Ref(n), nil
	}
	return 0, fmt.Errorf("%w: unknown point %q", linkage.ErrInvalidReference, name)
}

// ---------------------------------------------------------------------------
// Input and stepping
// ---------------------------------------------------------------------------

// Send queues an input event for the next turn.
func (a *App) Send(e session.Event) error {
	return a.current().Send(e)
}

// Step runs one session turn: queued input, then at most one optimizer step.
func (a *App) Step() error {
	return a.current().Turn()
}

// Replay runs a recorded event script.
func (a *App) Replay(s session.Script) error {
	return a.current().Replay(s)
}

// Fit traces ref against target for up to steps optimizer steps and
// returns the final statistics. The optimizing flag is cleared afterwards.
func (a *App) Fit(ctx context.Context, ref linkage.Ref, target []geom.Point, steps int) (optimize.Stats, error) {
	var stats optimize.Stats
	var runErr error
	err := a.current().Do(func(c *interact.Controller) {
		m := c.Mechanism()
		if !m.Has(ref) {
			runErr = fmt.Errorf("%w: %s", linkage.ErrInvalidReference, ref)
			return
		}
		opt := c.Optimizer()
		if runErr = opt.Start(ref, target); runErr != nil {
			return
		}
		a.log.Info("fit started", "ref", ref, "samples", len(target), "error", opt.Stats().Error)
		stats, runErr = opt.Run(ctx, steps)
		m.StopOptimizing()
		a.log.Info("fit finished", "stats", stats)
	})
	return stats, errors.Join(err, runErr)
}

// Path samples ref over a full turn of the drive.
func (a *App) Path(ref linkage.Ref, samples int) ([]geom.Point, error) {
	var path []geom.Point
	var pathErr error
	err := a.current().Do(func(c *interact.Controller) {
		m := c.Mechanism()
		if !m.Has(ref) {
			pathErr = fmt.Errorf("%w: %s", linkage.ErrInvalidReference, ref)
			return
		}
		path = m.Path(ref, samples)
	})
	return path, errors.Join(err, pathErr)
}

// ---------------------------------------------------------------------------
// Drawing
// ---------------------------------------------------------------------------

// Frame draws the scene at the session clock's elapsed time.
func (a *App) Frame(mouse geom.Point) (*render.Frame, error) {
	return a.FrameAt(a.current().Clock().Elapsed(), mouse)
}

// FrameAt draws the scene at a fixed elapsed time.
func (a *App) FrameAt(elapsed time.Duration, mouse geom.Point) (*render.Frame, error) {
	f := &render.Frame{}
	err := a.current().Do(func(c *interact.Controller) {
		a.scene.Draw(c, elapsed, mouse, f)
	})
	return f, err
}
