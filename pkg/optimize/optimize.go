// Package optimize fits a mechanism's free parameters to a target path by
// stochastic hill-climbing. The Optimizer performs one step per call so a
// scheduler can interleave steps with input handling; the mechanism's
// optimizing flag is the only cancellation signal.
package optimize

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/chazu/linkage/pkg/geom"
	"github.com/chazu/linkage/pkg/linkage"
)

// DefaultPhaseScale is how much harder rotary phases are perturbed than
// coordinates and lengths.
const DefaultPhaseScale = 10

// ErrEmptyTarget is returned by Start for a target path with no samples.
var ErrEmptyTarget = errors.New("optimize: target path is empty")

// Outcome reports what a single Step did.
type Outcome int

const (
	OutcomeStopped  Outcome = iota // optimizing flag clear or no target
	OutcomeSkipped                 // current path incomplete, nothing mutated
	OutcomeRejected                // perturbation reverted
	OutcomeAccepted                // perturbation kept, change callback fired
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStopped:
		return "stopped"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeRejected:
		return "rejected"
	case OutcomeAccepted:
		return "accepted"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Stats counts step outcomes since the last Start.
type Stats struct {
	Steps    int
	Skipped  int
	Rejected int
	Accepted int
	Error    float64 // path error after the last accepted step, or the baseline
}

// Optimizer holds the fit target for one mechanism. It borrows the
// mechanism only for the duration of a Step.
type Optimizer struct {
	m          *linkage.Mechanism
	ref        linkage.Ref
	target     []geom.Point
	noise      distuv.Uniform
	phaseScale float64
	stats      Stats
}

// New creates an optimizer for m drawing noise from src.
func New(m *linkage.Mechanism, src rand.Source) *Optimizer {
	return &Optimizer{
		m:          m,
		noise:      distuv.Uniform{Min: -0.5, Max: 0.5, Src: src},
		phaseScale: DefaultPhaseScale,
	}
}

// SetPhaseScale overrides DefaultPhaseScale.
func (o *Optimizer) SetPhaseScale(s float64) {
	o.phaseScale = s
}

// Start sets the target path for ref and raises the mechanism's
// optimizing flag. The path is copied.
func (o *Optimizer) Start(ref linkage.Ref, target []geom.Point) error {
	if len(target) == 0 {
		return ErrEmptyTarget
	}
	o.ref = ref
	o.target = append([]geom.Point(nil), target...)
	o.stats = Stats{}
	if e, ok := o.pathError(); ok {
		o.stats.Error = e
	}
	o.m.StartOptimizing()
	return nil
}

// Active reports whether the next Step would do work.
func (o *Optimizer) Active() bool {
	return o.target != nil && o.m.Optimizing()
}

// Ref returns the point being fitted.
func (o *Optimizer) Ref() linkage.Ref {
	return o.ref
}

// Target returns the path being fitted to.
func (o *Optimizer) Target() []geom.Point {
	return o.target
}

// Stats returns the counters accumulated since Start.
func (o *Optimizer) Stats() Stats {
	return o.stats
}

// Step performs one snapshot, perturb, compare and accept-or-revert
// cycle. The optimizing flag is read once, at the start.
func (o *Optimizer) Step() Outcome {
	if !o.Active() {
		return OutcomeStopped
	}
	o.stats.Steps++

	base, ok := o.pathError()
	if !ok {
		o.stats.Skipped++
		return OutcomeSkipped
	}

	snapshot := o.m.Params()
	trial := o.perturb(snapshot, o.m.ParamKinds(), o.m.StepSize())

	// The vectors come from the same mechanism, so lengths always agree.
	_ = o.m.SetParams(trial)

	e, ok := o.pathError()
	if !ok || !(e < base) {
		_ = o.m.SetParams(snapshot)
		o.stats.Rejected++
		return OutcomeRejected
	}

	o.stats.Accepted++
	o.stats.Error = e
	o.m.NotifyChange()
	return OutcomeAccepted
}

// perturb returns params plus uniform noise in [-step/2, step/2), with
// phases spread phaseScale times wider.
func (o *Optimizer) perturb(params []float64, kinds []linkage.ParamKind, step float64) []float64 {
	delta := make([]float64, len(params))
	for i := range delta {
		scale := step
		if kinds[i] == linkage.ParamPhase {
			scale *= o.phaseScale
		}
		delta[i] = o.noise.Rand() * scale
	}
	trial := make([]float64, len(params))
	copy(trial, params)
	floats.Add(trial, delta)
	return trial
}

// Run performs up to n steps (unbounded when n <= 0), returning early when
// the optimizing flag is cleared or ctx is done.
func (o *Optimizer) Run(ctx context.Context, n int) (Stats, error) {
	for i := 0; n <= 0 || i < n; i++ {
		if err := ctx.Err(); err != nil {
			return o.stats, err
		}
		if o.Step() == OutcomeStopped {
			break
		}
	}
	return o.stats, nil
}

// pathError samples the traced path at the target's resolution and sums
// the distances. ok is false when some sample was infeasible.
func (o *Optimizer) pathError() (float64, bool) {
	path := o.m.Path(o.ref, len(o.target))
	e, err := geom.PathError(path, o.target)
	if err != nil {
		return 0, false
	}
	return e, true
}
