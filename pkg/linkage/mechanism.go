package linkage

import (
	"errors"

	"github.com/chazu/linkage/pkg/geom"
)

// DefaultStepSize is the optimizer's initial perturbation scale.
const DefaultStepSize = 0.01

// ErrInvalidReference is returned when an operation is asked to act on a
// ref that plays no role in the mechanism. It indicates a caller bug.
var ErrInvalidReference = errors.New("linkage: invalid reference")

// Mechanism is the mutable aggregate edited during a session. The joint
// slices are exported for read access; mutate through the methods so the
// change callback fires.
type Mechanism struct {
	Grounds  []Ground
	Rotaries []Rotary
	Hinges   []Hinge
	Sliders  []Slider

	refCount   int
	optimizing bool
	stepSize   float64
	onChange   func()
}

// New creates a mechanism from a declarative spec. The ref counter starts
// one past the highest ref the spec mentions.
func New(spec Spec) *Mechanism {
	s := spec.clone()
	m := &Mechanism{
		Grounds:  s.Grounds,
		Rotaries: s.Rotaries,
		Hinges:   s.Hinges,
		Sliders:  s.Sliders,
		stepSize: DefaultStepSize,
	}
	for _, r := range spec.Refs() {
		if int(r) >= m.refCount {
			m.refCount = int(r) + 1
		}
	}
	return m
}

// Spec returns a deep copy of the mechanism's declarative form.
func (m *Mechanism) Spec() Spec {
	return Spec{
		Grounds:  m.Grounds,
		Rotaries: m.Rotaries,
		Hinges:   m.Hinges,
		Sliders:  m.Sliders,
	}.clone()
}

// RefCount returns the next ref that will be minted.
func (m *Mechanism) RefCount() int {
	return m.refCount
}

// OnChange installs the callback fired once after every accepted
// mutation. The callback must not mutate the mechanism synchronously.
func (m *Mechanism) OnChange(fn func()) {
	m.onChange = fn
}

// NotifyChange fires the change callback. Exposed for mutators outside
// this package, such as the optimizer.
func (m *Mechanism) NotifyChange() {
	if m.onChange != nil {
		m.onChange()
	}
}

func (m *Mechanism) nextRef() Ref {
	r := Ref(m.refCount)
	m.refCount++
	return r
}

// Ground returns the fixed position of a ground ref.
func (m *Mechanism) Ground(ref Ref) (geom.Point, bool) {
	if i := m.groundIndex(ref); i >= 0 {
		return m.Grounds[i].P, true
	}
	return geom.Point{}, false
}

func (m *Mechanism) groundIndex(ref Ref) int {
	for i, g := range m.Grounds {
		if g.Ref == ref {
			return i
		}
	}
	return -1
}

// Has reports whether ref plays any role in the mechanism.
func (m *Mechanism) Has(ref Ref) bool {
	for _, r := range m.Spec().Refs() {
		if r == ref {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Optimizer controls
// ---------------------------------------------------------------------------

// Optimizing reports whether a background fit is requested.
func (m *Mechanism) Optimizing() bool {
	return m.optimizing
}

// StartOptimizing raises the optimizing flag.
func (m *Mechanism) StartOptimizing() {
	m.optimizing = true
}

// StopOptimizing clears the optimizing flag. A step already in flight
// completes before the flag is observed.
func (m *Mechanism) StopOptimizing() {
	m.optimizing = false
}

// StepSize returns the optimizer's perturbation scale.
func (m *Mechanism) StepSize() float64 {
	return m.stepSize
}

// ScaleStepSize multiplies the perturbation scale by factor.
func (m *Mechanism) ScaleStepSize(factor float64) {
	m.stepSize *= factor
}

// SetStepSize overrides the perturbation scale.
func (m *Mechanism) SetStepSize(s float64) {
	m.stepSize = s
}
