// Package interact turns pointer and key input into mechanism edits.
//
// Clicks accumulate into a State that records, in order, which inputs
// hit an existing point (p) and which landed on empty space (g). Once
// three inputs are collected, Dispatch runs the construction operation
// they describe and the state returns to None.
package interact

import (
	"fmt"

	"github.com/chazu/linkage/pkg/geom"
	"github.com/chazu/linkage/pkg/linkage"
)

// Mode selects what a three-input click sequence builds.
type Mode int

const (
	ModeRotary Mode = iota
	ModeHinge
	ModeSlider
)

// Modes lists every mode.
var Modes = []Mode{ModeRotary, ModeHinge, ModeSlider}

func (m Mode) String() string {
	switch m {
	case ModeRotary:
		return "rotary"
	case ModeHinge:
		return "hinge"
	case ModeSlider:
		return "slider"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("interact: unknown mode %q", s)
}

// ---------------------------------------------------------------------------
// Click states
// ---------------------------------------------------------------------------

// State is the sequence of clicks collected so far. The concrete types
// are None, P, G, PP, PG, GP, GG, PPG, PGP, GPP, PGG, GPG and GGP; the
// name spells the inputs in order.
type State interface {
	Kind() string
	Arity() int
	isState()
}

type (
	None struct{}
	P    struct{ Ref linkage.Ref }
	G    struct{ P geom.Point }
	PP   struct{ Ref1, Ref2 linkage.Ref }
	PG   struct {
		Ref linkage.Ref
		P   geom.Point
	}
	GP struct {
		Ref linkage.Ref
		P   geom.Point
	}
	GG  struct{ P1, P2 geom.Point }
	PPG struct {
		Ref1, Ref2 linkage.Ref
		P          geom.Point
	}
	PGP struct {
		Ref1, Ref2 linkage.Ref
		P          geom.Point
	}
	GPP struct {
		Ref1, Ref2 linkage.Ref
		P          geom.Point
	}
	PGG struct {
		Ref    linkage.Ref
		P1, P2 geom.Point
	}
	GPG struct {
		Ref    linkage.Ref
		P1, P2 geom.Point
	}
	GGP struct {
		Ref    linkage.Ref
		P1, P2 geom.Point
	}
)

func (None) Kind() string { return "none" }
func (P) Kind() string    { return "p" }
func (G) Kind() string    { return "g" }
func (PP) Kind() string   { return "pp" }
func (PG) Kind() string   { return "pg" }
func (GP) Kind() string   { return "gp" }
func (GG) Kind() string   { return "gg" }
func (PPG) Kind() string  { return "ppg" }
func (PGP) Kind() string  { return "pgp" }
func (GPP) Kind() string  { return "gpp" }
func (PGG) Kind() string  { return "pgg" }
func (GPG) Kind() string  { return "gpg" }
func (GGP) Kind() string  { return "ggp" }

func (None) Arity() int { return 0 }
func (P) Arity() int    { return 1 }
func (G) Arity() int    { return 1 }
func (PP) Arity() int   { return 2 }
func (PG) Arity() int   { return 2 }
func (GP) Arity() int   { return 2 }
func (GG) Arity() int   { return 2 }
func (PPG) Arity() int  { return 3 }
func (PGP) Arity() int  { return 3 }
func (GPP) Arity() int  { return 3 }
func (PGG) Arity() int  { return 3 }
func (GPG) Arity() int  { return 3 }
func (GGP) Arity() int  { return 3 }

func (None) isState() {}
func (P) isState()    {}
func (G) isState()    {}
func (PP) isState()   {}
func (PG) isState()   {}
func (GP) isState()   {}
func (GG) isState()   {}
func (PPG) isState()  {}
func (PGP) isState()  {}
func (GPP) isState()  {}
func (PGG) isState()  {}
func (GPG) isState()  {}
func (GGP) isState()  {}

// Click is one pointer click. Hit clicks carry the ref under the pointer;
// misses carry only the position.
type Click struct {
	Hit bool
	Ref linkage.Ref
	P   geom.Point
}

// Reduce appends a click to the state. Combinations outside the
// construction grammar reset to None.
func Reduce(s State, c Click) State {
	if c.Hit {
		switch s := s.(type) {
		case None:
			return P{Ref: c.Ref}
		case P:
			return PP{Ref1: s.Ref, Ref2: c.Ref}
		case G:
			return GP{Ref: c.Ref, P: s.P}
		case PG:
			return PGP{Ref1: s.Ref, Ref2: c.Ref, P: s.P}
		case GG:
			return GGP{Ref: c.Ref, P1: s.P1, P2: s.P2}
		case GP:
			return GPP{Ref1: s.Ref, Ref2: c.Ref, P: s.P}
		}
		return None{}
	}

	switch s := s.(type) {
	case None:
		return G{P: c.P}
	case G:
		return GG{P1: s.P, P2: c.P}
	case P:
		return PG{Ref: s.Ref, P: c.P}
	case PG:
		return PGG{Ref: s.Ref, P1: s.P, P2: c.P}
	case GP:
		return GPG{Ref: s.Ref, P1: s.P, P2: c.P}
	case PP:
		return PPG{Ref1: s.Ref1, Ref2: s.Ref2, P: c.P}
	}
	return None{}
}
