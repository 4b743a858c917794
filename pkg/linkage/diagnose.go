package linkage

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// Severity indicates whether a finding makes the mechanism unusable or is
// merely informational.
type Severity int

const (
	SeverityError   Severity = iota // the mechanism cannot be fully solved
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Finding describes a single diagnostic.
type Finding struct {
	Ref      Ref // the point concerned, or -1 for mechanism-level findings
	Message  string
	Severity Severity
}

// NoRef marks a finding that concerns the whole mechanism.
const NoRef Ref = -1

func (f Finding) Error() string {
	if f.Ref == NoRef {
		return fmt.Sprintf("[%s] %s", f.Severity, f.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Ref, f.Message)
}

// Diagnose explains why parts of the mechanism may be missing from Solve's
// result at theta. Solve itself drops unresolvable joints silently. This
// function is read-only and never mutates the mechanism.
func Diagnose(m *Mechanism, theta float64) []Finding {
	var out []Finding
	out = append(out, diagnoseReferences(m)...)
	out = append(out, diagnoseCycles(m)...)
	out = append(out, diagnoseRotaries(m)...)
	out = append(out, diagnoseProducers(m)...)
	out = append(out, diagnoseLengths(m)...)
	out = append(out, diagnoseSolve(m, theta)...)
	return out
}

// producers lists every ref that some record defines: grounds, rotary
// outputs and joint outputs. A ref appears once per producing record.
func producers(m *Mechanism) []Ref {
	var out []Ref
	for _, g := range m.Grounds {
		out = append(out, g.Ref)
	}
	for _, r := range m.Rotaries {
		out = append(out, r.P2)
	}
	for _, h := range m.Hinges {
		out = append(out, h.P3)
	}
	for _, s := range m.Sliders {
		out = append(out, s.P3)
	}
	return out
}

// inputs maps each hinge or slider output to the refs it is computed from.
func inputs(m *Mechanism) map[Ref][]Ref {
	deps := make(map[Ref][]Ref)
	for _, h := range m.Hinges {
		deps[h.P3] = append(deps[h.P3], h.P1, h.P2)
	}
	for _, s := range m.Sliders {
		deps[s.P3] = append(deps[s.P3], s.P1, s.P2)
	}
	return deps
}

// diagnoseReferences reports refs that are consumed but never produced.
func diagnoseReferences(m *Mechanism) []Finding {
	produced := lo.SliceToMap(producers(m), func(r Ref) (Ref, bool) { return r, true })

	var consumed []Ref
	for _, r := range m.Rotaries {
		consumed = append(consumed, r.P1)
	}
	for _, h := range m.Hinges {
		consumed = append(consumed, h.P1, h.P2)
	}
	for _, s := range m.Sliders {
		consumed = append(consumed, s.P1, s.P2)
	}

	var out []Finding
	for _, r := range lo.Uniq(consumed) {
		if !produced[r] {
			out = append(out, Finding{
				Ref:      r,
				Message:  "referenced but never defined",
				Severity: SeverityError,
			})
		}
	}
	return out
}

// diagnoseCycles checks the joint dependency graph for cycles using DFS
// with 3-color marking. Reaching a gray ref means it depends on itself.
func diagnoseCycles(m *Mechanism) []Finding {
	const (
		white = iota
		gray
		black
	)

	deps := inputs(m)
	color := make(map[Ref]int)
	var out []Finding

	var visit func(r Ref) bool // returns true if a cycle was found
	visit = func(r Ref) bool {
		switch color[r] {
		case black:
			return false
		case gray:
			out = append(out, Finding{
				Ref:      r,
				Message:  fmt.Sprintf("dependency cycle through %s", r),
				Severity: SeverityError,
			})
			return true
		}
		color[r] = gray
		for _, d := range deps[r] {
			if visit(d) {
				return true
			}
		}
		color[r] = black
		return false
	}

	roots := lo.Keys(deps)
	slices.Sort(roots)
	for _, r := range roots {
		if color[r] == white && visit(r) {
			// One cycle is enough to explain the stall.
			break
		}
	}
	return out
}

// diagnoseRotaries reports rotaries that are not anchored to a ground.
func diagnoseRotaries(m *Mechanism) []Finding {
	var out []Finding
	for _, r := range m.Rotaries {
		if _, ok := m.Ground(r.P1); !ok {
			out = append(out, Finding{
				Ref:      r.P2,
				Message:  fmt.Sprintf("rotary anchor %s is not a ground", r.P1),
				Severity: SeverityError,
			})
		}
	}
	return out
}

// diagnoseProducers warns about refs defined by more than one record. The
// solver keeps whichever it resolves first.
func diagnoseProducers(m *Mechanism) []Finding {
	counts := lo.CountValues(producers(m))
	refs := lo.Keys(counts)
	slices.Sort(refs)

	var out []Finding
	for _, r := range refs {
		if n := counts[r]; n > 1 {
			out = append(out, Finding{
				Ref:      r,
				Message:  fmt.Sprintf("defined by %d records", n),
				Severity: SeverityWarning,
			})
		}
	}
	return out
}

func diagnoseLengths(m *Mechanism) []Finding {
	var out []Finding
	warn := func(r Ref, field string, v float64) {
		if !(v > 0) {
			out = append(out, Finding{
				Ref:      r,
				Message:  fmt.Sprintf("%s is %g, want a positive length", field, v),
				Severity: SeverityWarning,
			})
		}
	}
	for _, r := range m.Rotaries {
		warn(r.P2, "rotary len", r.Len)
	}
	for _, h := range m.Hinges {
		warn(h.P3, "hinge len1", h.Len1)
		warn(h.P3, "hinge len2", h.Len2)
	}
	for _, s := range m.Sliders {
		warn(s.P3, "slider len", s.Len)
	}
	return out
}

// diagnoseSolve reports infeasibility at theta, or the joints left
// unresolved when the solve succeeds.
func diagnoseSolve(m *Mechanism, theta float64) []Finding {
	sol, ok := m.Solve(theta)
	if !ok {
		return []Finding{{
			Ref:      NoRef,
			Message:  fmt.Sprintf("no solution at theta %g", theta),
			Severity: SeverityWarning,
		}}
	}

	var out []Finding
	unresolved := func(kind string, p1, p2, p3 Ref) {
		if _, ok := sol.Points[p3]; !ok {
			out = append(out, Finding{
				Ref:      p3,
				Message:  fmt.Sprintf("%s from %s and %s is unresolved", kind, p1, p2),
				Severity: SeverityWarning,
			})
		}
	}
	for _, h := range m.Hinges {
		unresolved("hinge", h.P1, h.P2, h.P3)
	}
	for _, s := range m.Sliders {
		unresolved("slider", s.P1, s.P2, s.P3)
	}
	return out
}
