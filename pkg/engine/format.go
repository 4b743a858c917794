package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/linkage/pkg/linkage"
)

// Format renders spec as DSL source. Points are named by their ref, so
// evaluating the result yields the same mechanism with refs renumbered
// in first-appearance order.
func Format(spec linkage.Spec) string {
	var sb strings.Builder
	for _, g := range spec.Grounds {
		fmt.Fprintf(&sb, "(ground %q :at (vec2 %s %s))\n", g.Ref, num(g.P.X), num(g.P.Y))
	}
	for _, r := range spec.Rotaries {
		fmt.Fprintf(&sb, "(rotary :from %q :to %q :len %s :phase %s)\n",
			r.P1, r.P2, num(r.Len), num(r.Phase))
	}
	for _, h := range spec.Hinges {
		fmt.Fprintf(&sb, "(hinge :p1 %q :p2 %q :p3 %q :len1 %s :len2 %s)\n",
			h.P1, h.P2, h.P3, num(h.Len1), num(h.Len2))
	}
	for _, s := range spec.Sliders {
		fmt.Fprintf(&sb, "(slider :p1 %q :p2 %q :p3 %q :len %s)\n",
			s.P1, s.P2, s.P3, num(s.Len))
	}
	return sb.String()
}

// num prints a float without an exponent; the reader has no syntax for one.
func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
