package linkage

import (
	"math"
	"strings"
	"testing"

	"github.com/kr/pretty"
)

func TestNewRefCount(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want int
	}{
		{"empty", Spec{}, 0},
		{"default", DefaultSpec(), 6},
		{"joint output is highest", Spec{Hinges: []Hinge{{P1: 0, P2: 1, P3: 11}}}, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.spec).RefCount(); got != tt.want {
				t.Errorf("RefCount = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewCopiesSpec(t *testing.T) {
	spec := DefaultSpec()
	m := New(spec)
	m.Grounds[0].P.X = 9
	if spec.Grounds[0].P.X != 0 {
		t.Error("mechanism aliases the spec it was built from")
	}
	out := m.Spec()
	out.Hinges[0].Len1 = 9
	if m.Hinges[0].Len1 != 0.4 {
		t.Error("Spec() aliases the mechanism")
	}
}

func TestSpecRefsOrder(t *testing.T) {
	got := DefaultSpec().Refs()
	want := []Ref{1, 4, 5, 2, 3}
	if diff := pretty.Diff(want, got); len(diff) > 0 {
		t.Errorf("Refs mismatch:\n%s", strings.Join(diff, "\n"))
	}
}

func TestHas(t *testing.T) {
	m := New(DefaultSpec())
	for _, r := range []Ref{1, 2, 3, 4, 5} {
		if !m.Has(r) {
			t.Errorf("Has(%s) = false", r)
		}
	}
	if m.Has(0) || m.Has(6) {
		t.Error("Has reports refs that play no role")
	}
}

func TestStepSizeAndFlag(t *testing.T) {
	m := New(DefaultSpec())
	if m.StepSize() != DefaultStepSize {
		t.Fatalf("StepSize = %v", m.StepSize())
	}
	m.ScaleStepSize(1.01)
	m.ScaleStepSize(0.99)
	if want := DefaultStepSize * 1.01 * 0.99; math.Abs(m.StepSize()-want) > 1e-15 {
		t.Errorf("StepSize = %v, want %v", m.StepSize(), want)
	}
	if m.Optimizing() {
		t.Error("new mechanism should not be optimizing")
	}
	m.StartOptimizing()
	if !m.Optimizing() {
		t.Error("StartOptimizing did not raise the flag")
	}
	m.StopOptimizing()
	if m.Optimizing() {
		t.Error("StopOptimizing did not clear the flag")
	}
}

func TestRefString(t *testing.T) {
	if got := Ref(12).String(); got != "p12" {
		t.Errorf("String = %q", got)
	}
}

// ---------------------------------------------------------------------------
// Parameter vector
// ---------------------------------------------------------------------------

func TestParams(t *testing.T) {
	m := New(DefaultSpec())
	p := m.Params()
	want := []float64{0, 0, 0.3, 0, -0.3, 0, 0.2, 0, 0.4, 0.4}
	if diff := pretty.Diff(want, p); len(diff) > 0 {
		t.Fatalf("Params mismatch:\n%s", strings.Join(diff, "\n"))
	}
	kinds := m.ParamKinds()
	if len(kinds) != len(p) {
		t.Fatalf("kinds = %d, params = %d", len(kinds), len(p))
	}
	if kinds[7] != ParamPhase || kinds[6] != ParamLength || kinds[0] != ParamCoord {
		t.Errorf("kinds = %v", kinds)
	}
}

func TestSetParams(t *testing.T) {
	m := New(DefaultSpec())
	n := countChanges(m)
	p := m.Params()
	p[2] = 0.35
	p[7] = 1.5
	p[9] = 0.45
	if err := m.SetParams(p); err != nil {
		t.Fatal(err)
	}
	if m.Grounds[1].P.X != 0.35 || m.Rotaries[0].Phase != 1.5 || m.Hinges[0].Len2 != 0.45 {
		t.Errorf("SetParams did not write through: %+v", m.Spec())
	}
	if *n != 0 {
		t.Error("SetParams must not notify")
	}
	if err := m.SetParams(p[:3]); err == nil {
		t.Error("expected error for short vector")
	}
}

func TestSlidersAreNotParams(t *testing.T) {
	spec := DefaultSpec()
	spec.Sliders = []Slider{{P1: 2, P2: 5, P3: 6, Len: 0.7}}
	if got := len(New(spec).Params()); got != 10 {
		t.Errorf("params = %d, want 10", got)
	}
}
