package linkage

import "fmt"

// ParamKind classifies one entry of the free-parameter vector.
type ParamKind int

const (
	ParamCoord  ParamKind = iota // ground x or y
	ParamLength                  // rotary len, hinge len1/len2
	ParamPhase                   // rotary phase
)

func (k ParamKind) String() string {
	switch k {
	case ParamCoord:
		return "coord"
	case ParamLength:
		return "length"
	case ParamPhase:
		return "phase"
	default:
		return "unknown"
	}
}

// Params flattens the free numeric parameters into one vector: each
// ground's x and y, each rotary's len and phase, each hinge's len1 and
// len2. Slider lengths are not free parameters.
func (m *Mechanism) Params() []float64 {
	p := make([]float64, 0, m.paramCount())
	for _, g := range m.Grounds {
		p = append(p, g.P.X, g.P.Y)
	}
	for _, r := range m.Rotaries {
		p = append(p, r.Len, r.Phase)
	}
	for _, h := range m.Hinges {
		p = append(p, h.Len1, h.Len2)
	}
	return p
}

// ParamKinds returns the kind of every entry of Params, index for index.
func (m *Mechanism) ParamKinds() []ParamKind {
	k := make([]ParamKind, 0, m.paramCount())
	for range m.Grounds {
		k = append(k, ParamCoord, ParamCoord)
	}
	for range m.Rotaries {
		k = append(k, ParamLength, ParamPhase)
	}
	for range m.Hinges {
		k = append(k, ParamLength, ParamLength)
	}
	return k
}

// SetParams writes a vector produced by Params back. It does not fire the
// change callback.
func (m *Mechanism) SetParams(p []float64) error {
	if len(p) != m.paramCount() {
		return fmt.Errorf("linkage: parameter vector has %d entries, want %d", len(p), m.paramCount())
	}
	i := 0
	for g := range m.Grounds {
		m.Grounds[g].P.X, m.Grounds[g].P.Y = p[i], p[i+1]
		i += 2
	}
	for r := range m.Rotaries {
		m.Rotaries[r].Len, m.Rotaries[r].Phase = p[i], p[i+1]
		i += 2
	}
	for h := range m.Hinges {
		m.Hinges[h].Len1, m.Hinges[h].Len2 = p[i], p[i+1]
		i += 2
	}
	return nil
}

func (m *Mechanism) paramCount() int {
	return 2 * (len(m.Grounds) + len(m.Rotaries) + len(m.Hinges))
}
