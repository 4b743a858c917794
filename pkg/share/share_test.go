package share

import (
	"errors"
	"strings"
	"testing"

	"github.com/kr/pretty"

	"github.com/chazu/linkage/pkg/linkage"
)

func TestRoundTrip(t *testing.T) {
	spec := linkage.DefaultSpec()
	spec.Sliders = []linkage.Slider{{P1: 2, P2: 5, P3: 6, Len: 0.7}}

	code, err := Encode(Version0, spec)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(code, "0,") {
		t.Errorf("code = %q, want a 0, prefix", code)
	}
	if strings.ContainsAny(code, "/=?&# ") {
		t.Errorf("code %q is not URL safe", code)
	}

	got, err := Decode(code)
	if err != nil {
		t.Fatal(err)
	}
	want, err := linkage.Decompress(linkage.Compress(spec))
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(want, got); len(diff) > 0 {
		t.Errorf("round trip mismatch:\n%s", strings.Join(diff, "\n"))
	}
}

func TestDecodeURLFragment(t *testing.T) {
	code, err := Encode(Version0, linkage.DefaultSpec())
	if err != nil {
		t.Fatal(err)
	}
	a, err := Decode(code)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Decode("#" + code)
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(a, b); len(diff) > 0 {
		t.Errorf("fragment decode differs: %v", diff)
	}
}

func TestUnsupportedVersion(t *testing.T) {
	if _, err := Encode(3, linkage.DefaultSpec()); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("Encode err = %v, want ErrUnsupportedVersion", err)
	}
	for _, code := range []string{"1,abc", "x,abc", "#7,", ""} {
		if _, err := Decode(code); !errors.Is(err, ErrUnsupportedVersion) {
			t.Errorf("Decode(%q) err = %v, want ErrUnsupportedVersion", code, err)
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := Decode("0,"); !errors.Is(err, ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
}
