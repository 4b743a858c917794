// Package share encodes mechanisms as short, URL-safe text of the form
// "<version>,<payload>".
package share

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	lzstring "github.com/daku10/go-lz-string"

	"github.com/chazu/linkage/pkg/linkage"
)

// Version0 payloads are lz-string compressed JSON of linkage.Compressed.
const Version0 = 0

// Versions lists the versions Encode can produce.
var Versions = []int{Version0}

var (
	// ErrUnsupportedVersion is returned for a version this package cannot handle.
	ErrUnsupportedVersion = errors.New("share: unsupported version")
	// ErrMalformed is returned for a payload that does not decode.
	ErrMalformed = errors.New("share: malformed payload")
)

// Encode renders spec under the given version.
func Encode(version int, spec linkage.Spec) (string, error) {
	switch version {
	case Version0:
		b, err := json.Marshal(linkage.Compress(spec))
		if err != nil {
			return "", fmt.Errorf("share: marshal: %w", err)
		}
		payload, err := lzstring.CompressToEncodedURIComponent(string(b))
		if err != nil {
			return "", fmt.Errorf("share: compress: %w", err)
		}
		return strconv.Itoa(Version0) + "," + payload, nil
	}
	return "", fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
}

// Decode parses text produced by Encode. A leading '#', as found in a URL
// fragment, is ignored.
func Decode(code string) (linkage.Spec, error) {
	code = strings.TrimPrefix(code, "#")
	head, payload, _ := strings.Cut(code, ",")

	version, err := strconv.Atoi(head)
	if err != nil {
		return linkage.Spec{}, fmt.Errorf("%w: %q", ErrUnsupportedVersion, head)
	}

	switch version {
	case Version0:
		text, err := lzstring.DecompressFromEncodedURIComponent(payload)
		if err != nil {
			return linkage.Spec{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if text == "" {
			return linkage.Spec{}, fmt.Errorf("%w: empty payload", ErrMalformed)
		}
		var c linkage.Compressed
		if err := json.Unmarshal([]byte(text), &c); err != nil {
			return linkage.Spec{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		spec, err := linkage.Decompress(c)
		if err != nil {
			return linkage.Spec{}, fmt.Errorf("share: %w", err)
		}
		return spec, nil
	}
	return linkage.Spec{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
}
