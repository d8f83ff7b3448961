package osm

import (
	"fmt"
	"strings"

	codecerrors "github.com/FocuswithJustin/osmcodec/core/errors"
	"github.com/FocuswithJustin/osmcodec/core/ops"
)

// Format selects how a decoded sentence is rendered.
type Format string

const (
	FormatPlain       Format = "plain"
	FormatAlign       Format = "align"
	FormatPharaoh     Format = "pharaoh"
	FormatTagged      Format = "tagged"
	FormatFert        Format = "fert"
	FormatPerm        Format = "perm"
	FormatParse       Format = "parse"
	FormatIncremental Format = "incremental"
)

// Formats lists the accepted format names.
func Formats() []Format {
	return []Format{FormatPlain, FormatAlign, FormatPharaoh, FormatTagged, FormatFert, FormatPerm, FormatParse, FormatIncremental}
}

// ParseFormat parses a format name.
func ParseFormat(name string) (Format, error) {
	for _, f := range Formats() {
		if string(f) == name {
			return f, nil
		}
	}
	return "", codecerrors.NewValidation("format", fmt.Sprintf("unknown output format %q", name))
}

// NeedsTrace reports whether rendering f requires DecodeOptions.Trace.
func (f Format) NeedsTrace() bool {
	return f == FormatIncremental
}

// Render formats the result. The incremental format renders one line per
// operation and therefore spans several lines.
func (r *Result) Render(f Format) (string, error) {
	switch f {
	case FormatPlain:
		return ops.Join(r.Tokens()), nil
	case FormatAlign, FormatPharaoh:
		return r.Alignment().Pharaoh(), nil
	case FormatTagged:
		return ops.Join(r.Tagged()), nil
	case FormatFert:
		return ops.FormatInts(r.fertility), nil
	case FormatPerm:
		return ops.FormatInts(r.Permutation()), nil
	case FormatParse:
		return r.Compiled(), nil
	case FormatIncremental:
		return strings.Join(r.trace, "\n"), nil
	}
	return "", codecerrors.NewUnsupported("format", string(f))
}
