package osm

import (
	"fmt"

	"github.com/FocuswithJustin/osmcodec/core/align"
	codecerrors "github.com/FocuswithJustin/osmcodec/core/errors"
	"github.com/FocuswithJustin/osmcodec/core/holes"
	"github.com/FocuswithJustin/osmcodec/core/ops"
)

// DecodeOptions configures Decode.
type DecodeOptions struct {
	// Fertility, if non-nil, is the declared number of terminals per source
	// word. A decoded sequence that disagrees fails with ErrFertilityMismatch.
	Fertility []int
	// Trace records the compiled array after every operation.
	Trace bool
}

// Decoder turns operation sequences back into target tokens and alignments.
type Decoder struct {
	table *ops.Table
}

// NewDecoder returns a decoder reading the tokens bound in table.
func NewDecoder(table *ops.Table) *Decoder {
	if table == nil {
		table = ops.DefaultTable()
	}
	return &Decoder{table: table}
}

// Result is a decoded sentence.
type Result struct {
	canvas    *holes.Canvas
	fertility []int
	trace     []string
}

// Decode replays seq on a fresh compiled array. SRC_POP1 and SRC_POP2 are
// read as EOP so phrase-based sequences decode too.
func (d *Decoder) Decode(seq []string, opts DecodeOptions) (*Result, error) {
	res := &Result{canvas: holes.NewCanvas(), fertility: []int{0}}
	src := 0
	for i, tok := range seq {
		var err error
		switch d.table.Role(tok) {
		case ops.RoleEOP, ops.RolePop2:
			src++
			res.fertility = append(res.fertility, 0)
		case ops.RoleGap:
			res.canvas.Gap()
		case ops.RoleJumpFwd:
			err = res.canvas.Jump(1, i, tok)
		case ops.RoleJumpBwd:
			err = res.canvas.Jump(-1, i, tok)
		default:
			res.fertility[src]++
			res.canvas.Write(tok, src)
		}
		if err != nil {
			return nil, err
		}
		if opts.Trace {
			res.trace = append(res.trace, fmt.Sprintf("After %s: %s", tok, res.canvas))
		}
	}
	// the count after the last EOP belongs to no source word
	res.fertility = res.fertility[:len(res.fertility)-1]

	if opts.Fertility != nil {
		if err := checkFertility(res.fertility, opts.Fertility); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func checkFertility(got, want []int) error {
	if len(got) != len(want) {
		return &codecerrors.FertilityError{Position: -1, Got: len(got), Want: len(want)}
	}
	for i := range got {
		if got[i] != want[i] {
			return &codecerrors.FertilityError{Position: i, Got: got[i], Want: want[i]}
		}
	}
	return nil
}

// Tokens returns the decoded target sentence.
func (r *Result) Tokens() []string {
	cells := r.canvas.Terminals()
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.Token
	}
	return out
}

// Permutation returns the source position of every target position.
func (r *Result) Permutation() []int {
	cells := r.canvas.Terminals()
	out := make([]int, len(cells))
	for i, c := range cells {
		out[i] = c.Src
	}
	return out
}

// Normalized returns the decoded alignment as a target-to-source map.
func (r *Result) Normalized() align.Normalized {
	return align.Normalized(r.Permutation())
}

// Alignment returns one link per decoded target token.
func (r *Result) Alignment() align.Links {
	return r.Normalized().Links()
}

// Tagged returns the target tokens annotated with their source position, "tok(i)".
func (r *Result) Tagged() []string {
	cells := r.canvas.Terminals()
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = fmt.Sprintf("%s(%d)", c.Token, c.Src)
	}
	return out
}

// Fertility returns the number of terminals per completed source word.
func (r *Result) Fertility() []int {
	return append([]int(nil), r.fertility...)
}

// Compiled renders the final compiled array including placeholders and head.
func (r *Result) Compiled() string {
	return r.canvas.String()
}

// Trace returns the recorded compiled-array states, if tracing was enabled.
func (r *Result) Trace() []string {
	return append([]string(nil), r.trace...)
}
