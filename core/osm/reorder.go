package osm

import (
	codecerrors "github.com/FocuswithJustin/osmcodec/core/errors"
	"github.com/FocuswithJustin/osmcodec/core/holes"
	"github.com/FocuswithJustin/osmcodec/core/ops"
)

// Reordering is a source sentence put into target word order.
type Reordering struct {
	Words       []string
	Permutation []int
}

// Reorder replays a non-lexical sequence, in which every EOP writes the next
// source word at the head instead of closing it. The result is the source
// sentence in the order implied by the sequence's jumps and gaps.
func (d *Decoder) Reorder(seq, src []string) (*Reordering, error) {
	canvas := holes.NewCanvas()
	next := 0
	for i, tok := range seq {
		var err error
		switch d.table.Role(tok) {
		case ops.RoleEOP, ops.RolePop2:
			if next >= len(src) {
				return nil, codecerrors.NewSequence(i, tok, "more source pops than source words")
			}
			canvas.Write(src[next], next)
			next++
		case ops.RoleGap:
			canvas.Gap()
		case ops.RoleJumpFwd:
			err = canvas.Jump(1, i, tok)
		case ops.RoleJumpBwd:
			err = canvas.Jump(-1, i, tok)
		default:
			return nil, codecerrors.NewSequence(i, tok, "terminal in a non-lexical sequence")
		}
		if err != nil {
			return nil, err
		}
	}

	cells := canvas.Terminals()
	out := &Reordering{
		Words:       make([]string, len(cells)),
		Permutation: make([]int, len(cells)),
	}
	for i, c := range cells {
		out.Words[i] = c.Token
		out.Permutation[i] = c.Src
	}
	return out, nil
}
