package ops

import (
	"strconv"

	codecerrors "github.com/FocuswithJustin/osmcodec/core/errors"
)

// Flatten turns a phrase-based sequence into a basic one while keeping each
// phrase's terminals together: every SRC_POP2 is dropped and replaced by an
// extra EOP after the phrase's closing SRC_POP1. Trailing SRC_POP2 operations
// without a closing SRC_POP1 become EOPs at the end.
func (t *Table) Flatten(seq []string) []string {
	eop := t.Token(RoleEOP)
	out := make([]string, 0, len(seq))
	pending := 0
	for _, tok := range seq {
		switch t.Role(tok) {
		case RolePop2:
			pending++
		case RoleEOP:
			for i := 0; i <= pending; i++ {
				out = append(out, eop)
			}
			pending = 0
		case RoleTerminal:
			out = append(out, tok)
		default:
			out = append(out, t.Token(t.Role(tok)))
		}
	}
	for ; pending > 0; pending-- {
		out = append(out, eop)
	}
	return out
}

// LabelOptions configures FertilityLabels.
type LabelOptions struct {
	// Offset is the label of fertility zero.
	Offset int
	// VocabSize caps labels; labels >= VocabSize become Unk.
	VocabSize int
	// Unk is the label used above VocabSize.
	Unk string
	// Exclude lists roles that do not contribute to a fertility value.
	Exclude []Role
}

// DefaultLabelOptions mirrors the usual fertility vocabulary: fertility 0 is
// label 4, labels stop at 20, unk is 3, jumps are not counted.
func DefaultLabelOptions() LabelOptions {
	return LabelOptions{
		Offset:    4,
		VocabSize: 20,
		Unk:       "3",
		Exclude:   []Role{RoleJumpFwd, RoleJumpBwd},
	}
}

// FertilityLabels converts a sequence into one label per EOP plus a final
// label for the end of sentence. Every non-excluded, non-EOP operation between
// two EOPs adds one to the fertility, the final label counts one extra for EOS.
func (t *Table) FertilityLabels(seq []string, opts LabelOptions) []string {
	excluded := make(map[Role]bool, len(opts.Exclude))
	for _, r := range opts.Exclude {
		excluded[r] = true
	}
	label := func(f int) string {
		if opts.VocabSize > 0 && f >= opts.VocabSize {
			return opts.Unk
		}
		return strconv.Itoa(f)
	}

	var out []string
	fert := opts.Offset
	for _, tok := range seq {
		role := t.Role(tok)
		switch {
		case role == RoleEOP:
			out = append(out, label(fert))
			fert = opts.Offset
		case !excluded[role]:
			fert++
		}
	}
	return append(out, label(fert+1))
}

// PopToSource replaces every EOP in seq with the next source word.
func (t *Table) PopToSource(seq, src []string) ([]string, error) {
	out := make([]string, len(seq))
	pos := 0
	for i, tok := range seq {
		if t.Role(tok) != RoleEOP {
			out[i] = tok
			continue
		}
		if pos >= len(src) {
			return nil, codecerrors.NewSequence(i, tok, "more EOPs than source words")
		}
		out[i] = src[pos]
		pos++
	}
	return out, nil
}

// InsertPops re-inserts an EOP after each segment of words whose length is
// given by ferts. The fertilities must account for every word exactly.
func (t *Table) InsertPops(words []string, ferts []int) ([]string, error) {
	eop := t.Token(RoleEOP)
	out := make([]string, 0, len(words)+len(ferts))
	idx := 0
	for pos, f := range ferts {
		if f < 0 || idx+f > len(words) {
			return nil, &codecerrors.FertilityError{Position: pos, Got: len(words) - idx, Want: f}
		}
		out = append(out, words[idx:idx+f]...)
		out = append(out, eop)
		idx += f
	}
	if idx != len(words) {
		return nil, &codecerrors.FertilityError{Position: len(ferts), Got: len(words) - idx, Want: 0}
	}
	return out, nil
}

// ParseInts parses whitespace-separated integers such as fertility lines.
func ParseInts(line string) ([]int, error) {
	fields := Fields(line)
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, codecerrors.NewParse("integer list", "", err.Error())
		}
		out[i] = n
	}
	return out, nil
}

// FormatInts renders integers as one whitespace-separated line.
func FormatInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return Join(parts)
}
