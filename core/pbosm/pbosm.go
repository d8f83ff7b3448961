// Package pbosm implements the phrase-based operation sequence codec.
//
// Source words are consumed in phrases. Before the terminals of a phrase that
// covers n source words the encoder emits n-1 SRC_POP2 operations, then places
// the phrase's target tokens with the shared hole tracker, and closes the
// phrase with SRC_POP1. The decoder keeps two read heads: the primary head is
// the first source word of the open phrase and the secondary head its last.
package pbosm

import (
	"fmt"
	"strings"

	"github.com/FocuswithJustin/osmcodec/core/align"
	codecerrors "github.com/FocuswithJustin/osmcodec/core/errors"
	"github.com/FocuswithJustin/osmcodec/core/holes"
	"github.com/FocuswithJustin/osmcodec/core/ops"
	"github.com/FocuswithJustin/osmcodec/core/osm"
	"github.com/FocuswithJustin/osmcodec/core/phrase"
)

// Options configures segmentation before encoding.
type Options struct {
	Segment phrase.Options
	// FillSource also aligns unaligned source words before segmentation.
	FillSource bool
}

// DefaultOptions returns unrestricted segmentation without source filling.
func DefaultOptions() Options {
	return Options{Segment: phrase.DefaultOptions()}
}

// Codec encodes and decodes phrase-based sequences.
type Codec struct {
	table *ops.Table
}

// New returns a codec using table. A nil table means ops.DefaultTable.
func New(table *ops.Table) *Codec {
	if table == nil {
		table = ops.DefaultTable()
	}
	return &Codec{table: table}
}

// Encode produces the sequence for the phrases of one sentence pair. Every
// target position must belong to exactly one phrase.
func (c *Codec) Encode(trg []string, phrases []phrase.Phrase) ([]string, error) {
	seen := make([]bool, len(trg))
	for i, p := range phrases {
		if p.Fertility < 1 {
			return nil, codecerrors.NewAlignment(-1, "phrase %d has fertility %d", i, p.Fertility)
		}
		for _, pos := range p.Targets {
			if pos < 0 || pos >= len(trg) {
				return nil, codecerrors.NewAlignment(-1, "phrase %d: target position %d outside sentence of %d", i, pos, len(trg))
			}
			if seen[pos] {
				return nil, codecerrors.NewAlignment(-1, "phrase %d: target position %d already covered", i, pos)
			}
			seen[pos] = true
		}
	}
	for pos, ok := range seen {
		if !ok {
			return nil, codecerrors.NewAlignment(-1, "target position %d is in no phrase", pos)
		}
	}

	out := make([]string, 0, len(trg)+2*len(phrases))
	tracker := holes.NewTracker(func(r ops.Role) {
		out = append(out, c.table.Token(r))
	})
	for _, p := range phrases {
		for i := 1; i < p.Fertility; i++ {
			out = append(out, c.table.Token(ops.RolePop2))
		}
		for _, pos := range p.Targets {
			if err := tracker.Place(pos); err != nil {
				return nil, err
			}
			out = append(out, trg[pos])
			tracker.Fill(pos)
		}
		out = append(out, c.table.Token(ops.RoleEOP))
	}
	return out, nil
}

// EncodeLinks segments a raw alignment into phrases and encodes them.
func (c *Codec) EncodeLinks(srcLen int, trg []string, links align.Links, opts Options) ([]string, *phrase.Result, error) {
	res, err := phrase.Build(links, srcLen, len(trg), opts.FillSource, opts.Segment)
	if err != nil {
		return nil, nil, err
	}
	seq, err := c.Encode(trg, res.Phrases)
	if err != nil {
		return nil, nil, err
	}
	return seq, res, nil
}

// DecodeOptions configures Decode.
type DecodeOptions struct {
	// Fertility, if non-nil, is the declared number of source words per phrase.
	Fertility []int
	// SrcLen, if positive, is the declared source sentence length.
	SrcLen int
	// Trace records the compiled array after every operation.
	Trace bool
}

// Phrase is a decoded phrase pair.
type Phrase struct {
	// First and Last bound the source span, inclusive.
	First, Last int
	// Targets are the target positions of the phrase in the decoded sentence.
	Targets []int
}

// Fertility returns the number of source words the phrase covers.
func (p Phrase) Fertility() int {
	return p.Last - p.First + 1
}

// Result is a decoded phrase-based sequence.
type Result struct {
	canvas  *holes.Canvas
	phrases []Phrase
	trace   []string
}

// decodeState holds the two read heads.
type decodeState struct {
	primary   int
	secondary int
	phrases   []Phrase
}

func (st *decodeState) pop2() {
	st.secondary++
}

func (st *decodeState) pop1() {
	st.phrases = append(st.phrases, Phrase{First: st.primary, Last: st.secondary})
	st.primary = st.secondary + 1
	st.secondary = st.primary
}

// Decode replays seq. Terminals are written to the compiled array tagged
// with the index of the phrase they belong to.
func (c *Codec) Decode(seq []string, opts DecodeOptions) (*Result, error) {
	res := &Result{canvas: holes.NewCanvas()}
	st := &decodeState{}
	pending := 0
	for i, tok := range seq {
		var err error
		switch c.table.Role(tok) {
		case ops.RolePop2:
			st.pop2()
		case ops.RoleEOP:
			st.pop1()
			pending = 0
		case ops.RoleGap:
			res.canvas.Gap()
		case ops.RoleJumpFwd:
			err = res.canvas.Jump(1, i, tok)
		case ops.RoleJumpBwd:
			err = res.canvas.Jump(-1, i, tok)
		default:
			res.canvas.Write(tok, len(st.phrases))
			pending++
		}
		if err != nil {
			return nil, err
		}
		if opts.Trace {
			res.trace = append(res.trace, fmt.Sprintf("After %s: %s (read heads: %d %d)", tok, res.canvas, st.primary, st.secondary))
		}
	}
	if st.secondary != st.primary || pending > 0 {
		return nil, &codecerrors.FertilityError{Position: len(st.phrases), Got: st.secondary - st.primary + 1, Want: 0}
	}

	for pos, cell := range res.canvas.Terminals() {
		p := &st.phrases[cell.Src]
		p.Targets = append(p.Targets, pos)
	}
	res.phrases = st.phrases

	if opts.Fertility != nil {
		if len(opts.Fertility) != len(res.phrases) {
			return nil, &codecerrors.FertilityError{Position: -1, Got: len(res.phrases), Want: len(opts.Fertility)}
		}
		for i, p := range res.phrases {
			if p.Fertility() != opts.Fertility[i] {
				return nil, &codecerrors.FertilityError{Position: i, Got: p.Fertility(), Want: opts.Fertility[i]}
			}
		}
	}
	if opts.SrcLen > 0 && st.primary != opts.SrcLen {
		return nil, &codecerrors.FertilityError{Position: -1, Got: st.primary, Want: opts.SrcLen}
	}
	return res, nil
}

// Phrases returns the decoded phrase pairs in source order.
func (r *Result) Phrases() []Phrase {
	return append([]Phrase(nil), r.phrases...)
}

// Tokens returns the decoded target sentence.
func (r *Result) Tokens() []string {
	cells := r.canvas.Terminals()
	out := make([]string, len(cells))
	for i, cell := range cells {
		out[i] = cell.Token
	}
	return out
}

// Fertility returns the number of source words per phrase.
func (r *Result) Fertility() []int {
	out := make([]int, len(r.phrases))
	for i, p := range r.phrases {
		out[i] = p.Fertility()
	}
	return out
}

// SourceLen returns the number of source words consumed.
func (r *Result) SourceLen() int {
	if len(r.phrases) == 0 {
		return 0
	}
	return r.phrases[len(r.phrases)-1].Last + 1
}

// Links returns the block alignment, every source word of a phrase linked to
// every target position of it, ordered by source then target.
func (r *Result) Links() align.Links {
	var out align.Links
	for _, p := range r.phrases {
		for s := p.First; s <= p.Last; s++ {
			for _, t := range p.Targets {
				out = append(out, align.Link{Src: s, Trg: t})
			}
		}
	}
	return out.Sorted()
}

// Render formats the result. Phrase-based results support the plain, align,
// pharaoh, fert, parse and incremental formats.
func (r *Result) Render(f osm.Format) (string, error) {
	switch f {
	case osm.FormatPlain:
		return ops.Join(r.Tokens()), nil
	case osm.FormatAlign, osm.FormatPharaoh:
		return r.Links().Pharaoh(), nil
	case osm.FormatFert:
		return ops.FormatInts(r.Fertility()), nil
	case osm.FormatParse:
		return r.canvas.String(), nil
	case osm.FormatIncremental:
		return strings.Join(r.trace, "\n"), nil
	}
	return "", codecerrors.NewUnsupported("format", fmt.Sprintf("%s is not available for phrase-based sequences", f))
}
