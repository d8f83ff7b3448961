package phrase

import (
	"github.com/FocuswithJustin/osmcodec/core/align"
)

// Phrase is a run of consecutive source rows with identical target columns.
type Phrase struct {
	// Targets are the target positions of the block, ascending.
	Targets []int
	// Fertility is the number of source rows the phrase covers.
	Fertility int
}

// Linearize merges consecutive identical rows of a block alignment into
// phrases, in source order.
func Linearize(m *align.Matrix) []Phrase {
	var out []Phrase
	for r := 0; r < m.Rows; r++ {
		if r > 0 && m.RowsEqual(r-1, r) {
			out[len(out)-1].Fertility++
			continue
		}
		out = append(out, Phrase{Targets: m.Row(r), Fertility: 1})
	}
	return out
}

// Fertilities returns the fertility of every phrase.
func Fertilities(phrases []Phrase) []int {
	out := make([]int, len(phrases))
	for i, p := range phrases {
		out[i] = p.Fertility
	}
	return out
}

// SourceLen returns the number of source rows covered by phrases.
func SourceLen(phrases []Phrase) int {
	n := 0
	for _, p := range phrases {
		n += p.Fertility
	}
	return n
}

// NoSplitRows returns the rows that must not be split points for a source
// sentence: the row after every token in noSplit, which marks word-internal
// subword units.
func NoSplitRows(src []string, noSplit map[string]bool) []int {
	var rows []int
	for i, tok := range src {
		if noSplit[tok] {
			rows = append(rows, i+1)
		}
	}
	return rows
}

// Prepare builds the gap-filled alignment matrix for a sentence pair. An
// empty link list is read as the single link 0-0.
func Prepare(links align.Links, srcLen, trgLen int, fillSource bool) (*align.Matrix, error) {
	if len(links) == 0 && srcLen > 0 && trgLen > 0 {
		links = align.Links{{Src: 0, Trg: 0}}
	}
	m, err := align.MatrixFromLinks(links, srcLen, trgLen)
	if err != nil {
		return nil, err
	}
	m.FillTargetGaps()
	if fillSource {
		m.FillSourceGaps()
	}
	return m, nil
}

// Result bundles a segmentation with its projection and phrases.
type Result struct {
	Tree    *Tree
	Blocks  *align.Matrix
	Phrases []Phrase
	// Error counts cells where the block alignment differs from the
	// unfilled input alignment.
	Error int
}

// Build runs gap filling, segmentation, projection and linearization.
func Build(links align.Links, srcLen, trgLen int, fillSource bool, opts Options) (*Result, error) {
	m, err := Prepare(links, srcLen, trgLen, fillSource)
	if err != nil {
		return nil, err
	}
	tree := Segment(m, opts)
	blocks := tree.Project()
	orig, _ := align.MatrixFromLinks(links, srcLen, trgLen)
	return &Result{
		Tree:    tree,
		Blocks:  blocks,
		Phrases: Linearize(blocks),
		Error:   blocks.Diff(orig),
	}, nil
}
