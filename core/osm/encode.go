// Package osm implements the basic operation sequence codec: one source
// read head, terminals written into target-side holes, and the EOP, GAP,
// JUMP_FWD and JUMP_BWD control operations.
package osm

import (
	"github.com/FocuswithJustin/osmcodec/core/align"
	codecerrors "github.com/FocuswithJustin/osmcodec/core/errors"
	"github.com/FocuswithJustin/osmcodec/core/holes"
	"github.com/FocuswithJustin/osmcodec/core/ops"
)

// Stats describes one encoded sentence.
type Stats struct {
	Jumps        int
	Gaps         int
	MaxOpenHoles int
}

// Encoder turns normalized alignments into operation sequences.
type Encoder struct {
	table *ops.Table
}

// NewEncoder returns an encoder emitting the tokens bound in table.
func NewEncoder(table *ops.Table) *Encoder {
	if table == nil {
		table = ops.DefaultTable()
	}
	return &Encoder{table: table}
}

// encodeState is threaded through the per-token steps of one sentence.
type encodeState struct {
	table   *ops.Table
	tracker *holes.Tracker
	out     []string
	stats   Stats
}

func newEncodeState(table *ops.Table, capacity int) *encodeState {
	st := &encodeState{table: table, out: make([]string, 0, capacity)}
	st.tracker = holes.NewTracker(st.control)
	return st
}

func (st *encodeState) control(r ops.Role) {
	switch r {
	case ops.RoleGap:
		st.stats.Gaps++
	case ops.RoleJumpFwd, ops.RoleJumpBwd:
		st.stats.Jumps++
	}
	st.out = append(st.out, st.table.Token(r))
}

// terminal writes trg[pos] into its hole.
func (st *encodeState) terminal(pos int, tok string) error {
	if err := st.tracker.Place(pos); err != nil {
		return err
	}
	st.out = append(st.out, tok)
	st.tracker.Fill(pos)
	if open := st.tracker.Open(); open > st.stats.MaxOpenHoles {
		st.stats.MaxOpenHoles = open
	}
	return nil
}

// Encode produces the operation sequence for a sentence pair with srcLen
// source words, target tokens trg and normalized alignment a.
func (e *Encoder) Encode(srcLen int, trg []string, a align.Normalized) ([]string, error) {
	seq, _, err := e.EncodeStats(srcLen, trg, a)
	return seq, err
}

// EncodeStats is Encode that also reports jump and hole counts.
//
// Source words are visited left to right; each word's target positions are
// written in ascending order and followed by one EOP, so unaligned source
// words produce a bare EOP.
func (e *Encoder) EncodeStats(srcLen int, trg []string, a align.Normalized) ([]string, Stats, error) {
	if len(a) != len(trg) {
		return nil, Stats{}, codecerrors.NewAlignment(-1, "alignment covers %d target positions, sentence has %d", len(a), len(trg))
	}
	src2trg, err := a.SourceToTarget(srcLen)
	if err != nil {
		return nil, Stats{}, err
	}

	st := newEncodeState(e.table, len(trg)+2*srcLen)
	for _, positions := range src2trg {
		for _, pos := range positions {
			if err := st.terminal(pos, trg[pos]); err != nil {
				return nil, Stats{}, err
			}
		}
		st.control(ops.RoleEOP)
	}
	return st.out, st.stats, nil
}
