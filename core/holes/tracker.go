// Package holes implements the target-side construction state shared by the
// hole-based OSM codecs.
//
// On the encode side a Tracker keeps an ordered list of open target ranges
// (holes) and a head pointing at one of them; moving the head and splitting a
// hole emit the JUMP and GAP control roles. On the decode side a Canvas is the
// materialized form of the same state: one placeholder cell per hole, with
// decoded terminals inserted in front of the placeholder under the head.
package holes

import (
	"fmt"

	codecerrors "github.com/FocuswithJustin/osmcodec/core/errors"
	"github.com/FocuswithJustin/osmcodec/core/ops"
)

// Sentinel is the end of the initial hole, beyond any real sentence length.
const Sentinel = 1000000

// Hole is an inclusive range of unfilled target slots. A hole with
// Start > End is exhausted but keeps its index.
type Hole struct {
	Start int
	End   int
}

// Exhausted reports whether the hole has no free slot left.
func (h Hole) Exhausted() bool {
	return h.Start > h.End
}

func (h Hole) String() string {
	return fmt.Sprintf("[%d,%d]", h.Start, h.End)
}

// Tracker is the encode-side hole list.
type Tracker struct {
	holes []Hole
	head  int
	emit  func(ops.Role)
	jumps int
}

// NewTracker returns a tracker with the single hole [0, Sentinel] and head 0.
// emit receives every control role the tracker produces.
func NewTracker(emit func(ops.Role)) *Tracker {
	if emit == nil {
		emit = func(ops.Role) {}
	}
	return &Tracker{
		holes: []Hole{{Start: 0, End: Sentinel}},
		emit:  emit,
	}
}

// Head returns the index of the current hole.
func (t *Tracker) Head() int {
	return t.head
}

// Holes returns a copy of the hole list.
func (t *Tracker) Holes() []Hole {
	return append([]Hole(nil), t.holes...)
}

// Open counts the holes that still have free slots.
func (t *Tracker) Open() int {
	n := 0
	for _, h := range t.holes {
		if !h.Exhausted() {
			n++
		}
	}
	return n
}

// Jumps returns the number of JUMP roles emitted so far.
func (t *Tracker) Jumps() int {
	return t.jumps
}

// Locate returns the index of the hole containing target position pos.
func (t *Tracker) Locate(pos int) (int, error) {
	for idx, h := range t.holes {
		if h.Exhausted() || h.End < pos {
			continue
		}
		if h.Start > pos {
			return 0, codecerrors.NewAlignment(-1, "target position %d is already filled", pos)
		}
		return idx, nil
	}
	return 0, codecerrors.NewAlignment(-1, "target position %d beyond the last hole", pos)
}

// Move walks the head to hole idx, emitting one jump per step.
func (t *Tracker) Move(idx int) {
	role, step := ops.RoleJumpFwd, 1
	if idx < t.head {
		role, step = ops.RoleJumpBwd, -1
	}
	for t.head != idx {
		t.emit(role)
		t.jumps++
		t.head += step
	}
}

// Split makes pos the first slot of the current hole by inserting the
// boundary [start, pos-1] before it. The head stays on the hole containing
// pos, which now has the next index. Nothing happens if the hole already
// starts at pos.
func (t *Tracker) Split(pos int) {
	cur := t.holes[t.head]
	if cur.Start == pos {
		return
	}
	t.holes = append(t.holes, Hole{})
	copy(t.holes[t.head+1:], t.holes[t.head:])
	t.holes[t.head] = Hole{Start: cur.Start, End: pos - 1}
	t.emit(ops.RoleGap)
	t.head++
}

// Fill marks pos, the first slot of the current hole, as occupied.
func (t *Tracker) Fill(pos int) {
	t.holes[t.head].Start = pos + 1
}

// Place prepares the tracker for writing pos: locate its hole, move there and
// split if pos is not the hole's first slot. The caller emits the terminal and
// then calls Fill.
func (t *Tracker) Place(pos int) error {
	idx, err := t.Locate(pos)
	if err != nil {
		return err
	}
	t.Move(idx)
	t.Split(pos)
	return nil
}

// Check validates the tracker invariants: a valid head and ordered,
// non-overlapping holes.
func (t *Tracker) Check() error {
	if t.head < 0 || t.head >= len(t.holes) {
		return fmt.Errorf("holes: head %d outside %d holes", t.head, len(t.holes))
	}
	last := -1
	for i, h := range t.holes {
		if h.Exhausted() {
			continue
		}
		if h.Start <= last {
			return fmt.Errorf("holes: hole %d %s overlaps or precedes slot %d", i, h, last)
		}
		last = h.End
	}
	return nil
}
