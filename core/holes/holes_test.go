package holes

import (
	"errors"
	"reflect"
	"testing"

	codecerrors "github.com/FocuswithJustin/osmcodec/core/errors"
	"github.com/FocuswithJustin/osmcodec/core/ops"
)

func TestTrackerPlaceAndFill(t *testing.T) {
	var emitted []ops.Role
	tr := NewTracker(func(r ops.Role) { emitted = append(emitted, r) })

	steps := []struct {
		pos      int
		wantHead int
		wantOps  []ops.Role
	}{
		{pos: 0, wantHead: 0, wantOps: nil},
		{pos: 2, wantHead: 1, wantOps: []ops.Role{ops.RoleGap}},
		{pos: 1, wantHead: 0, wantOps: []ops.Role{ops.RoleJumpBwd}},
	}

	for _, st := range steps {
		emitted = nil
		if err := tr.Place(st.pos); err != nil {
			t.Fatalf("Place(%d) error = %v", st.pos, err)
		}
		tr.Fill(st.pos)
		if tr.Head() != st.wantHead {
			t.Errorf("after %d: head = %d, want %d", st.pos, tr.Head(), st.wantHead)
		}
		if !reflect.DeepEqual(emitted, st.wantOps) {
			t.Errorf("after %d: emitted %v, want %v", st.pos, emitted, st.wantOps)
		}
		if err := tr.Check(); err != nil {
			t.Errorf("after %d: Check() = %v", st.pos, err)
		}
	}

	want := []Hole{{Start: 2, End: 1}, {Start: 3, End: Sentinel}}
	if got := tr.Holes(); !reflect.DeepEqual(got, want) {
		t.Errorf("Holes() = %v, want %v", got, want)
	}
	if got := tr.Open(); got != 1 {
		t.Errorf("Open() = %d, want 1", got)
	}
	if got := tr.Jumps(); got != 1 {
		t.Errorf("Jumps() = %d, want 1", got)
	}
}

func TestTrackerMoveEmitsDistance(t *testing.T) {
	var emitted []ops.Role
	tr := NewTracker(func(r ops.Role) { emitted = append(emitted, r) })
	// leaves holes [0,0] [2,2] [4,4] [6,..] with the head on the last one
	for _, pos := range []int{1, 3, 5} {
		if err := tr.Place(pos); err != nil {
			t.Fatalf("Place(%d) error = %v", pos, err)
		}
		tr.Fill(pos)
	}
	emitted = nil
	tr.Move(0)
	want := []ops.Role{ops.RoleJumpBwd, ops.RoleJumpBwd, ops.RoleJumpBwd}
	if !reflect.DeepEqual(emitted, want) {
		t.Errorf("Move(0) emitted %v, want %v", emitted, want)
	}
	emitted = nil
	tr.Move(2)
	want = []ops.Role{ops.RoleJumpFwd, ops.RoleJumpFwd}
	if !reflect.DeepEqual(emitted, want) {
		t.Errorf("Move(2) emitted %v, want %v", emitted, want)
	}
}

func TestTrackerLocateFilled(t *testing.T) {
	tr := NewTracker(nil)
	if err := tr.Place(0); err != nil {
		t.Fatalf("Place(0) error = %v", err)
	}
	tr.Fill(0)
	if _, err := tr.Locate(0); !errors.Is(err, codecerrors.ErrMalformedAlignment) {
		t.Errorf("Locate(filled) error = %v, want ErrMalformedAlignment", err)
	}
	if _, err := tr.Locate(Sentinel + 1); err == nil {
		t.Error("Locate() beyond the sentinel should fail")
	}
}

func TestCanvas(t *testing.T) {
	c := NewCanvas()
	c.Write("a", 0)
	c.Gap()
	c.Write("c", 0)
	if err := c.Jump(-1, 3, "7"); err != nil {
		t.Fatalf("Jump() error = %v", err)
	}
	c.Write("b", 1)

	if got, want := c.String(), "a(0) b(1) X c(0) X (head: 2)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	var toks []string
	for _, cell := range c.Terminals() {
		toks = append(toks, cell.Token)
	}
	if !reflect.DeepEqual(toks, []string{"a", "b", "c"}) {
		t.Errorf("Terminals() = %v", toks)
	}
}

func TestCanvasJumpOutOfRange(t *testing.T) {
	c := NewCanvas()
	c.Write("a", 0)

	err := c.Jump(1, 1, "6")
	if !errors.Is(err, codecerrors.ErrJumpOutOfRange) {
		t.Fatalf("Jump() error = %v, want ErrJumpOutOfRange", err)
	}
	if c.Head() != 1 {
		t.Errorf("head moved to %d after a failed jump", c.Head())
	}
	if err := c.Jump(-1, 2, "7"); !errors.Is(err, codecerrors.ErrJumpOutOfRange) {
		t.Errorf("Jump(-1) error = %v, want ErrJumpOutOfRange", err)
	}
}
