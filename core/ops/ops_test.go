package ops

import (
	"errors"
	"reflect"
	"testing"

	codecerrors "github.com/FocuswithJustin/osmcodec/core/errors"
)

func TestDefaultTableRoles(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		tok  string
		want Role
	}{
		{"4", RoleEOP},
		{"<EOP>", RoleEOP},
		{"<SRC_POP1>", RoleEOP},
		{"5", RoleGap},
		{"<SET_MARKER>", RoleGap},
		{"6", RoleJumpFwd},
		{"<JUMP_FWD>", RoleJumpFwd},
		{"7", RoleJumpBwd},
		{"8", RolePop2},
		{"<SRC_POP2>", RolePop2},
		{"9", RoleTerminal},
		{"1234", RoleTerminal},
		{"<unk>", RoleTerminal},
	}

	for _, tt := range tests {
		if got := table.Role(tt.tok); got != tt.want {
			t.Errorf("Role(%q) = %v, want %v", tt.tok, got, tt.want)
		}
	}
}

func TestSymbolicTable(t *testing.T) {
	table := SymbolicTable()
	if got := table.Token(RoleEOP); got != "<EOP>" {
		t.Errorf("Token(EOP) = %q, want <EOP>", got)
	}
	if got := table.Token(RoleGap); got != "<GAP>" {
		t.Errorf("Token(GAP) = %q, want <GAP>", got)
	}
	// integers are still read
	if got := table.Role("6"); got != RoleJumpFwd {
		t.Errorf("Role(6) = %v, want jump_fwd", got)
	}
}

func TestCanonicalMakesRepresentationsEqual(t *testing.T) {
	table := DefaultTable()
	numeric := []string{"10", "5", "12", "4", "7", "11", "4"}
	symbolic := []string{"10", "<GAP>", "12", "<EOP>", "<JUMP_BWD>", "11", "<SRC_POP>"}

	if got, want := table.Canonical(symbolic), table.Canonical(numeric); !reflect.DeepEqual(got, want) {
		t.Errorf("Canonical(symbolic) = %v, want %v", got, want)
	}
}

func TestNewTableRejectsDuplicates(t *testing.T) {
	_, err := NewTable(map[Role][]string{
		RoleEOP: {"1"},
		RoleGap: {"1"},
	})
	if !errors.Is(err, codecerrors.ErrInvalidInput) {
		t.Fatalf("NewTable() error = %v, want ErrInvalidInput", err)
	}

	_, err = NewTable(map[Role][]string{RoleEOP: {"<GAP>"}})
	if err == nil {
		t.Fatal("binding a symbolic name to another role should fail")
	}
}

func TestNewTableCustomBinding(t *testing.T) {
	table, err := NewTable(map[Role][]string{
		RoleEOP:     {"100", "101"},
		RoleGap:     {"102"},
		RoleJumpFwd: {"103"},
		RoleJumpBwd: {"104"},
	})
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	if got := table.Token(RoleEOP); got != "100" {
		t.Errorf("Token(EOP) = %q, want 100", got)
	}
	if got := table.Role("101"); got != RoleEOP {
		t.Errorf("Role(101) = %v, want eop", got)
	}
	if got := table.Token(RolePop2); got != "<SRC_POP2>" {
		t.Errorf("unbound role should fall back to its symbolic name, got %q", got)
	}
	if got := table.Role("4"); got != RoleTerminal {
		t.Errorf("Role(4) = %v, want terminal for a custom binding", got)
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Jump_Bwd ")
	if err != nil || r != RoleJumpBwd {
		t.Errorf("ParseRole() = %v, %v", r, err)
	}
	if _, err := ParseRole("terminal"); err == nil {
		t.Error("terminal is not a control role")
	}
}

func TestFlatten(t *testing.T) {
	table := DefaultTable()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no phrases", "10 5 11 4 7 12 4", "10 5 11 4 7 12 4"},
		{"one pop2", "8 10 11 4 12 4", "10 11 4 4 12 4"},
		{"dangling pop2", "10 4 8 8", "10 4 4 4"},
		{"symbolic", "<SRC_POP2> 10 <SET_MARKER> 11 <SRC_POP1>", "10 5 11 4 4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Join(table.Flatten(Fields(tt.in)))
			if got != tt.want {
				t.Errorf("Flatten(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFertilityLabels(t *testing.T) {
	table := DefaultTable()
	got := table.FertilityLabels(Fields("10 5 11 4 7 12 4"), DefaultLabelOptions())
	// first word: 10, GAP, 11 -> 3 ops; second: jump excluded, 12 -> 1; EOS adds one
	want := []string{"7", "5", "5"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FertilityLabels() = %v, want %v", got, want)
	}

	opts := DefaultLabelOptions()
	opts.VocabSize = 6
	got = table.FertilityLabels(Fields("10 5 11 4"), opts)
	want = []string{"3", "5"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FertilityLabels() capped = %v, want %v", got, want)
	}
}

func TestPopToSource(t *testing.T) {
	table := DefaultTable()
	got, err := table.PopToSource(Fields("10 4 11 4"), []string{"a", "b"})
	if err != nil {
		t.Fatalf("PopToSource() error = %v", err)
	}
	if want := "10 a 11 b"; Join(got) != want {
		t.Errorf("PopToSource() = %q, want %q", Join(got), want)
	}

	_, err = table.PopToSource(Fields("4 4"), []string{"a"})
	if !errors.Is(err, codecerrors.ErrMalformedSequence) {
		t.Errorf("PopToSource() error = %v, want ErrMalformedSequence", err)
	}
}

func TestInsertPops(t *testing.T) {
	table := DefaultTable()
	got, err := table.InsertPops([]string{"a", "b", "c"}, []int{2, 0, 1})
	if err != nil {
		t.Fatalf("InsertPops() error = %v", err)
	}
	if want := "a b 4 4 c 4"; Join(got) != want {
		t.Errorf("InsertPops() = %q, want %q", Join(got), want)
	}

	for _, ferts := range [][]int{{4}, {1}, {-1, 4}} {
		if _, err := table.InsertPops([]string{"a", "b", "c"}, ferts); !errors.Is(err, codecerrors.ErrFertilityMismatch) {
			t.Errorf("InsertPops(%v) error = %v, want ErrFertilityMismatch", ferts, err)
		}
	}
}

func TestParseInts(t *testing.T) {
	got, err := ParseInts(" 1 0  3 ")
	if err != nil {
		t.Fatalf("ParseInts() error = %v", err)
	}
	if !reflect.DeepEqual(got, []int{1, 0, 3}) {
		t.Errorf("ParseInts() = %v", got)
	}
	if FormatInts(got) != "1 0 3" {
		t.Errorf("FormatInts() = %q", FormatInts(got))
	}
	if _, err := ParseInts("1 x"); err == nil {
		t.Error("ParseInts() should reject non-integers")
	}
}
