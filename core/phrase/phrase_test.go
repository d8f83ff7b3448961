package phrase

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/FocuswithJustin/osmcodec/core/align"
)

func mustMatrix(t *testing.T, s string) *align.Matrix {
	t.Helper()
	m, err := align.ParseMatrix(s)
	if err != nil {
		t.Fatalf("ParseMatrix() error = %v", err)
	}
	return m
}

func TestSegment(t *testing.T) {
	tests := []struct {
		name   string
		matrix string
		opts   Options
		leaves []Rect
		stop   Stop
	}{
		{
			name:   "diagonal",
			matrix: "100\n010\n001",
			opts:   DefaultOptions(),
			leaves: []Rect{{0, 0, 1, 1}, {1, 1, 2, 2}, {2, 2, 3, 3}},
			stop:   StopExhausted,
		},
		{
			name:   "swap",
			matrix: "01\n10",
			opts:   DefaultOptions(),
			leaves: []Rect{{1, 0, 2, 1}, {0, 1, 1, 2}},
			stop:   StopExhausted,
		},
		{
			name:   "dense block",
			matrix: "11\n11",
			opts:   DefaultOptions(),
			leaves: []Rect{{0, 0, 2, 2}},
			stop:   StopTolerance,
		},
		{
			name:   "no split row",
			matrix: "100\n010\n001",
			opts:   Options{Tolerance: DefaultTolerance, NoSplit: []int{1}},
			leaves: []Rect{{0, 0, 2, 2}, {2, 2, 3, 3}},
			stop:   StopExhausted,
		},
		{
			name:   "unrestricted interleave",
			matrix: "101\n010",
			opts:   DefaultOptions(),
			leaves: []Rect{{0, 0, 1, 1}, {1, 1, 2, 2}, {0, 2, 1, 3}},
			stop:   StopExhausted,
		},
		{
			name:   "restricted interleave",
			matrix: "101\n010",
			opts:   Options{Tolerance: DefaultTolerance, Restricted: true},
			leaves: []Rect{{0, 0, 2, 3}},
			stop:   StopTolerance,
		},
		{
			name:   "restricted swap",
			matrix: "01\n10",
			opts:   Options{Tolerance: DefaultTolerance, Restricted: true},
			leaves: []Rect{{1, 0, 2, 1}, {0, 1, 1, 2}},
			stop:   StopExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := Segment(mustMatrix(t, tt.matrix), tt.opts)
			if got := tree.Leaves(); !reflect.DeepEqual(got, tt.leaves) {
				t.Errorf("Leaves() = %v, want %v\n%s", got, tt.leaves, tree)
			}
			if tree.Stop() != tt.stop {
				t.Errorf("Stop() = %s, want %s", tree.Stop(), tt.stop)
			}
		})
	}
}

func TestRestrictedTiePrefersUpperFirst(t *testing.T) {
	// every cut costs the same; the first upper-then-lower cut (position 0)
	// wins, leaving a single child on the lower rows
	tree := Segment(mustMatrix(t, "1\n1"), Options{Tolerance: 1, Restricted: true})
	want := []Rect{{1, 0, 2, 1}}
	if got := tree.Leaves(); !reflect.DeepEqual(got, want) {
		t.Errorf("Leaves() = %v, want %v", got, want)
	}
	if got := tree.Project().String(); got != "0\n1\n" {
		t.Errorf("Project() = %q", got)
	}
}

func TestCost(t *testing.T) {
	m := mustMatrix(t, "11\n11")
	tree := Segment(m, DefaultOptions())
	if got := tree.Cost(1, m, false); got != 0.5 {
		t.Errorf("Cost() = %v, want 0.5", got)
	}
	if got := tree.Cost(0, m, false); got != 0 {
		t.Errorf("Cost(outside) = %v, want 0", got)
	}
}

func TestSplitsRecorded(t *testing.T) {
	tree := Segment(mustMatrix(t, "100\n010\n001"), DefaultOptions())
	want := []Split{{Row: 1, Cost: 0}, {Row: 2, Cost: 0}}
	if got := tree.Splits(); !reflect.DeepEqual(got, want) {
		t.Errorf("Splits() = %v, want %v", got, want)
	}
}

func TestString(t *testing.T) {
	tree := Segment(mustMatrix(t, "01\n10"), DefaultOptions())
	want := " [0:2, 0:2]\n | [1:2, 0:1]\n | [0:1, 1:2]\n"
	if got := tree.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if tree.Len() != 3 || tree.Node(0).Leaf() {
		t.Errorf("arena has %d nodes, root leaf = %v", tree.Len(), tree.Node(0).Leaf())
	}
}

func TestLeavesPartitionColumns(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 200; iter++ {
		rows, cols := 1+rng.Intn(7), 1+rng.Intn(7)
		m := align.NewMatrix(rows, cols)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				m.Set(r, c, rng.Intn(3) == 0)
			}
		}
		m.FillTargetGaps()

		opts := Options{
			Tolerance:  []float64{0.05, 0.1, 0.5, 1}[rng.Intn(4)],
			Restricted: rng.Intn(2) == 0,
		}
		if rows > 2 && rng.Intn(2) == 0 {
			opts.NoSplit = []int{1 + rng.Intn(rows-1)}
		}
		tree := Segment(m, opts)

		covered := make([]int, cols)
		root := tree.Root()
		for _, l := range tree.Leaves() {
			if !root.Contains(l) {
				t.Fatalf("leaf %v outside root %v\n%s", l, root, tree)
			}
			if l.Row1 >= l.Row2 || l.Col1 >= l.Col2 {
				t.Fatalf("empty leaf %v\n%s", l, tree)
			}
			for c := l.Col1; c < l.Col2; c++ {
				covered[c]++
			}
		}
		for c, n := range covered {
			if n != 1 {
				t.Fatalf("column %d covered %d times\nmatrix:\n%s\ntree:\n%s", c, n, m, tree)
			}
		}
	}
}

func TestLinearize(t *testing.T) {
	tree := Segment(mustMatrix(t, "100\n010\n001"), Options{Tolerance: DefaultTolerance, NoSplit: []int{1}})
	got := Linearize(tree.Project())
	want := []Phrase{{Targets: []int{0, 1}, Fertility: 2}, {Targets: []int{2}, Fertility: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Linearize() = %v, want %v", got, want)
	}
	if f := Fertilities(got); !reflect.DeepEqual(f, []int{2, 1}) {
		t.Errorf("Fertilities() = %v", f)
	}
	if n := SourceLen(got); n != 3 {
		t.Errorf("SourceLen() = %d, want 3", n)
	}
}

func TestNoSplitRows(t *testing.T) {
	got := NoSplitRows([]string{"un@@", "break@@", "able", "x"}, map[string]bool{"un@@": true, "break@@": true})
	if want := []int{1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("NoSplitRows() = %v, want %v", got, want)
	}
}

func TestBuild(t *testing.T) {
	t.Run("filled gap", func(t *testing.T) {
		links, _ := align.ParseLinks("0-0 1-2")
		res, err := Build(links, 2, 3, false, DefaultOptions())
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if res.Tree.Stop() != StopTolerance {
			t.Errorf("Stop() = %s, want tolerance", res.Tree.Stop())
		}
		want := []Phrase{{Targets: []int{0, 1, 2}, Fertility: 2}}
		if !reflect.DeepEqual(res.Phrases, want) {
			t.Errorf("Phrases = %v, want %v", res.Phrases, want)
		}
		if res.Error != 4 {
			t.Errorf("Error = %d, want 4", res.Error)
		}
	})

	t.Run("empty alignment", func(t *testing.T) {
		res, err := Build(nil, 2, 2, false, DefaultOptions())
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		want := []Phrase{{Targets: []int{0, 1}, Fertility: 1}, {Targets: nil, Fertility: 1}}
		if !reflect.DeepEqual(res.Phrases, want) {
			t.Errorf("Phrases = %#v, want %#v", res.Phrases, want)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		links, _ := align.ParseLinks("0-5")
		if _, err := Build(links, 2, 2, false, DefaultOptions()); err == nil {
			t.Error("Build() accepted an out-of-range link")
		}
	})
}
