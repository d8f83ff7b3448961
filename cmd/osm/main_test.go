package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/FocuswithJustin/osmcodec/internal/corpus"
)

// Test helper functions

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	lines, err := corpus.ReadLines(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return lines
}

// runCLI executes args with stdout and stderr captured.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	oldOut, oldErr, oldCorpus := stdout, stderr, corpus.Stdout
	stdout, stderr, corpus.Stdout = &out, &errOut, &out
	defer func() { stdout, stderr, corpus.Stdout = oldOut, oldErr, oldCorpus }()

	err := execute(context.Background(), args)
	return out.String(), errOut.String(), err
}

type fixture struct {
	dir, src, trg, align string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	return fixture{
		dir:   dir,
		src:   createTestFile(t, dir, "src.txt", "s0 s1\na b\nu v\n"),
		trg:   createTestFile(t, dir, "trg.txt", "t0 t1 t2\nx y\np\n"),
		align: createTestFile(t, dir, "align.txt", "0-0 0-2 1-1\n0 1 1 0\n0-5\n"),
	}
}

func (f fixture) pairArgs(out string) []string {
	return []string{"--src", f.src, "--trg", f.trg, "--align", f.align, "-o", out}
}

func TestEncodeCmd_Run(t *testing.T) {
	f := newFixture(t)
	out := filepath.Join(f.dir, "ops.txt")

	_, summary, err := runCLI(t, append([]string{"--workers", "2", "encode"}, f.pairArgs(out)...)...)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	want := []string{"t0 5 t2 4 7 t1 4", "5 y 4 7 x 4", ""}
	if got := readLines(t, out); !reflect.DeepEqual(got, want) {
		t.Errorf("encoded = %q, want %q", got, want)
	}
	if !strings.Contains(summary, "encode: 3 lines, 1 failed, 0 warnings") {
		t.Errorf("summary = %q", summary)
	}
	if !strings.Contains(summary, "line_failure") {
		t.Errorf("line failure not logged: %q", summary)
	}
}

func TestEncodeSymbolic(t *testing.T) {
	f := newFixture(t)
	out := filepath.Join(f.dir, "ops.txt")
	if _, _, err := runCLI(t, append([]string{"--symbolic", "-q", "encode"}, f.pairArgs(out)...)...); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if got := readLines(t, out)[0]; got != "t0 <GAP> t2 <EOP> <JUMP_BWD> t1 <EOP>" {
		t.Errorf("symbolic encoding = %q", got)
	}
}

func TestStrict(t *testing.T) {
	f := newFixture(t)
	_, _, err := runCLI(t, append([]string{"--strict", "encode"}, f.pairArgs(filepath.Join(f.dir, "o.txt"))...)...)
	if err == nil || !strings.Contains(err.Error(), "1 of 3 lines failed") {
		t.Errorf("strict encode error = %v", err)
	}
}

func TestRoundTripAllModels(t *testing.T) {
	f := newFixture(t)
	trg := readLines(t, f.trg)

	for _, model := range []string{"osm", "osm2", "pbosm"} {
		t.Run(model, func(t *testing.T) {
			encoded := filepath.Join(f.dir, model+".ops.xz")
			decoded := filepath.Join(f.dir, model+".plain.gz")
			args := append([]string{"-q", "encode", "--model", model}, f.pairArgs(encoded)...)
			if _, _, err := runCLI(t, args...); err != nil {
				t.Fatalf("encode failed: %v", err)
			}
			if _, _, err := runCLI(t, "-q", "decode", encoded, "--model", model, "--src", f.src, "-o", decoded); err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			got := readLines(t, decoded)
			if len(got) != 3 {
				t.Fatalf("decoded %d lines, want 3", len(got))
			}
			for i := 0; i < 2; i++ {
				if got[i] != trg[i] {
					t.Errorf("line %d: decoded %q, want %q", i+1, got[i], trg[i])
				}
			}
		})
	}
}

func TestDecodeFormats(t *testing.T) {
	dir := t.TempDir()
	ops := createTestFile(t, dir, "ops.txt", "t0 5 t2 4 7 t1 4\n")

	tests := []struct {
		format string
		want   string
	}{
		{"plain", "t0 t1 t2"},
		{"align", "0-0 0-2 1-1"},
		{"tagged", "t0(0) t1(1) t2(0)"},
		{"fert", "2 1"},
		{"perm", "0 1 0"},
		{"parse", "t0(0) t1(1) X t2(0) X (head: 2)"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, _, err := runCLI(t, "-q", "decode", ops, "--format", tt.format)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if got := strings.TrimSuffix(out, "\n"); got != tt.want {
				t.Errorf("decode --format %s = %q, want %q", tt.format, got, tt.want)
			}
		})
	}

	if _, _, err := runCLI(t, "decode", ops, "--format", "bogus"); err == nil {
		t.Error("decode accepted an unknown format")
	}
}

func TestDecodeIncremental(t *testing.T) {
	dir := t.TempDir()
	ops := createTestFile(t, dir, "ops.txt", "t0 5 t2 4 7 t1 4\na 4\n")
	out, _, err := runCLI(t, "-q", "decode", ops, "--format", "incremental")
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	blocks := strings.Split(strings.TrimSuffix(out, "\n\n"), "\n\n")
	if len(blocks) != 2 {
		t.Fatalf("got %d sentence blocks, want 2: %q", len(blocks), out)
	}
	if first := strings.Split(blocks[0], "\n")[0]; first != "After t0: t0(0) X (head: 1)" {
		t.Errorf("first state = %q", first)
	}
}

func TestDecodeFertilityCheck(t *testing.T) {
	dir := t.TempDir()
	ops := createTestFile(t, dir, "ops.txt", "t0 5 t2 4 7 t1 4\nt0 5 t2 4 7 t1 4\n")
	fert := createTestFile(t, dir, "fert.txt", "2 1\n1 2\n")
	out := filepath.Join(dir, "out.txt")
	if _, _, err := runCLI(t, "-q", "decode", ops, "--fert", fert, "-o", out); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	want := []string{"t0 t1 t2", ""}
	if got := readLines(t, out); !reflect.DeepEqual(got, want) {
		t.Errorf("decoded = %q, want %q", got, want)
	}
}

func TestNormalizeCmd_Run(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		format string
		want   []string
	}{
		{"pharaoh", []string{"0-0 0-2 1-1", "0-1 1-0", ""}},
		{"perm", []string{"0 1 0", "1 0", ""}},
		{"flat", []string{"0 0 1 1 0 2", "1 0 0 1", ""}},
		{"fert", []string{"2 1", "1 1", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out := filepath.Join(f.dir, "norm-"+tt.format+".txt")
			if _, _, err := runCLI(t, "-q", "normalize", f.align, "--trg", f.trg, "--src", f.src, "--format", tt.format, "-o", out); err != nil {
				t.Fatalf("normalize failed: %v", err)
			}
			if got := readLines(t, out); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("normalize = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSegmentCmd_Run(t *testing.T) {
	f := newFixture(t)
	out := filepath.Join(f.dir, "blocks.txt")
	if _, _, err := runCLI(t, append([]string{"-q", "segment"}, f.pairArgs(out)...)...); err != nil {
		t.Fatalf("segment failed: %v", err)
	}
	got := readLines(t, out)
	if len(got) != 3 || got[1] != "0-1 1-0" || got[2] != "" {
		t.Errorf("segment = %q", got)
	}
}

func TestTransformCommands(t *testing.T) {
	dir := t.TempDir()
	basic := createTestFile(t, dir, "basic.txt", "t0 5 t2 4 7 t1 4\n")
	phrased := createTestFile(t, dir, "phrased.txt", "5 b 4 8 7 a 4\n")
	nolex := createTestFile(t, dir, "nolex.txt", "5 4 7 4\n")
	src := createTestFile(t, dir, "src.txt", "s0 s1\n")
	pair := createTestFile(t, dir, "pair.txt", "x y\n")
	words := createTestFile(t, dir, "words.txt", "t0 t2 t1\n")
	fert := createTestFile(t, dir, "fert.txt", "2 1\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"flatten", []string{"flatten", phrased}, "5 b 4 7 a 4 4"},
		{"fert", []string{"fert", basic}, "7 5 5"},
		{"pop2src", []string{"pop2src", basic, "--src", src}, "t0 5 t2 s0 7 t1 s1"},
		{"pops", []string{"pops", words, "--fert", fert}, "t0 t2 4 t1 4"},
		{"reorder", []string{"reorder", nolex, "--src", pair}, "y x"},
		{"reorder perm", []string{"reorder", nolex, "--src", pair, "--perm"}, "1 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCLI(t, append([]string{"-q"}, tt.args...)...)
			if err != nil {
				t.Fatalf("%s failed: %v", tt.name, err)
			}
			if got := strings.TrimSuffix(out, "\n"); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestReportAndRuns(t *testing.T) {
	f := newFixture(t)
	db := filepath.Join(f.dir, "runs.db")
	if _, _, err := runCLI(t, append([]string{"-q", "--report", db, "encode", "--model", "osm2"}, f.pairArgs(filepath.Join(f.dir, "o.txt"))...)...); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	list, _, err := runCLI(t, "--report", db, "runs", "list")
	if err != nil {
		t.Fatalf("runs list failed: %v", err)
	}
	fields := strings.Fields(list)
	if len(fields) < 3 || fields[1] != "encode" || fields[2] != "osm2" {
		t.Fatalf("runs list = %q", list)
	}

	show, _, err := runCLI(t, "--report", db, "runs", "show", fields[0])
	if err != nil {
		t.Fatalf("runs show failed: %v", err)
	}
	if !strings.Contains(show, "line 3: malformed_alignment") {
		t.Errorf("runs show = %q", show)
	}

	if _, _, err := runCLI(t, "--report", db, "runs", "show", "no-such-run"); err == nil {
		t.Error("runs show accepted an unknown run ID")
	}
	if _, _, err := runCLI(t, "runs", "list"); err == nil {
		t.Error("runs list without --report should fail")
	}
}

func TestProfileCmd_Run(t *testing.T) {
	dir := t.TempDir()
	profile := createTestFile(t, dir, "profile.yaml", "eop-policy: open\nworkers: 2\n")
	out, _, err := runCLI(t, "--config", profile, "--symbolic", "--workers", "6", "profile")
	if err != nil {
		t.Fatalf("profile failed: %v", err)
	}
	for _, want := range []string{"eop-policy: open", "symbolic: true", "workers: 6"} {
		if !strings.Contains(out, want) {
			t.Errorf("profile output missing %q:\n%s", want, out)
		}
	}

	bad := createTestFile(t, dir, "bad.yaml", "eop-policy: sometimes\n")
	if _, _, err := runCLI(t, "--config", bad, "profile"); err == nil {
		t.Error("profile accepted an invalid policy")
	}
}

func TestVersionCmd_Run(t *testing.T) {
	out, _, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "osm "+version) {
		t.Errorf("version = %q", out)
	}
}
