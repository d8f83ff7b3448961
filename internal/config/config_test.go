package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	codecerrors "github.com/FocuswithJustin/osmcodec/core/errors"
	"github.com/FocuswithJustin/osmcodec/core/ops"
	"github.com/FocuswithJustin/osmcodec/core/osm2"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	table, err := cfg.Table()
	if err != nil {
		t.Fatalf("Table() error = %v", err)
	}
	if got := table.Token(ops.RoleGap); got != "5" {
		t.Errorf("Token(gap) = %q, want 5", got)
	}
	if p, _ := cfg.Policy(); p != osm2.PolicyClose {
		t.Errorf("Policy() = %q, want close", p)
	}
	if opts := cfg.PhraseOptions(); opts.Tolerance != 0.1 || opts.Restricted {
		t.Errorf("PhraseOptions() = %+v", opts)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
tokens:
  eop: ["<EOP>", "4"]
  gap: ["9"]
symbolic: false
eop-policy: open
phrase:
  tolerance: 0.25
  restricted: true
  no-split-tokens: ["a@@", "b@@"]
labels:
  offset: 2
  vocab-size: 10
  unk: "1"
workers: 3
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	table, err := cfg.Table()
	if err != nil {
		t.Fatalf("Table() error = %v", err)
	}
	tests := []struct {
		tok  string
		want ops.Role
	}{
		{"<EOP>", ops.RoleEOP},
		{"4", ops.RoleEOP},
		{"9", ops.RoleGap},
		{"5", ops.RoleTerminal},
		{"6", ops.RoleJumpFwd},
	}
	for _, tt := range tests {
		if got := table.Role(tt.tok); got != tt.want {
			t.Errorf("Role(%q) = %s, want %s", tt.tok, got, tt.want)
		}
	}
	if got := table.Token(ops.RoleEOP); got != "<EOP>" {
		t.Errorf("Token(eop) = %q, want <EOP>", got)
	}
	if p, _ := cfg.Policy(); p != osm2.PolicyOpen {
		t.Errorf("Policy() = %q, want open", p)
	}
	if opts := cfg.PhraseOptions(); opts.Tolerance != 0.25 || !opts.Restricted {
		t.Errorf("PhraseOptions() = %+v", opts)
	}
	if set := cfg.NoSplitSet(); !set["a@@"] || !set["b@@"] || len(set) != 2 {
		t.Errorf("NoSplitSet() = %v", set)
	}
	if lo := cfg.LabelOptions(); lo.Offset != 2 || lo.VocabSize != 10 || lo.Unk != "1" {
		t.Errorf("LabelOptions() = %+v", lo)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"duplicate token", "tokens:\n  eop: [\"4\"]\n  gap: [\"4\"]\n"},
		{"unknown policy", "eop-policy: sometimes\n"},
		{"zero tolerance", "phrase:\n  tolerance: -1\n"},
		{"negative workers", "workers: -2\n"},
		{"label range", "labels:\n  offset: 30\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, codecerrors.ErrInvalidInput) {
				t.Errorf("Parse() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("tokens: [unclosed"))
	var perr *codecerrors.ParseError
	if !errors.As(err, &perr) {
		t.Errorf("Parse() error = %v, want ParseError", err)
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	if err != nil || cfg.EOPPolicy != "close" {
		t.Fatalf("Load(\"\") = %+v, %v", cfg, err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	if err := os.WriteFile(path, []byte("symbolic: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	table, _ := cfg.Table()
	if got := table.Token(ops.RoleJumpBwd); got != "<JUMP_BWD>" {
		t.Errorf("symbolic Token(jump_bwd) = %q", got)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Workers = 5
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(Marshal()) error = %v", err)
	}
	if back.Workers != 5 || back.Phrase.Tolerance != cfg.Phrase.Tolerance {
		t.Errorf("round trip lost values: %+v", back)
	}
}
