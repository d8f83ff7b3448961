// Package config loads codec profiles.
//
// A profile is a YAML file binding control tokens and setting codec options.
// Command line flags override profile values, which override Default.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	codecerrors "github.com/FocuswithJustin/osmcodec/core/errors"
	"github.com/FocuswithJustin/osmcodec/core/ops"
	"github.com/FocuswithJustin/osmcodec/core/osm2"
	"github.com/FocuswithJustin/osmcodec/core/phrase"
)

// Tokens lists the tokens bound to each control role. The first token of a
// list is emitted, all are accepted.
type Tokens struct {
	EOP     []string `yaml:"eop,omitempty"`
	Gap     []string `yaml:"gap,omitempty"`
	JumpFwd []string `yaml:"jump-fwd,omitempty"`
	JumpBwd []string `yaml:"jump-bwd,omitempty"`
	Pop2    []string `yaml:"src-pop2,omitempty"`
}

// Phrase configures segmentation for the phrase-based codec.
type Phrase struct {
	Tolerance     float64  `yaml:"tolerance,omitempty"`
	Restricted    bool     `yaml:"restricted,omitempty"`
	FillSource    bool     `yaml:"fill-source,omitempty"`
	NoSplitTokens []string `yaml:"no-split-tokens,omitempty"`
}

// Labels configures fertility label extraction.
type Labels struct {
	Offset    int    `yaml:"offset,omitempty"`
	VocabSize int    `yaml:"vocab-size,omitempty"`
	Unk       string `yaml:"unk,omitempty"`
}

// Config is a codec profile.
type Config struct {
	Tokens    Tokens `yaml:"tokens"`
	Symbolic  bool   `yaml:"symbolic,omitempty"`
	EOPPolicy string `yaml:"eop-policy,omitempty"`
	Phrase    Phrase `yaml:"phrase"`
	Labels    Labels `yaml:"labels"`
	Workers   int    `yaml:"workers,omitempty"`
	CacheSize int    `yaml:"cache-size,omitempty"`
	LogLevel  string `yaml:"log-level,omitempty"`
	LogFormat string `yaml:"log-format,omitempty"`
}

// Default returns the built-in profile.
func Default() *Config {
	labels := ops.DefaultLabelOptions()
	return &Config{
		Tokens: Tokens{
			EOP:     []string{ops.DefaultEOP},
			Gap:     []string{ops.DefaultGap},
			JumpFwd: []string{ops.DefaultJumpFwd},
			JumpBwd: []string{ops.DefaultJumpBwd},
			Pop2:    []string{ops.DefaultPop2},
		},
		EOPPolicy: string(osm2.PolicyClose),
		Phrase:    Phrase{Tolerance: phrase.DefaultTolerance},
		Labels: Labels{
			Offset:    labels.Offset,
			VocabSize: labels.VocabSize,
			Unk:       labels.Unk,
		},
		CacheSize: 4096,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Parse overlays a YAML profile onto Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &codecerrors.ParseError{Format: "profile", Message: err.Error(), Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads a profile file. An empty path yields Default.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, codecerrors.NewIO("read", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, codecerrors.Wrapf(err, "profile %s", path)
	}
	return cfg, nil
}

// Validate checks the profile for conflicting or out-of-range settings.
func (c *Config) Validate() error {
	if _, err := c.Table(); err != nil {
		return err
	}
	if _, err := osm2.ParsePolicy(c.EOPPolicy); err != nil {
		return err
	}
	if c.Phrase.Tolerance <= 0 {
		return codecerrors.NewValidation("phrase.tolerance", fmt.Sprintf("must be positive, got %g", c.Phrase.Tolerance))
	}
	if c.Workers < 0 {
		return codecerrors.NewValidation("workers", fmt.Sprintf("must not be negative, got %d", c.Workers))
	}
	if c.CacheSize < 0 {
		return codecerrors.NewValidation("cache-size", fmt.Sprintf("must not be negative, got %d", c.CacheSize))
	}
	if c.Labels.VocabSize <= c.Labels.Offset {
		return codecerrors.NewValidation("labels.vocab-size", "must exceed labels.offset")
	}
	return nil
}

// Table builds the control token table.
func (c *Config) Table() (*ops.Table, error) {
	t, err := ops.NewTable(map[ops.Role][]string{
		ops.RoleEOP:     c.Tokens.EOP,
		ops.RoleGap:     c.Tokens.Gap,
		ops.RoleJumpFwd: c.Tokens.JumpFwd,
		ops.RoleJumpBwd: c.Tokens.JumpBwd,
		ops.RolePop2:    c.Tokens.Pop2,
	})
	if err != nil {
		return nil, err
	}
	if c.Symbolic {
		return t.Symbolic(), nil
	}
	return t, nil
}

// Policy returns the source-jump EOP policy.
func (c *Config) Policy() (osm2.Policy, error) {
	return osm2.ParsePolicy(c.EOPPolicy)
}

// PhraseOptions returns the segmentation options.
func (c *Config) PhraseOptions() phrase.Options {
	return phrase.Options{
		Tolerance:  c.Phrase.Tolerance,
		Restricted: c.Phrase.Restricted,
	}
}

// NoSplitSet returns the no-split tokens as a set.
func (c *Config) NoSplitSet() map[string]bool {
	set := make(map[string]bool, len(c.Phrase.NoSplitTokens))
	for _, tok := range c.Phrase.NoSplitTokens {
		set[tok] = true
	}
	return set
}

// LabelOptions returns the fertility label options.
func (c *Config) LabelOptions() ops.LabelOptions {
	opts := ops.DefaultLabelOptions()
	opts.Offset = c.Labels.Offset
	opts.VocabSize = c.Labels.VocabSize
	opts.Unk = c.Labels.Unk
	return opts
}

// Marshal renders the profile as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
