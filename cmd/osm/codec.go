package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/FocuswithJustin/osmcodec/core/align"
	codecerrors "github.com/FocuswithJustin/osmcodec/core/errors"
	"github.com/FocuswithJustin/osmcodec/core/ops"
	"github.com/FocuswithJustin/osmcodec/core/osm"
	"github.com/FocuswithJustin/osmcodec/core/osm2"
	"github.com/FocuswithJustin/osmcodec/core/pbosm"
	"github.com/FocuswithJustin/osmcodec/core/phrase"
)

// Model names accepted by --model.
const (
	modelOSM   = "osm"
	modelOSM2  = "osm2"
	modelPBOSM = "pbosm"
)

// PairInputs are the three line-aligned files of an aligned corpus.
type PairInputs struct {
	Src   string `required:"" help:"Source sentences"`
	Trg   string `required:"" help:"Target sentences"`
	Align string `required:"" help:"Alignments, flat (i j i j) or Pharaoh (i-j)"`
	Out   string `short:"o" default:"-" help:"Output file"`
}

func (p PairInputs) files() []string {
	return []string{p.Src, p.Trg, p.Align}
}

// parsePair splits the fields of one aligned line and checks the links
// against the sentence lengths.
func parsePair(fields []string) (src, trg []string, links align.Links, err error) {
	src, trg = ops.Fields(fields[0]), ops.Fields(fields[1])
	links, err = align.ParseLinks(fields[2])
	if err != nil {
		return nil, nil, nil, err
	}
	if err := links.Validate(len(src), len(trg)); err != nil {
		return nil, nil, nil, err
	}
	return src, trg, links, nil
}

// NormalizeCmd writes one link per target word.
type NormalizeCmd struct {
	Align  string `arg:"" help:"Alignments"`
	Trg    string `required:"" help:"Target sentences"`
	Src    string `help:"Source sentences, required for --format=fert"`
	Format string `default:"pharaoh" enum:"pharaoh,flat,perm,fert" help:"Output format (pharaoh, flat, perm, fert)"`
	Out    string `short:"o" default:"-" help:"Output file"`
}

func (c *NormalizeCmd) Run(g *Globals, ctx context.Context) error {
	if c.Format == "fert" && c.Src == "" {
		return codecerrors.NewValidation("src", "--format=fert needs --src")
	}
	e, err := g.setup("normalize", "")
	if err != nil {
		return err
	}
	defer e.close()

	inputs := []string{c.Align, c.Trg}
	if c.Src != "" {
		inputs = append(inputs, c.Src)
	}
	return e.run(ctx, inputs, c.Out, func(_ context.Context, fields []string) (string, error) {
		links, err := align.ParseLinks(fields[0])
		if err != nil {
			return "", err
		}
		norm, warn := align.Normalize(links, len(ops.Fields(fields[1])))
		if norm == nil {
			return "", warn
		}
		var out string
		switch c.Format {
		case "flat":
			out = norm.Links().Flat()
		case "perm":
			out = ops.FormatInts(norm)
		case "fert":
			fert, err := norm.Fertility(len(ops.Fields(fields[2])))
			if err != nil {
				return "", err
			}
			out = ops.FormatInts(fert)
		default:
			out = norm.Links().Pharaoh()
		}
		return out, warn
	})
}

// EncodeCmd encodes aligned sentence pairs.
type EncodeCmd struct {
	PairInputs `embed:""`
	Model      string `default:"osm" enum:"osm,osm2,pbosm" help:"Codec (osm, osm2, pbosm)"`
	Policy     string `help:"EOP policy of the osm2 codec (close, open, no); defaults to the profile"`
}

func (c *EncodeCmd) Run(g *Globals, ctx context.Context) error {
	e, err := g.setup("encode", c.Model)
	if err != nil {
		return err
	}
	defer e.close()

	encode, err := c.encoder(e)
	if err != nil {
		return err
	}
	return e.run(ctx, c.files(), c.Out, func(_ context.Context, fields []string) (string, error) {
		return e.memoize(fields, func() (string, error) {
			src, trg, links, err := parsePair(fields)
			if err != nil {
				return "", err
			}
			seq, warn := encode(src, trg, links)
			if seq == nil && warn != nil {
				return "", warn
			}
			return ops.Join(seq), warn
		})
	})
}

type encodeFunc func(src, trg []string, links align.Links) ([]string, error)

func (c *EncodeCmd) encoder(e *env) (encodeFunc, error) {
	switch c.Model {
	case modelOSM:
		enc := osm.NewEncoder(e.table)
		return func(src, trg []string, links align.Links) ([]string, error) {
			norm, warn := align.Normalize(links, len(trg))
			if norm == nil {
				return nil, warn
			}
			seq, err := enc.Encode(len(src), trg, norm)
			if err != nil {
				return nil, err
			}
			return seq, warn
		}, nil

	case modelOSM2:
		policy := e.cfg.EOPPolicy
		if c.Policy != "" {
			policy = c.Policy
		}
		p, err := osm2.ParsePolicy(policy)
		if err != nil {
			return nil, err
		}
		codec, err := osm2.New(e.table, p)
		if err != nil {
			return nil, err
		}
		return func(src, trg []string, links align.Links) ([]string, error) {
			norm, warn := align.Normalize(links, len(trg))
			if norm == nil {
				return nil, warn
			}
			seq, err := codec.Encode(len(src), trg, norm)
			if err != nil {
				return nil, err
			}
			return seq, warn
		}, nil

	case modelPBOSM:
		codec := pbosm.New(e.table)
		noSplit := e.cfg.NoSplitSet()
		return func(src, trg []string, links align.Links) ([]string, error) {
			opts := pbosm.Options{Segment: e.cfg.PhraseOptions(), FillSource: e.cfg.Phrase.FillSource}
			opts.Segment.NoSplit = phrase.NoSplitRows(src, noSplit)
			seq, _, err := codec.EncodeLinks(len(src), trg, links, opts)
			return seq, err
		}, nil
	}
	return nil, codecerrors.NewValidation("model", fmt.Sprintf("unknown model %q", c.Model))
}

// DecodeCmd decodes operation sequences.
type DecodeCmd struct {
	Ops    string `arg:"" help:"Operation sequences"`
	Model  string `default:"osm" enum:"osm,osm2,pbosm" help:"Codec (osm, osm2, pbosm)"`
	Format string `default:"plain" help:"Output format (plain, align, pharaoh, tagged, fert, perm, parse, incremental)"`
	Policy string `help:"EOP policy of the osm2 codec; defaults to the profile"`
	Src    string `help:"Source sentences; bounds source jumps and phrase spans"`
	Fert   string `help:"Declared fertilities, checked against the decoded counts"`
	Out    string `short:"o" default:"-" help:"Output file"`
}

// decoded is what every model's decode result offers.
type decoded interface {
	Render(osm.Format) (string, error)
}

func (c *DecodeCmd) Run(g *Globals, ctx context.Context) error {
	format, err := osm.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	e, err := g.setup("decode", c.Model)
	if err != nil {
		return err
	}
	defer e.close()

	decode, err := c.decoder(e, format)
	if err != nil {
		return err
	}

	inputs := []string{c.Ops}
	srcIdx, fertIdx := -1, -1
	if c.Src != "" {
		srcIdx = len(inputs)
		inputs = append(inputs, c.Src)
	}
	if c.Fert != "" {
		fertIdx = len(inputs)
		inputs = append(inputs, c.Fert)
	}
	return e.run(ctx, inputs, c.Out, func(_ context.Context, fields []string) (string, error) {
		srcLen := 0
		if srcIdx >= 0 {
			srcLen = len(ops.Fields(fields[srcIdx]))
		}
		var fert []int
		if fertIdx >= 0 {
			var err error
			if fert, err = ops.ParseInts(fields[fertIdx]); err != nil {
				return "", err
			}
		}
		res, err := decode(ops.Fields(fields[0]), srcLen, fert)
		if err != nil {
			return "", err
		}
		out, err := res.Render(format)
		if err != nil {
			return "", err
		}
		if strings.Contains(out, "\n") {
			out += "\n"
		}
		return out, nil
	})
}

type decodeFunc func(seq []string, srcLen int, fert []int) (decoded, error)

func (c *DecodeCmd) decoder(e *env, format osm.Format) (decodeFunc, error) {
	switch c.Model {
	case modelOSM:
		dec := osm.NewDecoder(e.table)
		return func(seq []string, _ int, fert []int) (decoded, error) {
			return dec.Decode(seq, osm.DecodeOptions{Fertility: fert, Trace: format.NeedsTrace()})
		}, nil

	case modelOSM2:
		policy := e.cfg.EOPPolicy
		if c.Policy != "" {
			policy = c.Policy
		}
		p, err := osm2.ParsePolicy(policy)
		if err != nil {
			return nil, err
		}
		codec, err := osm2.New(e.table, p)
		if err != nil {
			return nil, err
		}
		return func(seq []string, srcLen int, fert []int) (decoded, error) {
			res, err := codec.Decode(seq, srcLen)
			if err != nil {
				return nil, err
			}
			if fert != nil {
				for i, want := range fert {
					if i >= len(res.Fertility) || res.Fertility[i] != want {
						got := 0
						if i < len(res.Fertility) {
							got = res.Fertility[i]
						}
						return nil, &codecerrors.FertilityError{Position: i, Got: got, Want: want}
					}
				}
			}
			return res, nil
		}, nil

	case modelPBOSM:
		codec := pbosm.New(e.table)
		return func(seq []string, srcLen int, fert []int) (decoded, error) {
			return codec.Decode(seq, pbosm.DecodeOptions{Fertility: fert, SrcLen: srcLen, Trace: format.NeedsTrace()})
		}, nil
	}
	return nil, codecerrors.NewValidation("model", fmt.Sprintf("unknown model %q", c.Model))
}

// SegmentCmd runs gap filling and phrase segmentation.
type SegmentCmd struct {
	PairInputs `embed:""`
	Format     string `default:"blocks" enum:"blocks,tree,fert,error" help:"Output (blocks, tree, fert, error)"`
}

func (c *SegmentCmd) Run(g *Globals, ctx context.Context) error {
	e, err := g.setup("segment", "")
	if err != nil {
		return err
	}
	defer e.close()

	noSplit := e.cfg.NoSplitSet()
	return e.run(ctx, c.files(), c.Out, func(_ context.Context, fields []string) (string, error) {
		src, trg, links, err := parsePair(fields)
		if err != nil {
			return "", err
		}
		opts := e.cfg.PhraseOptions()
		opts.NoSplit = phrase.NoSplitRows(src, noSplit)
		res, err := phrase.Build(links, len(src), len(trg), e.cfg.Phrase.FillSource, opts)
		if err != nil {
			return "", err
		}
		switch c.Format {
		case "tree":
			return res.Tree.String(), nil
		case "fert":
			return ops.FormatInts(phrase.Fertilities(res.Phrases)), nil
		case "error":
			return fmt.Sprint(res.Error), nil
		}
		return res.Blocks.Links().Pharaoh(), nil
	})
}
