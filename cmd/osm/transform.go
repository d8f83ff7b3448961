package main

import (
	"context"

	"github.com/FocuswithJustin/osmcodec/core/ops"
	"github.com/FocuswithJustin/osmcodec/core/osm"
)

// FlattenCmd rewrites phrase-based sequences with plain EOP operations.
type FlattenCmd struct {
	Ops string `arg:"" help:"Phrase-based operation sequences"`
	Out string `short:"o" default:"-" help:"Output file"`
}

func (c *FlattenCmd) Run(g *Globals, ctx context.Context) error {
	e, err := g.setup("flatten", "")
	if err != nil {
		return err
	}
	defer e.close()
	return e.run(ctx, []string{c.Ops}, c.Out, func(_ context.Context, fields []string) (string, error) {
		return ops.Join(e.table.Flatten(ops.Fields(fields[0]))), nil
	})
}

// FertCmd writes one fertility label per EOP and a final end-of-sentence label.
type FertCmd struct {
	Ops string `arg:"" help:"Operation sequences"`
	Out string `short:"o" default:"-" help:"Output file"`
}

func (c *FertCmd) Run(g *Globals, ctx context.Context) error {
	e, err := g.setup("fert", "")
	if err != nil {
		return err
	}
	defer e.close()
	opts := e.cfg.LabelOptions()
	return e.run(ctx, []string{c.Ops}, c.Out, func(_ context.Context, fields []string) (string, error) {
		return ops.Join(e.table.FertilityLabels(ops.Fields(fields[0]), opts)), nil
	})
}

// Pop2srcCmd replaces each EOP with the source word it pops.
type Pop2srcCmd struct {
	Ops string `arg:"" help:"Operation sequences"`
	Src string `required:"" help:"Source sentences"`
	Out string `short:"o" default:"-" help:"Output file"`
}

func (c *Pop2srcCmd) Run(g *Globals, ctx context.Context) error {
	e, err := g.setup("pop2src", "")
	if err != nil {
		return err
	}
	defer e.close()
	return e.run(ctx, []string{c.Ops, c.Src}, c.Out, func(_ context.Context, fields []string) (string, error) {
		out, err := e.table.PopToSource(ops.Fields(fields[0]), ops.Fields(fields[1]))
		if err != nil {
			return "", err
		}
		return ops.Join(out), nil
	})
}

// PopsCmd inserts an EOP after each source word's share of a word line.
type PopsCmd struct {
	Words string `arg:"" help:"Word sequences"`
	Fert  string `required:"" help:"Fertilities, one integer per source word"`
	Out   string `short:"o" default:"-" help:"Output file"`
}

func (c *PopsCmd) Run(g *Globals, ctx context.Context) error {
	e, err := g.setup("pops", "")
	if err != nil {
		return err
	}
	defer e.close()
	return e.run(ctx, []string{c.Words, c.Fert}, c.Out, func(_ context.Context, fields []string) (string, error) {
		fert, err := ops.ParseInts(fields[1])
		if err != nil {
			return "", err
		}
		out, err := e.table.InsertPops(ops.Fields(fields[0]), fert)
		if err != nil {
			return "", err
		}
		return ops.Join(out), nil
	})
}

// ReorderCmd applies non-lexical sequences to source sentences.
type ReorderCmd struct {
	Ops  string `arg:"" help:"Non-lexical operation sequences"`
	Src  string `required:"" help:"Source sentences"`
	Perm bool   `help:"Write the permutation instead of the reordered words"`
	Out  string `short:"o" default:"-" help:"Output file"`
}

func (c *ReorderCmd) Run(g *Globals, ctx context.Context) error {
	e, err := g.setup("reorder", "")
	if err != nil {
		return err
	}
	defer e.close()
	dec := osm.NewDecoder(e.table)
	return e.run(ctx, []string{c.Ops, c.Src}, c.Out, func(_ context.Context, fields []string) (string, error) {
		r, err := dec.Reorder(ops.Fields(fields[0]), ops.Fields(fields[1]))
		if err != nil {
			return "", err
		}
		if c.Perm {
			return ops.FormatInts(r.Permutation), nil
		}
		return ops.Join(r.Words), nil
	})
}
