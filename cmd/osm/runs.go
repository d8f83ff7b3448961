package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	codecerrors "github.com/FocuswithJustin/osmcodec/core/errors"
	"github.com/FocuswithJustin/osmcodec/internal/report"
)

func openReport(g *Globals) (*report.Store, error) {
	if g.Report == "" {
		return nil, codecerrors.NewValidation("report", "--report is required")
	}
	return report.Open(g.Report)
}

// RunsListCmd lists the runs recorded in --report.
type RunsListCmd struct{}

func (c *RunsListCmd) Run(g *Globals, ctx context.Context) error {
	store, err := openReport(g)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(ctx)
	if err != nil {
		return err
	}
	for _, r := range runs {
		model := r.Model
		if model == "" {
			model = "-"
		}
		fmt.Fprintf(stdout, "%s  %-9s %-5s %10s lines %6s failed  %s\n",
			r.ID, r.Command, model,
			humanize.Comma(int64(r.Lines)), humanize.Comma(int64(r.Failures)),
			humanize.Time(r.StartedAt))
	}
	return nil
}

// RunsShowCmd prints the failed lines of one run.
type RunsShowCmd struct {
	ID string `arg:"" help:"Run ID"`
}

func (c *RunsShowCmd) Run(g *Globals, ctx context.Context) error {
	store, err := openReport(g)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(ctx)
	if err != nil {
		return err
	}
	var run *report.Run
	for i := range runs {
		if runs[i].ID == c.ID {
			run = &runs[i]
			break
		}
	}
	if run == nil {
		return fmt.Errorf("run %s: %w", c.ID, codecerrors.ErrNotFound)
	}

	fmt.Fprintf(stdout, "run %s: %s %s\n", run.ID, run.Command, run.Model)
	fmt.Fprintf(stdout, "inputs: %s\n", strings.Join(run.Inputs, ", "))
	fmt.Fprintf(stdout, "lines: %s, failed: %s, took %s\n",
		humanize.Comma(int64(run.Lines)), humanize.Comma(int64(run.Failures)), run.Duration)

	kinds, err := store.FailureKinds(ctx, run.ID)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(stdout, "  %-20s %d\n", k, kinds[k])
	}

	failures, err := store.Failures(ctx, run.ID)
	if err != nil {
		return err
	}
	for _, f := range failures {
		fmt.Fprintf(stdout, "line %d: %s: %s\n", f.Line, f.Kind, f.Message)
	}
	return nil
}

// ProfileCmd prints the profile after flag overrides.
type ProfileCmd struct{}

func (c *ProfileCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = stdout.Write(data)
	return err
}
