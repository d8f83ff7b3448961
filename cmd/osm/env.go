package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	codecerrors "github.com/FocuswithJustin/osmcodec/core/errors"
	"github.com/FocuswithJustin/osmcodec/core/ops"
	"github.com/FocuswithJustin/osmcodec/internal/batch"
	"github.com/FocuswithJustin/osmcodec/internal/cache"
	"github.com/FocuswithJustin/osmcodec/internal/config"
	"github.com/FocuswithJustin/osmcodec/internal/corpus"
	"github.com/FocuswithJustin/osmcodec/internal/logging"
	"github.com/FocuswithJustin/osmcodec/internal/report"
)

// lineFunc turns the fields of one corpus line into one output line. A
// result returned together with an empty alignment error is still written.
type lineFunc func(ctx context.Context, fields []string) (string, error)

// env is the per-invocation state derived from the globals and the profile.
type env struct {
	globals *Globals
	cfg     *config.Config
	table   *ops.Table
	command string
	model   string
	workers int
	memo    *cache.LRU[string]
	store   *report.Store
}

// loadConfig reads the profile and applies the flag overrides.
func (g *Globals) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.LogFormat = g.LogFormat
	}
	if g.Workers >= 0 {
		cfg.Workers = g.Workers
	}
	if g.Symbolic {
		cfg.Symbolic = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (g *Globals) setup(command, model string) (*env, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	logging.InitLoggerTo(stderr, level, format)

	table, err := cfg.Table()
	if err != nil {
		return nil, err
	}
	e := &env{
		globals: g,
		cfg:     cfg,
		table:   table,
		command: command,
		model:   model,
		workers: batch.Workers(cfg.Workers),
	}
	if cfg.CacheSize > 0 {
		e.memo = cache.NewLRU[string](cache.Config{MaxSize: cfg.CacheSize})
	}
	if g.Report != "" {
		if e.store, err = report.Open(g.Report); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *env) close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			logging.Warn("closing report failed", "error", err)
		}
	}
}

// memoize runs fn through the sentence cache, keyed by the command, the
// model and the input fields.
func (e *env) memoize(fields []string, fn func() (string, error)) (string, error) {
	if e.memo == nil {
		return fn()
	}
	parts := append([]string{e.command, e.model}, fields...)
	return e.memo.Do(cache.Fingerprint(parts...), fn)
}

// run streams the zipped inputs through fn and writes one output line per
// input line. Failed lines are written empty so that the output stays line
// aligned with the input.
func (e *env) run(ctx context.Context, inputs []string, output string, fn lineFunc) error {
	var rec *report.Run
	runID := uuid.New().String()
	if e.store != nil {
		var err error
		if rec, err = e.store.StartRun(ctx, e.command, e.model, inputs); err != nil {
			return err
		}
		runID = rec.ID
	}
	ctx = logging.WithRunID(ctx, runID)

	z, err := corpus.OpenZipped(inputs...)
	if err != nil {
		return err
	}
	defer z.Close()
	w, err := corpus.Create(output)
	if err != nil {
		return err
	}

	next := func() ([]string, bool, error) {
		if z.Next() {
			return z.Fields(), true, nil
		}
		return nil, false, z.Err()
	}

	logging.RunStarted(ctx, e.command, e.workers, "model", e.model, "inputs", inputs, "output", output)
	var failures, warnings int
	stats, runErr := batch.Run(ctx, e.workers, next, batch.ProcessFunc[[]string, string](fn),
		func(line int, out string, lineErr error) error {
			if lineErr != nil {
				logging.LineFailure(ctx, e.command, line, lineErr)
				if errors.Is(lineErr, codecerrors.ErrEmptyAlignment) {
					warnings++
				} else {
					failures++
					out = ""
				}
				if rec != nil {
					if err := rec.RecordFailure(ctx, line, lineErr); err != nil {
						return err
					}
				}
			}
			return w.WriteLine(out)
		})
	if err := w.Close(); err != nil && runErr == nil {
		runErr = err
	}

	logging.RunFinished(ctx, e.command, stats.Lines, failures, stats.Duration, "warnings", warnings)
	if rec != nil {
		if err := rec.Finish(ctx, stats.Lines, failures, stats.Duration); err != nil && runErr == nil {
			runErr = err
		}
	}
	if !e.globals.Quiet {
		e.summary(stats, failures, warnings, w.Bytes())
	}
	if runErr != nil {
		return runErr
	}
	if e.globals.Strict && failures > 0 {
		return fmt.Errorf("%s: %d of %d lines failed", e.command, failures, stats.Lines)
	}
	return nil
}

func (e *env) summary(stats batch.Stats, failures, warnings int, written int64) {
	fmt.Fprintf(stderr, "%s: %s lines, %s failed, %s warnings, %s written in %s",
		e.command,
		humanize.Comma(int64(stats.Lines)),
		humanize.Comma(int64(failures)),
		humanize.Comma(int64(warnings)),
		humanize.Bytes(uint64(written)),
		stats.Duration.Round(time.Millisecond))
	if e.memo != nil {
		if s := e.memo.Stats(); s.Hits+s.Misses > 0 {
			fmt.Fprintf(stderr, ", cache hit rate %.1f%%", 100*s.HitRate())
		}
	}
	fmt.Fprintln(stderr)
}
