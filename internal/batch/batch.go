// Package batch runs a per-sentence function over a corpus in parallel and
// hands the results back strictly in input order.
//
// Workers are the only concurrency in the tool. Inputs are fed through a
// bounded channel (twice the worker count) so a slow consumer holds back the
// reader. Out-of-order results wait in an ordered gate and are flushed as soon
// as the next expected line is ready. A failing line never stops the batch;
// an emit error or a cancelled context does.
package batch

import (
	"context"
	"runtime"
	"sync"
	"time"

	codecerrors "github.com/FocuswithJustin/osmcodec/core/errors"
)

// NextFunc returns the next input. ok is false once the input is exhausted.
type NextFunc[In any] func() (in In, ok bool, err error)

// ProcessFunc handles one input. It must be safe for concurrent use.
type ProcessFunc[In, Out any] func(ctx context.Context, in In) (Out, error)

// EmitFunc receives results in line order. err, if non-nil, is a
// *errors.LineError carrying the 1-based line number. Returning an error
// aborts the batch.
type EmitFunc[Out any] func(line int, out Out, err error) error

// Stats summarizes a batch run.
type Stats struct {
	Lines    int
	Failures int
	Duration time.Duration
}

// Workers resolves a configured worker count; zero or less means one per CPU.
func Workers(n int) int {
	if n < 1 {
		return runtime.NumCPU()
	}
	return n
}

// Run processes every input from next with the given number of workers.
func Run[In, Out any](ctx context.Context, workers int, next NextFunc[In], process ProcessFunc[In, Out], emit EmitFunc[Out]) (Stats, error) {
	start := time.Now()
	workers = Workers(workers)
	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type job struct {
		line int
		in   In
	}
	type result struct {
		line int
		out  Out
		err  error
	}
	inCh := make(chan job, workers*2)
	outCh := make(chan result, workers*2)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := range inCh {
				if ctx.Err() != nil {
					continue
				}
				out, err := process(ctx, j.in)
				outCh <- result{line: j.line, out: out, err: codecerrors.AtLine(j.line, err)}
			}
		}()
	}

	var srcErr error
	go func() {
		defer close(inCh)
		line := 0
		for {
			in, ok, err := next()
			if err != nil {
				srcErr = err
				return
			}
			if !ok {
				return
			}
			line++
			select {
			case <-ctx.Done():
				return
			case inCh <- job{line: line, in: in}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	var stats Stats
	var firstErr error
	expect := 1
	pending := make(map[int]result)
	for r := range outCh {
		if firstErr != nil {
			continue
		}
		pending[r.line] = r
		for {
			p, ok := pending[expect]
			if !ok {
				break
			}
			delete(pending, expect)
			stats.Lines++
			if p.err != nil {
				stats.Failures++
			}
			if err := emit(p.line, p.out, p.err); err != nil {
				firstErr = err
				cancel()
				break
			}
			expect++
		}
	}
	stats.Duration = time.Since(start)

	switch {
	case firstErr != nil:
		return stats, firstErr
	case srcErr != nil:
		return stats, srcErr
	case parent.Err() != nil:
		return stats, parent.Err()
	}
	return stats, nil
}

// Slice adapts a slice to a NextFunc.
func Slice[In any](items []In) NextFunc[In] {
	i := 0
	return func() (In, bool, error) {
		var zero In
		if i >= len(items) {
			return zero, false, nil
		}
		i++
		return items[i-1], true, nil
	}
}
