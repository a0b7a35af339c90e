// Package async has the timeout wrapper used around remote calls and the
// concurrent fan-out used by aggregate reads.
package async

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrTimeout = errors.New("operation timed out")

// Call runs fn with a context bounded by d. It returns ErrTimeout once d
// elapses even if fn never looks at its context; fn keeps running in the
// background until it notices the cancellation.
func Call[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{v, err}
	}()

	select {
	case res := <-done:
		return res.v, res.err
	case <-ctx.Done():
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, ErrTimeout
		}
		return zero, ctx.Err()
	}
}

// Do is Call for functions with no result.
func Do(ctx context.Context, d time.Duration, fn func(context.Context) error) error {
	_, err := Call(ctx, d, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

type Policy int

const (
	// FailFast cancels the remaining tasks and fails on the first error.
	FailFast Policy = iota
	// BestEffort applies a failed task's Fallback and carries on. Tasks
	// without a Fallback are still required.
	BestEffort
)

func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "fail_fast":
		return FailFast, nil
	case "best_effort":
		return BestEffort, nil
	}
	return FailFast, fmt.Errorf("unknown fan-out policy %q", s)
}

func (p Policy) String() string {
	if p == BestEffort {
		return "best_effort"
	}
	return "fail_fast"
}

type Task struct {
	Name     string
	Run      func(ctx context.Context) error
	Fallback func()
}

// FanOut runs tasks concurrently and waits for all of them.
func FanOut(ctx context.Context, policy Policy, log *zap.Logger, tasks ...Task) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range tasks {
		g.Go(func() error {
			err := t.Run(gctx)
			if err == nil {
				return nil
			}
			if policy == BestEffort && t.Fallback != nil {
				log.Warn("fan-out task failed, using default", zap.String("task", t.Name), zap.Error(err))
				t.Fallback()
				return nil
			}
			return fmt.Errorf("%s: %w", t.Name, err)
		})
	}
	return g.Wait()
}
