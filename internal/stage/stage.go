// Package stage runs the independent units of an extraction stage concurrently
// and joins them before the next stage starts. Units only read shared immutable
// data, results are collected by index so the output order never depends on
// the completion order.
package stage

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// NoIndex marks an error that is not tied to a single table entry.
const NoIndex = -1

// Error identifies the stage and table index at which an extraction failed.
type Error struct {
	Stage string
	Index int
	Err   error
}

func (e *Error) Error() string {
	if e.Index == NoIndex {
		return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("stage %s, index %d: %v", e.Stage, e.Index, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Task is a named unit of work of a stage.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Run executes all tasks concurrently and waits for all of them to finish.
// The first failing task cancels the context of the others and its error is
// returned, there is no partial stage result.
func Run(ctx context.Context, tasks ...Task) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		g.Go(func() error {
			if err := task.Run(ctx); err != nil {
				return wrap(task.Name, NoIndex, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Collect calls fn for every index in [0, n) concurrently, running at most
// limit calls at the same time if limit is positive. Results are stored at
// their index.
func Collect[T any](ctx context.Context, name string, n, limit int,
	fn func(ctx context.Context, index int) (T, error)) ([]T, error) {

	results := make([]T, n)
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := fn(gctx, i)
			if err != nil {
				return wrap(name, i, err)
			}
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// a cancelled parent can stop the loop before every index was scheduled
	if err := ctx.Err(); err != nil {
		return nil, wrap(name, NoIndex, err)
	}
	return results, nil
}

// Table decodes n entries sequentially in index order.
// It is used for flat tables where a goroutine per entry is not worth it.
func Table[T any](name string, n int, fn func(index int) (T, error)) ([]T, error) {
	results := make([]T, n)
	for i := range results {
		v, err := fn(i)
		if err != nil {
			return nil, wrap(name, i, err)
		}
		results[i] = v
	}
	return results, nil
}

func wrap(name string, index int, err error) error {
	var stageErr *Error
	if errors.As(err, &stageErr) {
		return err
	}
	return &Error{Stage: name, Index: index, Err: err}
}
