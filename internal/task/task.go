// Package task runs save and load work off the session loop. The
// model is deliberately small: spawn a function on its own goroutine,
// then poll for the outcome from the loop each tick. There is no
// cancellation; an abandoned task runs to completion and its result is
// garbage collected with it.
package task

import (
	"context"
	"fmt"
)

// Result carries the outcome of a finished task.
type Result[T any] struct {
	Value T
	Err   error
}

// Task is a single in-flight background computation. Poll and Wait
// must be called from the owning goroutine only; the session loop is
// the sole consumer.
type Task[T any] struct {
	done   chan Result[T]
	result Result[T]
	ready  bool
}

// Spawn starts fn on a new goroutine. A panic inside fn is turned into
// an error result instead of taking the process down.
func Spawn[T any](fn func() (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan Result[T], 1)}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				t.done <- Result[T]{Value: zero, Err: fmt.Errorf("task: panic: %v", r)}
			}
		}()
		v, err := fn()
		t.done <- Result[T]{Value: v, Err: err}
	}()
	return t
}

// Poll returns the result when the task has finished. Once it reports
// done it keeps returning the same result on every later call.
func (t *Task[T]) Poll() (Result[T], bool) {
	if t.ready {
		return t.result, true
	}
	select {
	case r := <-t.done:
		t.result = r
		t.ready = true
		return r, true
	default:
		return Result[T]{}, false
	}
}

// Wait blocks until the task finishes or ctx ends. ctx only abandons
// the wait; the task itself keeps running either way.
func (t *Task[T]) Wait(ctx context.Context) (Result[T], error) {
	if t.ready {
		return t.result, nil
	}
	select {
	case r := <-t.done:
		t.result = r
		t.ready = true
		return r, nil
	case <-ctx.Done():
		return Result[T]{}, ctx.Err()
	}
}
