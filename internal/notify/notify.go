// Package notify reports transcription progress to whoever is waiting for it.
package notify

import (
	"context"
	"errors"
)

// Sink receives progress for one request. Percent values are non-decreasing
// and the last one is 100 on success. Errors are reported, never fatal to the
// request.
type Sink interface {
	Update(ctx context.Context, percent int) error
	Complete(ctx context.Context) error
	Fail(ctx context.Context, err error) error
}

// Nop drops every report.
type Nop struct{}

func (Nop) Update(context.Context, int) error { return nil }
func (Nop) Complete(context.Context) error    { return nil }
func (Nop) Fail(context.Context, error) error { return nil }

// Multi fans out to several sinks, joining their errors.
type Multi []Sink

func (m Multi) Update(ctx context.Context, percent int) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Update(ctx, percent))
	}
	return errors.Join(errs...)
}

func (m Multi) Complete(ctx context.Context) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Complete(ctx))
	}
	return errors.Join(errs...)
}

func (m Multi) Fail(ctx context.Context, err error) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Fail(ctx, err))
	}
	return errors.Join(errs...)
}
