package soundcloud

import (
	"context"
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// Fetched is the outcome of a fail-soft remote call. Value is the zero value whenever Err is
// set; callers decide how an error collapses into an empty result.
type Fetched[T any] struct {
	Value T
	Err   error
}

// fetch runs call, logs and records its outcome and never lets an error escape as anything
// other than Fetched.Err.
func fetch[T any](ctx context.Context, e *Extractor, op, subject string, call func(context.Context) (T, error)) Fetched[T] {
	value, err := call(ctx)
	if err != nil {
		e.recorder.ObserveFetch(op, OutcomeError)
		e.logger.Debug("Remote fetch failed",
			zap.String("operation", op),
			zap.String("subject", subject),
			zap.Error(err))
		var zero T
		return Fetched[T]{Value: zero, Err: fmt.Errorf("%s %q: %w", op, subject, err)}
	}

	if isEmpty(value) {
		e.recorder.ObserveFetch(op, OutcomeEmpty)
	} else {
		e.recorder.ObserveFetch(op, OutcomeOK)
	}
	return Fetched[T]{Value: value}
}

// isEmpty reports nil pointers and empty slices.
func isEmpty(value any) bool {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Invalid:
		return true
	case reflect.Pointer:
		return v.IsNil()
	case reflect.Slice:
		return v.Len() == 0
	default:
		return false
	}
}
