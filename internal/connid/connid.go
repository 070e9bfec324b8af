// Package connid assigns each accepted connection a unique identifier used
// for access-log correlation (spec.md §4.13's entry carries no such field by
// default; SPEC_FULL.md's domain stack adds one), in the same spirit as the
// teacher's use of
// github.com/google/uuid for object UIDs.
package connid

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

// WithID stamps ctx with a freshly generated connection identifier.
func WithID(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, uuid.NewString())
}

// FromContext returns the identifier stamped by WithID, if any.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok
}
