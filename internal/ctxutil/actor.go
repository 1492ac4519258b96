// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// Actor identifies the user performing an operation. Authentication happens
// upstream; the ledger only records and role-checks the actor.
type Actor struct {
	ID   string
	Role string
}

// IsZero reports whether no actor was supplied.
func (a Actor) IsZero() bool {
	return a.ID == "" && a.Role == ""
}

// ActorKey is the context key for the actor.
// Exported so it can be used consistently across packages.
type ActorKey struct{}

// WithActor returns a context with the actor embedded.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ActorKey{}, actor)
}

// ActorFromContext returns the actor from context, or the zero Actor if not set.
func ActorFromContext(ctx context.Context) Actor {
	if v, ok := ctx.Value(ActorKey{}).(Actor); ok {
		return v
	}
	return Actor{}
}
