// Package auth resolves callers and decides which operations their role may invoke.
package auth

import (
	"context"

	"github.com/aimd54/rocase/internal/models"
)

// Actor is the caller of an operation as seen by the core.
type Actor struct {
	ID   uint
	Name string
	Role models.Role
	IP   string
}

// ActorFromUser snapshots the identity of u.
func ActorFromUser(u *models.User, ip string) Actor {
	return Actor{ID: u.ID, Name: u.DisplayName(), Role: u.Role, IP: ip}
}

type actorKey struct{}

// WithActor returns a context carrying a.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the actor stored in ctx, if any.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
