package steward

import "context"

type contextKey int

const ctxKeyActor contextKey = iota

// WithActor returns a context carrying the authenticated actor. Use this in
// standalone mode; the HTTP layer resolves the actor from its own session.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ctxKeyActor, actor)
}

// ActorFromContext extracts the acting identity, if one was attached.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKeyActor).(Actor)
	return a, ok
}
