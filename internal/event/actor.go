package event

import "context"

type actorKey struct{}

// WithActor records who is performing the request so published events carry it.
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

func ActorFrom(ctx context.Context) string {
	actorID, _ := ctx.Value(actorKey{}).(string)
	return actorID
}
