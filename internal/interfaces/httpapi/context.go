package httpapi

import "context"

type contextKey string

const actorContextKey contextKey = "actor_id"

const (
	actorHeader            = "X-Actor-ID"
	internalJobTokenHeader = "X-Internal-Job-Token"
)

func withActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorContextKey, actorID)
}

// actorFromContext returns the caller-supplied actor id, or "" when the request carried none.
func actorFromContext(ctx context.Context) string {
	actorID, _ := ctx.Value(actorContextKey).(string)
	return actorID
}
