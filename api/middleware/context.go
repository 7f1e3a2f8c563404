package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/rentflow-backend/pkg/logger"
)

type contextKey string

const ctxActorID contextKey = "actor_id"

// ActorHeader carries the operator identity resolved by the upstream gateway.
const ActorHeader = "X-Actor-Id"

const maxActorLen = 64

func ActorIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxActorID).(string); ok {
		return v
	}
	return ""
}

// WithActorID injects the operator identifier into the context.
func WithActorID(ctx context.Context, actorID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActorID, actorID)
}

// Actor copies the caller identity into the request context and log fields.
// Identity is informational here; it is not authenticated by this service.
func Actor(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := strings.TrimSpace(r.Header.Get(ActorHeader))
			if len(actor) > maxActorLen {
				actor = actor[:maxActorLen]
			}
			if actor == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithActorID(r.Context(), actor)
			if logg != nil {
				ctx = logg.WithField(ctx, "actor_id", actor)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
