package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/teamsuite/workflow-core/internal/adapters/http/dto"
)

// headerActorID carries the authenticated user's ID, set by the API gateway
// after token verification. The workflow core trusts it and applies
// project-role authorization on top.
const headerActorID = "X-User-ID"

// actorIDKey is the context key for storing the acting user's ID.
type actorIDKey struct{}

// WithActorID returns a new context with the given actor ID stored in it.
func WithActorID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, actorIDKey{}, id)
}

// ActorIDFromContext extracts the actor ID from the context.
// Returns 0 and false if no actor is stored.
func ActorIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(actorIDKey{}).(int64)
	return id, ok
}

// Actor returns middleware that extracts the acting user from the X-User-ID
// header. Requests without a valid positive integer ID are rejected with 401
// before reaching any handler.
func Actor() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(r.Header.Get(headerActorID), 10, 64)
			if err != nil || id <= 0 {
				dto.WriteUnauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActorID(r.Context(), id)))
		})
	}
}
