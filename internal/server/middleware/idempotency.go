package middleware

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/denly1/motoshop/pkg/logger"
)

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
)

// IdempotencyMiddleware rejects a second submission carrying the same
// Idempotency-Key header, so a retried checkout cannot place a duplicate
// order. With no Redis client or no header the request passes through.
func IdempotencyMiddleware(client *redis.Client) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(idempotencyHeader)
			if client == nil || key == "" {
				next.ServeHTTP(w, r)
				return
			}

			ok, err := client.SetNX(r.Context(), "idempotency:"+key, 1, idempotencyTTL).Result()
			if err != nil {
				// Redis being down must not take checkout with it.
				logger.Warn(r.Context()).Err(err).Msg("Idempotency check unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				respondError(w, http.StatusConflict, "Duplicate request")
				return
			}

			next.ServeHTTP(w, r)
		}
	}
}
