package http

import (
	"net/http"

	"github.com/denly1/motoshop/internal/server/middleware"
)

func actorFromRequest(r *http.Request) *uint {
	return middleware.ActorFromContext(r.Context())
}
