package http

import (
	"net/http"

	"github.com/atinyakov/usersvc/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves
// the users API.
//
// Routes:
//
//	GET    /healthz     → Health
//	GET    /users       → userHandler.List
//	POST   /users       → userHandler.Create
//	GET    /users/{id}  → userHandler.Get
//	PUT    /users/{id}  → userHandler.Update
//	DELETE /users/{id}  → userHandler.Delete
//
// Middleware chain (applied in order):
//  1. WithRequestLogging(logger): logs every request
//  2. Recoverer: turns panics into 500s
//  3. AllowContentType("application/json"): rejects non-JSON bodies with a JSON 415
func NewRouter(userHandler *UserHandler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	// Only requests with a body are checked
	r.Use(middleware.AllowContentType("application/json"))

	r.Get("/healthz", Health)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", userHandler.List)
		r.Post("/", userHandler.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", userHandler.Get)
			r.Put("/", userHandler.Update)
			r.Delete("/", userHandler.Delete)
		})
	})

	return r
}
