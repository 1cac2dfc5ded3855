package fakevault

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/SecurePass/internal/middleware"
)

// NewRouter mounts the vault contract.
//
// Routes:
//
//	POST /login                        → h.Login (form)
//	GET  /dashboard                    → h.Dashboard
//	POST /api/generate-password        → h.GeneratePassword
//	GET  /api/passwords                → h.ListPasswords        (session)
//	POST /api/passwords                → h.AddPassword          (session)
//	POST /api/passwords/{id}/decrypt   → h.DecryptPassword      (session)
//	POST /generate_recovery_key        → h.GenerateRecoveryKey  (session)
func NewRouter(h *Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))

	r.Post("/login", h.Login)
	r.Get("/dashboard", h.Dashboard)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(h))
		r.Post("/generate_recovery_key", h.GenerateRecoveryKey)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json"))

		r.Post("/generate-password", h.GeneratePassword)

		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(h))
			r.Get("/passwords", h.ListPasswords)
			r.Post("/passwords", h.AddPassword)
			r.Post("/passwords/{id}/decrypt", h.DecryptPassword)
		})
	})

	return r
}
