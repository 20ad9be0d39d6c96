package www

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"liftcore/engine"
)

type Handlers struct {
	engine   *engine.Engine
	sessions *sessions.CookieStore
	eventHub *EventHub
}

func NewRouter(eng *engine.Engine) (http.Handler, func()) {
	hub := NewEventHub()
	hub.Start()
	detach := hub.SetupEngineListeners(eng)

	h := &Handlers{
		engine:   eng,
		sessions: newSessionStore(eng.AppConfig().Web.SessionSecret),
		eventHub: hub,
	}

	h.ensureDefaultAdmin(eng.DB())

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// SSE, outside compression
	r.Get("/events", hub.SSEHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5))

		// Hall calls
		r.Post("/lift-requests", h.apiCreateLiftRequest)

		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)

		// API routes (no auth required for read)
		r.Route("/api", func(r chi.Router) {
			r.Get("/lifts", h.apiListLifts)
			r.Get("/lifts/{id}", h.apiGetLift)
			r.Get("/requests", h.apiListRequests)
			r.Get("/health", h.apiHealthCheck)

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(h.requireAuth)
				r.Post("/lifts/{id}/stops", h.apiCarCall)
				r.Get("/audit", h.apiListAudit)
				r.Get("/lifts/{id}/audit", h.apiLiftAudit)
				r.Get("/config", h.apiConfig)
			})
		})
	})

	return r, func() {
		detach()
		hub.Stop()
	}
}
