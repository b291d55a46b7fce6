package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the HTTP API.
func NewRouter(events *EventHandler, users *UserHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Tracing)
	r.Use(Logger)
	r.Use(CORS)

	r.Get("/health", HealthCheck)

	r.Route("/events", func(r chi.Router) {
		r.Post("/", events.CreateEvent)
		r.Get("/", events.ListEvents)
		r.Get("/upcoming", events.ListUpcoming)
		r.Get("/{id}", events.GetEvent)
		r.Delete("/{id}", events.DeleteEvent)
		r.Post("/{id}/register", events.Register)
		r.Delete("/{id}/register", events.Cancel)
		r.Get("/{id}/stats", events.Stats)
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", users.CreateUser)
		r.Get("/", users.ListUsers)
		r.Get("/{id}", users.GetUser)
		r.Delete("/{id}", users.DeleteUser)
		r.Get("/{id}/registrations", users.ListRegistrations)
	})

	return r
}
