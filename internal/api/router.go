package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterConfig holds the cross-cutting settings of the API router.
type RouterConfig struct {
	AuthEnabled    bool
	Token          string
	AllowedOrigins []string
	// Events, if non-nil, is mounted at GET /events inside the auth group.
	Events http.Handler
}

// NewRouter creates a chi router with all API routes mounted.
// Info and health endpoints stay unauthenticated.
func NewRouter(h *Handler, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(CORSMiddleware(cfg.AllowedOrigins))

	r.Get("/", h.Info)
	r.Get("/health/live", h.Live)
	r.Get("/health/ready", h.Ready)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.AuthEnabled, cfg.Token))

		r.Get("/leads", h.ListLeads)

		r.Post("/notes", h.CreateNote)
		r.Get("/notes", h.ListNotes)
		r.Get("/notes/{email}", h.GetNote)

		r.Post("/summary", h.Summarize)

		if cfg.Events != nil {
			r.Get("/events", cfg.Events.ServeHTTP)
		}
	})

	return r
}
