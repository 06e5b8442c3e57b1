package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/items", func(r chi.Router) {
			r.Get("/", s.handleListItems)
			r.Post("/", s.handleCreateItem)
			r.Get("/{id}", s.handleGetItem)
			r.Get("/{id}/history", s.handleItemHistory)
			r.Post("/{id}/suspend", s.handleSuspendItem)
			r.Post("/{id}/resume", s.handleResumeItem)
			r.Delete("/{id}", s.handleDeleteItem)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleStartSession)
			r.Post("/{id}/flip", s.handleFlip)
			r.Post("/{id}/rate", s.handleRate)
			r.Post("/{id}/undo", s.handleUndo)
			r.Post("/{id}/redo", s.handleRedo)
			r.Post("/{id}/end", s.handleEndSession)
			r.Delete("/{id}", s.handleAbandonSession)
			r.Delete("/{id}/items/{itemID}", s.handleRemoveSessionItem)
		})

		r.Get("/forecast", s.handleForecast)
	})

	return r
}
