package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mfreitas/memflash/internal/errors"
	"github.com/mfreitas/memflash/internal/logger"
	"github.com/mfreitas/memflash/internal/models"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	var filter models.ItemFilter

	if v := r.URL.Query().Get("suspended"); v != "" {
		suspended, err := strconv.ParseBool(v)
		if err != nil {
			handleError(w, r, errors.NewBadRequestError("invalid suspended value"))
			return
		}
		filter.Suspended = &suspended
	}
	if v := r.URL.Query().Get("due_before"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			handleError(w, r, errors.NewBadRequestError("invalid due_before date, expected YYYY-MM-DD"))
			return
		}
		filter.DueBefore = &t
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			handleError(w, r, errors.NewBadRequestError("invalid limit"))
			return
		}
		filter.Limit = limit
	}

	items, err := s.ItemService.List(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req struct {
		Front string `json:"front"`
		Back  string `json:"back"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid JSON body"))
		return
	}

	item, err := s.ItemService.Create(r.Context(), req.Front, req.Back)
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("item created: id=%s", item.ID)
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.ItemService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleItemHistory(w http.ResponseWriter, r *http.Request) {
	events, err := s.ItemService.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

func (s *Server) handleSuspendItem(w http.ResponseWriter, r *http.Request) {
	if err := s.ItemService.SetSuspended(r.Context(), chi.URLParam(r, "id"), true); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResumeItem(w http.ResponseWriter, r *http.Request) {
	if err := s.ItemService.SetSuspended(r.Context(), chi.URLParam(r, "id"), false); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.ItemService.Delete(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("item deleted: id=%s", id)
	w.WriteHeader(http.StatusNoContent)
}
