package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mfreitas/memflash/internal/errors"
	"github.com/mfreitas/memflash/internal/logger"
	"github.com/mfreitas/memflash/internal/services"
)

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req struct {
		ItemIDs []string `json:"item_ids"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleError(w, r, errors.NewBadRequestError("invalid JSON body"))
			return
		}
	}

	var view *services.SessionView
	var err error
	if len(req.ItemIDs) > 0 {
		view, err = s.ReviewService.StartSessionByIDs(r.Context(), req.ItemIDs)
	} else {
		view, err = s.ReviewService.StartDueSession(r.Context())
	}
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("session started: id=%s entries=%d", view.SessionID, view.Total)
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleFlip(w http.ResponseWriter, r *http.Request) {
	view, err := s.ReviewService.Flip(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rating int `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid JSON body"))
		return
	}

	view, err := s.ReviewService.Rate(chi.URLParam(r, "id"), req.Rating)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	view, err := s.ReviewService.Undo(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	view, err := s.ReviewService.Redo(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	id := chi.URLParam(r, "id")

	summary, err := s.ReviewService.End(id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("session ended: id=%s rated=%d retention=%d%%", id, summary.Rated, summary.RetentionPct)
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleAbandonSession(w http.ResponseWriter, r *http.Request) {
	s.ReviewService.Abandon(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveSessionItem(w http.ResponseWriter, r *http.Request) {
	view, err := s.ReviewService.RemoveItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	days := s.ForecastDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			handleError(w, r, errors.NewBadRequestError("invalid days"))
			return
		}
		days = n
	}

	curve, err := s.ReviewService.Forecast(r.Context(), days)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"curve": curve})
}
