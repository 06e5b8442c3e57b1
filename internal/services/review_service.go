package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/mfreitas/memflash/internal/dueset"
	"github.com/mfreitas/memflash/internal/errors"
	"github.com/mfreitas/memflash/internal/jobs"
	"github.com/mfreitas/memflash/internal/logger"
	"github.com/mfreitas/memflash/internal/models"
	"github.com/mfreitas/memflash/internal/repository"
	"github.com/mfreitas/memflash/internal/retention"
	"github.com/mfreitas/memflash/internal/session"
	"github.com/mfreitas/memflash/internal/srs"
)

// SessionView is the caller-facing snapshot of a session after an
// operation: enough to render the current card and progress without
// exposing the engine.
type SessionView struct {
	SessionID string       `json:"session_id"`
	Index     int          `json:"index"`
	Total     int          `json:"total"`
	Flipped   bool         `json:"flipped"`
	Streak    int          `json:"streak"`
	Completed bool         `json:"completed"`
	Current   *models.Item `json:"current,omitempty"`
	Requeued  bool         `json:"requeued,omitempty"`
}

// ReviewService drives review sessions and retention forecasts
type ReviewService interface {
	StartDueSession(ctx context.Context) (*SessionView, error)
	StartSessionByIDs(ctx context.Context, ids []string) (*SessionView, error)
	Flip(sessionID string) (*SessionView, error)
	Rate(sessionID string, rating int) (*SessionView, error)
	Undo(sessionID string) (*SessionView, error)
	Redo(sessionID string) (*SessionView, error)
	RemoveItem(ctx context.Context, sessionID, itemID string) (*SessionView, error)
	End(sessionID string) (*models.SessionSummary, error)
	Abandon(sessionID string)
	Forecast(ctx context.Context, days int) ([]models.RetentionPoint, error)
}

type reviewService struct {
	store    repository.ItemStore
	queue    jobs.JobQueue
	sessions *session.Manager
	maxNew   int
	now      func() time.Time
}

// NewReviewService creates a new ReviewService. maxNewPerSession caps
// the number of never-reviewed items admitted into a due session; zero
// means no cap.
func NewReviewService(store repository.ItemStore, queue jobs.JobQueue, maxNewPerSession int) ReviewService {
	return &reviewService{
		store:    store,
		queue:    queue,
		sessions: session.NewManager(),
		maxNew:   maxNewPerSession,
		now:      time.Now,
	}
}

// queuePersister bridges the session engine's fire-and-forget persistence
// calls onto the background job queue. Enqueue failures are logged and
// dropped: the in-memory session stays authoritative either way.
type queuePersister struct {
	queue jobs.JobQueue
	log   *logger.Logger
}

func (p queuePersister) PersistRating(itemID string, ev models.RatingEvent, st models.ReviewState) {
	if err := p.queue.EnqueuePersist(itemID, ev, st); err != nil {
		p.log.Error("failed to enqueue rating persistence for item %s: %v", itemID, err)
	}
}

func (p queuePersister) RestoreState(itemID string, st models.ReviewState) {
	if err := p.queue.EnqueueRestore(itemID, st); err != nil {
		p.log.Error("failed to enqueue state restore for item %s: %v", itemID, err)
	}
}

func (s *reviewService) StartDueSession(ctx context.Context) (*SessionView, error) {
	log := logger.FromContext(ctx)
	today := s.now()

	items, err := s.store.FetchDue(ctx, srs.Date(today))
	if err != nil {
		log.Error("failed to fetch due items: %v", err)
		return nil, errors.NewInternalError(err)
	}
	queue := dueset.SelectDue(items, today)
	queue = s.capNew(queue)
	return s.begin(log, queue)
}

func (s *reviewService) StartSessionByIDs(ctx context.Context, ids []string) (*SessionView, error) {
	log := logger.FromContext(ctx)

	if len(ids) == 0 {
		return nil, errors.NewValidationError("ids", "must not be empty")
	}
	items, err := s.store.FetchByIDs(ctx, ids)
	if err != nil {
		log.Error("failed to fetch items by ids: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return s.begin(log, dueset.SelectByIDs(items, ids))
}

func (s *reviewService) begin(log *logger.Logger, queue []models.QueueEntry) (*SessionView, error) {
	if len(queue) == 0 {
		return nil, errors.NewInvalidOperationError("start session", "nothing to review")
	}
	engine := session.New(
		queuePersister{queue: s.queue, log: logger.Default().WithPrefix("persist")},
		session.WithClock(s.now),
	)
	if err := engine.Start(queue); err != nil {
		return nil, err
	}
	id := s.sessions.Create(engine)
	log.Info("session %s started with %d entries", id, len(queue))
	return view(id, engine), nil
}

// capNew trims trailing new items beyond the per-session cap. The queue
// comparator sorts new items last, so a simple cut suffices.
func (s *reviewService) capNew(queue []models.QueueEntry) []models.QueueEntry {
	if s.maxNew <= 0 {
		return queue
	}
	seen := 0
	for i, entry := range queue {
		if entry.Item.IsNew() {
			seen++
			if seen > s.maxNew {
				return queue[:i]
			}
		}
	}
	return queue
}

func (s *reviewService) Flip(sessionID string) (*SessionView, error) {
	return s.withView(sessionID, func(e *session.Engine) error {
		return e.Flip()
	})
}

func (s *reviewService) Rate(sessionID string, rating int) (*SessionView, error) {
	return s.withView(sessionID, func(e *session.Engine) error {
		return e.Rate(srs.Rating(rating))
	})
}

func (s *reviewService) Undo(sessionID string) (*SessionView, error) {
	return s.withView(sessionID, func(e *session.Engine) error {
		return e.Undo()
	})
}

func (s *reviewService) Redo(sessionID string) (*SessionView, error) {
	return s.withView(sessionID, func(e *session.Engine) error {
		return e.Redo()
	})
}

// RemoveItem deletes an item from the store and splices it out of the
// live session. The store delete is authoritative; queue surgery follows.
func (s *reviewService) RemoveItem(ctx context.Context, sessionID, itemID string) (*SessionView, error) {
	log := logger.FromContext(ctx)

	if err := s.store.Delete(ctx, itemID); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("item", itemID)
		}
		log.Error("failed to delete item %s: %v", itemID, err)
		return nil, errors.NewInternalError(err)
	}
	return s.withView(sessionID, func(e *session.Engine) error {
		err := e.Remove(itemID)
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) && appErr.Code == errors.ErrCodeNotFound {
			// Deleted item wasn't in this session's queue; nothing to splice.
			return nil
		}
		return err
	})
}

func (s *reviewService) End(sessionID string) (*models.SessionSummary, error) {
	var summary models.SessionSummary
	err := s.sessions.With(sessionID, func(e *session.Engine) error {
		var endErr error
		summary, endErr = e.End()
		return endErr
	})
	if err != nil {
		return nil, err
	}
	s.sessions.Drop(sessionID)
	return &summary, nil
}

func (s *reviewService) Abandon(sessionID string) {
	s.sessions.Drop(sessionID)
}

func (s *reviewService) Forecast(ctx context.Context, days int) ([]models.RetentionPoint, error) {
	log := logger.FromContext(ctx)

	suspended := false
	items, err := s.store.List(ctx, models.ItemFilter{Suspended: &suspended})
	if err != nil {
		log.Error("failed to list items for forecast: %v", err)
		return nil, errors.NewInternalError(err)
	}
	stats, err := s.store.ReviewStats(ctx)
	if err != nil {
		log.Error("failed to load review stats: %v", err)
		return nil, errors.NewInternalError(err)
	}

	var profiles []retention.DecayProfile
	for _, item := range items {
		stat := stats[item.ID]
		if p, ok := retention.ProfileFromItem(item, stat.Revisions, stat.LastReviewed); ok {
			profiles = append(profiles, p)
		}
	}
	log.Debug("forecasting retention for %d reviewed items over %d days", len(profiles), days)
	return retention.Project(profiles, s.now(), days), nil
}

func (s *reviewService) withView(sessionID string, fn func(*session.Engine) error) (*SessionView, error) {
	var v *SessionView
	err := s.sessions.With(sessionID, func(e *session.Engine) error {
		if err := fn(e); err != nil {
			return err
		}
		v = view(sessionID, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func view(id string, e *session.Engine) *SessionView {
	index, total := e.Progress()
	v := &SessionView{
		SessionID: id,
		Index:     index,
		Total:     total,
		Flipped:   e.Flipped(),
		Streak:    e.Streak(),
		Completed: e.Completed(),
	}
	if entry, ok := e.Current(); ok {
		item := entry.Item
		v.Current = &item
		v.Requeued = entry.Requeued
	}
	return v
}
