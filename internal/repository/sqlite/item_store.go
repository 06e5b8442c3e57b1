package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/mfreitas/memflash/internal/logger"
	"github.com/mfreitas/memflash/internal/models"
	"github.com/mfreitas/memflash/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

var itemColumns = []string{
	"id", "front", "back", "ease_factor", "interval_days",
	"next_review_date", "suspended", "created_at",
}

type itemStore struct {
	db *sql.DB
}

// NewItemStore creates a new ItemStore implementation backed by SQLite.
func NewItemStore(db *sql.DB) repository.ItemStore {
	return &itemStore{db: db}
}

func (r *itemStore) Insert(ctx context.Context, it models.Item) error {
	log := logger.FromContext(ctx).WithPrefix("item_store")
	log.Debug("inserting item: id=%s", it.ID)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO items (id, front, back, ease_factor, interval_days, next_review_date, suspended)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, it.ID, it.Front, it.Back, it.EaseFactor, it.IntervalDays, it.NextReviewDate, it.Suspended)
	if err != nil {
		log.Error("failed to insert item: %v", err)
	}
	return err
}

func (r *itemStore) Get(ctx context.Context, id string) (*models.Item, error) {
	log := logger.FromContext(ctx).WithPrefix("item_store")
	log.Debug("getting item: id=%s", id)

	var it models.Item
	err := r.db.QueryRowContext(ctx, `
SELECT id, front, back, ease_factor, interval_days, next_review_date, suspended, created_at
FROM items
WHERE id = ?
`, id).Scan(&it.ID, &it.Front, &it.Back, &it.EaseFactor, &it.IntervalDays, &it.NextReviewDate, &it.Suspended, &it.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("item not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get item: %v", err)
		return nil, err
	}
	return &it, nil
}

func (r *itemStore) List(ctx context.Context, filter models.ItemFilter) ([]models.Item, error) {
	log := logger.FromContext(ctx).WithPrefix("item_store")

	query := sqlBuilder.Select(itemColumns...).From("items")

	// Dynamic WHERE clauses
	if filter.Suspended != nil {
		query = query.Where(squirrel.Eq{"suspended": *filter.Suspended})
	}
	if filter.DueBefore != nil {
		query = query.Where(squirrel.LtOrEq{"next_review_date": *filter.DueBefore})
	}
	query = query.OrderBy("next_review_date ASC", "id ASC")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build list query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list items: %v", err)
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows, log)
}

func (r *itemStore) FetchDue(ctx context.Context, asOf time.Time) ([]models.Item, error) {
	log := logger.FromContext(ctx).WithPrefix("item_store")
	log.Debug("fetching due items: as_of=%s", asOf.Format("2006-01-02"))

	rows, err := r.db.QueryContext(ctx, `
SELECT id, front, back, ease_factor, interval_days, next_review_date, suspended, created_at
FROM items
WHERE suspended = 0 AND next_review_date <= ?
ORDER BY next_review_date ASC, id ASC
`, asOf)
	if err != nil {
		log.Error("failed to query due items: %v", err)
		return nil, err
	}
	defer rows.Close()

	items, err := scanItems(rows, log)
	if err != nil {
		return nil, err
	}
	log.Debug("found %d due items", len(items))
	return items, nil
}

func (r *itemStore) FetchByIDs(ctx context.Context, ids []string) ([]models.Item, error) {
	log := logger.FromContext(ctx).WithPrefix("item_store")
	log.Debug("fetching items by ids: count=%d", len(ids))

	if len(ids) == 0 {
		return nil, nil
	}

	sqlStr, args, err := sqlBuilder.Select(itemColumns...).
		From("items").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		log.Error("failed to build fetch-by-ids query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query items by ids: %v", err)
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows, log)
}

// PersistRating appends one rating event and updates the item's
// scheduling state in a single transaction.
func (r *itemStore) PersistRating(ctx context.Context, itemID string, ev models.RatingEvent, st models.ReviewState) error {
	log := logger.FromContext(ctx).WithPrefix("item_store")
	log.Debug("persisting rating: item=%s rating=%d interval=%d", itemID, ev.Rating, st.IntervalDays)

	return tx(ctx, r.db, func(t *sql.Tx) error {
		res, err := t.ExecContext(ctx, `
UPDATE items
SET ease_factor = ?, interval_days = ?, next_review_date = ?
WHERE id = ?
`, st.EaseFactor, st.IntervalDays, st.NextReviewDate, itemID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return sql.ErrNoRows
		}
		_, err = t.ExecContext(ctx, `
INSERT INTO rating_events (item_id, rating, resulting_ease_factor, resulting_interval_days, resulting_next_review_date, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`, itemID, ev.Rating, ev.ResultingEase, ev.ResultingInterval, ev.ResultingReviewDue, ev.Timestamp)
		return err
	})
}

func (r *itemStore) RestoreState(ctx context.Context, itemID string, st models.ReviewState) error {
	log := logger.FromContext(ctx).WithPrefix("item_store")
	log.Debug("restoring item state: item=%s interval=%d ease=%.4f", itemID, st.IntervalDays, st.EaseFactor)

	_, err := r.db.ExecContext(ctx, `
UPDATE items
SET ease_factor = ?, interval_days = ?, next_review_date = ?
WHERE id = ?
`, st.EaseFactor, st.IntervalDays, st.NextReviewDate, itemID)
	if err != nil {
		log.Error("failed to restore item state: %v", err)
	}
	return err
}

func (r *itemStore) SetSuspended(ctx context.Context, id string, suspended bool) error {
	log := logger.FromContext(ctx).WithPrefix("item_store")
	log.Debug("setting suspended: id=%s suspended=%v", id, suspended)

	res, err := r.db.ExecContext(ctx, `UPDATE items SET suspended = ? WHERE id = ?`, suspended, id)
	if err != nil {
		log.Error("failed to set suspended: %v", err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *itemStore) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("item_store")
	log.Debug("deleting item: id=%s", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete item: %v", err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *itemStore) RatingEvents(ctx context.Context, itemID string) ([]models.RatingEvent, error) {
	log := logger.FromContext(ctx).WithPrefix("item_store")
	log.Debug("fetching rating events: item=%s", itemID)

	rows, err := r.db.QueryContext(ctx, `
SELECT id, item_id, rating, resulting_ease_factor, resulting_interval_days, resulting_next_review_date, created_at
FROM rating_events
WHERE item_id = ?
ORDER BY created_at ASC, id ASC
`, itemID)
	if err != nil {
		log.Error("failed to query rating events: %v", err)
		return nil, err
	}
	defer rows.Close()

	var events []models.RatingEvent
	for rows.Next() {
		var ev models.RatingEvent
		if err := rows.Scan(&ev.ID, &ev.ItemID, &ev.Rating, &ev.ResultingEase, &ev.ResultingInterval, &ev.ResultingReviewDue, &ev.Timestamp); err != nil {
			log.Error("failed to scan rating event: %v", err)
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *itemStore) ReviewStats(ctx context.Context) (map[string]models.ReviewStat, error) {
	log := logger.FromContext(ctx).WithPrefix("item_store")
	log.Debug("aggregating review stats")

	rows, err := r.db.QueryContext(ctx, `
SELECT item_id, COUNT(*), MAX(created_at)
FROM rating_events
GROUP BY item_id
`)
	if err != nil {
		log.Error("failed to aggregate review stats: %v", err)
		return nil, err
	}
	defer rows.Close()

	stats := make(map[string]models.ReviewStat)
	for rows.Next() {
		var id string
		var stat models.ReviewStat
		var last string
		if err := rows.Scan(&id, &stat.Revisions, &last); err != nil {
			log.Error("failed to scan review stat: %v", err)
			return nil, err
		}
		// MAX() strips the column's declared type, so the driver hands
		// the timestamp back as text.
		t, err := parseSQLiteTime(last)
		if err != nil {
			log.Error("failed to parse review timestamp %q: %v", last, err)
			return nil, err
		}
		stat.LastReviewed = t
		stats[id] = stat
	}
	return stats, rows.Err()
}

var sqliteTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseSQLiteTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range sqliteTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func scanItems(rows *sql.Rows, log *logger.Logger) ([]models.Item, error) {
	var items []models.Item
	for rows.Next() {
		var it models.Item
		if err := rows.Scan(&it.ID, &it.Front, &it.Back, &it.EaseFactor, &it.IntervalDays, &it.NextReviewDate, &it.Suspended, &it.CreatedAt); err != nil {
			log.Error("failed to scan item row: %v", err)
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
