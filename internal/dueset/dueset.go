// Package dueset selects and orders the items that make up a review
// session queue.
//
// Ordering policy: items that have an established interval ("due") come
// before items with no interval yet ("new"), so overdue work surfaces
// ahead of fresh material in a bounded session. Within each group the
// earliest next-review date wins, with the item id as a deterministic
// tie-breaker.
package dueset

import (
	"sort"
	"time"

	"github.com/mfreitas/memflash/internal/models"
	"github.com/mfreitas/memflash/internal/srs"
)

// SelectDue filters items to those actually reviewable as of the given
// date (not suspended, next review date on or before asOf) and returns
// them as an ordered session queue.
func SelectDue(items []models.Item, asOf time.Time) []models.QueueEntry {
	cutoff := srs.Date(asOf)
	var due []models.Item
	for _, it := range items {
		if it.Suspended {
			continue
		}
		if srs.Date(it.NextReviewDate).After(cutoff) {
			continue
		}
		due = append(due, it)
	}
	return order(due)
}

// SelectByIDs builds a queue from an explicit id set, bypassing the due
// date filter. Used for targeted practice; ordering matches SelectDue's
// comparator so the two entry points stay consistent.
func SelectByIDs(items []models.Item, ids []string) []models.QueueEntry {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var picked []models.Item
	for _, it := range items {
		if want[it.ID] {
			picked = append(picked, it)
		}
	}
	return order(picked)
}

func order(items []models.Item) []models.QueueEntry {
	sort.Slice(items, func(i, j int) bool {
		return less(items[i], items[j])
	})
	queue := make([]models.QueueEntry, 0, len(items))
	for _, it := range items {
		queue = append(queue, models.QueueEntry{Item: it})
	}
	return queue
}

func less(a, b models.Item) bool {
	if a.IsNew() != b.IsNew() {
		return !a.IsNew() // due items first
	}
	ad, bd := srs.Date(a.NextReviewDate), srs.Date(b.NextReviewDate)
	if !ad.Equal(bd) {
		return ad.Before(bd)
	}
	return a.ID < b.ID
}
