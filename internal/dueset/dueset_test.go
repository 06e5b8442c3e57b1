package dueset_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/mfreitas/memflash/internal/dueset"
	"github.com/mfreitas/memflash/internal/models"
)

func day(offset int) time.Time {
	return time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func item(id string, interval int, due time.Time) models.Item {
	return models.Item{ID: id, EaseFactor: 2.5, IntervalDays: interval, NextReviewDate: due}
}

func TestSelectDue_FiltersAndOrders(t *testing.T) {
	asOf := day(0)
	items := []models.Item{
		item("new-b", 0, day(-1)),
		item("due-late", 4, day(-1)),
		item("due-early", 6, day(-3)),
		item("new-a", 0, day(0)),
		item("future", 10, day(5)),
	}

	queue := dueset.SelectDue(items, asOf)

	require.Len(t, queue, 4, "future item is excluded")
	assert.Equal(t, "due-early", queue[0].Item.ID)
	assert.Equal(t, "due-late", queue[1].Item.ID)
	assert.Equal(t, "new-b", queue[2].Item.ID, "new items sort after all due items")
	assert.Equal(t, "new-a", queue[3].Item.ID)
}

func TestSelectDue_DueAlwaysPrecedesNew(t *testing.T) {
	asOf := day(0)
	items := []models.Item{
		item("n1", 0, day(-5)),
		item("d1", 1, day(0)),
		item("n2", 0, day(-9)),
		item("d2", 30, day(-1)),
	}

	queue := dueset.SelectDue(items, asOf)

	require.Len(t, queue, 4)
	seenNew := false
	for _, entry := range queue {
		if entry.Item.IsNew() {
			seenNew = true
		} else {
			assert.False(t, seenNew, "a due item appeared after a new item")
		}
	}
}

func TestSelectDue_SkipsSuspended(t *testing.T) {
	suspended := item("s", 3, day(-1))
	suspended.Suspended = true
	items := []models.Item{suspended, item("a", 3, day(-1))}

	queue := dueset.SelectDue(items, day(0))

	require.Len(t, queue, 1)
	assert.Equal(t, "a", queue[0].Item.ID)
}

func TestSelectDue_TieBrokenByID(t *testing.T) {
	items := []models.Item{
		item("z", 2, day(-1)),
		item("a", 2, day(-1)),
		item("m", 2, day(-1)),
	}

	queue := dueset.SelectDue(items, day(0))

	require.Len(t, queue, 3)
	assert.Equal(t, "a", queue[0].Item.ID)
	assert.Equal(t, "m", queue[1].Item.ID)
	assert.Equal(t, "z", queue[2].Item.ID)
}

func TestSelectDue_IncludesSameDayItems(t *testing.T) {
	// Due "today" means due, regardless of the time-of-day component.
	items := []models.Item{item("a", 1, day(0).Add(18*time.Hour))}

	queue := dueset.SelectDue(items, day(0).Add(2*time.Hour))

	assert.Len(t, queue, 1)
}

func TestSelectByIDs_IgnoresDueDates(t *testing.T) {
	items := []models.Item{
		item("a", 10, day(30)),
		item("b", 0, day(-1)),
		item("c", 2, day(1)),
	}

	queue := dueset.SelectByIDs(items, []string{"a", "b"})

	require.Len(t, queue, 2, "unrequested items are excluded")
	assert.Equal(t, "a", queue[0].Item.ID, "due items still precede new items")
	assert.Equal(t, "b", queue[1].Item.ID)
}

func TestSelectByIDs_UnknownIDs(t *testing.T) {
	items := []models.Item{item("a", 1, day(0))}

	queue := dueset.SelectByIDs(items, []string{"missing"})

	assert.Empty(t, queue)
}

func TestSelectDue_Empty(t *testing.T) {
	assert.Empty(t, dueset.SelectDue(nil, day(0)))
}
