package postgres

import (
	"testing"
	"time"

	"careportal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListEntriesQuery(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		q, args, err := listEntriesQuery("u1", domain.EntryQuery{})
		require.NoError(t, err)
		assert.Equal(t, "SELECT "+entryColumns+" FROM weight_entries WHERE user_id = $1 ORDER BY entry_date DESC, created_at DESC", q)
		assert.Equal(t, []any{"u1"}, args)
	})

	t.Run("window, sort and page", func(t *testing.T) {
		start := domain.NewDay(2024, time.January, 1)
		end := domain.NewDay(2024, time.June, 30)
		q, args, err := listEntriesQuery("u1", domain.EntryQuery{
			Page: 3, Limit: 10, StartDate: start, EndDate: end, SortBy: "weight", SortOrder: domain.SortAsc,
		})
		require.NoError(t, err)
		assert.Contains(t, q, "entry_date >= $2 AND entry_date <= $3")
		assert.Contains(t, q, "ORDER BY weight ASC, created_at ASC LIMIT $4 OFFSET $5")
		assert.Equal(t, []any{"u1", start, end, 10, 20}, args)
	})

	t.Run("unknown sort column", func(t *testing.T) {
		_, _, err := listEntriesQuery("u1", domain.EntryQuery{SortBy: "weight; DROP TABLE users"})
		assert.Error(t, err)
	})
}

func TestEncodeShipmentJSON(t *testing.T) {
	items, addr, err := encodeShipmentJSON(domain.ShipmentInput{Address: domain.Address{City: "Austin"}})
	require.NoError(t, err)
	assert.Equal(t, "[]", items)
	assert.JSONEq(t, `{"street":"","city":"Austin","state":"","zipCode":""}`, addr)
}
