// ABOUTME: Shared behaviour tests every record.Store implementation must pass
// ABOUTME: Used by the memory, SQLite, and Badger store test files

package storetest

import (
	"context"
	"testing"

	"github.com/harperreed/dealdesk/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a fresh store returned by open.
func Run(t *testing.T, open func(t *testing.T) record.Store) {
	t.Helper()

	t.Run("InsertLoad", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)

		id, err := s.Insert(ctx, "company_c", map[string]any{"name_c": "Acme", "Id": 99})
		require.NoError(t, err)
		assert.NotZero(t, id)

		row, err := s.Load(ctx, "company_c", id)
		require.NoError(t, err)
		assert.Equal(t, id, row.ID)
		assert.Equal(t, "Acme", row.Fields["name_c"])
		assert.NotContains(t, row.Fields, "Id")
	})

	t.Run("ScanOrdersByID", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)

		var ids []int
		for _, name := range []string{"a", "b", "c"} {
			id, err := s.Insert(ctx, "company_c", map[string]any{"name_c": name})
			require.NoError(t, err)
			ids = append(ids, id)
		}
		_, err := s.Insert(ctx, "deal_c", map[string]any{"title_c": "other table"})
		require.NoError(t, err)

		rows, err := s.Scan(ctx, "company_c")
		require.NoError(t, err)
		require.Len(t, rows, 3)
		for i, row := range rows {
			assert.Equal(t, ids[i], row.ID)
		}

		empty, err := s.Scan(ctx, "activity_c")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("SaveReplacesFields", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)

		id, err := s.Insert(ctx, "deal_c", map[string]any{"title_c": "Old", "stage_c": "Lead"})
		require.NoError(t, err)

		require.NoError(t, s.Save(ctx, "deal_c", record.Row{ID: id, Fields: map[string]any{"title_c": "New"}}))

		row, err := s.Load(ctx, "deal_c", id)
		require.NoError(t, err)
		assert.Equal(t, "New", row.Fields["title_c"])
		assert.NotContains(t, row.Fields, "stage_c")

		err = s.Save(ctx, "deal_c", record.Row{ID: id + 1000, Fields: map[string]any{}})
		assert.ErrorIs(t, err, record.ErrRecordNotFound)
	})

	t.Run("Remove", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)

		id, err := s.Insert(ctx, "contact_c", map[string]any{"firstName_c": "Ada"})
		require.NoError(t, err)

		require.NoError(t, s.Remove(ctx, "contact_c", id))
		_, err = s.Load(ctx, "contact_c", id)
		assert.ErrorIs(t, err, record.ErrRecordNotFound)
		assert.ErrorIs(t, s.Remove(ctx, "contact_c", id), record.ErrRecordNotFound)
	})

	t.Run("ValuesRoundTrip", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)

		id, err := s.Insert(ctx, "activity_c", map[string]any{
			"completed_c": true,
			"value_c":     12.5,
			"contactId_c": nil,
		})
		require.NoError(t, err)

		row, err := s.Load(ctx, "activity_c", id)
		require.NoError(t, err)
		assert.Equal(t, true, row.Fields["completed_c"])
		assert.EqualValues(t, 12.5, row.Fields["value_c"])
		assert.Contains(t, row.Fields, "contactId_c")
		assert.Nil(t, row.Fields["contactId_c"])
	})

	t.Run("IDsArePerTable", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)

		first, err := s.Insert(ctx, "company_c", map[string]any{"name_c": "Acme"})
		require.NoError(t, err)
		other, err := s.Insert(ctx, "contact_c", map[string]any{"firstName_c": "Ada"})
		require.NoError(t, err)
		assert.Equal(t, first, other)
	})
}
