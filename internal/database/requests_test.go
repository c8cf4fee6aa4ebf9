package database

import (
	"context"
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequests(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	alice := mustUser(t, db, "Alice", "alice@example.com")
	bob := mustUser(t, db, "Bob", "bob@example.com")

	base := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	var ids []int64
	for i, author := range []int64{alice.ID, bob.ID, alice.ID} {
		r := &models.ItemRequest{Description: "need something", RequestorID: author, Created: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, db.CreateRequest(ctx, r))
		ids = append(ids, r.ID)
	}

	t.Run("Get", func(t *testing.T) {
		r, err := db.GetRequest(ctx, ids[0])
		require.NoError(t, err)
		assert.Equal(t, alice.ID, r.RequestorID)
		assert.True(t, base.Equal(r.Created))

		_, err = db.GetRequest(ctx, 999)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ByRequestorNewestFirst", func(t *testing.T) {
		list, err := db.ListRequestsByRequestor(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, ids[2], list[0].ID)
		assert.Equal(t, ids[0], list[1].ID)
	})

	t.Run("Paged", func(t *testing.T) {
		list, err := db.ListRequests(ctx, 0, 2)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, ids[2], list[0].ID)
		assert.Equal(t, ids[1], list[1].ID)

		list, err = db.ListRequests(ctx, 2, 2)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, ids[0], list[0].ID)
	})
}

func TestComments(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := mustUser(t, db, "Owner", "owner@example.com")
	author := mustUser(t, db, "Author", "author@example.com")
	drill := mustItem(t, db, owner.ID, "Drill", true)
	saw := mustItem(t, db, owner.ID, "Saw", true)

	now := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	first := &models.Comment{Text: "works", ItemID: drill.ID, AuthorID: author.ID, Created: now}
	require.NoError(t, db.CreateComment(ctx, first))
	second := &models.Comment{Text: "sharp", ItemID: saw.ID, AuthorID: author.ID, Created: now}
	require.NoError(t, db.CreateComment(ctx, second))

	comments, err := db.ListCommentsByItems(ctx, []int64{drill.ID, saw.ID})
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)
	assert.Equal(t, "Author", comments[0].AuthorName)
	assert.Equal(t, saw.ID, comments[1].ItemID)

	comments, err = db.ListCommentsByItems(ctx, []int64{drill.ID})
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	comments, err = db.ListCommentsByItems(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, comments)
}
