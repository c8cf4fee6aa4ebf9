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

func TestBookingLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := mustUser(t, db, "Owner", "owner@example.com")
	booker := mustUser(t, db, "Booker", "booker@example.com")
	item := mustItem(t, db, owner.ID, "Drill", true)

	start := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	booking := &models.Booking{
		Start: start, End: start.Add(48 * time.Hour),
		ItemID: item.ID, BookerID: booker.ID, Status: models.StatusWaiting,
	}
	require.NoError(t, db.CreateBooking(ctx, booking))

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.True(t, start.Equal(got.Start))
	assert.True(t, booking.End.Equal(got.End))
	assert.Equal(t, models.StatusWaiting, got.Status)
	assert.Equal(t, owner.ID, got.Item.OwnerID)
	assert.Equal(t, "Drill", got.Item.Name)
	assert.Equal(t, "Booker", got.Booker.Name)

	require.NoError(t, db.UpdateBookingStatus(ctx, booking.ID, models.StatusApproved))
	got, err = db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)

	_, err = db.GetBooking(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, db.UpdateBookingStatus(ctx, 999, models.StatusRejected), domain.ErrNotFound)
}

func TestListBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := mustUser(t, db, "Owner", "owner@example.com")
	other := mustUser(t, db, "Other", "other@example.com")
	booker := mustUser(t, db, "Booker", "booker@example.com")
	drill := mustItem(t, db, owner.ID, "Drill", true)
	saw := mustItem(t, db, other.ID, "Saw", true)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	create := func(itemID int64, start, end time.Time, status models.BookingStatus) int64 {
		b := &models.Booking{Start: start, End: end, ItemID: itemID, BookerID: booker.ID, Status: status}
		require.NoError(t, db.CreateBooking(ctx, b))
		return b.ID
	}

	past := create(drill.ID, now.Add(-72*time.Hour), now.Add(-48*time.Hour), models.StatusApproved)
	current := create(drill.ID, now.Add(-time.Hour), now.Add(time.Hour), models.StatusWaiting)
	edge := create(saw.ID, now, now.Add(time.Hour), models.StatusRejected)
	future := create(drill.ID, now.Add(48*time.Hour), now.Add(72*time.Hour), models.StatusApproved)

	ids := func(list []*models.BookingDetails) []int64 {
		out := make([]int64, 0, len(list))
		for _, b := range list {
			out = append(out, b.ID)
		}
		return out
	}

	tests := []struct {
		name string
		q    models.BookingQuery
		want []int64
	}{
		{"AllByBookerStartDesc", models.BookingQuery{BookerID: booker.ID}, []int64{future, edge, current, past}},
		{"ByOwner", models.BookingQuery{OwnerID: owner.ID}, []int64{future, current, past}},
		{"Past", models.BookingQuery{BookerID: booker.ID, EndBefore: now}, []int64{past}},
		{"Future", models.BookingQuery{BookerID: booker.ID, StartAfter: now}, []int64{future}},
		{"CurrentInclusive", models.BookingQuery{BookerID: booker.ID, ActiveAt: now}, []int64{edge, current}},
		{"Status", models.BookingQuery{BookerID: booker.ID, Status: models.StatusRejected}, []int64{edge}},
		{"ApprovedOfItems", models.BookingQuery{ItemIDs: []int64{drill.ID}, Status: models.StatusApproved}, []int64{future, past}},
		{"EmptyItemSet", models.BookingQuery{ItemIDs: []int64{}}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := db.ListBookings(ctx, tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(list))
		})
	}
}

func TestListBookings_NonUTCQueryTime(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := mustUser(t, db, "Owner", "owner@example.com")
	booker := mustUser(t, db, "Booker", "booker@example.com")
	item := mustItem(t, db, owner.ID, "Drill", true)

	start := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	require.NoError(t, db.CreateBooking(ctx, &models.Booking{
		Start: start, End: start.Add(time.Hour), ItemID: item.ID, BookerID: booker.ID, Status: models.StatusWaiting,
	}))

	// 11:30 UTC expressed at +03:00
	at := time.Date(2025, 1, 10, 14, 30, 0, 0, time.FixedZone("MSK", 3*3600))
	list, err := db.ListBookings(ctx, models.BookingQuery{BookerID: booker.ID, EndBefore: at})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
