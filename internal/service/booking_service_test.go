package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"
	"shareit/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type bookingFixture struct {
	store    *repository.MemoryStore
	clock    *fixedClock
	users    *UserService
	items    *ItemService
	bookings *BookingService
	owner    *models.User
	booker   *models.User
	item     *models.Item
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	ctx := context.Background()

	f := &bookingFixture{
		store: repository.NewMemoryStore(),
		clock: &fixedClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)},
	}
	f.users = NewUserService(f.store, testLogger())
	f.items = NewItemService(f.store, nil, f.clock, testLogger())
	f.bookings = NewBookingService(f.store, nil, f.clock, testLogger())

	var err error
	f.owner, err = f.users.Create(ctx, "Owner", "owner@example.com")
	require.NoError(t, err)
	f.booker, err = f.users.Create(ctx, "Booker", "booker@example.com")
	require.NoError(t, err)
	f.item, err = f.items.Create(ctx, f.owner.ID, models.Item{Name: "Drill", Description: "Cordless drill", Available: true})
	require.NoError(t, err)
	return f
}

func day(d, h int) time.Time {
	return time.Date(2025, 1, d, h, 0, 0, 0, time.UTC)
}

func TestBookingService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newBookingFixture(t)
		b, err := f.bookings.Create(ctx, f.booker.ID, f.item.ID, day(10, 12), day(12, 12))
		require.NoError(t, err)
		assert.NotZero(t, b.ID)
		assert.Equal(t, models.StatusWaiting, b.Status)
		assert.Equal(t, f.item.ID, b.Item.ID)
		assert.Equal(t, "Booker", b.Booker.Name)
	})

	t.Run("UnavailableItem", func(t *testing.T) {
		f := newBookingFixture(t)
		off := false
		_, err := f.items.Update(ctx, f.item.ID, f.owner.ID, models.ItemPatch{Available: &off})
		require.NoError(t, err)

		_, err = f.bookings.Create(ctx, f.booker.ID, f.item.ID, day(10, 12), day(12, 12))
		assert.ErrorIs(t, err, domain.ErrUnavailable)

		all, err := f.bookings.GetByBooker(ctx, models.StateAll, f.booker.ID)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("UnknownBookerOrItem", func(t *testing.T) {
		f := newBookingFixture(t)
		_, err := f.bookings.Create(ctx, 999, f.item.ID, day(10, 12), day(12, 12))
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = f.bookings.Create(ctx, f.booker.ID, 999, day(10, 12), day(12, 12))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBookingService_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("OwnerApproves", func(t *testing.T) {
		f := newBookingFixture(t)
		b, err := f.bookings.Create(ctx, f.booker.ID, f.item.ID, day(10, 12), day(12, 12))
		require.NoError(t, err)

		approved, err := f.bookings.Approve(ctx, b.ID, true, f.owner.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, approved.Status)

		got, err := f.bookings.GetByID(ctx, b.ID, f.booker.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, got.Status)
	})

	t.Run("OwnerRejects", func(t *testing.T) {
		f := newBookingFixture(t)
		b, err := f.bookings.Create(ctx, f.booker.ID, f.item.ID, day(10, 12), day(12, 12))
		require.NoError(t, err)

		rejected, err := f.bookings.Approve(ctx, b.ID, false, f.owner.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, rejected.Status)
	})

	t.Run("BookerIsForbidden", func(t *testing.T) {
		f := newBookingFixture(t)
		b, err := f.bookings.Create(ctx, f.booker.ID, f.item.ID, day(10, 12), day(12, 12))
		require.NoError(t, err)

		_, err = f.bookings.Approve(ctx, b.ID, true, f.booker.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)

		got, err := f.bookings.GetByID(ctx, b.ID, f.owner.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusWaiting, got.Status)
	})

	t.Run("TerminalIsOverwritten", func(t *testing.T) {
		f := newBookingFixture(t)
		b, err := f.bookings.Create(ctx, f.booker.ID, f.item.ID, day(10, 12), day(12, 12))
		require.NoError(t, err)

		_, err = f.bookings.Approve(ctx, b.ID, true, f.owner.ID)
		require.NoError(t, err)
		again, err := f.bookings.Approve(ctx, b.ID, false, f.owner.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, again.Status)
	})

	t.Run("MissingBooking", func(t *testing.T) {
		f := newBookingFixture(t)
		_, err := f.bookings.Approve(ctx, 42, true, f.owner.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBookingService_GetByID_Visibility(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)
	stranger, err := f.users.Create(ctx, "Stranger", "stranger@example.com")
	require.NoError(t, err)

	b, err := f.bookings.Create(ctx, f.booker.ID, f.item.ID, day(10, 12), day(12, 12))
	require.NoError(t, err)

	_, err = f.bookings.GetByID(ctx, b.ID, f.booker.ID)
	assert.NoError(t, err)
	_, err = f.bookings.GetByID(ctx, b.ID, f.owner.ID)
	assert.NoError(t, err)
	_, err = f.bookings.GetByID(ctx, b.ID, stranger.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestBookingService_States(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)
	f.clock.now = day(1, 12)

	past, err := f.bookings.Create(ctx, f.booker.ID, f.item.ID, day(2, 12), day(3, 12))
	require.NoError(t, err)
	current, err := f.bookings.Create(ctx, f.booker.ID, f.item.ID, day(4, 12), day(8, 12))
	require.NoError(t, err)
	future, err := f.bookings.Create(ctx, f.booker.ID, f.item.ID, day(10, 12), day(12, 12))
	require.NoError(t, err)
	_, err = f.bookings.Approve(ctx, current.ID, false, f.owner.ID)
	require.NoError(t, err)

	f.clock.now = day(5, 12)

	ids := func(list []*models.BookingDetails) []int64 {
		out := make([]int64, 0, len(list))
		for _, b := range list {
			out = append(out, b.ID)
		}
		return out
	}

	tests := []struct {
		state models.BookingState
		want  []int64
	}{
		{models.StateAll, []int64{future.ID, current.ID, past.ID}},
		{models.StateCurrent, []int64{current.ID}},
		{models.StatePast, []int64{past.ID}},
		{models.StateFuture, []int64{future.ID}},
		{models.StateWaiting, []int64{future.ID, past.ID}},
		{models.StateRejected, []int64{current.ID}},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			byBooker, err := f.bookings.GetByBooker(ctx, tt.state, f.booker.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(byBooker))

			byOwner, err := f.bookings.GetByOwner(ctx, tt.state, f.owner.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(byOwner))
		})
	}

	t.Run("PastAndFutureAreDisjoint", func(t *testing.T) {
		pastList, err := f.bookings.GetByBooker(ctx, models.StatePast, f.booker.ID)
		require.NoError(t, err)
		futureList, err := f.bookings.GetByBooker(ctx, models.StateFuture, f.booker.ID)
		require.NoError(t, err)
		for _, p := range pastList {
			assert.NotContains(t, ids(futureList), p.ID)
		}
	})

	t.Run("CurrentIncludesBoundaries", func(t *testing.T) {
		f.clock.now = day(4, 12)
		list, err := f.bookings.GetByBooker(ctx, models.StateCurrent, f.booker.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{current.ID}, ids(list))
		f.clock.now = day(5, 12)
	})

	t.Run("OwnerHasNoBookingsAsBooker", func(t *testing.T) {
		list, err := f.bookings.GetByBooker(ctx, models.StateAll, f.owner.ID)
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	t.Run("UnknownState", func(t *testing.T) {
		_, err := f.bookings.GetByBooker(ctx, models.BookingState("UNSUPPORTED"), f.booker.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		_, err := f.bookings.GetByOwner(ctx, models.StateAll, 999)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBookingService_Events(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	clock := &fixedClock{now: day(1, 12)}
	publisher := new(mockEventPublisher)

	users := NewUserService(store, testLogger())
	items := NewItemService(store, nil, clock, testLogger())
	bookings := NewBookingService(store, publisher, clock, testLogger())

	owner, err := users.Create(ctx, "Owner", "owner@example.com")
	require.NoError(t, err)
	booker, err := users.Create(ctx, "Booker", "booker@example.com")
	require.NoError(t, err)
	item, err := items.Create(ctx, owner.ID, models.Item{Name: "Tent", Description: "Two person tent", Available: true})
	require.NoError(t, err)

	publisher.On("PublishJSON", events.EventBookingCreated, mock.MatchedBy(func(p events.BookingEventPayload) bool {
		return p.ItemID == item.ID && p.BookerID == booker.ID && p.Status == "WAITING"
	})).Return(nil).Once()
	b, err := bookings.Create(ctx, booker.ID, item.ID, day(10, 12), day(12, 12))
	require.NoError(t, err)

	publisher.On("PublishJSON", events.EventBookingApproved, mock.MatchedBy(func(p events.BookingEventPayload) bool {
		return p.BookingID == b.ID && p.ChangedByID == owner.ID && !p.Overwrite
	})).Return(nil).Once()
	_, err = bookings.Approve(ctx, b.ID, true, owner.ID)
	require.NoError(t, err)

	publisher.On("PublishJSON", events.EventBookingRejected, mock.MatchedBy(func(p events.BookingEventPayload) bool {
		return p.BookingID == b.ID && p.Overwrite
	})).Return(errors.New("bus closed")).Once()
	_, err = bookings.Approve(ctx, b.ID, false, owner.ID)
	require.NoError(t, err, "publish failure must not fail the operation")

	publisher.AssertExpectations(t)
}

func TestStateQuery(t *testing.T) {
	now := day(5, 12)

	q, err := stateQuery(models.StateCurrent, now)
	require.NoError(t, err)
	assert.Equal(t, now, q.ActiveAt)

	q, err = stateQuery("", now)
	require.NoError(t, err)
	assert.Equal(t, models.BookingQuery{}, q)

	_, err = stateQuery("SOMETIMES", now)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
