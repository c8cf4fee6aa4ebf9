package service

import (
	"context"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

// Aggregator builds the caller-specific view of items: comments for everyone,
// last and next approved bookings for the owner only.
type Aggregator struct {
	store domain.Store
	clock domain.Clock
}

func NewAggregator(store domain.Store, clock domain.Clock) *Aggregator {
	return &Aggregator{store: store, clock: clock}
}

// ItemInfo must run inside the caller's unit of work.
func (a *Aggregator) ItemInfo(ctx context.Context, item *models.Item, callerID int64) (*models.ItemInfo, error) {
	ids := []int64{item.ID}

	comments, err := a.store.ListCommentsByItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	var approved []*models.BookingDetails
	if callerID == item.OwnerID {
		approved, err = a.store.ListBookings(ctx, models.BookingQuery{ItemIDs: ids, Status: models.StatusApproved})
		if err != nil {
			return nil, err
		}
	}

	info := newItemInfo(item, comments)
	if callerID == item.OwnerID {
		info.LastBooking, info.NextBooking = lastAndNext(approved, a.clock.Now())
	}
	return info, nil
}

// OwnerItemInfos aggregates items of one owner with one comment read and one
// booking read for the whole set.
func (a *Aggregator) OwnerItemInfos(ctx context.Context, items []*models.Item) ([]*models.ItemInfo, error) {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}

	comments, err := a.store.ListCommentsByItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	approved, err := a.store.ListBookings(ctx, models.BookingQuery{ItemIDs: ids, Status: models.StatusApproved})
	if err != nil {
		return nil, err
	}

	commentsByItem := make(map[int64][]*models.Comment, len(items))
	for _, c := range comments {
		commentsByItem[c.ItemID] = append(commentsByItem[c.ItemID], c)
	}
	bookingsByItem := make(map[int64][]*models.BookingDetails, len(items))
	for _, b := range approved {
		bookingsByItem[b.ItemID] = append(bookingsByItem[b.ItemID], b)
	}

	now := a.clock.Now()
	infos := make([]*models.ItemInfo, 0, len(items))
	for _, it := range items {
		info := newItemInfo(it, commentsByItem[it.ID])
		info.LastBooking, info.NextBooking = lastAndNext(bookingsByItem[it.ID], now)
		infos = append(infos, info)
	}
	return infos, nil
}

func newItemInfo(item *models.Item, comments []*models.Comment) *models.ItemInfo {
	info := &models.ItemInfo{Item: *item, Comments: make([]models.Comment, 0, len(comments))}
	for _, c := range comments {
		info.Comments = append(info.Comments, *c)
	}
	return info
}

// lastAndNext returns the booking with the latest end before now and the
// booking with the earliest start after now. Bookings spanning now are neither.
func lastAndNext(bookings []*models.BookingDetails, now time.Time) (last, next *models.Booking) {
	for _, b := range bookings {
		switch {
		case b.End.Before(now):
			if last == nil || b.End.After(last.End) {
				bk := b.Booking
				last = &bk
			}
		case b.Start.After(now):
			if next == nil || b.Start.Before(next.Start) {
				bk := b.Booking
				next = &bk
			}
		}
	}
	return last, next
}
