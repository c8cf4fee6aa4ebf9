package models

import (
	"strings"
	"time"
)

// BookingStatus is the lifecycle status of a booking.
// WAITING is the only initial status; APPROVED and REJECTED are terminal.
type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
)

func (s BookingStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// BookingState selects a window of bookings relative to the current time.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

var bookingStates = []BookingState{
	StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected,
}

// ParseBookingState matches raw against the known states, ignoring case.
func ParseBookingState(raw string) (BookingState, bool) {
	raw = strings.TrimSpace(raw)
	for _, s := range bookingStates {
		if strings.EqualFold(string(s), raw) {
			return s, true
		}
	}
	return "", false
}

type Booking struct {
	ID       int64         `json:"id" db:"id"`
	Start    time.Time     `json:"start" db:"start_at"`
	End      time.Time     `json:"end" db:"end_at"`
	ItemID   int64         `json:"itemId" db:"item_id"`
	BookerID int64         `json:"bookerId" db:"booker_id"`
	Status   BookingStatus `json:"status" db:"status"`
}

// BookingDetails is a booking together with the item it targets and the user who made it.
type BookingDetails struct {
	Booking
	Item   Item `json:"item"`
	Booker User `json:"booker"`
}

// BookingQuery describes a booking lookup. Zero values leave a criterion unset.
// A non-nil but empty ItemIDs matches nothing.
type BookingQuery struct {
	BookerID   int64
	OwnerID    int64
	ItemIDs    []int64
	EndBefore  time.Time
	StartAfter time.Time
	ActiveAt   time.Time
	Status     BookingStatus
}

// Matches reports whether b satisfies every criterion set in q.
func (q BookingQuery) Matches(b *BookingDetails) bool {
	if q.BookerID != 0 && b.BookerID != q.BookerID {
		return false
	}
	if q.OwnerID != 0 && b.Item.OwnerID != q.OwnerID {
		return false
	}
	if q.ItemIDs != nil && !containsID(q.ItemIDs, b.ItemID) {
		return false
	}
	if !q.EndBefore.IsZero() && !b.End.Before(q.EndBefore) {
		return false
	}
	if !q.StartAfter.IsZero() && !b.Start.After(q.StartAfter) {
		return false
	}
	// inclusive on both ends
	if !q.ActiveAt.IsZero() && (b.Start.After(q.ActiveAt) || b.End.Before(q.ActiveAt)) {
		return false
	}
	if q.Status != "" && b.Status != q.Status {
		return false
	}
	return true
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
