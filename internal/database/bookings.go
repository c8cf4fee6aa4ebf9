package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

const tableBookings = "bookings"

// bookingRow is a booking joined with its item and booker.
type bookingRow struct {
	ID              int64                `db:"id"`
	Start           time.Time            `db:"start_at"`
	End             time.Time            `db:"end_at"`
	ItemID          int64                `db:"item_id"`
	BookerID        int64                `db:"booker_id"`
	Status          models.BookingStatus `db:"status"`
	ItemName        string               `db:"item_name"`
	ItemDescription string               `db:"item_description"`
	ItemAvailable   bool                 `db:"item_available"`
	ItemOwnerID     int64                `db:"item_owner_id"`
	ItemRequestID   sql.NullInt64        `db:"item_request_id"`
	BookerName      string               `db:"booker_name"`
	BookerEmail     string               `db:"booker_email"`
}

func (r *bookingRow) toDetails() *models.BookingDetails {
	d := &models.BookingDetails{
		Booking: models.Booking{
			ID:       r.ID,
			Start:    r.Start,
			End:      r.End,
			ItemID:   r.ItemID,
			BookerID: r.BookerID,
			Status:   r.Status,
		},
		Item: models.Item{
			ID:          r.ItemID,
			Name:        r.ItemName,
			Description: r.ItemDescription,
			Available:   r.ItemAvailable,
			OwnerID:     r.ItemOwnerID,
		},
		Booker: models.User{
			ID:    r.BookerID,
			Name:  r.BookerName,
			Email: r.BookerEmail,
		},
	}
	if r.ItemRequestID.Valid {
		id := r.ItemRequestID.Int64
		d.Item.RequestID = &id
	}
	return d
}

func (db *DB) bookingDetailsQuery() *goqu.SelectDataset {
	return db.dialect.From(goqu.T(tableBookings).As("b")).
		Join(goqu.T(tableItems).As("i"), goqu.On(goqu.I("i.id").Eq(goqu.I("b.item_id")))).
		Join(goqu.T(tableUsers).As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("b.booker_id")))).
		Select(
			goqu.I("b.id"),
			goqu.I("b.start_at"),
			goqu.I("b.end_at"),
			goqu.I("b.item_id"),
			goqu.I("b.booker_id"),
			goqu.I("b.status"),
			goqu.I("i.name").As("item_name"),
			goqu.I("i.description").As("item_description"),
			goqu.I("i.available").As("item_available"),
			goqu.I("i.owner_id").As("item_owner_id"),
			goqu.I("i.request_id").As("item_request_id"),
			goqu.I("u.name").As("booker_name"),
			goqu.I("u.email").As("booker_email"),
		)
}

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	ds := db.dialect.Insert(tableBookings).
		Rows(goqu.Record{
			"start_at":  utc(booking.Start),
			"end_at":    utc(booking.End),
			"item_id":   booking.ItemID,
			"booker_id": booking.BookerID,
			"status":    string(booking.Status),
		}).
		Prepared(true)

	res, err := db.exec(ctx, ds)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get booking id: %w", err)
	}
	booking.ID = id
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.BookingDetails, error) {
	ds := db.bookingDetailsQuery().
		Where(goqu.I("b.id").Eq(id)).
		Prepared(true)

	var row bookingRow
	if err := db.selectOne(ctx, &row, ds); err != nil {
		return nil, fmt.Errorf("booking %d: %w", id, err)
	}
	return row.toDetails(), nil
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	ds := db.dialect.Update(tableBookings).
		Set(goqu.Record{"status": string(status)}).
		Where(goqu.C("id").Eq(id)).
		Prepared(true)

	if err := db.execAffecting(ctx, ds); err != nil {
		return fmt.Errorf("failed to update booking %d status: %w", id, err)
	}
	return nil
}

func (db *DB) ListBookings(ctx context.Context, q models.BookingQuery) ([]*models.BookingDetails, error) {
	if q.ItemIDs != nil && len(q.ItemIDs) == 0 {
		return nil, nil
	}

	ds := db.bookingDetailsQuery().
		Where(bookingFilter(q)...).
		Order(goqu.I("b.start_at").Desc(), goqu.I("b.id").Desc()).
		Prepared(true)

	var rows []bookingRow
	if err := db.selectAll(ctx, &rows, ds); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*models.BookingDetails, 0, len(rows))
	for i := range rows {
		bookings = append(bookings, rows[i].toDetails())
	}
	return bookings, nil
}

// bookingFilter mirrors models.BookingQuery.Matches in SQL.
func bookingFilter(q models.BookingQuery) []exp.Expression {
	var where []exp.Expression
	if q.BookerID != 0 {
		where = append(where, goqu.I("b.booker_id").Eq(q.BookerID))
	}
	if q.OwnerID != 0 {
		where = append(where, goqu.I("i.owner_id").Eq(q.OwnerID))
	}
	if len(q.ItemIDs) > 0 {
		where = append(where, goqu.I("b.item_id").In(q.ItemIDs))
	}
	if !q.EndBefore.IsZero() {
		where = append(where, goqu.I("b.end_at").Lt(utc(q.EndBefore)))
	}
	if !q.StartAfter.IsZero() {
		where = append(where, goqu.I("b.start_at").Gt(utc(q.StartAfter)))
	}
	if !q.ActiveAt.IsZero() {
		at := utc(q.ActiveAt)
		where = append(where, goqu.I("b.start_at").Lte(at), goqu.I("b.end_at").Gte(at))
	}
	if q.Status != "" {
		where = append(where, goqu.I("b.status").Eq(string(q.Status)))
	}
	return where
}
