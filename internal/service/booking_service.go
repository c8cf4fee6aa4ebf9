package service

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	store    domain.Store
	eventBus domain.EventPublisher
	clock    domain.Clock
	logger   *zerolog.Logger
}

var _ domain.BookingService = (*BookingService)(nil)

func NewBookingService(store domain.Store, eventBus domain.EventPublisher, clock domain.Clock, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		store:    store,
		eventBus: eventBus,
		clock:    clock,
		logger:   logger,
	}
}

// Create books itemID for bookerID in WAITING status. The caller has already
// checked that start is in the future and end is after start.
func (s *BookingService) Create(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.BookingDetails, error) {
	var details *models.BookingDetails
	err := s.store.InTx(ctx, false, func(ctx context.Context) error {
		booker, err := s.store.GetUser(ctx, bookerID)
		if err != nil {
			return err
		}
		item, err := s.store.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		if !item.Available {
			return fmt.Errorf("item %d: %w", itemID, domain.ErrUnavailable)
		}

		booking := models.Booking{
			Start:    start,
			End:      end,
			ItemID:   item.ID,
			BookerID: booker.ID,
			Status:   models.StatusWaiting,
		}
		if err := s.store.CreateBooking(ctx, &booking); err != nil {
			return err
		}
		details = &models.BookingDetails{Booking: booking, Item: *item, Booker: *booker}
		return nil
	})
	if err != nil {
		logFailure(s.logger, err).Int64("booker_id", bookerID).Int64("item_id", itemID).Msg("create booking failed")
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", details.ID).
		Int64("item_id", itemID).
		Int64("booker_id", bookerID).
		Msg("booking created")
	s.publishEvent(events.EventBookingCreated, details, bookerID, false)
	return details, nil
}

// Approve moves the booking to APPROVED or REJECTED on behalf of the item owner.
// A booking that is already terminal is overwritten.
func (s *BookingService) Approve(ctx context.Context, bookingID int64, approved bool, callerID int64) (*models.BookingDetails, error) {
	var (
		details   *models.BookingDetails
		overwrite bool
	)
	err := s.store.InTx(ctx, false, func(ctx context.Context) error {
		var err error
		details, err = s.store.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := domain.RequireOneOf(callerID, details.Item.OwnerID); err != nil {
			return fmt.Errorf("user %d does not own the item of booking %d: %w", callerID, bookingID, err)
		}

		status := models.StatusRejected
		if approved {
			status = models.StatusApproved
		}
		overwrite = details.Status.IsTerminal()
		if err := s.store.UpdateBookingStatus(ctx, bookingID, status); err != nil {
			return err
		}
		details.Status = status
		return nil
	})
	if err != nil {
		logFailure(s.logger, err).Int64("booking_id", bookingID).Int64("caller_id", callerID).Msg("approve booking failed")
		return nil, err
	}

	if overwrite {
		s.logger.Warn().
			Int64("booking_id", bookingID).
			Str("status", string(details.Status)).
			Msg("terminal booking status overwritten")
	} else {
		s.logger.Info().
			Int64("booking_id", bookingID).
			Str("status", string(details.Status)).
			Msg("booking status changed")
	}

	eventType := events.EventBookingRejected
	if approved {
		eventType = events.EventBookingApproved
	}
	s.publishEvent(eventType, details, callerID, overwrite)
	return details, nil
}

// GetByID is visible to the booker and the item owner only.
func (s *BookingService) GetByID(ctx context.Context, bookingID, callerID int64) (*models.BookingDetails, error) {
	var details *models.BookingDetails
	err := s.store.InTx(ctx, true, func(ctx context.Context) error {
		var err error
		details, err = s.store.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := domain.RequireOneOf(callerID, details.BookerID, details.Item.OwnerID); err != nil {
			return fmt.Errorf("user %d may not view booking %d: %w", callerID, bookingID, err)
		}
		return nil
	})
	if err != nil {
		logFailure(s.logger, err).Int64("booking_id", bookingID).Int64("caller_id", callerID).Msg("get booking failed")
		return nil, err
	}
	return details, nil
}

func (s *BookingService) GetByBooker(ctx context.Context, state models.BookingState, userID int64) ([]*models.BookingDetails, error) {
	return s.list(ctx, state, userID, func(q *models.BookingQuery) { q.BookerID = userID })
}

func (s *BookingService) GetByOwner(ctx context.Context, state models.BookingState, ownerID int64) ([]*models.BookingDetails, error) {
	return s.list(ctx, state, ownerID, func(q *models.BookingQuery) { q.OwnerID = ownerID })
}

func (s *BookingService) list(ctx context.Context, state models.BookingState, userID int64, scope func(*models.BookingQuery)) ([]*models.BookingDetails, error) {
	var bookings []*models.BookingDetails
	err := s.store.InTx(ctx, true, func(ctx context.Context) error {
		if _, err := s.store.GetUser(ctx, userID); err != nil {
			return err
		}

		q, err := stateQuery(state, s.clock.Now())
		if err != nil {
			return err
		}
		scope(&q)

		bookings, err = s.store.ListBookings(ctx, q)
		return err
	})
	if err != nil {
		logFailure(s.logger, err).Int64("user_id", userID).Str("state", string(state)).Msg("list bookings failed")
		return nil, err
	}
	if bookings == nil {
		bookings = []*models.BookingDetails{}
	}
	return bookings, nil
}

// stateQuery translates a booking window into a query evaluated at now.
func stateQuery(state models.BookingState, now time.Time) (models.BookingQuery, error) {
	switch state {
	case models.StateAll, "":
		return models.BookingQuery{}, nil
	case models.StateCurrent:
		return models.BookingQuery{ActiveAt: now}, nil
	case models.StatePast:
		return models.BookingQuery{EndBefore: now}, nil
	case models.StateFuture:
		return models.BookingQuery{StartAfter: now}, nil
	case models.StateWaiting:
		return models.BookingQuery{Status: models.StatusWaiting}, nil
	case models.StateRejected:
		return models.BookingQuery{Status: models.StatusRejected}, nil
	default:
		return models.BookingQuery{}, fmt.Errorf("unknown state %q: %w", state, domain.ErrInvalidArgument)
	}
}

func (s *BookingService) publishEvent(eventType string, b *models.BookingDetails, changedBy int64, overwrite bool) {
	publish(s.logger, s.eventBus, eventType, events.BookingEventPayload{
		BookingID:   b.ID,
		ItemID:      b.ItemID,
		ItemName:    b.Item.Name,
		OwnerID:     b.Item.OwnerID,
		BookerID:    b.BookerID,
		Status:      string(b.Status),
		Start:       b.Start,
		End:         b.End,
		ChangedByID: changedBy,
		Overwrite:   overwrite,
	})
}
