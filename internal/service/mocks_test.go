package service

import (
	"context"
	"io"
	"time"

	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func testLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) InTx(ctx context.Context, readOnly bool, fn func(ctx context.Context) error) error {
	m.Called(readOnly)
	return fn(ctx)
}

func (m *mockStore) CreateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockStore) UpdateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockStore) DeleteUser(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
func (m *mockStore) CreateItem(ctx context.Context, i *models.Item) error {
	return m.Called(ctx, i).Error(0)
}
func (m *mockStore) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}
func (m *mockStore) UpdateItem(ctx context.Context, i *models.Item) error {
	return m.Called(ctx, i).Error(0)
}
func (m *mockStore) ListItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}
func (m *mockStore) SearchAvailableItems(ctx context.Context, text string) ([]*models.Item, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}
func (m *mockStore) ListItemsByRequests(ctx context.Context, ids []int64) ([]*models.Item, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}
func (m *mockStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockStore) GetBooking(ctx context.Context, id int64) (*models.BookingDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingDetails), args.Error(1)
}
func (m *mockStore) UpdateBookingStatus(ctx context.Context, id int64, s models.BookingStatus) error {
	return m.Called(ctx, id, s).Error(0)
}
func (m *mockStore) ListBookings(ctx context.Context, q models.BookingQuery) ([]*models.BookingDetails, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BookingDetails), args.Error(1)
}
func (m *mockStore) CreateComment(ctx context.Context, c *models.Comment) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockStore) ListCommentsByItems(ctx context.Context, ids []int64) ([]*models.Comment, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Comment), args.Error(1)
}
func (m *mockStore) CreateRequest(ctx context.Context, r *models.ItemRequest) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockStore) GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ItemRequest), args.Error(1)
}
func (m *mockStore) ListRequestsByRequestor(ctx context.Context, id int64) ([]*models.ItemRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ItemRequest), args.Error(1)
}
func (m *mockStore) ListRequests(ctx context.Context, offset, limit int) ([]*models.ItemRequest, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ItemRequest), args.Error(1)
}

type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}
