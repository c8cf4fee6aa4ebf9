package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]*models.User, error)
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	ListItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error)
	// SearchAvailableItems matches text as a case-insensitive substring of name or description.
	SearchAvailableItems(ctx context.Context, text string) ([]*models.Item, error)
	ListItemsByRequests(ctx context.Context, requestIDs []int64) ([]*models.Item, error)
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.BookingDetails, error)
	UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error
	// ListBookings returns bookings matching q ordered by start descending, then id descending.
	ListBookings(ctx context.Context, q models.BookingQuery) ([]*models.BookingDetails, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListCommentsByItems(ctx context.Context, itemIDs []int64) ([]*models.Comment, error)
}

type RequestRepository interface {
	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	// ListRequestsByRequestor returns newest first.
	ListRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error)
	// ListRequests returns newest first.
	ListRequests(ctx context.Context, offset, limit int) ([]*models.ItemRequest, error)
}

// Transactor runs fn as one unit of work. Repository calls made with the
// ctx passed to fn observe one snapshot and commit or fail together.
type Transactor interface {
	InTx(ctx context.Context, readOnly bool, fn func(ctx context.Context) error) error
}

type Store interface {
	UserRepository
	ItemRepository
	BookingRepository
	CommentRepository
	RequestRepository
	Transactor
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key int64, limit int, window time.Duration) (bool, error)
}

type UserService interface {
	Create(ctx context.Context, name, email string) (*models.User, error)
	Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

type ItemService interface {
	Create(ctx context.Context, ownerID int64, item models.Item) (*models.Item, error)
	Update(ctx context.Context, itemID, callerID int64, patch models.ItemPatch) (*models.Item, error)
	GetByID(ctx context.Context, itemID, callerID int64) (*models.ItemInfo, error)
	GetByOwner(ctx context.Context, ownerID int64) ([]*models.ItemInfo, error)
	Search(ctx context.Context, text string) ([]*models.Item, error)
	AddComment(ctx context.Context, itemID, authorID int64, text string) (*models.Comment, error)
}

type BookingService interface {
	Create(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.BookingDetails, error)
	Approve(ctx context.Context, bookingID int64, approved bool, callerID int64) (*models.BookingDetails, error)
	GetByID(ctx context.Context, bookingID, callerID int64) (*models.BookingDetails, error)
	GetByBooker(ctx context.Context, state models.BookingState, userID int64) ([]*models.BookingDetails, error)
	GetByOwner(ctx context.Context, state models.BookingState, ownerID int64) ([]*models.BookingDetails, error)
}

type RequestService interface {
	Create(ctx context.Context, description string, requestorID int64) (*models.ItemRequest, error)
	GetAllByUser(ctx context.Context, userID int64) ([]*models.RequestWithResponses, error)
	GetAll(ctx context.Context, from, size int) ([]*models.ItemRequest, error)
	GetByID(ctx context.Context, requestID int64) (*models.RequestWithResponses, error)
}
