package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"shareit/internal/domain"
	"shareit/internal/models"
)

// MemoryStore keeps all entities in process memory. Write units of work are
// serialized and rolled back on error; read units run concurrently.
type MemoryStore struct {
	txMu sync.RWMutex
	mu   sync.RWMutex
	data memoryData
}

type memoryData struct {
	users    map[int64]models.User
	items    map[int64]models.Item
	bookings map[int64]models.Booking
	comments map[int64]models.Comment
	requests map[int64]models.ItemRequest
	seq      sequences
}

type sequences struct {
	user, item, booking, comment, request int64
}

var _ domain.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: memoryData{
		users:    make(map[int64]models.User),
		items:    make(map[int64]models.Item),
		bookings: make(map[int64]models.Booking),
		comments: make(map[int64]models.Comment),
		requests: make(map[int64]models.ItemRequest),
	}}
}

func (d *memoryData) clone() memoryData {
	c := memoryData{
		users:    make(map[int64]models.User, len(d.users)),
		items:    make(map[int64]models.Item, len(d.items)),
		bookings: make(map[int64]models.Booking, len(d.bookings)),
		comments: make(map[int64]models.Comment, len(d.comments)),
		requests: make(map[int64]models.ItemRequest, len(d.requests)),
		seq:      d.seq,
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.items {
		c.items[k] = v
	}
	for k, v := range d.bookings {
		c.bookings[k] = v
	}
	for k, v := range d.comments {
		c.comments[k] = v
	}
	for k, v := range d.requests {
		c.requests[k] = v
	}
	return c
}

func next(seq *int64) int64 {
	*seq++
	return *seq
}

type memoryTxKey struct{}

func (s *MemoryStore) InTx(ctx context.Context, readOnly bool, fn func(ctx context.Context) error) error {
	if ctx.Value(memoryTxKey{}) != nil {
		return fn(ctx)
	}
	ctx = context.WithValue(ctx, memoryTxKey{}, true)

	if readOnly {
		s.txMu.RLock()
		defer s.txMu.RUnlock()
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(user.Email, 0) {
		return fmt.Errorf("email %q: %w", user.Email, domain.ErrDuplicateAddress)
	}
	user.ID = next(&s.data.seq.user)
	s.data.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) emailTaken(email string, exceptID int64) bool {
	for id, u := range s.data.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

func (s *MemoryStore) GetUser(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.data.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return &u, nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.users[user.ID]; !ok {
		return fmt.Errorf("user %d: %w", user.ID, domain.ErrNotFound)
	}
	if s.emailTaken(user.Email, user.ID) {
		return fmt.Errorf("email %q: %w", user.Email, domain.ErrDuplicateAddress)
	}
	s.data.users[user.ID] = *user
	return nil
}

// DeleteUser removes the user with its items, bookings, comments and requests.
func (s *MemoryStore) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.users[id]; !ok {
		return nil
	}
	delete(s.data.users, id)

	for rid, r := range s.data.requests {
		if r.RequestorID == id {
			delete(s.data.requests, rid)
		}
	}
	for iid, it := range s.data.items {
		if it.OwnerID == id {
			delete(s.data.items, iid)
			continue
		}
		if it.RequestID != nil {
			if _, ok := s.data.requests[*it.RequestID]; !ok {
				it.RequestID = nil
				s.data.items[iid] = it
			}
		}
	}
	for bid, b := range s.data.bookings {
		if _, ok := s.data.items[b.ItemID]; !ok || b.BookerID == id {
			delete(s.data.bookings, bid)
		}
	}
	for cid, c := range s.data.comments {
		if _, ok := s.data.items[c.ItemID]; !ok || c.AuthorID == id {
			delete(s.data.comments, cid)
		}
	}
	return nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0, len(s.data.users))
	for _, u := range s.data.users {
		u := u
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *MemoryStore) CreateItem(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.users[item.OwnerID]; !ok {
		return fmt.Errorf("owner %d: %w", item.OwnerID, domain.ErrNotFound)
	}
	if item.RequestID != nil {
		if _, ok := s.data.requests[*item.RequestID]; !ok {
			return fmt.Errorf("request %d: %w", *item.RequestID, domain.ErrNotFound)
		}
	}
	item.ID = next(&s.data.seq.item)
	s.data.items[item.ID] = *item
	return nil
}

func (s *MemoryStore) GetItem(_ context.Context, id int64) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.data.items[id]
	if !ok {
		return nil, fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	return &it, nil
}

func (s *MemoryStore) UpdateItem(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.data.items[item.ID]
	if !ok {
		return fmt.Errorf("item %d: %w", item.ID, domain.ErrNotFound)
	}
	stored.Name = item.Name
	stored.Description = item.Description
	stored.Available = item.Available
	s.data.items[item.ID] = stored
	return nil
}

func (s *MemoryStore) ListItemsByOwner(_ context.Context, ownerID int64) ([]*models.Item, error) {
	return s.filterItems(func(it *models.Item) bool { return it.OwnerID == ownerID }), nil
}

func (s *MemoryStore) SearchAvailableItems(_ context.Context, text string) ([]*models.Item, error) {
	needle := strings.ToLower(text)
	return s.filterItems(func(it *models.Item) bool {
		return it.Available &&
			(strings.Contains(strings.ToLower(it.Name), needle) ||
				strings.Contains(strings.ToLower(it.Description), needle))
	}), nil
}

func (s *MemoryStore) ListItemsByRequests(_ context.Context, requestIDs []int64) ([]*models.Item, error) {
	if len(requestIDs) == 0 {
		return nil, nil
	}
	wanted := make(map[int64]bool, len(requestIDs))
	for _, id := range requestIDs {
		wanted[id] = true
	}
	return s.filterItems(func(it *models.Item) bool {
		return it.RequestID != nil && wanted[*it.RequestID]
	}), nil
}

func (s *MemoryStore) filterItems(keep func(*models.Item) bool) []*models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []*models.Item
	for _, it := range s.data.items {
		it := it
		if keep(&it) {
			items = append(items, &it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (s *MemoryStore) CreateBooking(_ context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.items[booking.ItemID]; !ok {
		return fmt.Errorf("item %d: %w", booking.ItemID, domain.ErrNotFound)
	}
	if _, ok := s.data.users[booking.BookerID]; !ok {
		return fmt.Errorf("user %d: %w", booking.BookerID, domain.ErrNotFound)
	}
	booking.ID = next(&s.data.seq.booking)
	s.data.bookings[booking.ID] = *booking
	return nil
}

func (s *MemoryStore) GetBooking(_ context.Context, id int64) (*models.BookingDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.data.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %d: %w", id, domain.ErrNotFound)
	}
	return s.details(b), nil
}

func (s *MemoryStore) details(b models.Booking) *models.BookingDetails {
	return &models.BookingDetails{
		Booking: b,
		Item:    s.data.items[b.ItemID],
		Booker:  s.data.users[b.BookerID],
	}
}

func (s *MemoryStore) UpdateBookingStatus(_ context.Context, id int64, status models.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.data.bookings[id]
	if !ok {
		return fmt.Errorf("booking %d: %w", id, domain.ErrNotFound)
	}
	b.Status = status
	s.data.bookings[id] = b
	return nil
}

func (s *MemoryStore) ListBookings(_ context.Context, q models.BookingQuery) ([]*models.BookingDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bookings []*models.BookingDetails
	for _, b := range s.data.bookings {
		d := s.details(b)
		if q.Matches(d) {
			bookings = append(bookings, d)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		if !bookings[i].Start.Equal(bookings[j].Start) {
			return bookings[i].Start.After(bookings[j].Start)
		}
		return bookings[i].ID > bookings[j].ID
	})
	return bookings, nil
}

func (s *MemoryStore) CreateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.items[comment.ItemID]; !ok {
		return fmt.Errorf("item %d: %w", comment.ItemID, domain.ErrNotFound)
	}
	author, ok := s.data.users[comment.AuthorID]
	if !ok {
		return fmt.Errorf("user %d: %w", comment.AuthorID, domain.ErrNotFound)
	}
	comment.ID = next(&s.data.seq.comment)
	comment.AuthorName = author.Name
	s.data.comments[comment.ID] = *comment
	return nil
}

func (s *MemoryStore) ListCommentsByItems(_ context.Context, itemIDs []int64) ([]*models.Comment, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	wanted := make(map[int64]bool, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var comments []*models.Comment
	for _, c := range s.data.comments {
		if !wanted[c.ItemID] {
			continue
		}
		c := c
		c.AuthorName = s.data.users[c.AuthorID].Name
		comments = append(comments, &c)
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

func (s *MemoryStore) CreateRequest(_ context.Context, request *models.ItemRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.users[request.RequestorID]; !ok {
		return fmt.Errorf("user %d: %w", request.RequestorID, domain.ErrNotFound)
	}
	request.ID = next(&s.data.seq.request)
	s.data.requests[request.ID] = *request
	return nil
}

func (s *MemoryStore) GetRequest(_ context.Context, id int64) (*models.ItemRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data.requests[id]
	if !ok {
		return nil, fmt.Errorf("request %d: %w", id, domain.ErrNotFound)
	}
	return &r, nil
}

func (s *MemoryStore) ListRequestsByRequestor(_ context.Context, requestorID int64) ([]*models.ItemRequest, error) {
	return s.newestRequests(func(r *models.ItemRequest) bool { return r.RequestorID == requestorID }), nil
}

func (s *MemoryStore) ListRequests(_ context.Context, offset, limit int) ([]*models.ItemRequest, error) {
	all := s.newestRequests(func(*models.ItemRequest) bool { return true })
	if offset >= len(all) || limit <= 0 {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *MemoryStore) newestRequests(keep func(*models.ItemRequest) bool) []*models.ItemRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var requests []*models.ItemRequest
	for _, r := range s.data.requests {
		r := r
		if keep(&r) {
			requests = append(requests, &r)
		}
	}
	sort.Slice(requests, func(i, j int) bool {
		if !requests[i].Created.Equal(requests[j].Created) {
			return requests[i].Created.After(requests[j].Created)
		}
		return requests[i].ID > requests[j].ID
	})
	return requests
}
