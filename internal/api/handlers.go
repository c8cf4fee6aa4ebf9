package api

import (
	"context"
	"io"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"shareit/internal/models"
)

const (
	maxItemNameLen        = 255
	maxItemDescriptionLen = 1000
)

// timestamp layouts accepted for booking dates; zone-less values are UTC
var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"}

type userRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type itemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
	RequestID   *int64 `json:"requestId"`
}

type commentRequest struct {
	Text string `json:"text"`
}

type bookingRequest struct {
	ItemID int64  `json:"itemId"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

type itemRequestCreate struct {
	Description string `json:"description"`
}

// --- users ---

func (s *HTTPServer) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var body userRequest
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		s.fail(w, r, badRequest("name is required"))
		return
	}
	if err := validateEmail(body.Email, true); err != nil {
		s.fail(w, r, err)
		return
	}

	user, err := s.deps.Users.Create(r.Context(), strings.TrimSpace(body.Name), strings.TrimSpace(body.Email))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body models.UserPatch
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	body.Email = strings.TrimSpace(body.Email)
	if err := validateEmail(body.Email, false); err != nil {
		s.fail(w, r, err)
		return
	}

	user, err := s.deps.Users.Update(r.Context(), id, body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.Users.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *HTTPServer) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	user, err := s.deps.Users.GetByID(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.deps.Users.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// --- items ---

func (s *HTTPServer) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body itemRequest
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	switch {
	case strings.TrimSpace(body.Name) == "":
		err = badRequest("name is required")
	case strings.TrimSpace(body.Description) == "":
		err = badRequest("description is required")
	case body.Available == nil:
		err = badRequest("available is required")
	default:
		err = validateItemText(body.Name, body.Description)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	item, err := s.deps.Items.Create(r.Context(), userID, models.Item{
		Name:        body.Name,
		Description: body.Description,
		Available:   *body.Available,
		RequestID:   body.RequestID,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body models.ItemPatch
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := validateItemText(body.Name, body.Description); err != nil {
		s.fail(w, r, err)
		return
	}

	item, err := s.deps.Items.Update(r.Context(), itemID, userID, body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) handleGetItem(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	info, err := s.deps.Items.GetByID(r.Context(), itemID, userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *HTTPServer) handleOwnerItems(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	infos, err := s.deps.Items.GetByOwner(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if infos == nil {
		infos = []*models.ItemInfo{}
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *HTTPServer) handleSearchItems(w http.ResponseWriter, r *http.Request) {
	if _, err := callerID(r); err != nil {
		s.fail(w, r, err)
		return
	}
	items, err := s.deps.Items.Search(r.Context(), r.URL.Query().Get("text"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) handleAddComment(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body commentRequest
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		s.fail(w, r, badRequest("text is required"))
		return
	}

	comment, err := s.deps.Items.AddComment(r.Context(), itemID, userID, body.Text)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// --- bookings ---

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body bookingRequest
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	start, end, err := s.bookingDates(body)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	booking, err := s.deps.Bookings.Create(r.Context(), userID, body.ItemID, start, end)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// bookingDates parses the requested window: start must be in the future and end after start.
func (s *HTTPServer) bookingDates(body bookingRequest) (time.Time, time.Time, error) {
	start, err := parseTimestamp(body.Start)
	if err != nil {
		return time.Time{}, time.Time{}, badRequest("invalid start: %s", body.Start)
	}
	end, err := parseTimestamp(body.End)
	if err != nil {
		return time.Time{}, time.Time{}, badRequest("invalid end: %s", body.End)
	}
	if !start.After(s.deps.Clock.Now()) {
		return time.Time{}, time.Time{}, badRequest("start must be in the future")
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, badRequest("end must be after start")
	}
	return start, end, nil
}

func (s *HTTPServer) handleApproveBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
	if err != nil {
		s.fail(w, r, badRequest("approved must be true or false"))
		return
	}

	booking, err := s.deps.Bookings.Approve(r.Context(), bookingID, approved, userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	booking, err := s.deps.Bookings.GetByID(r.Context(), bookingID, userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleBookerBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.deps.Bookings.GetByBooker)
}

func (s *HTTPServer) handleOwnerBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.deps.Bookings.GetByOwner)
}

type bookingLister func(ctx context.Context, state models.BookingState, userID int64) ([]*models.BookingDetails, error)

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request, list bookingLister) {
	userID, err := callerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	raw := r.URL.Query().Get("state")
	if raw == "" {
		raw = string(models.StateAll)
	}
	state, ok := models.ParseBookingState(raw)
	if !ok {
		s.fail(w, r, badRequest("Unknown state: %s", raw))
		return
	}

	bookings, err := list(r.Context(), state, userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// --- requests ---

func (s *HTTPServer) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body itemRequestCreate
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	if strings.TrimSpace(body.Description) == "" {
		s.fail(w, r, badRequest("description is required"))
		return
	}

	request, err := s.deps.Requests.Create(r.Context(), body.Description, userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (s *HTTPServer) handleUserRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	requests, err := s.deps.Requests.GetAllByUser(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if requests == nil {
		requests = []*models.RequestWithResponses{}
	}
	writeJSON(w, http.StatusOK, requests)
}

func (s *HTTPServer) handleAllRequests(w http.ResponseWriter, r *http.Request) {
	from, err := queryInt(r, "from", 0)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	size, err := queryInt(r, "size", models.DefaultRequestsPageSize)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if from < 0 {
		s.fail(w, r, badRequest("from must not be negative"))
		return
	}
	if size <= 0 {
		s.fail(w, r, badRequest("size must be positive"))
		return
	}

	requests, err := s.deps.Requests.GetAll(r.Context(), from, size)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (s *HTTPServer) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	request, err := s.deps.Requests.GetByID(r.Context(), requestID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

// --- helpers ---

func callerID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(models.UserIDHeader))
	if raw == "" {
		return 0, badRequest("missing %s header", models.UserIDHeader)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, badRequest("invalid %s header: %s", models.UserIDHeader, raw)
	}
	return id, nil
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid id: %s", raw)
	}
	return id, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest("invalid %s: %s", name, raw)
	}
	return v, nil
}

func decodeBody(r *http.Request, dst any) error {
	data, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		return badRequest("failed to read request body")
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return badRequest("invalid JSON body")
	}
	return nil
}

func validateEmail(email string, required bool) error {
	email = strings.TrimSpace(email)
	if email == "" {
		if required {
			return badRequest("email is required")
		}
		return nil
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return badRequest("invalid email: %s", email)
	}
	return nil
}

func validateItemText(name, description string) error {
	if utf8.RuneCountInString(name) > maxItemNameLen {
		return badRequest("name must be at most %d characters", maxItemNameLen)
	}
	if utf8.RuneCountInString(description) > maxItemDescriptionLen {
		return badRequest("description must be at most %d characters", maxItemDescriptionLen)
	}
	return nil
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
