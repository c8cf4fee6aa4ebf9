package service

import (
	"context"
	"fmt"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type RequestService struct {
	store    domain.Store
	eventBus domain.EventPublisher
	clock    domain.Clock
	logger   *zerolog.Logger
}

var _ domain.RequestService = (*RequestService)(nil)

func NewRequestService(store domain.Store, eventBus domain.EventPublisher, clock domain.Clock, logger *zerolog.Logger) *RequestService {
	return &RequestService{
		store:    store,
		eventBus: eventBus,
		clock:    clock,
		logger:   logger,
	}
}

func (s *RequestService) Create(ctx context.Context, description string, requestorID int64) (*models.ItemRequest, error) {
	request := &models.ItemRequest{
		Description: description,
		RequestorID: requestorID,
		Created:     s.clock.Now(),
	}
	err := s.store.InTx(ctx, false, func(ctx context.Context) error {
		if _, err := s.store.GetUser(ctx, requestorID); err != nil {
			return err
		}
		return s.store.CreateRequest(ctx, request)
	})
	if err != nil {
		logFailure(s.logger, err).Int64("requestor_id", requestorID).Msg("create request failed")
		return nil, err
	}

	publish(s.logger, s.eventBus, events.EventRequestCreated, events.RequestEventPayload{
		RequestID:   request.ID,
		RequestorID: requestorID,
	})
	return request, nil
}

// GetAllByUser returns the user's requests, newest first, with the items listed against them.
func (s *RequestService) GetAllByUser(ctx context.Context, userID int64) ([]*models.RequestWithResponses, error) {
	var result []*models.RequestWithResponses
	err := s.store.InTx(ctx, true, func(ctx context.Context) error {
		if _, err := s.store.GetUser(ctx, userID); err != nil {
			return err
		}
		requests, err := s.store.ListRequestsByRequestor(ctx, userID)
		if err != nil {
			return err
		}
		result, err = s.withResponses(ctx, requests)
		return err
	})
	if err != nil {
		logFailure(s.logger, err).Int64("user_id", userID).Msg("get user requests failed")
		return nil, err
	}
	return result, nil
}

// GetAll pages through all requests, newest first. The page index is from/size.
func (s *RequestService) GetAll(ctx context.Context, from, size int) ([]*models.ItemRequest, error) {
	if from < 0 || size <= 0 {
		return nil, fmt.Errorf("from=%d size=%d: %w", from, size, domain.ErrInvalidArgument)
	}
	offset := (from / size) * size

	var requests []*models.ItemRequest
	err := s.store.InTx(ctx, true, func(ctx context.Context) error {
		var err error
		requests, err = s.store.ListRequests(ctx, offset, size)
		return err
	})
	if err != nil {
		logFailure(s.logger, err).Int("from", from).Int("size", size).Msg("list requests failed")
		return nil, err
	}
	if requests == nil {
		requests = []*models.ItemRequest{}
	}
	return requests, nil
}

func (s *RequestService) GetByID(ctx context.Context, requestID int64) (*models.RequestWithResponses, error) {
	var result *models.RequestWithResponses
	err := s.store.InTx(ctx, true, func(ctx context.Context) error {
		request, err := s.store.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		list, err := s.withResponses(ctx, []*models.ItemRequest{request})
		if err != nil {
			return err
		}
		result = list[0]
		return nil
	})
	if err != nil {
		logFailure(s.logger, err).Int64("request_id", requestID).Msg("get request failed")
		return nil, err
	}
	return result, nil
}

// withResponses attaches responding items using one lookup for all requests.
func (s *RequestService) withResponses(ctx context.Context, requests []*models.ItemRequest) ([]*models.RequestWithResponses, error) {
	ids := make([]int64, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.ID)
	}

	items, err := s.store.ListItemsByRequests(ctx, ids)
	if err != nil {
		return nil, err
	}

	byRequest := make(map[int64][]models.RequestResponse, len(requests))
	for _, it := range items {
		if it.RequestID == nil {
			continue
		}
		byRequest[*it.RequestID] = append(byRequest[*it.RequestID], models.RequestResponse{
			ItemID:  it.ID,
			Name:    it.Name,
			OwnerID: it.OwnerID,
		})
	}

	result := make([]*models.RequestWithResponses, 0, len(requests))
	for _, r := range requests {
		responses := byRequest[r.ID]
		if responses == nil {
			responses = []models.RequestResponse{}
		}
		result = append(result, &models.RequestWithResponses{ItemRequest: *r, Items: responses})
	}
	return result, nil
}
