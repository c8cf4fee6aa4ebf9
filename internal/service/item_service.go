package service

import (
	"context"
	"fmt"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	store      domain.Store
	aggregator *Aggregator
	eventBus   domain.EventPublisher
	clock      domain.Clock
	logger     *zerolog.Logger
}

var _ domain.ItemService = (*ItemService)(nil)

func NewItemService(store domain.Store, eventBus domain.EventPublisher, clock domain.Clock, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		store:      store,
		aggregator: NewAggregator(store, clock),
		eventBus:   eventBus,
		clock:      clock,
		logger:     logger,
	}
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, item models.Item) (*models.Item, error) {
	item.ID = 0
	item.OwnerID = ownerID

	err := s.store.InTx(ctx, false, func(ctx context.Context) error {
		if _, err := s.store.GetUser(ctx, ownerID); err != nil {
			return err
		}
		if item.RequestID != nil {
			if _, err := s.store.GetRequest(ctx, *item.RequestID); err != nil {
				return err
			}
		}
		return s.store.CreateItem(ctx, &item)
	})
	if err != nil {
		logFailure(s.logger, err).Int64("owner_id", ownerID).Msg("create item failed")
		return nil, err
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("item created")
	publish(s.logger, s.eventBus, events.EventItemCreated, events.ItemEventPayload{
		ItemID:    item.ID,
		OwnerID:   item.OwnerID,
		RequestID: item.RequestID,
	})
	return &item, nil
}

// Update applies patch on behalf of callerID, who must own the item.
func (s *ItemService) Update(ctx context.Context, itemID, callerID int64, patch models.ItemPatch) (*models.Item, error) {
	var item *models.Item
	err := s.store.InTx(ctx, false, func(ctx context.Context) error {
		var err error
		item, err = s.store.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		if err := domain.RequireOneOf(callerID, item.OwnerID); err != nil {
			return fmt.Errorf("user %d does not own item %d: %w", callerID, itemID, err)
		}

		if strings.TrimSpace(patch.Name) != "" {
			item.Name = patch.Name
		}
		if strings.TrimSpace(patch.Description) != "" {
			item.Description = patch.Description
		}
		if patch.Available != nil {
			item.Available = *patch.Available
		}
		return s.store.UpdateItem(ctx, item)
	})
	if err != nil {
		logFailure(s.logger, err).Int64("item_id", itemID).Int64("caller_id", callerID).Msg("update item failed")
		return nil, err
	}
	return item, nil
}

func (s *ItemService) GetByID(ctx context.Context, itemID, callerID int64) (*models.ItemInfo, error) {
	var info *models.ItemInfo
	err := s.store.InTx(ctx, true, func(ctx context.Context) error {
		item, err := s.store.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		info, err = s.aggregator.ItemInfo(ctx, item, callerID)
		return err
	})
	if err != nil {
		logFailure(s.logger, err).Int64("item_id", itemID).Msg("get item failed")
		return nil, err
	}
	return info, nil
}

func (s *ItemService) GetByOwner(ctx context.Context, ownerID int64) ([]*models.ItemInfo, error) {
	var infos []*models.ItemInfo
	err := s.store.InTx(ctx, true, func(ctx context.Context) error {
		if _, err := s.store.GetUser(ctx, ownerID); err != nil {
			return err
		}
		items, err := s.store.ListItemsByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		infos, err = s.aggregator.OwnerItemInfos(ctx, items)
		return err
	})
	if err != nil {
		logFailure(s.logger, err).Int64("owner_id", ownerID).Msg("get owner items failed")
		return nil, err
	}
	return infos, nil
}

// Search returns available items whose name or description contains text.
// Blank text matches nothing.
func (s *ItemService) Search(ctx context.Context, text string) ([]*models.Item, error) {
	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}

	var items []*models.Item
	err := s.store.InTx(ctx, true, func(ctx context.Context) error {
		var err error
		items, err = s.store.SearchAvailableItems(ctx, text)
		return err
	})
	if err != nil {
		logFailure(s.logger, err).Str("text", text).Msg("search items failed")
		return nil, err
	}
	if items == nil {
		items = []*models.Item{}
	}
	return items, nil
}

// AddComment lets a user comment on an item once one of their bookings of it has ended.
func (s *ItemService) AddComment(ctx context.Context, itemID, authorID int64, text string) (*models.Comment, error) {
	var comment *models.Comment
	err := s.store.InTx(ctx, false, func(ctx context.Context) error {
		now := s.clock.Now()
		finished, err := s.store.ListBookings(ctx, models.BookingQuery{
			BookerID:  authorID,
			ItemIDs:   []int64{itemID},
			EndBefore: now,
		})
		if err != nil {
			return err
		}
		if len(finished) == 0 {
			return fmt.Errorf("user %d has no finished booking of item %d: %w", authorID, itemID, domain.ErrForbidden)
		}

		first := finished[0]
		comment = &models.Comment{
			Text:       text,
			ItemID:     first.ItemID,
			AuthorID:   first.BookerID,
			AuthorName: first.Booker.Name,
			Created:    now,
		}
		return s.store.CreateComment(ctx, comment)
	})
	if err != nil {
		logFailure(s.logger, err).Int64("item_id", itemID).Int64("author_id", authorID).Msg("add comment failed")
		return nil, err
	}

	publish(s.logger, s.eventBus, events.EventCommentAdded, events.CommentEventPayload{
		CommentID: comment.ID,
		ItemID:    comment.ItemID,
		AuthorID:  comment.AuthorID,
	})
	return comment, nil
}
