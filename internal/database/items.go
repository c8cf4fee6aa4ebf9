package database

import (
	"context"
	"fmt"
	"strings"

	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

const tableItems = "items"

var itemColumns = []interface{}{"id", "name", "description", "available", "owner_id", "request_id"}

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	ds := db.dialect.Insert(tableItems).
		Rows(goqu.Record{
			"name":        item.Name,
			"description": item.Description,
			"available":   item.Available,
			"owner_id":    item.OwnerID,
			"request_id":  nullableID(item.RequestID),
		}).
		Prepared(true)

	res, err := db.exec(ctx, ds)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get item id: %w", err)
	}
	item.ID = id
	return nil
}

func (db *DB) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	ds := db.dialect.From(tableItems).
		Select(itemColumns...).
		Where(goqu.C("id").Eq(id)).
		Prepared(true)

	var item models.Item
	if err := db.selectOne(ctx, &item, ds); err != nil {
		return nil, fmt.Errorf("item %d: %w", id, err)
	}
	return &item, nil
}

// UpdateItem overwrites the mutable fields. Owner and request never change.
func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	ds := db.dialect.Update(tableItems).
		Set(goqu.Record{
			"name":        item.Name,
			"description": item.Description,
			"available":   item.Available,
		}).
		Where(goqu.C("id").Eq(item.ID)).
		Prepared(true)

	if err := db.execAffecting(ctx, ds); err != nil {
		return fmt.Errorf("failed to update item %d: %w", item.ID, err)
	}
	return nil
}

func (db *DB) ListItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error) {
	ds := db.dialect.From(tableItems).
		Select(itemColumns...).
		Where(goqu.C("owner_id").Eq(ownerID)).
		Order(goqu.C("id").Asc()).
		Prepared(true)

	var items []*models.Item
	if err := db.selectAll(ctx, &items, ds); err != nil {
		return nil, fmt.Errorf("failed to list items of owner %d: %w", ownerID, err)
	}
	return items, nil
}

func (db *DB) SearchAvailableItems(ctx context.Context, text string) ([]*models.Item, error) {
	needle := strings.ToLower(text)
	ds := db.dialect.From(tableItems).
		Select(itemColumns...).
		Where(
			goqu.C("available").Eq(true),
			goqu.Or(
				goqu.L("instr(lower_unicode(name), ?) > 0", needle),
				goqu.L("instr(lower_unicode(description), ?) > 0", needle),
			),
		).
		Order(goqu.C("id").Asc()).
		Prepared(true)

	var items []*models.Item
	if err := db.selectAll(ctx, &items, ds); err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	return items, nil
}

func (db *DB) ListItemsByRequests(ctx context.Context, requestIDs []int64) ([]*models.Item, error) {
	if len(requestIDs) == 0 {
		return nil, nil
	}

	ds := db.dialect.From(tableItems).
		Select(itemColumns...).
		Where(goqu.C("request_id").In(requestIDs)).
		Order(goqu.C("id").Asc()).
		Prepared(true)

	var items []*models.Item
	if err := db.selectAll(ctx, &items, ds); err != nil {
		return nil, fmt.Errorf("failed to list items by requests: %w", err)
	}
	return items, nil
}

func nullableID(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}
