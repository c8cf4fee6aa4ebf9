package database

import (
	"context"
	"fmt"

	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

const tableRequests = "requests"

var requestColumns = []interface{}{"id", "description", "requestor_id", "created_at"}

func (db *DB) CreateRequest(ctx context.Context, request *models.ItemRequest) error {
	ds := db.dialect.Insert(tableRequests).
		Rows(goqu.Record{
			"description":  request.Description,
			"requestor_id": request.RequestorID,
			"created_at":   utc(request.Created),
		}).
		Prepared(true)

	res, err := db.exec(ctx, ds)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get request id: %w", err)
	}
	request.ID = id
	return nil
}

func (db *DB) GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	ds := db.dialect.From(tableRequests).
		Select(requestColumns...).
		Where(goqu.C("id").Eq(id)).
		Prepared(true)

	var request models.ItemRequest
	if err := db.selectOne(ctx, &request, ds); err != nil {
		return nil, fmt.Errorf("request %d: %w", id, err)
	}
	return &request, nil
}

func (db *DB) ListRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error) {
	ds := db.newestRequests().
		Where(goqu.C("requestor_id").Eq(requestorID)).
		Prepared(true)

	var requests []*models.ItemRequest
	if err := db.selectAll(ctx, &requests, ds); err != nil {
		return nil, fmt.Errorf("failed to list requests of user %d: %w", requestorID, err)
	}
	return requests, nil
}

func (db *DB) ListRequests(ctx context.Context, offset, limit int) ([]*models.ItemRequest, error) {
	ds := db.newestRequests().
		Offset(uint(offset)).
		Limit(uint(limit)).
		Prepared(true)

	var requests []*models.ItemRequest
	if err := db.selectAll(ctx, &requests, ds); err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return requests, nil
}

func (db *DB) newestRequests() *goqu.SelectDataset {
	return db.dialect.From(tableRequests).
		Select(requestColumns...).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc())
}
