package database

import (
	"context"
	"fmt"

	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

const tableComments = "comments"

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	ds := db.dialect.Insert(tableComments).
		Rows(goqu.Record{
			"text":       comment.Text,
			"item_id":    comment.ItemID,
			"author_id":  comment.AuthorID,
			"created_at": utc(comment.Created),
		}).
		Prepared(true)

	res, err := db.exec(ctx, ds)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get comment id: %w", err)
	}
	comment.ID = id
	return nil
}

// ListCommentsByItems returns comments of all given items in insertion order,
// with the author's current name.
func (db *DB) ListCommentsByItems(ctx context.Context, itemIDs []int64) ([]*models.Comment, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}

	ds := db.dialect.From(goqu.T(tableComments).As("c")).
		Join(goqu.T(tableUsers).As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("c.author_id")))).
		Select(
			goqu.I("c.id"),
			goqu.I("c.text"),
			goqu.I("c.item_id"),
			goqu.I("c.author_id"),
			goqu.I("u.name").As("author_name"),
			goqu.I("c.created_at"),
		).
		Where(goqu.I("c.item_id").In(itemIDs)).
		Order(goqu.I("c.id").Asc()).
		Prepared(true)

	var comments []*models.Comment
	if err := db.selectAll(ctx, &comments, ds); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}
