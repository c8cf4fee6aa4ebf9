package database

import (
	"context"
	"fmt"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

const tableUsers = "users"

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	ds := db.dialect.Insert(tableUsers).
		Rows(goqu.Record{"name": user.Name, "email": user.Email}).
		Prepared(true)

	res, err := db.exec(ctx, ds)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email %q: %w", user.Email, domain.ErrDuplicateAddress)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get user id: %w", err)
	}
	user.ID = id
	return nil
}

func (db *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	ds := db.dialect.From(tableUsers).
		Select("id", "name", "email").
		Where(goqu.C("id").Eq(id)).
		Prepared(true)

	var user models.User
	if err := db.selectOne(ctx, &user, ds); err != nil {
		return nil, fmt.Errorf("user %d: %w", id, err)
	}
	return &user, nil
}

func (db *DB) UpdateUser(ctx context.Context, user *models.User) error {
	ds := db.dialect.Update(tableUsers).
		Set(goqu.Record{"name": user.Name, "email": user.Email}).
		Where(goqu.C("id").Eq(user.ID)).
		Prepared(true)

	if err := db.execAffecting(ctx, ds); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email %q: %w", user.Email, domain.ErrDuplicateAddress)
		}
		return fmt.Errorf("failed to update user %d: %w", user.ID, err)
	}
	return nil
}

// DeleteUser removes the user and everything it owns. Missing users are not an error.
func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	ds := db.dialect.Delete(tableUsers).
		Where(goqu.C("id").Eq(id)).
		Prepared(true)

	if _, err := db.exec(ctx, ds); err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	return nil
}

func (db *DB) ListUsers(ctx context.Context) ([]*models.User, error) {
	ds := db.dialect.From(tableUsers).
		Select("id", "name", "email").
		Order(goqu.C("id").Asc())

	var users []*models.User
	if err := db.selectAll(ctx, &users, ds); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
