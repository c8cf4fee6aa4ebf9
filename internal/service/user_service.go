package service

import (
	"context"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	store  domain.Store
	logger *zerolog.Logger
}

var _ domain.UserService = (*UserService)(nil)

func NewUserService(store domain.Store, logger *zerolog.Logger) *UserService {
	return &UserService{
		store:  store,
		logger: logger,
	}
}

func (s *UserService) Create(ctx context.Context, name, email string) (*models.User, error) {
	user := &models.User{Name: name, Email: email}
	err := s.store.InTx(ctx, false, func(ctx context.Context) error {
		return s.store.CreateUser(ctx, user)
	})
	if err != nil {
		logFailure(s.logger, err).Str("email", email).Msg("create user failed")
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user created")
	return user, nil
}

// Update merges the non-blank fields of patch into the stored user.
func (s *UserService) Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	var user *models.User
	err := s.store.InTx(ctx, false, func(ctx context.Context) error {
		var err error
		user, err = s.store.GetUser(ctx, id)
		if err != nil {
			return err
		}
		if name := strings.TrimSpace(patch.Name); name != "" {
			user.Name = name
		}
		if email := strings.TrimSpace(patch.Email); email != "" {
			user.Email = email
		}
		return s.store.UpdateUser(ctx, user)
	})
	if err != nil {
		logFailure(s.logger, err).Int64("user_id", id).Msg("update user failed")
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	err := s.store.InTx(ctx, false, func(ctx context.Context) error {
		return s.store.DeleteUser(ctx, id)
	})
	if err != nil {
		logFailure(s.logger, err).Int64("user_id", id).Msg("delete user failed")
		return err
	}

	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user *models.User
	err := s.store.InTx(ctx, true, func(ctx context.Context) error {
		var err error
		user, err = s.store.GetUser(ctx, id)
		return err
	})
	if err != nil {
		logFailure(s.logger, err).Int64("user_id", id).Msg("get user failed")
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := s.store.InTx(ctx, true, func(ctx context.Context) error {
		var err error
		users, err = s.store.ListUsers(ctx)
		return err
	})
	if err != nil {
		logFailure(s.logger, err).Msg("list users failed")
		return nil, err
	}
	return users, nil
}
