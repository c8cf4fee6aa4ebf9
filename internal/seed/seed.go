// Package seed loads demo users and items at startup.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

type Data struct {
	Users []User `yaml:"users"`
}

type User struct {
	Name  string        `yaml:"name"`
	Email string        `yaml:"email"`
	Items []models.Item `yaml:"items"`
}

func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for i, u := range data.Users {
		if u.Name == "" || u.Email == "" {
			return nil, fmt.Errorf("seed user #%d: name and email are required", i+1)
		}
	}
	return &data, nil
}

// Apply creates the seed users with their items. Users whose email is already
// registered are skipped together with their items, so reapplying is harmless.
// A user whose items fail is removed again, so the next run seeds it in full.
func Apply(ctx context.Context, data *Data, users domain.UserService, items domain.ItemService, logger *zerolog.Logger) (int, error) {
	created := 0
	for _, su := range data.Users {
		user, err := users.Create(ctx, su.Name, su.Email)
		if errors.Is(err, domain.ErrDuplicateAddress) {
			logger.Debug().Str("email", su.Email).Msg("seed user exists, skipping")
			continue
		}
		if err != nil {
			return created, fmt.Errorf("failed to seed user %s: %w", su.Email, err)
		}

		for _, it := range su.Items {
			if _, err := items.Create(ctx, user.ID, it); err != nil {
				if delErr := users.Delete(ctx, user.ID); delErr != nil {
					logger.Error().Err(delErr).Int64("user_id", user.ID).Msg("failed to roll back seed user")
				}
				return created, fmt.Errorf("failed to seed item %q: %w", it.Name, err)
			}
		}
		created++
	}

	logger.Info().Int("users", created).Msg("seed data applied")
	return created, nil
}
