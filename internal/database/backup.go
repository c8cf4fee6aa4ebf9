package database

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shareit/internal/config"

	"github.com/rs/zerolog"
)

const backupFilePrefix = "shareit_"

type BackupService struct {
	db     *DB
	config config.BackupConfig
	logger *zerolog.Logger
	now    func() time.Time
}

func NewBackupService(db *DB, cfg config.BackupConfig, logger *zerolog.Logger) *BackupService {
	return &BackupService{
		db:     db,
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
}

func (s *BackupService) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info().Msg("Backup service is disabled")
		return
	}

	interval := 24 * time.Hour
	if s.config.Schedule != "" {
		if d, err := time.ParseDuration(s.config.Schedule); err == nil && d > 0 {
			interval = d
		} else {
			s.logger.Warn().Err(err).Str("schedule", s.config.Schedule).Msg("Failed to parse backup schedule, using default 24h")
		}
	}

	s.logger.Info().Dur("interval", interval).Msg("Backup service started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if _, err := s.PerformBackup(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Initial backup failed")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.PerformBackup(ctx); err != nil {
				s.logger.Error().Err(err).Msg("Scheduled backup failed")
			}
			s.CleanupOldBackups()
		}
	}
}

// PerformBackup writes a consistent snapshot of the database and returns its path.
func (s *BackupService) PerformBackup(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.config.StoragePath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("%s%s.db", backupFilePrefix, s.now().UTC().Format("20060102_150405.000"))
	backupPath := filepath.Join(s.config.StoragePath, name)

	s.logger.Info().Str("path", backupPath).Msg("Performing database backup using VACUUM INTO")

	query := fmt.Sprintf("VACUUM INTO '%s'", strings.ReplaceAll(backupPath, "'", "''"))
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		s.logger.Warn().Err(err).Msg("VACUUM INTO failed, falling back to file copy")
		if err := s.performBackupFallback(backupPath); err != nil {
			return "", fmt.Errorf("failed to back up database: %w", err)
		}
		return backupPath, nil
	}

	s.logger.Info().Msg("Backup completed successfully")
	return backupPath, nil
}

func (s *BackupService) performBackupFallback(backupPath string) error {
	source, err := os.Open(s.db.path)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(backupPath)
	if err != nil {
		return err
	}
	defer destination.Close()

	// io.Copy не атомарен для SQLite, копия может быть несогласованной при записи
	if _, err := io.Copy(destination, source); err != nil {
		return err
	}

	s.logger.Info().Msg("Fallback backup completed successfully")
	return nil
}

// CleanupOldBackups removes backups older than the retention window.
// Files not produced by PerformBackup are left alone.
func (s *BackupService) CleanupOldBackups() int {
	if s.config.RetentionDays <= 0 {
		return 0
	}

	files, err := os.ReadDir(s.config.StoragePath)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read backup directory for cleanup")
		return 0
	}

	cutoff := s.now().AddDate(0, 0, -s.config.RetentionDays)
	removed := 0

	for _, file := range files {
		if file.IsDir() || !strings.HasPrefix(file.Name(), backupFilePrefix) {
			continue
		}

		info, err := file.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			s.logger.Info().Str("file", file.Name()).Msg("Deleting old backup")
			if err := os.Remove(filepath.Join(s.config.StoragePath, file.Name())); err != nil {
				s.logger.Warn().Err(err).Str("file", file.Name()).Msg("Failed to delete old backup")
				continue
			}
			removed++
		}
	}
	return removed
}
