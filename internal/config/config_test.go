package config

import (
	"os"
	"path/filepath"
	"testing"

	"shareit/internal/models"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("SHAREIT_DB_PATH", filepath.Join(tmpDir, "shareit.db"))

	yamlContent := `
app:
  name: "shareit-test"
database:
  driver: "sqlite"
  path: "${SHAREIT_DB_PATH}"
api:
  http:
    port: 9000
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "shareit-test" {
		t.Errorf("expected app name shareit-test, got %s", cfg.App.Name)
	}
	if cfg.Database.Path != filepath.Join(tmpDir, "shareit.db") {
		t.Errorf("expected env-expanded db path, got %s", cfg.Database.Path)
	}
	if cfg.API.HTTP.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.API.HTTP.Port)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid sqlite config",
			cfg:     Config{Database: DatabaseConfig{Driver: DriverSQLite, Path: "path"}},
			wantErr: false,
		},
		{
			name:    "valid memory config",
			cfg:     Config{Database: DatabaseConfig{Driver: DriverMemory}},
			wantErr: false,
		},
		{
			name:    "missing sqlite path",
			cfg:     Config{Database: DatabaseConfig{Driver: DriverSQLite}},
			wantErr: true,
		},
		{
			name:    "unknown driver",
			cfg:     Config{Database: DatabaseConfig{Driver: "oracle"}},
			wantErr: true,
		},
		{
			name: "backup with memory driver",
			cfg: Config{
				Database: DatabaseConfig{Driver: DriverMemory},
				Backup:   BackupConfig{Enabled: true},
			},
			wantErr: true,
		},
		{
			name: "auth without keys",
			cfg: Config{
				Database: DatabaseConfig{Driver: DriverMemory},
				API:      APIConfig{Auth: APIAuthConfig{Enabled: true}},
			},
			wantErr: true,
		},
		{
			name: "duplicate api keys",
			cfg: Config{
				Database: DatabaseConfig{Driver: DriverMemory},
				API: APIConfig{Auth: APIAuthConfig{Enabled: true, APIKeys: []APIClientKey{
					{Key: "k", Name: "a"},
					{Key: "k", Name: "b"},
				}}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("expected default driver sqlite, got %s", cfg.Database.Driver)
	}
	if cfg.API.HTTP.Port != 8080 {
		t.Errorf("expected default http port 8080, got %d", cfg.API.HTTP.Port)
	}
	if cfg.API.RateLimit.Requests != models.RateLimitRequests {
		t.Errorf("expected default rate limit %d, got %d", models.RateLimitRequests, cfg.API.RateLimit.Requests)
	}
	if cfg.Backup.RetentionDays != models.DefaultBackupRetentionDays {
		t.Errorf("expected default retention %d, got %d", models.DefaultBackupRetentionDays, cfg.Backup.RetentionDays)
	}
	if cfg.API.Auth.HeaderAPIKey != "x-api-key" {
		t.Errorf("expected default api key header, got %s", cfg.API.Auth.HeaderAPIKey)
	}
}
