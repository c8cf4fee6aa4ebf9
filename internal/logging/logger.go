package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shareit/internal/config"

	"github.com/rs/zerolog"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"

	OutputStdout = "stdout"
	OutputStderr = "stderr"
	OutputFile   = "file"
)

// New builds the service logger from config. Empty fields mean JSON, info level, stdout.
// The returned closer is non-nil only for file output.
func New(cfg config.LoggingConfig, app config.AppConfig) (*zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if raw := strings.TrimSpace(cfg.Level); raw != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(raw))
		if err == nil && parsed != zerolog.NoLevel {
			level = parsed
		}
	}

	output, closer, err := openOutput(cfg)
	if err != nil {
		return nil, nil, err
	}

	if strings.EqualFold(strings.TrimSpace(cfg.Format), FormatConsole) {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	ctx := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("app", app.Name)
	if app.Environment != "" {
		ctx = ctx.Str("env", app.Environment)
	}
	if app.Version != "" {
		ctx = ctx.Str("version", app.Version)
	}
	base := ctx.Logger()

	return &base, closer, nil
}

func openOutput(cfg config.LoggingConfig) (io.Writer, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Output)) {
	case "", OutputStdout:
		return os.Stdout, nil, nil
	case OutputStderr:
		return os.Stderr, nil, nil
	case OutputFile:
		if cfg.FilePath == "" {
			return nil, nil, fmt.Errorf("logging.output=file requires logging.file_path")
		}
		if dir := filepath.Dir(cfg.FilePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create log directory: %w", err)
			}
		}
		file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return file, file, nil
	default:
		return nil, nil, fmt.Errorf("unknown logging.output %q", cfg.Output)
	}
}

// Component returns a child logger tagged with the component name.
func Component(base *zerolog.Logger, name string) *zerolog.Logger {
	l := base.With().Str("component", name).Logger()
	return &l
}
