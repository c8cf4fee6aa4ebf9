package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"shareit/internal/domain"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

const (
	driverName  = "sqlite3_shareit"
	dialectName = "sqlite3"
)

var registerDriverOnce sync.Once

// registerDriver registers the sqlite driver with a unicode-aware lower()
// replacement. SQLite's built-in lower() only folds ASCII.
func registerDriver() {
	registerDriverOnce.Do(func() {
		sql.Register(driverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("lower_unicode", strings.ToLower, true)
			},
		})
		sqlx.BindDriver(driverName, sqlx.QUESTION)
	})
}

// DB is the SQLite-backed implementation of domain.Store.
type DB struct {
	*sqlx.DB
	path    string
	dialect goqu.DialectWrapper
	logger  *zerolog.Logger
}

var _ domain.Store = (*DB)(nil)

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	// Создаем директорию для БД, если её нет
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	registerDriver()

	conn, err := sqlx.Open(driverName, path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Одно соединение: сериализует транзакции и сохраняет :memory: базу между запросами
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("Database initialized")

	return &DB{
		DB:      conn,
		path:    path,
		dialect: goqu.Dialect(dialectName),
		logger:  logger,
	}, nil
}

func createTables(db *sqlx.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE
        )`,
		`CREATE TABLE IF NOT EXISTS requests (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            description TEXT NOT NULL,
            requestor_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            created_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            description TEXT NOT NULL,
            available BOOLEAN NOT NULL DEFAULT 0,
            owner_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            request_id INTEGER REFERENCES requests(id) ON DELETE SET NULL
        )`,
		`CREATE TABLE IF NOT EXISTS bookings (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            start_at DATETIME NOT NULL,
            end_at DATETIME NOT NULL,
            item_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
            booker_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            status TEXT NOT NULL DEFAULT 'WAITING'
        )`,
		`CREATE TABLE IF NOT EXISTS comments (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            text TEXT NOT NULL,
            item_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
            author_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            created_at DATETIME NOT NULL
        )`,

		`CREATE INDEX IF NOT EXISTS idx_items_owner_id ON items(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_items_request_id ON items(request_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_item_id ON bookings(item_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_booker_id ON bookings(booker_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_start_at ON bookings(start_at)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_item_id ON comments(item_id)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_requestor_id ON requests(requestor_id)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

type txKey struct{}

// InTx runs fn inside a transaction carried by ctx. Nested calls join the
// outer transaction.
func (db *DB) InTx(ctx context.Context, readOnly bool, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: readOnly})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Error().Err(rbErr).Msg("Failed to rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ext returns the transaction bound to ctx, or the pool outside of InTx.
func (db *DB) ext(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db.DB
}

type sqlBuilder interface {
	ToSQL() (string, []interface{}, error)
}

func (db *DB) selectAll(ctx context.Context, dest interface{}, ds sqlBuilder) error {
	query, args, err := ds.ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	return sqlx.SelectContext(ctx, db.ext(ctx), dest, query, args...)
}

func (db *DB) selectOne(ctx context.Context, dest interface{}, ds sqlBuilder) error {
	query, args, err := ds.ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	err = sqlx.GetContext(ctx, db.ext(ctx), dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func (db *DB) exec(ctx context.Context, ds sqlBuilder) (sql.Result, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return db.ext(ctx).ExecContext(ctx, query, args...)
}

// execAffecting runs ds and fails with domain.ErrNotFound when no row changed.
func (db *DB) execAffecting(ctx context.Context, ds sqlBuilder) error {
	res, err := db.exec(ctx, ds)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// utc normalizes timestamps so their text encoding sorts chronologically.
func utc(t time.Time) time.Time {
	return t.UTC()
}
