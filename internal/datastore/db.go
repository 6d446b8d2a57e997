package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// pq is the PostgreSQL driver
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when an id-scoped statement matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("already exists")
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// Store runs every query of the service against one connection pool. Each
// method executes a single statement; nothing holds a transaction open.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// New wraps an already opened pool.
func New(db *sql.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dataSourceName string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return New(db, logger), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullableTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	v := nt.Time
	return &v
}

// notFound maps sql.ErrNoRows from a RETURNING statement to ErrNotFound.
func notFound(err error, entity string, id interface{}) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s with ID %v: %w", entity, id, ErrNotFound)
	}
	return err
}
