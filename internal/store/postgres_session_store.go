// internal/store/postgres_session_store.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Victorissad/Mario-VIS/internal/domain"
)

// PostgresSessionStore implements SessionStore on the sessions table
// (see migrations/0001_create_sessions.up.sql).
type PostgresSessionStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresSessionStore wraps an already connected *sqlx.DB.
func NewPostgresSessionStore(db *sqlx.DB, logger *slog.Logger) (*PostgresSessionStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil for PostgresSessionStore")
	}
	return &PostgresSessionStore{db: db, logger: logger}, nil
}

// Create inserts a new session row.
func (s *PostgresSessionStore) Create(ctx context.Context, session *domain.UserSession) error {
	query := `INSERT INTO sessions (id, token, email, subject, created_at, expires_at)
              VALUES (:id, :token, :email, :subject, :created_at, :expires_at)`

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	s.logger.DebugContext(ctx, "Executing Create session query", slog.String("sessionID", session.ID))
	_, err := s.db.NamedExecContext(ctx, query, session)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			s.logger.WarnContext(ctx, "Session ID already taken", slog.String("sessionID", session.ID))
			return ErrSessionExists
		}
		s.logger.ErrorContext(ctx, "Failed to create session in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Get loads a session by ID.
func (s *PostgresSessionStore) Get(ctx context.Context, id string) (*domain.UserSession, error) {
	query := `SELECT id, token, email, subject, created_at, expires_at FROM sessions WHERE id = $1`
	var session domain.UserSession

	err := s.db.GetContext(ctx, &session, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get session from DB", slog.String("sessionID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// Delete removes a session row.
func (s *PostgresSessionStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete session from DB", slog.String("sessionID", id), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete session: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check session delete result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSessionNotFound
	}
	s.logger.InfoContext(ctx, "Session deleted from DB", slog.String("sessionID", id))
	return nil
}

// DeleteExpired purges sessions whose expiry is not after now.
func (s *PostgresSessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to purge expired sessions", slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	removed, _ := result.RowsAffected()
	if removed > 0 {
		s.logger.InfoContext(ctx, "Expired sessions purged from DB", slog.Int64("count", removed))
	}
	return removed, nil
}

// Connect opens and pings the session database.
func Connect(ctx context.Context, dbURL string, logger *slog.Logger) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dbURL)
	if err != nil {
		logger.Error("Failed to connect to session PostgreSQL", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	logger.Info("Successfully connected to session PostgreSQL database.")
	return db, nil
}
