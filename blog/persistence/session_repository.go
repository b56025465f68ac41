package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dfryer1193/inkfront/blog/domain"
	"github.com/dfryer1193/inkfront/shared/db"
)

var _ domain.SessionRepository = (*SQLiteSessionRepository)(nil)

// SQLiteSessionRepository implements domain.SessionRepository using SQLite
type SQLiteSessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SQLiteSessionRepository {
	return &SQLiteSessionRepository{
		db: db,
	}
}

const insertSessionQuery = `
	INSERT INTO sessions (id, subject, method, created_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(id) DO NOTHING
`

// SaveSession records s. Saving an id twice keeps the first record.
func (r *SQLiteSessionRepository) SaveSession(ctx context.Context, s *domain.Session) error {
	if s == nil {
		return fmt.Errorf("session cannot be nil")
	}

	if s.ID == "" {
		return fmt.Errorf("session ID cannot be empty")
	}

	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, insertSessionQuery, s.ID, s.Subject, s.Method, createdAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

const hasSessionQuery = `SELECT 1 FROM sessions WHERE id = ?`

func (r *SQLiteSessionRepository) HasSession(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}

	var one int
	err := db.GetExecutor(ctx, r.db).QueryRowContext(ctx, hasSessionQuery, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to look up session: %w", err)
	}

	return true, nil
}

const getSessionQuery = `
	SELECT id, subject, method, created_at
	FROM sessions
	WHERE id = ?
`

// GetSession retrieves a single session by ID
func (r *SQLiteSessionRepository) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	var row sessionRow
	err := db.GetExecutor(ctx, r.db).QueryRowContext(ctx, getSessionQuery, id).Scan(
		&row.ID,
		&row.Subject,
		&row.Method,
		&row.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return row.toDomain(), nil
}

const deleteSessionQuery = `DELETE FROM sessions WHERE id = ?`

func (r *SQLiteSessionRepository) DeleteSession(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	if _, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, deleteSessionQuery, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

type sessionRow struct {
	ID        string       `db:"id"`
	Subject   string       `db:"subject"`
	Method    string       `db:"method"`
	CreatedAt sql.NullTime `db:"created_at"`
}

func (sr *sessionRow) toDomain() *domain.Session {
	s := &domain.Session{
		ID:      sr.ID,
		Subject: sr.Subject,
		Method:  sr.Method,
	}

	if sr.CreatedAt.Valid {
		s.CreatedAt = sr.CreatedAt.Time
	}

	return s
}
