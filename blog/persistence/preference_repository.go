package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dfryer1193/inkfront/blog/domain"
	"github.com/dfryer1193/inkfront/shared/db"
)

var _ domain.PreferenceRepository = (*SQLitePreferenceRepository)(nil)

// SQLitePreferenceRepository stores key/value preferences such as the theme
type SQLitePreferenceRepository struct {
	db *sql.DB
}

func NewPreferenceRepository(sqlDB *sql.DB) *SQLitePreferenceRepository {
	return &SQLitePreferenceRepository{
		db: sqlDB,
	}
}

const upsertPreferenceQuery = `
	INSERT INTO preferences (key, value, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at
`

func (r *SQLitePreferenceRepository) SetPreference(ctx context.Context, key string, value string) error {
	if key == "" {
		return fmt.Errorf("preference key cannot be empty")
	}

	return db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		executor := db.GetExecutor(txCtx, r.db)
		if _, err := executor.ExecContext(txCtx, upsertPreferenceQuery, key, value, time.Now().UTC()); err != nil {
			return fmt.Errorf("failed to upsert preference %q: %w", key, err)
		}
		return nil
	})
}

const getPreferenceQuery = `SELECT value FROM preferences WHERE key = ?`

// GetPreference returns the stored value and whether one was stored
func (r *SQLitePreferenceRepository) GetPreference(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := db.GetExecutor(ctx, r.db).QueryRowContext(ctx, getPreferenceQuery, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}

	if err != nil {
		return "", false, fmt.Errorf("failed to get preference %q: %w", key, err)
	}

	return value, true, nil
}
