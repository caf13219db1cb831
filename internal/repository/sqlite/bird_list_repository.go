package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"birdfinder/internal/domain"
	"birdfinder/internal/repository"
)

const createBirdListTable = `
CREATE TABLE IF NOT EXISTS user_bird_list (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	species_name TEXT NOT NULL,
	created_at DATETIME NULL,
	FOREIGN KEY (user_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_user_bird_list_user_id ON user_bird_list(user_id);
`

type BirdListRepository struct {
	db *sql.DB
}

func NewBirdListRepository(db *sql.DB) repository.BirdListRepository {
	return &BirdListRepository{db: db}
}

func (r *BirdListRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createBirdListTable); err != nil {
		return fmt.Errorf("create user_bird_list table: %w", err)
	}
	return ensureColumns(ctx, r.db, "user_bird_list", map[string]string{
		"created_at": `ALTER TABLE user_bird_list ADD COLUMN created_at DATETIME NULL`,
	})
}

func (r *BirdListRepository) Create(ctx context.Context, entry *domain.BirdListEntry) (int64, error) {
	entry.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO user_bird_list (user_id, species_name, created_at)
VALUES (?, ?, ?)`,
		entry.UserID,
		entry.SpeciesName,
		entry.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("insert bird for user %d: %w", entry.UserID, repository.ErrReferenceMissing)
		}
		return 0, fmt.Errorf("insert bird: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("bird last insert id: %w", err)
	}
	entry.ID = id
	return id, nil
}

func (r *BirdListRepository) DeleteOwned(ctx context.Context, userID, entryID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_bird_list WHERE user_id = ? AND id = ?`, userID, entryID)
	if err != nil {
		return false, fmt.Errorf("delete bird: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("bird delete rows affected: %w", err)
	}
	return aff > 0, nil
}

func (r *BirdListRepository) ListByUser(ctx context.Context, userID int64) ([]domain.BirdListEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, species_name, created_at
FROM user_bird_list
WHERE user_id = ?
ORDER BY id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query bird list: %w", err)
	}
	defer rows.Close()

	entries := []domain.BirdListEntry{}
	for rows.Next() {
		var (
			entry     domain.BirdListEntry
			createdAt sql.NullTime
		)
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.SpeciesName, &createdAt); err != nil {
			return nil, fmt.Errorf("scan bird: %w", err)
		}
		if createdAt.Valid {
			entry.CreatedAt = createdAt.Time.Local()
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
