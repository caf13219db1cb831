package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"birdfinder/internal/repository"
)

// Open opens (or creates) a sqlite database at the given path and ensures directories exist.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	// pragmas in the DSN are applied to every connection the pool opens
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// reasonable defaults for sqlite with concurrent readers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return db, nil
}

// Repositories bundles every store the application persists to.
type Repositories struct {
	Users    repository.UserRepository
	BirdList repository.BirdListRepository
	Sessions repository.SessionRepository
}

// NewRepositories builds the repositories over db and creates their tables.
// Tables are created parents first so foreign keys resolve.
func NewRepositories(ctx context.Context, db *sql.DB) (*Repositories, error) {
	repos := &Repositories{
		Users:    NewUserRepository(db),
		BirdList: NewBirdListRepository(db),
		Sessions: NewSessionRepository(db),
	}
	if err := repos.Users.Init(ctx); err != nil {
		return nil, fmt.Errorf("init user repository: %w", err)
	}
	if err := repos.BirdList.Init(ctx); err != nil {
		return nil, fmt.Errorf("init bird list repository: %w", err)
	}
	if err := repos.Sessions.Init(ctx); err != nil {
		return nil, fmt.Errorf("init session repository: %w", err)
	}
	return repos, nil
}
