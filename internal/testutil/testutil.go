package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"birdfinder/internal/repository/sqlite"
)

// OpenRepositories opens a throwaway SQLite database under t.TempDir and
// creates every table. The database is closed via t.Cleanup.
func OpenRepositories(t *testing.T) (*sql.DB, *sqlite.Repositories) {
	t.Helper()
	d, err := sqlite.Open(filepath.Join(t.TempDir(), "birdfinder.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	repos, err := sqlite.NewRepositories(context.Background(), d)
	if err != nil {
		t.Fatalf("init test repositories: %v", err)
	}
	return d, repos
}
