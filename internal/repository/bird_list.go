package repository

import (
	"context"

	"birdfinder/internal/domain"
)

// BirdListRepository stores the species each user has saved.
type BirdListRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, entry *domain.BirdListEntry) (int64, error)
	// DeleteOwned removes the entry only when it belongs to userID and
	// reports whether a row was removed.
	DeleteOwned(ctx context.Context, userID, entryID int64) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.BirdListEntry, error)
}
