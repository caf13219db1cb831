package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"birdfinder/internal/domain"
	"birdfinder/internal/repository"
)

var (
	// ErrSpeciesRequired is returned when saving an entry without a species name.
	ErrSpeciesRequired = errors.New("species name is required")
	// ErrEntryNotFound is returned when no entry owned by the caller has the given id.
	ErrEntryNotFound = errors.New("bird list entry not found")
)

// BirdListService manages each user's list of saved species.
type BirdListService interface {
	AddEntry(ctx context.Context, userID int64, speciesName string) (int64, error)
	RemoveEntry(ctx context.Context, userID, entryID int64) error
	ListEntries(ctx context.Context, userID int64) ([]domain.BirdListEntry, error)
	ExportCSV(ctx context.Context, userID int64, w io.Writer) error
}

type birdListService struct {
	entries repository.BirdListRepository
}

func NewBirdListService(entries repository.BirdListRepository) BirdListService {
	return &birdListService{entries: entries}
}

func (s *birdListService) AddEntry(ctx context.Context, userID int64, speciesName string) (int64, error) {
	speciesName = strings.TrimSpace(speciesName)
	if speciesName == "" {
		return 0, ErrSpeciesRequired
	}

	entry := &domain.BirdListEntry{
		UserID:      userID,
		SpeciesName: speciesName,
	}
	id, err := s.entries.Create(ctx, entry)
	if err != nil {
		if errors.Is(err, repository.ErrReferenceMissing) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return id, nil
}

func (s *birdListService) RemoveEntry(ctx context.Context, userID, entryID int64) error {
	removed, err := s.entries.DeleteOwned(ctx, userID, entryID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrEntryNotFound
	}
	return nil
}

func (s *birdListService) ListEntries(ctx context.Context, userID int64) ([]domain.BirdListEntry, error) {
	return s.entries.ListByUser(ctx, userID)
}

func (s *birdListService) ExportCSV(ctx context.Context, userID int64, w io.Writer) error {
	entries, err := s.entries.ListByUser(ctx, userID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "species_name", "saved_at"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, entry := range entries {
		savedAt := ""
		if !entry.CreatedAt.IsZero() {
			savedAt = entry.CreatedAt.UTC().Format(time.RFC3339)
		}
		if err := writer.Write([]string{strconv.FormatInt(entry.ID, 10), entry.SpeciesName, savedAt}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
