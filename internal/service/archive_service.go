package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"birdfinder/internal/storage"
)

// archiveURLTTL is how long the presigned download link stays valid.
const archiveURLTTL = 15 * time.Minute

// ErrArchiveDisabled is returned when no object storage bucket is configured.
var ErrArchiveDisabled = errors.New("list archive storage is not configured")

// ArchiveResult locates an uploaded list export.
type ArchiveResult struct {
	Location string
	URL      string
}

// ArchiveService copies a user's bird list export to object storage.
type ArchiveService interface {
	Archive(ctx context.Context, userID int64) (*ArchiveResult, error)
}

type archiveService struct {
	lists BirdListService
	store storage.Service
	opts  storage.UploadOptions
	now   func() time.Time
}

// NewArchiveService returns a service that always reports ErrArchiveDisabled
// when store is nil or no bucket is set.
func NewArchiveService(lists BirdListService, store storage.Service, opts storage.UploadOptions) ArchiveService {
	return &archiveService{
		lists: lists,
		store: store,
		opts:  opts,
		now:   time.Now,
	}
}

func (s *archiveService) Archive(ctx context.Context, userID int64) (*ArchiveResult, error) {
	if s.store == nil || s.opts.Bucket == "" {
		return nil, ErrArchiveDisabled
	}

	var buf bytes.Buffer
	if err := s.lists.ExportCSV(ctx, userID, &buf); err != nil {
		return nil, fmt.Errorf("export bird list: %w", err)
	}

	key := s.objectKey(userID)
	location, err := s.store.PutObject(ctx, s.opts.Bucket, key, &buf, "text/csv")
	if err != nil {
		return nil, err
	}
	url, err := s.store.GetObjectURL(ctx, s.opts.Bucket, key, archiveURLTTL)
	if err != nil {
		return nil, err
	}
	return &ArchiveResult{Location: location, URL: url}, nil
}

func (s *archiveService) objectKey(userID int64) string {
	name := fmt.Sprintf("bird-list-%d.csv", s.now().UTC().Unix())
	prefix := strings.Trim(s.opts.KeyPrefix, "/")
	return path.Join(prefix, fmt.Sprintf("user-%d", userID), name)
}
