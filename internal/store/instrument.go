package store

import (
	"context"
	"time"

	"github.com/filehook/filehook/internal/metrics"
)

// InstrumentedStore wraps an ObjectStore and records one metric per call.
type InstrumentedStore struct {
	next ObjectStore
}

// Instrument wraps the given store with operation metrics.
func Instrument(next ObjectStore) *InstrumentedStore {
	return &InstrumentedStore{next: next}
}

func (s *InstrumentedStore) HeadMetadata(ctx context.Context, key string) (ObjectMetadata, error) {
	meta, err := s.next.HeadMetadata(ctx, key)
	metrics.RecordStoreOperation("head", err)
	return meta, err
}

func (s *InstrumentedStore) CopyObject(ctx context.Context, in CopyInput) error {
	err := s.next.CopyObject(ctx, in)
	metrics.RecordStoreOperation("copy", err)
	return err
}

func (s *InstrumentedStore) DeleteObject(ctx context.Context, key string) error {
	err := s.next.DeleteObject(ctx, key)
	metrics.RecordStoreOperation("delete", err)
	return err
}

func (s *InstrumentedStore) PresignUpload(ctx context.Context, key string, expiry time.Duration, metadata map[string]string) (string, error) {
	url, err := s.next.PresignUpload(ctx, key, expiry, metadata)
	metrics.RecordStoreOperation("presign", err)
	return url, err
}
