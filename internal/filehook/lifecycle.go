package filehook

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	ferrors "github.com/filehook/filehook/internal/errors"
	"github.com/filehook/filehook/internal/item"
	"github.com/filehook/filehook/internal/metrics"
	"github.com/filehook/filehook/internal/store"
)

// Object metadata keys stamped onto copied and uploaded objects.
const (
	metaOwnerID = "owner-id"
	metaItemID  = "item-id"
)

// Synchronizer mirrors item copy and delete operations onto the object
// store. It reacts to lifecycle hooks of the item system; items that carry
// no file descriptor pass through untouched.
type Synchronizer struct {
	store        store.ObjectStore
	keys         *KeyGenerator
	cacheControl string
	logger       *zap.Logger

	deletes sync.WaitGroup
}

// NewSynchronizer creates a synchronizer over the given store.
// cacheControl, when non-empty, is attached to copied objects.
func NewSynchronizer(objects store.ObjectStore, keys *KeyGenerator, cacheControl string, logger *zap.Logger) *Synchronizer {
	return &Synchronizer{
		store:        objects,
		keys:         keys,
		cacheControl: cacheControl,
		logger:       logger,
	}
}

// Register binds the synchronizer's reactions to the item system's
// stored-file lifecycle points.
func (s *Synchronizer) Register(svc item.Service) {
	svc.OnPreCopy(item.TypeFile, s.preCopy)
	svc.OnPostDelete(item.TypeFile, s.postDelete)
}

// preCopy duplicates the source object under a fresh key and rewires the
// in-flight copy's descriptor to it. The copied record must never be
// persisted pointing at a non-existent object, so any store failure aborts
// the whole copy operation.
func (s *Synchronizer) preCopy(ctx context.Context, src, dst *item.Item, actor string) error {
	srcFile, ok := src.File()
	if !ok {
		return nil
	}
	dstFile, ok := dst.File()
	if !ok {
		return nil
	}

	newKey := s.keys.Generate()

	var contentType string
	if srcFile.ContentType != nil {
		contentType = *srcFile.ContentType
	}

	err := s.store.CopyObject(ctx, store.CopyInput{
		SourceKey: srcFile.Key,
		DestKey:   newKey,
		Metadata: map[string]string{
			metaOwnerID: actor,
			metaItemID:  src.ID.String(),
		},
		ContentDisposition: attachmentDisposition(srcFile.DisplayName),
		ContentType:        contentType,
		CacheControl:       s.cacheControl,
	})
	if err != nil {
		s.logger.Error("object copy failed",
			zap.String("source_key", srcFile.Key),
			zap.String("dest_key", newKey),
			zap.Error(err))
		return ferrors.NewStoreError(ferrors.CodeCopyFailed, "failed to copy object", err)
	}

	dstFile.Key = newKey
	return nil
}

// postDelete removes the backing object after the item record deletion has
// committed. The removal is best-effort and detached: the record is already
// gone, so a store failure is only observable through the log.
func (s *Synchronizer) postDelete(ctx context.Context, deleted *item.Item, actor string) {
	file, ok := deleted.File()
	if !ok {
		return
	}

	key := file.Key
	itemID := deleted.ID.String()

	s.deletes.Add(1)
	go func() {
		defer s.deletes.Done()

		// The request context may already be cancelled; the cleanup must
		// still run to completion.
		if err := s.store.DeleteObject(context.Background(), key); err != nil {
			metrics.RecordOrphanedObject()
			s.logger.Warn("object delete failed after item removal",
				zap.String("key", key),
				zap.String("item_id", itemID),
				zap.Error(err))
		}
	}()
}

// Wait blocks until all detached delete tasks have finished. Used during
// shutdown to drain in-flight cleanups.
func (s *Synchronizer) Wait() {
	s.deletes.Wait()
}

// attachmentDisposition names the downloaded file after its original
// display name.
func attachmentDisposition(displayName string) string {
	return fmt.Sprintf("attachment; filename=%q", displayName)
}
