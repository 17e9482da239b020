package filehook

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	ferrors "github.com/filehook/filehook/internal/errors"
	"github.com/filehook/filehook/internal/item"
	"github.com/filehook/filehook/internal/store"
)

// MetadataResolver returns a file item's size and content type, filling
// them from a head request on first read and persisting the result back
// onto the item record.
type MetadataResolver struct {
	items  item.Service
	store  store.ObjectStore
	logger *zap.Logger
}

// NewMetadataResolver creates a resolver over the given item service and
// object store.
func NewMetadataResolver(items item.Service, objects store.ObjectStore, logger *zap.Logger) *MetadataResolver {
	return &MetadataResolver{
		items:  items,
		store:  objects,
		logger: logger,
	}
}

// Resolve returns the file descriptor of the item with the given id.
//
// When size and content type are already cached the descriptor is returned
// as-is with zero remote calls. Otherwise one head request fills both
// fields atomically and exactly one record update persists them; repeated
// calls after a successful fill never touch the store again. A head
// failure propagates without any partial write.
func (r *MetadataResolver) Resolve(ctx context.Context, actor string, id uuid.UUID) (item.FileDescriptor, error) {
	it, err := r.items.Get(ctx, actor, id)
	if err != nil {
		return item.FileDescriptor{}, err
	}

	file, ok := it.File()
	if !ok {
		return item.FileDescriptor{}, ferrors.NewValidationError(ferrors.CodeNotAFileItem,
			"item does not carry a file descriptor")
	}

	if file.Resolved() {
		return *file, nil
	}

	meta, err := r.store.HeadMetadata(ctx, file.Key)
	if err != nil {
		r.logger.Error("object head failed",
			zap.String("key", file.Key),
			zap.String("item_id", id.String()),
			zap.Error(err))
		return item.FileDescriptor{}, ferrors.NewStoreError(ferrors.CodeHeadFailed, "failed to read object metadata", err)
	}

	size := meta.Size
	contentType := meta.ContentType
	file.Size = &size
	file.ContentType = &contentType

	if _, err := r.items.UpdatePayload(ctx, actor, id, it.Payload); err != nil {
		return item.FileDescriptor{}, err
	}

	return *file, nil
}
