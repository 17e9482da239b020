// Package store provides the object storage contract consumed by the
// lifecycle synchronization components. Implementations are remote black
// boxes; callers decide retry policy (this system chooses none).
package store

import (
	"context"
	"errors"
	"time"
)

// Common errors for store operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrHeadFailed     = errors.New("head failed")
	ErrCopyFailed     = errors.New("copy failed")
	ErrDeleteFailed   = errors.New("delete failed")
	ErrPresignFailed  = errors.New("presign failed")
)

// ObjectMetadata is the result of a head request.
type ObjectMetadata struct {
	Size        int64
	ContentType string
}

// CopyInput describes a server-side object copy. Metadata replaces the
// destination object's metadata wholesale; ContentType and
// ContentDisposition must be resupplied because copy-with-preserved-metadata
// and rename are mutually exclusive on some store implementations.
type CopyInput struct {
	SourceKey          string
	DestKey            string
	Metadata           map[string]string
	ContentDisposition string
	ContentType        string
	CacheControl       string
}

// ObjectStore abstracts the remote object store. All operations are remote
// and may fail with transient or permanent errors; none retry internally.
type ObjectStore interface {
	// HeadMetadata returns the size and content type of the object at key.
	HeadMetadata(ctx context.Context, key string) (ObjectMetadata, error)

	// CopyObject duplicates the object at SourceKey to DestKey, replacing
	// object metadata with the supplied set.
	CopyObject(ctx context.Context, in CopyInput) error

	// DeleteObject removes the object at key.
	DeleteObject(ctx context.Context, key string) error

	// PresignUpload returns a time-limited URL permitting a single PUT to
	// key. The metadata pairs are attached to the future object.
	PresignUpload(ctx context.Context, key string, expiry time.Duration, metadata map[string]string) (string, error)
}
