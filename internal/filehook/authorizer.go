package filehook

import (
	"context"
	"time"

	"go.uber.org/zap"

	ferrors "github.com/filehook/filehook/internal/errors"
	"github.com/filehook/filehook/internal/store"
)

// UploadAuthorizer issues time-boxed authorizations for direct
// client-to-store uploads under a freshly minted key.
type UploadAuthorizer struct {
	store  store.ObjectStore
	expiry time.Duration
	logger *zap.Logger
}

// NewUploadAuthorizer creates an authorizer with the given default expiry.
func NewUploadAuthorizer(objects store.ObjectStore, expiry time.Duration, logger *zap.Logger) *UploadAuthorizer {
	return &UploadAuthorizer{
		store:  objects,
		expiry: expiry,
		logger: logger,
	}
}

// Expiry returns the configured authorization validity.
func (a *UploadAuthorizer) Expiry() time.Duration {
	return a.expiry
}

// Authorize returns an upload URL for key, valid for the configured expiry.
// The metadata pairs are attached to the future object for auditability;
// nothing in this system verifies or consumes them. A remote failure is
// logged with the target key and propagated without retry.
func (a *UploadAuthorizer) Authorize(ctx context.Context, key string, metadata map[string]string) (string, error) {
	url, err := a.store.PresignUpload(ctx, key, a.expiry, metadata)
	if err != nil {
		a.logger.Error("upload authorization failed",
			zap.String("key", key),
			zap.Error(err))
		return "", ferrors.NewStoreError(ferrors.CodeAuthorizeFailed, "failed to authorize upload", err)
	}
	return url, nil
}
