package http

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/filehook/filehook/internal/filehook"
	"github.com/filehook/filehook/internal/item"
	"github.com/filehook/filehook/internal/store"
)

// fakeObjectStore is an in-memory ObjectStore with per-operation fault
// injection for handler tests.
type fakeObjectStore struct {
	objects map[string]store.ObjectMetadata

	presignMeta map[string]string

	headErr    error
	presignErr error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string]store.ObjectMetadata)}
}

func (f *fakeObjectStore) HeadMetadata(ctx context.Context, key string) (store.ObjectMetadata, error) {
	if f.headErr != nil {
		return store.ObjectMetadata{}, f.headErr
	}
	meta, ok := f.objects[key]
	if !ok {
		return store.ObjectMetadata{}, store.ErrObjectNotFound
	}
	return meta, nil
}

func (f *fakeObjectStore) CopyObject(ctx context.Context, in store.CopyInput) error {
	if meta, ok := f.objects[in.SourceKey]; ok {
		f.objects[in.DestKey] = meta
	}
	return nil
}

func (f *fakeObjectStore) DeleteObject(ctx context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeObjectStore) PresignUpload(ctx context.Context, key string, expiry time.Duration, metadata map[string]string) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	f.presignMeta = metadata
	return "https://store.example/" + key + "?signed", nil
}

// testEnv wires the handlers the way the app does, over in-memory fakes.
type testEnv struct {
	router  http.Handler
	items   *item.SQLiteService
	objects *fakeObjectStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	items, err := item.NewSQLiteService(filepath.Join(t.TempDir(), "items.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open item service: %v", err)
	}
	t.Cleanup(func() { items.Close() })

	objects := newFakeObjectStore()
	logger := zap.NewNop()

	keys := filehook.NewKeyGenerator()
	authorizer := filehook.NewUploadAuthorizer(objects, time.Minute, logger)
	resolver := filehook.NewMetadataResolver(items, objects, logger)

	router := NewRouter(
		NewUploadHandler(items, keys, authorizer),
		NewMetadataHandler(resolver),
	)

	return &testEnv{router: router, items: items, objects: objects}
}
