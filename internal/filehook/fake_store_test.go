package filehook

import (
	"context"
	"sync"
	"time"

	"github.com/filehook/filehook/internal/store"
)

// fakeStore is an in-memory ObjectStore recording every call for
// assertions, with per-operation fault injection.
type fakeStore struct {
	mu sync.Mutex

	objects map[string]store.ObjectMetadata

	headCalls    int
	copyCalls    int
	deleteCalls  int
	presignCalls int

	copies         []store.CopyInput
	deleted        []string
	presignExpiry  time.Duration
	presignMeta    map[string]string
	presignedKeys  []string

	headErr    error
	copyErr    error
	deleteErr  error
	presignErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string]store.ObjectMetadata)}
}

func (f *fakeStore) HeadMetadata(ctx context.Context, key string) (store.ObjectMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.headCalls++
	if f.headErr != nil {
		return store.ObjectMetadata{}, f.headErr
	}
	meta, ok := f.objects[key]
	if !ok {
		return store.ObjectMetadata{}, store.ErrObjectNotFound
	}
	return meta, nil
}

func (f *fakeStore) CopyObject(ctx context.Context, in store.CopyInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.copyCalls++
	if f.copyErr != nil {
		return f.copyErr
	}
	f.copies = append(f.copies, in)
	if meta, ok := f.objects[in.SourceKey]; ok {
		f.objects[in.DestKey] = meta
	}
	return nil
}

func (f *fakeStore) DeleteObject(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) PresignUpload(ctx context.Context, key string, expiry time.Duration, metadata map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presignCalls++
	if f.presignErr != nil {
		return "", f.presignErr
	}
	f.presignExpiry = expiry
	f.presignMeta = metadata
	f.presignedKeys = append(f.presignedKeys, key)
	return "https://store.example/" + key + "?signed", nil
}

// totalCalls returns the number of store calls of any kind.
func (f *fakeStore) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.headCalls + f.copyCalls + f.deleteCalls + f.presignCalls
}
