package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LocalStore implements ObjectStore on the local filesystem.
// This is primarily used for testing and development. Object metadata is
// kept in a JSON sidecar next to each data file.
type LocalStore struct {
	basePath string
	mu       sync.RWMutex
}

type localMeta struct {
	ContentType        string            `json:"content_type,omitempty"`
	ContentDisposition string            `json:"content_disposition,omitempty"`
	CacheControl       string            `json:"cache_control,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

// NewLocalStore creates a new local filesystem store.
func NewLocalStore(basePath string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &LocalStore{basePath: basePath}, nil
}

// HeadMetadata returns size and content type of the object at key.
func (l *LocalStore) HeadMetadata(ctx context.Context, key string) (ObjectMetadata, error) {
	if err := ctx.Err(); err != nil {
		return ObjectMetadata{}, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	path, err := l.fullPath(key)
	if err != nil {
		return ObjectMetadata{}, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ObjectMetadata{}, ErrObjectNotFound
		}
		return ObjectMetadata{}, fmt.Errorf("%w: %v", ErrHeadFailed, err)
	}

	meta, err := l.readMeta(path)
	if err != nil {
		return ObjectMetadata{}, fmt.Errorf("%w: %v", ErrHeadFailed, err)
	}

	return ObjectMetadata{Size: stat.Size(), ContentType: meta.ContentType}, nil
}

// CopyObject duplicates the data file and writes a fresh metadata sidecar.
func (l *LocalStore) CopyObject(ctx context.Context, in CopyInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	srcPath, err := l.fullPath(in.SourceKey)
	if err != nil {
		return err
	}
	dstPath, err := l.fullPath(in.DestKey)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("%w: %v", ErrCopyFailed, err)
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrCopyFailed, err)
	}
	if err := os.WriteFile(dstPath, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrCopyFailed, err)
	}

	meta := localMeta{
		ContentType:        in.ContentType,
		ContentDisposition: in.ContentDisposition,
		CacheControl:       in.CacheControl,
		Metadata:           in.Metadata,
	}
	if err := l.writeMeta(dstPath, meta); err != nil {
		return fmt.Errorf("%w: %v", ErrCopyFailed, err)
	}

	return nil
}

// DeleteObject removes the data file and its sidecar.
func (l *LocalStore) DeleteObject(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	path, err := l.fullPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	os.Remove(metaPath(path))

	return nil
}

// PresignUpload returns a file URL for the target path. Local storage cannot
// mint real time-limited credentials; the URL carries the expiry for
// development tooling that honors it.
func (l *LocalStore) PresignUpload(ctx context.Context, key string, expiry time.Duration, metadata map[string]string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := l.fullPath(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPresignFailed, err)
	}

	meta := localMeta{Metadata: metadata}
	if err := l.writeMeta(path, meta); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPresignFailed, err)
	}

	expires := time.Now().Add(expiry).Unix()
	return fmt.Sprintf("file://%s?expires=%d", path, expires), nil
}

// fullPath resolves a key against the base path, rejecting traversal.
func (l *LocalStore) fullPath(key string) (string, error) {
	clean := filepath.Clean(key)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid object key: %s", key)
	}
	return filepath.Join(l.basePath, clean), nil
}

func metaPath(path string) string {
	return path + ".meta.json"
}

func (l *LocalStore) readMeta(path string) (localMeta, error) {
	var meta localMeta
	data, err := os.ReadFile(metaPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return meta, nil
		}
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, err
	}
	return meta, nil
}

func (l *LocalStore) writeMeta(path string, meta localMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(metaPath(path), data, 0644)
}
