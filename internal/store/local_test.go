package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newLocalStore(t *testing.T) (*LocalStore, string) {
	t.Helper()
	dir := t.TempDir()
	ls, err := NewLocalStore(dir)
	if err != nil {
		t.Fatalf("failed to create local store: %v", err)
	}
	return ls, dir
}

func putObject(t *testing.T, dir, key, content, contentType string) {
	t.Helper()
	path := filepath.Join(dir, key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write object: %v", err)
	}
	if contentType != "" {
		meta := `{"content_type":"` + contentType + `"}`
		if err := os.WriteFile(path+".meta.json", []byte(meta), 0644); err != nil {
			t.Fatalf("write sidecar: %v", err)
		}
	}
}

func TestLocalHeadMetadata(t *testing.T) {
	ls, dir := newLocalStore(t)
	putObject(t, dir, "a/b/c-1000", "hello world", "text/plain")

	meta, err := ls.HeadMetadata(context.Background(), "a/b/c-1000")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if meta.Size != int64(len("hello world")) {
		t.Errorf("size = %d, want %d", meta.Size, len("hello world"))
	}
	if meta.ContentType != "text/plain" {
		t.Errorf("content type = %q, want text/plain", meta.ContentType)
	}
}

func TestLocalHeadMissingObject(t *testing.T) {
	ls, _ := newLocalStore(t)

	_, err := ls.HeadMetadata(context.Background(), "no/such/key-1")
	if !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("error = %v, want ErrObjectNotFound", err)
	}
}

func TestLocalCopyObject(t *testing.T) {
	ls, dir := newLocalStore(t)
	putObject(t, dir, "a/b/c-1000", "payload", "application/pdf")

	err := ls.CopyObject(context.Background(), CopyInput{
		SourceKey:          "a/b/c-1000",
		DestKey:            "d/e/f-2000",
		Metadata:           map[string]string{"owner-id": "member-1"},
		ContentDisposition: `attachment; filename="report.pdf"`,
		ContentType:        "application/pdf",
		CacheControl:       "max-age=3600",
	})
	if err != nil {
		t.Fatalf("copy: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "d/e/f-2000"))
	if err != nil {
		t.Fatalf("read copy: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("copied content = %q, want payload", data)
	}

	meta, err := ls.HeadMetadata(context.Background(), "d/e/f-2000")
	if err != nil {
		t.Fatalf("head copy: %v", err)
	}
	if meta.ContentType != "application/pdf" {
		t.Errorf("copied content type = %q, want application/pdf", meta.ContentType)
	}

	// Source is untouched.
	if _, err := ls.HeadMetadata(context.Background(), "a/b/c-1000"); err != nil {
		t.Errorf("source should still exist: %v", err)
	}
}

func TestLocalCopyMissingSource(t *testing.T) {
	ls, _ := newLocalStore(t)

	err := ls.CopyObject(context.Background(), CopyInput{SourceKey: "no/such/key-1", DestKey: "d/e/f-2000"})
	if !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("error = %v, want ErrObjectNotFound", err)
	}
}

func TestLocalDeleteObject(t *testing.T) {
	ls, dir := newLocalStore(t)
	putObject(t, dir, "a/b/c-1000", "payload", "text/plain")

	if err := ls.DeleteObject(context.Background(), "a/b/c-1000"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a/b/c-1000")); !os.IsNotExist(err) {
		t.Error("data file should be gone")
	}
	if _, err := os.Stat(filepath.Join(dir, "a/b/c-1000.meta.json")); !os.IsNotExist(err) {
		t.Error("sidecar should be gone")
	}

	// Deleting again is not an error.
	if err := ls.DeleteObject(context.Background(), "a/b/c-1000"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestLocalPresignUpload(t *testing.T) {
	ls, dir := newLocalStore(t)

	url, err := ls.PresignUpload(context.Background(), "a/b/c-1000", time.Minute,
		map[string]string{"owner-id": "member-1"})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.HasPrefix(url, "file://") || !strings.Contains(url, "expires=") {
		t.Errorf("url = %q, want a file url with an expiry", url)
	}

	// The sidecar carries the metadata ahead of the upload.
	meta, err := ls.readMeta(filepath.Join(dir, "a/b/c-1000"))
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	if meta.Metadata["owner-id"] != "member-1" {
		t.Errorf("sidecar metadata = %v, want owner-id member-1", meta.Metadata)
	}
}

func TestLocalRejectsTraversal(t *testing.T) {
	ls, _ := newLocalStore(t)

	for _, key := range []string{"../escape", "/absolute/path", "a/../../escape"} {
		if _, err := ls.HeadMetadata(context.Background(), key); err == nil {
			t.Errorf("key %q should be rejected", key)
		}
	}
}
