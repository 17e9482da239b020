package filehook

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	ferrors "github.com/filehook/filehook/internal/errors"
)

func TestUploadAuthorizer_PassesExpiryAndMetadata(t *testing.T) {
	fs := newFakeStore()
	auth := NewUploadAuthorizer(fs, 90*time.Second, zap.NewNop())

	meta := map[string]string{"owner-id": "member-1", "item-id": "abc"}
	url, err := auth.Authorize(context.Background(), "a/b/c-1000", meta)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if !strings.Contains(url, "a/b/c-1000") {
		t.Errorf("url %q does not reference the key", url)
	}
	if fs.presignExpiry != 90*time.Second {
		t.Errorf("expiry = %v, want 90s", fs.presignExpiry)
	}
	if fs.presignMeta["owner-id"] != "member-1" || fs.presignMeta["item-id"] != "abc" {
		t.Errorf("metadata = %v, want owner and item ids", fs.presignMeta)
	}
}

func TestUploadAuthorizer_FailureIsWrappedAndLogged(t *testing.T) {
	fs := newFakeStore()
	fs.presignErr = errors.New("store unavailable")

	core, observed := observer.New(zap.ErrorLevel)
	auth := NewUploadAuthorizer(fs, time.Minute, zap.New(core))

	_, err := auth.Authorize(context.Background(), "a/b/c-1000", nil)
	if ferrors.GetCode(err) != ferrors.CodeAuthorizeFailed {
		t.Errorf("error code = %q, want AUTHORIZE_FAILED", ferrors.GetCode(err))
	}

	entries := observed.FilterMessage("upload authorization failed").All()
	if len(entries) != 1 {
		t.Fatalf("error log entries = %d, want 1", len(entries))
	}
	if entries[0].ContextMap()["key"] != "a/b/c-1000" {
		t.Errorf("log entry key = %v, want a/b/c-1000", entries[0].ContextMap()["key"])
	}
}
