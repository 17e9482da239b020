package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"

	ferrors "github.com/filehook/filehook/internal/errors"
)

var uploadKeyShape = regexp.MustCompile(`^[0-9a-f]{8}/[0-9a-f]{8}/[0-9a-f]{8}-\d+$`)

func postUpload(t *testing.T, env *testEnv, body string, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/s3-upload"+query, strings.NewReader(body))
	req.Header.Set("X-Member-Id", "member-1")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestUpload_CreatesItemAndAuthorization(t *testing.T) {
	env := newTestEnv(t)

	rec := postUpload(t, env, `{"filename":"report.pdf"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var resp UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Item.Type != "file" || resp.Item.Title != "report.pdf" {
		t.Errorf("item = %s %q, want file report.pdf", resp.Item.Type, resp.Item.Title)
	}
	if resp.Item.File == nil {
		t.Fatal("response item carries no file descriptor")
	}
	if !uploadKeyShape.MatchString(resp.Item.File.Key) {
		t.Errorf("key %q does not match the generated shape", resp.Item.File.Key)
	}
	if resp.Item.File.Size != nil || resp.Item.File.ContentType != nil {
		t.Error("fresh descriptor should not carry size or content type")
	}
	if !strings.Contains(resp.UploadURL, resp.Item.File.Key) {
		t.Errorf("upload url %q does not reference the key", resp.UploadURL)
	}

	// The record is persisted and the authorization is stamped with it.
	id, err := uuid.Parse(resp.Item.ID)
	if err != nil {
		t.Fatalf("item id %q is not a uuid: %v", resp.Item.ID, err)
	}
	if _, err := env.items.Get(context.Background(), "member-1", id); err != nil {
		t.Errorf("created item not found: %v", err)
	}
	if env.objects.presignMeta["owner-id"] != "member-1" {
		t.Errorf("owner-id metadata = %q, want member-1", env.objects.presignMeta["owner-id"])
	}
	if env.objects.presignMeta["item-id"] != resp.Item.ID {
		t.Errorf("item-id metadata = %q, want the created item id", env.objects.presignMeta["item-id"])
	}
}

func TestUpload_ParentAssignment(t *testing.T) {
	env := newTestEnv(t)

	parent := uuid.New()
	rec := postUpload(t, env, `{"filename":"report.pdf"}`, "?parentId="+parent.String())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var resp UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Item.ParentID == nil || *resp.Item.ParentID != parent.String() {
		t.Errorf("parentId = %v, want %s", resp.Item.ParentID, parent)
	}
}

func TestUpload_ValidationFailures(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		body     string
		query    string
		wantCode string
	}{
		{"empty filename", `{"filename":""}`, "", ferrors.CodeInvalidFilename},
		{"oversized filename", `{"filename":"` + strings.Repeat("a", 256) + `"}`, "", ferrors.CodeInvalidFilename},
		{"malformed body", `{"filename":`, "", ""},
		{"bad parent id", `{"filename":"a.txt"}`, "?parentId=not-a-uuid", ferrors.CodeInvalidItemID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postUpload(t, env, tt.body, tt.query)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid error body: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("error code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestUpload_AuthorizationFailure(t *testing.T) {
	env := newTestEnv(t)
	env.objects.presignErr = errors.New("store unavailable")

	rec := postUpload(t, env, `{"filename":"report.pdf"}`, "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502: %s", rec.Code, rec.Body.String())
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if resp.Code != ferrors.CodeAuthorizeFailed {
		t.Errorf("error code = %q, want AUTHORIZE_FAILED", resp.Code)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("X-Request-ID = %q, want req-42", got)
	}
}
