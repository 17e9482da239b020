package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	ferrors "github.com/filehook/filehook/internal/errors"
	"github.com/filehook/filehook/internal/filehook"
	"github.com/filehook/filehook/internal/item"
)

// maxFilenameLength bounds the accepted display name.
const maxFilenameLength = 255

// UploadRequest is the body of POST /s3-upload.
type UploadRequest struct {
	Filename string `json:"filename"`
}

// UploadResponse is the response of POST /s3-upload.
type UploadResponse struct {
	Item      ItemResponse `json:"item"`
	UploadURL string       `json:"uploadUrl"`
}

// ItemResponse is the wire representation of an item record.
type ItemResponse struct {
	ID        string               `json:"id"`
	Type      string               `json:"type"`
	Title     string               `json:"title"`
	ParentID  *string              `json:"parentId,omitempty"`
	File      *item.FileDescriptor `json:"file,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

func itemResponse(it *item.Item) ItemResponse {
	resp := ItemResponse{
		ID:        it.ID.String(),
		Type:      string(it.Type),
		Title:     it.Title,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}
	if it.ParentID != nil {
		pid := it.ParentID.String()
		resp.ParentID = &pid
	}
	if file, ok := it.File(); ok {
		resp.File = file
	}
	return resp
}

// UploadHandler handles POST /s3-upload requests: it mints an object key,
// creates the file item record, and returns a time-limited direct-upload
// authorization.
type UploadHandler struct {
	items      item.Service
	keys       *filehook.KeyGenerator
	authorizer *filehook.UploadAuthorizer
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(items item.Service, keys *filehook.KeyGenerator, authorizer *filehook.UploadAuthorizer) *UploadHandler {
	return &UploadHandler{
		items:      items,
		keys:       keys,
		authorizer: authorizer,
	}
}

// ServeHTTP handles the upload-intent HTTP request.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "", requestID)
		return
	}

	if req.Filename == "" || len(req.Filename) > maxFilenameLength {
		writeError(w, http.StatusBadRequest, "filename must be non-empty and at most 255 characters",
			ferrors.CodeInvalidFilename, requestID)
		return
	}

	var parentID *uuid.UUID
	if raw := r.URL.Query().Get("parentId"); raw != "" {
		pid, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid parentId", ferrors.CodeInvalidItemID, requestID)
			return
		}
		parentID = &pid
	}

	actor := r.Header.Get("X-Member-Id")
	key := h.keys.Generate()

	created, err := h.items.Create(r.Context(), actor, &item.Item{
		Type:     item.TypeFile,
		Title:    req.Filename,
		ParentID: parentID,
		Payload: &item.FilePayload{
			File: item.FileDescriptor{
				DisplayName: req.Filename,
				Key:         key,
			},
		},
	})
	if err != nil {
		writeDomainError(w, err, requestID)
		return
	}

	uploadURL, err := h.authorizer.Authorize(r.Context(), key, map[string]string{
		"owner-id": actor,
		"item-id":  created.ID.String(),
	})
	if err != nil {
		writeDomainError(w, err, requestID)
		return
	}

	writeJSON(w, http.StatusCreated, UploadResponse{
		Item:      itemResponse(created),
		UploadURL: uploadURL,
	})
}
