package http

import (
	"net/http"

	"github.com/google/uuid"

	ferrors "github.com/filehook/filehook/internal/errors"
	"github.com/filehook/filehook/internal/filehook"
)

// MetadataResponse is the response of GET /{id}/s3-metadata.
type MetadataResponse struct {
	DisplayName string  `json:"displayName"`
	Key         string  `json:"key"`
	Size        *int64  `json:"size,omitempty"`
	ContentType *string `json:"contentType,omitempty"`
}

// MetadataHandler handles GET /{id}/s3-metadata requests, lazily resolving
// size and content type on first read.
type MetadataHandler struct {
	resolver *filehook.MetadataResolver
}

// NewMetadataHandler creates a new metadata handler.
func NewMetadataHandler(resolver *filehook.MetadataResolver) *MetadataHandler {
	return &MetadataHandler{resolver: resolver}
}

// ServeHTTP handles the metadata HTTP request.
func (h *MetadataHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id", ferrors.CodeInvalidItemID, requestID)
		return
	}

	actor := r.Header.Get("X-Member-Id")

	file, err := h.resolver.Resolve(r.Context(), actor, id)
	if err != nil {
		writeDomainError(w, err, requestID)
		return
	}

	writeJSON(w, http.StatusOK, MetadataResponse{
		DisplayName: file.DisplayName,
		Key:         file.Key,
		Size:        file.Size,
		ContentType: file.ContentType,
	})
}
