package http

import "net/http"

// NewRouter assembles the API routes behind the default middleware chain.
func NewRouter(upload *UploadHandler, metadata *MetadataHandler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /s3-upload", upload)
	mux.Handle("GET /{id}/s3-metadata", metadata)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return DefaultMiddleware()(mux)
}
