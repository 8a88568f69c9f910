package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"code.sajari.com/docconv"

	"docchat/internal/core"
	"docchat/internal/core/session"
)

type DocumentHandler struct {
	extractor core.DocumentExtractor
	sessions  *session.Store
}

func NewDocumentHandler(extractor core.DocumentExtractor, sessions *session.Store) *DocumentHandler {
	return &DocumentHandler{extractor: extractor, sessions: sessions}
}

// Upload extracts the text of the posted file and holds it in the session.
// The text never reaches persistent storage; a failed extraction leaves any
// previously held document untouched.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {

	r.ParseMultipartForm(32 << 20)

	sid, ok := r.Context().Value("session_id").(string)
	if !ok {
		http.Error(w, "session_id not found in context", http.StatusUnauthorized)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "could not read file", http.StatusBadRequest)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = docconv.MimeTypeByExtension(header.Filename)
	}
	text, err := h.extractor.Extract(data, contentType)
	if err != nil {
		http.Error(w, fmt.Sprintf("could not extract text: %v", err), http.StatusBadRequest)
		return
	}

	// Sanitize filename to drop any path components.
	cleanFilename := filepath.Base(header.Filename)
	if !h.sessions.SetDocument(sid, cleanFilename, text) {
		http.Error(w, "session expired", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"file_name": cleanFilename,
		"chars":     len(text),
	})
}
