// Package server is the window-facing surface: a loopback HTTP API for
// the settings UI plus websocket bridges that put the presenter (game)
// window and the controller (admin) window on the session channel.
package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"partydeck/internal/game"
)

// ContentHandler handles HTTP requests for folders, images and quiz
// documents.
type ContentHandler struct {
	store  game.ContentStore
	logger game.Logger
}

// NewContentHandler creates a new content handler.
func NewContentHandler(store game.ContentStore, logger game.Logger) *ContentHandler {
	return &ContentHandler{store: store, logger: logger}
}

// writeJSON writes v as a JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeStoreError maps the store error taxonomy onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrInvalidName), errors.Is(err, game.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, game.ErrPathEscape):
		status = http.StatusForbidden
	case errors.Is(err, game.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrConflict):
		status = http.StatusConflict
	}
	http.Error(w, err.Error(), status)
}

// kindFromRequest reads the {kind} route variable.
func kindFromRequest(r *http.Request) (game.Kind, error) {
	kind := game.Kind(mux.Vars(r)["kind"])
	if !kind.Valid() {
		return "", fmt.Errorf("unknown content kind: %s", kind)
	}
	return kind, nil
}

// decodeImagePayload accepts raw base64 or a data-URL-prefixed payload
// (e.g. "data:image/png;base64,....") and returns the decoded bytes.
func decodeImagePayload(payload string) ([]byte, error) {
	if i := strings.IndexByte(payload, ','); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 image data: %w", err)
	}
	return data, nil
}

// dataURL encodes an inline image as a data URL for the browser windows.
func dataURL(img game.InlineImage) string {
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// ListFolders returns the namespace's folders.
// GET /api/{kind}/folders
func (h *ContentHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.store.ListFolders(kind))
}

// CreateFolderRequest carries the raw folder name to create.
type CreateFolderRequest struct {
	Name string `json:"name"`
}

// CreateFolder creates a folder.
// POST /api/{kind}/folders
func (h *ContentHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req CreateFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	folder, err := h.store.CreateFolder(kind, req.Name)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

// DeleteFolder removes a folder and all its contents. The confirmation
// step lives in the UI layer; by the time this endpoint is hit the
// host has confirmed.
// DELETE /api/{kind}/folders/{folder}
func (h *ContentHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.store.DeleteFolder(kind, mux.Vars(r)["folder"]); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListImages returns a folder's images, newest first.
// GET /api/image/folders/{folder}/images
func (h *ContentHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.store.ListImages(mux.Vars(r)["folder"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, images)
}

// SaveImageRequest carries an upload: the desired file name and the
// image bytes as base64 (with or without a data-URL prefix).
type SaveImageRequest struct {
	FileName string `json:"fileName"`
	Data     string `json:"data"`
}

// SaveImage stores an uploaded image in a folder.
// POST /api/image/folders/{folder}/images
func (h *ContentHandler) SaveImage(w http.ResponseWriter, r *http.Request) {
	var req SaveImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	data, err := decodeImagePayload(req.Data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	name, err := h.store.SaveImage(mux.Vars(r)["folder"], req.FileName, data)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"fileName": name})
}

// DeleteImage removes one image.
// DELETE /api/image/folders/{folder}/images/{name}
func (h *ContentHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.store.DeleteImage(vars["folder"], vars["name"]); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RenameImageRequest carries the new image name.
type RenameImageRequest struct {
	NewName string `json:"newName"`
}

// RenameImage renames an image within its folder.
// PUT /api/image/folders/{folder}/images/{name}
func (h *ContentHandler) RenameImage(w http.ResponseWriter, r *http.Request) {
	var req RenameImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	name, err := h.store.RenameImage(vars["folder"], vars["name"], req.NewName)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"fileName": name})
}

// GetImage returns one image as a data URL.
// GET /api/image/folders/{folder}/images/{name}
func (h *ContentHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	img, err := h.store.ReadImage(vars["folder"], vars["name"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"base64": dataURL(img)})
}

// GetQuizDocument returns a folder's quiz document; a missing file is
// the canonical empty set.
// GET /api/quiz/folders/{folder}/document
func (h *ContentHandler) GetQuizDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.ReadQuizDocument(mux.Vars(r)["folder"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// SaveQuizDocumentRequest carries the full replacement document.
type SaveQuizDocumentRequest struct {
	Category string          `json:"category"`
	Quizzes  []game.QuizItem `json:"quizzes"`
}

// SaveQuizDocument replaces a folder's quiz document.
// PUT /api/quiz/folders/{folder}/document
func (h *ContentHandler) SaveQuizDocument(w http.ResponseWriter, r *http.Request) {
	var req SaveQuizDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if err := h.store.WriteQuizDocument(mux.Vars(r)["folder"], req.Category, req.Quizzes); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetQuizSummary returns the advisory folder preview. It never fails.
// GET /api/quiz/folders/{folder}/summary
func (h *ContentHandler) GetQuizSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.ReadQuizSummary(mux.Vars(r)["folder"]))
}

// SaveQuizImageRequest carries an image upload for one quiz item. The
// original file name supplies the extension.
type SaveQuizImageRequest struct {
	FileName string `json:"fileName"`
	Data     string `json:"data"`
}

// SaveQuizImage attaches an image to a quiz item by id.
// POST /api/quiz/folders/{folder}/items/{item}/image
func (h *ContentHandler) SaveQuizImage(w http.ResponseWriter, r *http.Request) {
	var req SaveQuizImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	data, err := decodeImagePayload(req.Data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	name, err := h.store.SaveQuizImage(vars["folder"], vars["item"], data, req.FileName)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"fileName": name})
}

// DeleteQuizImage removes a quiz item's image.
// DELETE /api/quiz/folders/{folder}/items/{item}/image
func (h *ContentHandler) DeleteQuizImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.store.DeleteQuizImage(vars["folder"], vars["item"]); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// QuizImageResponse reports whether an item has an image and, when it
// does, its data URL and file name.
type QuizImageResponse struct {
	Exists   bool   `json:"exists"`
	Base64   string `json:"base64,omitempty"`
	FileName string `json:"fileName,omitempty"`
}

// GetQuizImage returns a quiz item's image, probing extensions by id.
// GET /api/quiz/folders/{folder}/items/{item}/image
func (h *ContentHandler) GetQuizImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	img, ok, err := h.store.ReadQuizImage(vars["folder"], vars["item"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, QuizImageResponse{Exists: false})
		return
	}
	writeJSON(w, http.StatusOK, QuizImageResponse{
		Exists:   true,
		Base64:   dataURL(img),
		FileName: img.FileName,
	})
}
