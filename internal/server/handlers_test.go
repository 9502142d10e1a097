package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"partydeck/internal/game"
	"partydeck/internal/session"
	"partydeck/internal/testutil"
)

func newTestRouter(t *testing.T) (*mux.Router, game.ContentStore, *session.Manager) {
	t.Helper()
	store := testutil.NewSeededStore(t, []string{"a.jpg", "b.png"}, testutil.Quizzes(3))
	hub := session.NewHub(nil)
	manager := session.NewManager(hub, store, nil)

	content := NewContentHandler(store, game.NewNopLogger())
	sess := NewSessionHandler(store, hub, manager, game.NewNopLogger())
	return SetupRoutes(content, sess), store, manager
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding request: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestFolderEndpoints(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/image/folders", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	var folders []game.ContentFolder
	if err := json.Unmarshal(rec.Body.Bytes(), &folders); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if len(folders) != 1 || folders[0].ID != "party" {
		t.Errorf("folders = %+v, want the seeded party folder", folders)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/image/folders", CreateFolderRequest{Name: "New Year"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", rec.Code, rec.Body)
	}
	var created game.ContentFolder
	json.Unmarshal(rec.Body.Bytes(), &created)
	if created.ID != "New Year" {
		t.Errorf("created id = %q, want New Year", created.ID)
	}

	// Error taxonomy over HTTP.
	rec = doJSON(t, router, http.MethodPost, "/api/image/folders", CreateFolderRequest{Name: "New Year"})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate create status = %d, want 409", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, "/api/image/folders", CreateFolderRequest{Name: "  "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid name status = %d, want 400", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, "/api/video/folders", CreateFolderRequest{Name: "x"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown kind status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/image/folders/New%20Year", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
	rec = doJSON(t, router, http.MethodDelete, "/api/image/folders/New%20Year", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete of missing folder status = %d, want 404", rec.Code)
	}
}

func TestImageUploadAndFetch(t *testing.T) {
	router, _, _ := newTestRouter(t)

	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("pixels"))
	rec := doJSON(t, router, http.MethodPost, "/api/image/folders/party/images", SaveImageRequest{
		FileName: "upload.png",
		Data:     payload,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/image/folders/party/images/upload.png", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("fetch status = %d", rec.Code)
	}
	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if !strings.HasPrefix(resp["base64"], "data:image/png;base64,") {
		t.Errorf("fetched data URL = %q, want png prefix", resp["base64"])
	}
	decoded, _ := base64.StdEncoding.DecodeString(strings.TrimPrefix(resp["base64"], "data:image/png;base64,"))
	if string(decoded) != "pixels" {
		t.Errorf("round-tripped bytes = %q, want pixels", decoded)
	}

	// Raw base64 without a data-URL prefix is accepted too.
	rec = doJSON(t, router, http.MethodPost, "/api/image/folders/party/images", SaveImageRequest{
		FileName: "plain.jpg",
		Data:     base64.StdEncoding.EncodeToString([]byte("x")),
	})
	if rec.Code != http.StatusCreated {
		t.Errorf("raw base64 upload status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/image/folders/party/images", SaveImageRequest{
		FileName: "bad.jpg",
		Data:     "not base64 at all!",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad payload status = %d, want 400", rec.Code)
	}
}

func TestImageRenameAndDelete(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/api/image/folders/party/images/a.jpg", RenameImageRequest{NewName: "b.png"})
	if rec.Code != http.StatusConflict {
		t.Errorf("rename onto existing status = %d, want 409", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPut, "/api/image/folders/party/images/a.jpg", RenameImageRequest{NewName: "renamed.jpg"})
	if rec.Code != http.StatusOK {
		t.Fatalf("rename status = %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/image/folders/party/images/renamed.jpg", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/image/folders/party/images/renamed.jpg", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("fetch after delete status = %d, want 404", rec.Code)
	}
}

func TestQuizDocumentEndpoints(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/quiz/folders/trivia/document", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get document status = %d", rec.Code)
	}
	var doc game.QuizDocument
	json.Unmarshal(rec.Body.Bytes(), &doc)
	if len(doc.Quizzes) != 3 {
		t.Errorf("document holds %d items, want 3", len(doc.Quizzes))
	}

	// A folder with no document reads as the canonical empty set.
	rec = doJSON(t, router, http.MethodGet, "/api/quiz/folders/unwritten/document", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("empty document status = %d", rec.Code)
	}
	json.Unmarshal(rec.Body.Bytes(), &doc)
	if doc.Category != "unwritten" || len(doc.Quizzes) != 0 {
		t.Errorf("empty document = %+v", doc)
	}

	rec = doJSON(t, router, http.MethodPut, "/api/quiz/folders/trivia/document", SaveQuizDocumentRequest{
		Category: "updated",
		Quizzes:  []game.QuizItem{{ID: "q-1", Index: 1, Quiz: "only?", Answer: "yes"}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("put document status = %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, router, http.MethodPut, "/api/quiz/folders/trivia/document", SaveQuizDocumentRequest{
		Quizzes: []game.QuizItem{{ID: "", Quiz: "q", Answer: "a"}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid document status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/quiz/folders/trivia/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rec.Code)
	}
	var summary game.QuizSummary
	json.Unmarshal(rec.Body.Bytes(), &summary)
	if !summary.Exists || summary.Count != 1 {
		t.Errorf("summary = %+v, want Count 1 after replacement", summary)
	}
}

func TestQuizImageEndpoints(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/quiz/folders/trivia/items/q-1/image", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get missing image status = %d", rec.Code)
	}
	var resp QuizImageResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Exists {
		t.Errorf("missing image response = %+v, want Exists false", resp)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/quiz/folders/trivia/items/q-1/image", SaveQuizImageRequest{
		FileName: "Portrait.JPG",
		Data:     base64.StdEncoding.EncodeToString([]byte("face")),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/quiz/folders/trivia/items/q-1/image", nil)
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Exists || resp.FileName != "q-1.jpg" {
		t.Errorf("image response = %+v, want q-1.jpg", resp)
	}
	if !strings.HasPrefix(resp.Base64, "data:image/jpeg;base64,") {
		t.Errorf("data URL = %q, want jpeg prefix", resp.Base64)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/quiz/folders/trivia/items/q-1/image", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
	rec = doJSON(t, router, http.MethodDelete, "/api/quiz/folders/trivia/items/q-1/image", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestControllerStatusEndpoints(t *testing.T) {
	router, _, manager := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/session/controller", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var closed map[string]any
	json.Unmarshal(rec.Body.Bytes(), &closed)
	if open, _ := closed["open"].(bool); open {
		t.Error("reported an open controller before any window connected")
	}

	if _, err := manager.OpenController("party", game.KindImage); err != nil {
		t.Fatal(err)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/session/controller", nil)
	var status struct {
		Open     bool                    `json:"open"`
		FolderID string                  `json:"folderId"`
		Kind     game.Kind               `json:"kind"`
		State    session.ControllerState `json:"state"`
	}
	json.Unmarshal(rec.Body.Bytes(), &status)
	if !status.Open || status.FolderID != "party" || status.Kind != game.KindImage {
		t.Errorf("status = %+v, want open controller on party", status)
	}
	if status.State.Total != 2 {
		t.Errorf("status total = %d, want 2 seeded images", status.State.Total)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/session/controller", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("close status = %d, want 204", rec.Code)
	}
	if manager.Controller() != nil {
		t.Error("controller still open after close endpoint")
	}
}

func TestDecodeImagePayload(t *testing.T) {
	want := []byte{0x89, 'P', 'N', 'G'}
	encoded := base64.StdEncoding.EncodeToString(want)

	for _, payload := range []string{encoded, "data:image/png;base64," + encoded} {
		got, err := decodeImagePayload(payload)
		if err != nil {
			t.Fatalf("decodeImagePayload(%q) error = %v", payload, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("decodeImagePayload(%q) = %v, want %v", payload, got, want)
		}
	}

	if _, err := decodeImagePayload("@@not-base64@@"); err == nil {
		t.Error("expected error for malformed payload")
	}
}
