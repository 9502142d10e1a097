package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes assembles the route table for the window-facing API.
func SetupRoutes(content *ContentHandler, sess *SessionHandler) *mux.Router {
	r := mux.NewRouter()

	// Folder management, shared by both namespaces.
	r.HandleFunc("/api/{kind}/folders", content.ListFolders).Methods(http.MethodGet)
	r.HandleFunc("/api/{kind}/folders", content.CreateFolder).Methods(http.MethodPost)
	r.HandleFunc("/api/{kind}/folders/{folder}", content.DeleteFolder).Methods(http.MethodDelete)

	// Image folders.
	r.HandleFunc("/api/image/folders/{folder}/images", content.ListImages).Methods(http.MethodGet)
	r.HandleFunc("/api/image/folders/{folder}/images", content.SaveImage).Methods(http.MethodPost)
	r.HandleFunc("/api/image/folders/{folder}/images/{name}", content.GetImage).Methods(http.MethodGet)
	r.HandleFunc("/api/image/folders/{folder}/images/{name}", content.RenameImage).Methods(http.MethodPut)
	r.HandleFunc("/api/image/folders/{folder}/images/{name}", content.DeleteImage).Methods(http.MethodDelete)

	// Quiz folders.
	r.HandleFunc("/api/quiz/folders/{folder}/document", content.GetQuizDocument).Methods(http.MethodGet)
	r.HandleFunc("/api/quiz/folders/{folder}/document", content.SaveQuizDocument).Methods(http.MethodPut)
	r.HandleFunc("/api/quiz/folders/{folder}/summary", content.GetQuizSummary).Methods(http.MethodGet)
	r.HandleFunc("/api/quiz/folders/{folder}/items/{item}/image", content.GetQuizImage).Methods(http.MethodGet)
	r.HandleFunc("/api/quiz/folders/{folder}/items/{item}/image", content.SaveQuizImage).Methods(http.MethodPost)
	r.HandleFunc("/api/quiz/folders/{folder}/items/{item}/image", content.DeleteQuizImage).Methods(http.MethodDelete)

	// Session channel.
	r.HandleFunc("/api/session/controller", sess.ControllerStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/session/controller", sess.CloseController).Methods(http.MethodDelete)
	r.HandleFunc("/ws/presenter", sess.Presenter)
	r.HandleFunc("/ws/controller", sess.Controller)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	return r
}
