package app

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"partydeck/internal/config"
	"partydeck/internal/content"
	"partydeck/internal/game"
	"partydeck/internal/session"
)

// App is the application layer between the CLI and the content store
// and session components. It constructs all dependencies from config,
// exposes high-level operations that accept raw strings, and manages
// the log file lifecycle on Close.
type App struct {
	cfg     *config.Config
	store   game.ContentStore
	hub     *session.Hub
	manager *session.Manager
	logger  game.Logger
	idgen   game.IDGenerator
	logFile *os.File
}

// NewApp creates a fully wired App from the given config. operation
// identifies the CLI command being run (e.g. "CreateFolder", "Serve").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	runID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, runID, operation)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	adapted := &slogAdapter{l: logger}

	store, err := content.NewStoreFromConfig(cfg.Content, adapted)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating content store: %w", err)
	}

	hub := session.NewHub(adapted)

	return &App{
		cfg:     cfg,
		store:   store,
		hub:     hub,
		manager: session.NewManager(hub, store, adapted),
		logger:  adapted,
		idgen:   game.UUIDGenerator{},
		logFile: logFile,
	}, nil
}

// Close releases the app's resources.
func (a *App) Close() error {
	if a.logFile != nil {
		return a.logFile.Close()
	}
	return nil
}

// SetIDGenerator replaces the quiz item id source. Tests use this to
// make ids deterministic.
func (a *App) SetIDGenerator(gen game.IDGenerator) { a.idgen = gen }

// Config returns the app's configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Store returns the wired content store.
func (a *App) Store() game.ContentStore { return a.store }

// Hub returns the session channel hub.
func (a *App) Hub() *session.Hub { return a.hub }

// Manager returns the controller-link manager.
func (a *App) Manager() *session.Manager { return a.manager }

// Logger returns the app logger.
func (a *App) Logger() game.Logger { return a.logger }

// ParseKind maps a CLI kind argument to a content namespace.
func ParseKind(raw string) (game.Kind, error) {
	kind := game.Kind(strings.ToLower(strings.TrimSpace(raw)))
	if !kind.Valid() {
		return "", fmt.Errorf("unknown kind %q (want %q or %q)", raw, game.KindImage, game.KindQuiz)
	}
	return kind, nil
}

// ListFolders lists the folders of a namespace.
func (a *App) ListFolders(kind game.Kind) []game.ContentFolder {
	return a.store.ListFolders(kind)
}

// CreateFolder creates a folder from a raw user-supplied name.
func (a *App) CreateFolder(kind game.Kind, rawName string) (game.ContentFolder, error) {
	return a.store.CreateFolder(kind, rawName)
}

// DeleteFolder removes a folder and all its contents.
func (a *App) DeleteFolder(kind game.Kind, folderID string) error {
	return a.store.DeleteFolder(kind, folderID)
}

// ListImages lists a folder's images, newest first.
func (a *App) ListImages(folderID string) ([]game.ImageAsset, error) {
	return a.store.ListImages(folderID)
}

// AddImage copies a local file into a folder under its base name.
func (a *App) AddImage(folderID, sourcePath string) (string, error) {
	name := filepath.Base(sourcePath)
	if !game.AllowedImageExtension(name) {
		return "", fmt.Errorf("%w: %s is not an image file", game.ErrValidation, name)
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", sourcePath, err)
	}
	return a.store.SaveImage(folderID, name, data)
}

// DeleteImage removes one image from a folder.
func (a *App) DeleteImage(folderID, fileName string) error {
	return a.store.DeleteImage(folderID, fileName)
}

// RenameImage renames an image within its folder.
func (a *App) RenameImage(folderID, oldName, newName string) (string, error) {
	return a.store.RenameImage(folderID, oldName, newName)
}

// QuizDocument returns a folder's quiz document.
func (a *App) QuizDocument(folderID string) (game.QuizDocument, error) {
	return a.store.ReadQuizDocument(folderID)
}

// QuizSummary returns the advisory preview for a quiz folder.
func (a *App) QuizSummary(folderID string) game.QuizSummary {
	return a.store.ReadQuizSummary(folderID)
}

// AddQuizItem appends a question/answer pair to a folder's document,
// assigning a fresh id and the next authoring index.
func (a *App) AddQuizItem(folderID, question, answer string) (game.QuizItem, error) {
	doc, err := a.store.ReadQuizDocument(folderID)
	if err != nil {
		return game.QuizItem{}, err
	}

	next := 0
	for _, q := range doc.Quizzes {
		if q.Index >= next {
			next = q.Index + 1
		}
	}
	item := game.QuizItem{
		ID:     a.idgen.New(),
		Index:  next,
		Quiz:   question,
		Answer: answer,
	}

	quizzes := append(doc.Quizzes, item)
	if err := a.store.WriteQuizDocument(folderID, doc.Category, quizzes); err != nil {
		return game.QuizItem{}, err
	}
	return item, nil
}

// RemoveQuizItem deletes an item from the document and its image, if
// one exists.
func (a *App) RemoveQuizItem(folderID, itemID string) error {
	doc, err := a.store.ReadQuizDocument(folderID)
	if err != nil {
		return err
	}

	kept := doc.Quizzes[:0]
	found := false
	for _, q := range doc.Quizzes {
		if q.ID == itemID {
			found = true
			continue
		}
		kept = append(kept, q)
	}
	if !found {
		return fmt.Errorf("%w: quiz %s", game.ErrNotFound, itemID)
	}

	if err := a.store.WriteQuizDocument(folderID, doc.Category, kept); err != nil {
		return err
	}

	// Best-effort: the item may never have had an image.
	if err := a.store.DeleteQuizImage(folderID, itemID); err != nil {
		a.logger.Debug("no quiz image to delete", "folder", folderID, "id", itemID)
	}
	return nil
}

// AddQuizImage attaches a local image file to a quiz item.
func (a *App) AddQuizImage(folderID, itemID, sourcePath string) (string, error) {
	doc, err := a.store.ReadQuizDocument(folderID)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(doc.Quizzes))
	found := false
	for _, q := range doc.Quizzes {
		ids = append(ids, q.ID)
		if q.ID == itemID {
			found = true
		}
	}
	if !found {
		sort.Strings(ids)
		return "", fmt.Errorf("%w: quiz %s (known: %s)", game.ErrNotFound, itemID, strings.Join(ids, ", "))
	}

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", sourcePath, err)
	}
	return a.store.SaveQuizImage(folderID, itemID, data, filepath.Base(sourcePath))
}

// DeleteQuizImage removes a quiz item's image.
func (a *App) DeleteQuizImage(folderID, itemID string) error {
	return a.store.DeleteQuizImage(folderID, itemID)
}
