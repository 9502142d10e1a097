package content

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"partydeck/internal/game"
)

// MemoryStore is an in-memory implementation of game.ContentStore for
// tests and throwaway runs. It mirrors the filesystem store's contract,
// including the containment checks, without touching disk.
type MemoryStore struct {
	mu      sync.Mutex
	clock   game.Clock
	folders map[game.Kind]map[string]*memoryFolder
}

type memoryFolder struct {
	files map[string]memoryFile // keyed by file name
}

type memoryFile struct {
	data       []byte
	modifiedAt int64 // epoch milliseconds
}

// NewMemoryStore creates an empty in-memory store. The clock stamps
// file modification times; pass a stub clock for deterministic tests.
func NewMemoryStore(clock game.Clock) *MemoryStore {
	if clock == nil {
		clock = game.RealClock{}
	}
	return &MemoryStore{
		clock: clock,
		folders: map[game.Kind]map[string]*memoryFolder{
			game.KindImage: {},
			game.KindQuiz:  {},
		},
	}
}

// checkName rejects the traversal shapes the filesystem store's
// containment check would reject.
func checkName(name string) error {
	if filepath.IsAbs(name) ||
		strings.Contains(name, "/") ||
		strings.Contains(name, `\`) ||
		name == "" || name == "." || name == ".." ||
		strings.Contains(name, "..") {
		return fmt.Errorf("%w: %s", game.ErrPathEscape, name)
	}
	return nil
}

func (s *MemoryStore) folder(kind game.Kind, folderID string) (*memoryFolder, error) {
	if err := checkName(folderID); err != nil {
		return nil, err
	}
	f, ok := s.folders[kind][folderID]
	if !ok {
		return nil, fmt.Errorf("%w: folder %s", game.ErrNotFound, folderID)
	}
	return f, nil
}

func (s *MemoryStore) ensureFolder(kind game.Kind, folderID string) (*memoryFolder, error) {
	if err := checkName(folderID); err != nil {
		return nil, err
	}
	f, ok := s.folders[kind][folderID]
	if !ok {
		f = &memoryFolder{files: map[string]memoryFile{}}
		s.folders[kind][folderID] = f
	}
	return f, nil
}

func (s *MemoryStore) ListFolders(kind game.Kind) []game.ContentFolder {
	s.mu.Lock()
	defer s.mu.Unlock()

	folders := []game.ContentFolder{}
	for id := range s.folders[kind] {
		folders = append(folders, game.ContentFolder{ID: id, Title: id})
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].ID < folders[j].ID })
	return folders
}

func (s *MemoryStore) CreateFolder(kind game.Kind, rawName string) (game.ContentFolder, error) {
	id := game.SanitizeName(rawName)
	if id == "" {
		return game.ContentFolder{}, fmt.Errorf("%w: %q", game.ErrInvalidName, rawName)
	}
	if err := checkName(id); err != nil {
		return game.ContentFolder{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.folders[kind][id]; exists {
		return game.ContentFolder{}, fmt.Errorf("%w: folder %s", game.ErrConflict, id)
	}
	s.folders[kind][id] = &memoryFolder{files: map[string]memoryFile{}}
	return game.ContentFolder{ID: id, Title: id}, nil
}

func (s *MemoryStore) DeleteFolder(kind game.Kind, folderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.folder(kind, folderID); err != nil {
		return err
	}
	delete(s.folders[kind], folderID)
	return nil
}

func (s *MemoryStore) ListImages(folderID string) ([]game.ImageAsset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.folder(game.KindImage, folderID)
	if err != nil {
		return nil, err
	}

	images := []game.ImageAsset{}
	for name, file := range f.files {
		if !game.AllowedImageExtension(name) {
			continue
		}
		images = append(images, game.ImageAsset{
			Name:       name,
			SizeBytes:  int64(len(file.data)),
			ModifiedAt: file.modifiedAt,
		})
	}
	sort.Slice(images, func(i, j int) bool {
		if images[i].ModifiedAt != images[j].ModifiedAt {
			return images[i].ModifiedAt > images[j].ModifiedAt
		}
		return images[i].Name < images[j].Name
	})
	return images, nil
}

func (s *MemoryStore) SaveImage(folderID, fileName string, data []byte) (string, error) {
	name := game.SanitizeName(fileName)
	if name == "" {
		return "", fmt.Errorf("%w: %q", game.ErrInvalidName, fileName)
	}
	if err := checkName(name); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.folder(game.KindImage, folderID)
	if err != nil {
		return "", err
	}
	f.files[name] = memoryFile{data: data, modifiedAt: s.clock.Now().UnixMilli()}
	return name, nil
}

func (s *MemoryStore) DeleteImage(folderID, fileName string) error {
	if err := checkName(fileName); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.folder(game.KindImage, folderID)
	if err != nil {
		return err
	}
	if _, ok := f.files[fileName]; !ok {
		return fmt.Errorf("%w: %s", game.ErrNotFound, fileName)
	}
	delete(f.files, fileName)
	return nil
}

func (s *MemoryStore) RenameImage(folderID, oldName, newName string) (string, error) {
	name := game.SanitizeName(newName)
	if name == "" {
		return "", fmt.Errorf("%w: %q", game.ErrInvalidName, newName)
	}
	if err := checkName(oldName); err != nil {
		return "", err
	}
	if err := checkName(name); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.folder(game.KindImage, folderID)
	if err != nil {
		return "", err
	}
	file, ok := f.files[oldName]
	if !ok {
		return "", fmt.Errorf("%w: %s", game.ErrNotFound, oldName)
	}
	if _, exists := f.files[name]; exists {
		return "", fmt.Errorf("%w: %s", game.ErrConflict, name)
	}
	delete(f.files, oldName)
	f.files[name] = file
	return name, nil
}

func (s *MemoryStore) ReadImage(folderID, fileName string) (game.InlineImage, error) {
	if err := checkName(fileName); err != nil {
		return game.InlineImage{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.folder(game.KindImage, folderID)
	if err != nil {
		return game.InlineImage{}, err
	}
	file, ok := f.files[fileName]
	if !ok {
		return game.InlineImage{}, fmt.Errorf("%w: %s", game.ErrNotFound, fileName)
	}
	return game.InlineImage{
		MIMEType: game.MIMETypeFor(fileName),
		Data:     file.data,
		FileName: fileName,
	}, nil
}

func (s *MemoryStore) ReadQuizDocument(folderID string) (game.QuizDocument, error) {
	if err := checkName(folderID); err != nil {
		return game.QuizDocument{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.folders[game.KindQuiz][folderID]
	if !ok {
		return game.QuizDocument{Category: folderID, Quizzes: []game.QuizItem{}}, nil
	}
	file, ok := f.files[folderID+".json"]
	if !ok {
		return game.QuizDocument{Category: folderID, Quizzes: []game.QuizItem{}}, nil
	}

	var doc game.QuizDocument
	if err := json.Unmarshal(file.data, &doc); err != nil {
		return game.QuizDocument{}, fmt.Errorf("%w: %v", game.ErrParse, err)
	}
	if doc.Category == "" {
		doc.Category = folderID
	}
	if doc.Quizzes == nil {
		doc.Quizzes = []game.QuizItem{}
	}
	return doc, nil
}

func (s *MemoryStore) WriteQuizDocument(folderID, category string, quizzes []game.QuizItem) error {
	for _, q := range quizzes {
		if strings.TrimSpace(q.ID) == "" || strings.TrimSpace(q.Quiz) == "" || strings.TrimSpace(q.Answer) == "" {
			return fmt.Errorf("%w: each quiz needs an id, question and answer", game.ErrValidation)
		}
	}
	if category == "" {
		category = folderID
	}
	if quizzes == nil {
		quizzes = []game.QuizItem{}
	}
	data, err := json.MarshalIndent(game.QuizDocument{Category: category, Quizzes: quizzes}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding quiz document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.ensureFolder(game.KindQuiz, folderID)
	if err != nil {
		return err
	}
	f.files[folderID+".json"] = memoryFile{data: data, modifiedAt: s.clock.Now().UnixMilli()}
	return nil
}

func (s *MemoryStore) ReadQuizSummary(folderID string) game.QuizSummary {
	empty := game.QuizSummary{Preview: []game.QuizItem{}}

	s.mu.Lock()
	f, ok := s.folders[game.KindQuiz][folderID]
	var file memoryFile
	if ok {
		file, ok = f.files[folderID+".json"]
	}
	s.mu.Unlock()
	if !ok {
		return empty
	}

	doc, err := s.ReadQuizDocument(folderID)
	if err != nil {
		return empty
	}
	preview := doc.Quizzes
	if len(preview) > 2 {
		preview = preview[:2]
	}
	return game.QuizSummary{
		Exists:     true,
		Count:      len(doc.Quizzes),
		ModifiedAt: file.modifiedAt,
		Preview:    preview,
	}
}

func (s *MemoryStore) SaveQuizImage(folderID, itemID string, data []byte, originalName string) (string, error) {
	if strings.TrimSpace(itemID) == "" {
		return "", fmt.Errorf("%w: empty quiz item id", game.ErrInvalidName)
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".png"
	}
	if !game.AllowedExtension(ext) {
		return "", fmt.Errorf("%w: unsupported image extension %s", game.ErrValidation, ext)
	}
	if err := checkName(itemID + ext); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.ensureFolder(game.KindQuiz, folderID)
	if err != nil {
		return "", err
	}
	for _, other := range game.ImageExtensions() {
		if other != ext {
			delete(f.files, itemID+other)
		}
	}
	fileName := itemID + ext
	f.files[fileName] = memoryFile{data: data, modifiedAt: s.clock.Now().UnixMilli()}
	return fileName, nil
}

func (s *MemoryStore) DeleteQuizImage(folderID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.folder(game.KindQuiz, folderID)
	if err != nil {
		return err
	}
	for _, ext := range game.ImageExtensions() {
		if _, ok := f.files[itemID+ext]; ok {
			delete(f.files, itemID+ext)
			return nil
		}
	}
	return fmt.Errorf("%w: image for quiz %s", game.ErrNotFound, itemID)
}

func (s *MemoryStore) ReadQuizImage(folderID, itemID string) (game.InlineImage, bool, error) {
	if err := checkName(itemID); err != nil {
		return game.InlineImage{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.folder(game.KindQuiz, folderID)
	if err != nil {
		return game.InlineImage{}, false, err
	}
	for _, ext := range game.ImageExtensions() {
		fileName := itemID + ext
		if file, ok := f.files[fileName]; ok {
			return game.InlineImage{
				MIMEType: game.MIMETypeFor(fileName),
				Data:     file.data,
				FileName: fileName,
			}, true, nil
		}
	}
	return game.InlineImage{}, false, nil
}

// Compile-time check that MemoryStore implements the store contract.
var _ game.ContentStore = (*MemoryStore)(nil)
