// Package content provides the ContentStore backends: a filesystem
// store over the two namespace root directories, and an in-memory store
// for tests.
package content

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"partydeck/internal/game"
)

// FolderStore is the filesystem implementation of game.ContentStore.
// Each namespace is a root directory holding one subdirectory per
// content folder:
//
//	<image-root>/<folderID>/                 image files
//	<quiz-root>/<folderID>/<folderID>.json   quiz document
//	<quiz-root>/<folderID>/<itemID>.<ext>    per-item quiz images
//
// No state is cached: every read re-scans disk, so edits made outside
// the store are picked up on the next call.
type FolderStore struct {
	imageRoot string
	quizRoot  string
	logger    game.Logger
}

// NewFolderStore creates a store over the two namespace roots. The
// roots are resolved to absolute paths up front so containment checks
// compare like with like.
func NewFolderStore(imageRoot, quizRoot string, logger game.Logger) (*FolderStore, error) {
	if logger == nil {
		logger = game.NewNopLogger()
	}
	absImage, err := filepath.Abs(imageRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving image root: %w", err)
	}
	absQuiz, err := filepath.Abs(quizRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving quiz root: %w", err)
	}
	return &FolderStore{imageRoot: absImage, quizRoot: absQuiz, logger: logger}, nil
}

func (s *FolderStore) root(kind game.Kind) string {
	if kind == game.KindQuiz {
		return s.quizRoot
	}
	return s.imageRoot
}

// securePath joins name onto base and verifies the result stays
// strictly inside base. This runs before every read or mutation that
// incorporates a user-supplied name component.
func securePath(base, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %s", game.ErrPathEscape, name)
	}
	p := filepath.Clean(filepath.Join(base, name))
	if p == base || !strings.HasPrefix(p, base+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", game.ErrPathEscape, name)
	}
	return p, nil
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// folderPath resolves a folder id inside a namespace without requiring
// the directory to exist.
func (s *FolderStore) folderPath(kind game.Kind, folderID string) (string, error) {
	return securePath(s.root(kind), folderID)
}

// existingFolderPath resolves a folder id and fails with ErrNotFound if
// the directory does not exist.
func (s *FolderStore) existingFolderPath(kind game.Kind, folderID string) (string, error) {
	path, err := s.folderPath(kind, folderID)
	if err != nil {
		return "", err
	}
	if !isDirectory(path) {
		return "", fmt.Errorf("%w: folder %s", game.ErrNotFound, folderID)
	}
	return path, nil
}

// ListFolders lists the namespace's folders, creating the root on
// demand. Failures degrade to an empty list so browsing UI keeps
// working over a partially broken store.
func (s *FolderStore) ListFolders(kind game.Kind) []game.ContentFolder {
	root := s.root(kind)
	if err := os.MkdirAll(root, 0755); err != nil {
		s.logger.Error("creating namespace root", "root", root, "error", err)
		return []game.ContentFolder{}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		s.logger.Error("listing folders", "root", root, "error", err)
		return []game.ContentFolder{}
	}

	folders := []game.ContentFolder{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folders = append(folders, game.ContentFolder{ID: entry.Name(), Title: entry.Name()})
	}
	return folders
}

// CreateFolder validates and creates a folder directory. A sanitized id
// that already exists is a conflict.
func (s *FolderStore) CreateFolder(kind game.Kind, rawName string) (game.ContentFolder, error) {
	id := game.SanitizeName(rawName)
	if id == "" {
		return game.ContentFolder{}, fmt.Errorf("%w: %q", game.ErrInvalidName, rawName)
	}

	if err := os.MkdirAll(s.root(kind), 0755); err != nil {
		return game.ContentFolder{}, fmt.Errorf("creating namespace root: %w", err)
	}

	path, err := s.folderPath(kind, id)
	if err != nil {
		return game.ContentFolder{}, err
	}
	if isDirectory(path) {
		return game.ContentFolder{}, fmt.Errorf("%w: folder %s", game.ErrConflict, id)
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return game.ContentFolder{}, fmt.Errorf("creating folder: %w", err)
	}
	if !isDirectory(path) {
		return game.ContentFolder{}, fmt.Errorf("%w: %s", game.ErrCreateFailed, id)
	}

	s.logger.Info("folder created", "kind", string(kind), "id", id)
	return game.ContentFolder{ID: id, Title: id}, nil
}

// DeleteFolder recursively removes a folder and everything in it.
func (s *FolderStore) DeleteFolder(kind game.Kind, folderID string) error {
	path, err := s.existingFolderPath(kind, folderID)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("removing folder: %w", err)
	}
	s.logger.Info("folder deleted", "kind", string(kind), "id", folderID)
	return nil
}

// ListImages returns the folder's images sorted newest first. Files
// without an allowed extension are skipped.
func (s *FolderStore) ListImages(folderID string) ([]game.ImageAsset, error) {
	folder, err := s.existingFolderPath(game.KindImage, folderID)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("reading folder: %w", err)
	}

	images := []game.ImageAsset{}
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !game.AllowedImageExtension(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		images = append(images, game.ImageAsset{
			Name:       entry.Name(),
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime().UnixMilli(),
		})
	}

	sort.SliceStable(images, func(i, j int) bool {
		return images[i].ModifiedAt > images[j].ModifiedAt
	})
	return images, nil
}

// SaveImage writes the bytes under the sanitized name, overwriting any
// existing file of that name.
func (s *FolderStore) SaveImage(folderID, fileName string, data []byte) (string, error) {
	folder, err := s.existingFolderPath(game.KindImage, folderID)
	if err != nil {
		return "", err
	}

	name := game.SanitizeName(fileName)
	if name == "" {
		return "", fmt.Errorf("%w: %q", game.ErrInvalidName, fileName)
	}

	path, err := securePath(folder, name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}

	s.logger.Info("image saved", "folder", folderID, "name", name, "bytes", len(data))
	return name, nil
}

// DeleteImage removes one image file.
func (s *FolderStore) DeleteImage(folderID, fileName string) error {
	folder, err := s.existingFolderPath(game.KindImage, folderID)
	if err != nil {
		return err
	}
	path, err := securePath(folder, fileName)
	if err != nil {
		return err
	}
	if !fileExists(path) {
		return fmt.Errorf("%w: %s", game.ErrNotFound, fileName)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	s.logger.Info("image deleted", "folder", folderID, "name", fileName)
	return nil
}

// RenameImage renames an image without overwriting: an existing target
// name is a conflict and the source is left untouched.
func (s *FolderStore) RenameImage(folderID, oldName, newName string) (string, error) {
	folder, err := s.existingFolderPath(game.KindImage, folderID)
	if err != nil {
		return "", err
	}

	name := game.SanitizeName(newName)
	if name == "" {
		return "", fmt.Errorf("%w: %q", game.ErrInvalidName, newName)
	}

	oldPath, err := securePath(folder, oldName)
	if err != nil {
		return "", err
	}
	newPath, err := securePath(folder, name)
	if err != nil {
		return "", err
	}

	if !fileExists(oldPath) {
		return "", fmt.Errorf("%w: %s", game.ErrNotFound, oldName)
	}
	if fileExists(newPath) {
		return "", fmt.Errorf("%w: %s", game.ErrConflict, name)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return "", fmt.Errorf("renaming image: %w", err)
	}
	s.logger.Info("image renamed", "folder", folderID, "from", oldName, "to", name)
	return name, nil
}

// ReadImage returns the image bytes with a MIME type derived from the
// file extension.
func (s *FolderStore) ReadImage(folderID, fileName string) (game.InlineImage, error) {
	folder, err := s.existingFolderPath(game.KindImage, folderID)
	if err != nil {
		return game.InlineImage{}, err
	}
	path, err := securePath(folder, fileName)
	if err != nil {
		return game.InlineImage{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return game.InlineImage{}, fmt.Errorf("%w: %s", game.ErrNotFound, fileName)
		}
		return game.InlineImage{}, fmt.Errorf("reading image: %w", err)
	}
	return game.InlineImage{
		MIMEType: game.MIMETypeFor(fileName),
		Data:     data,
		FileName: fileName,
	}, nil
}

// quizDocumentPath resolves <quiz-root>/<folderID>/<folderID>.json.
func (s *FolderStore) quizDocumentPath(folderID string) (folder, file string, err error) {
	folder, err = s.folderPath(game.KindQuiz, folderID)
	if err != nil {
		return "", "", err
	}
	file, err = securePath(folder, folderID+".json")
	if err != nil {
		return "", "", err
	}
	return folder, file, nil
}

// ReadQuizDocument returns the folder's quiz document. A missing file
// is the canonical empty set and creates nothing on disk.
func (s *FolderStore) ReadQuizDocument(folderID string) (game.QuizDocument, error) {
	_, file, err := s.quizDocumentPath(folderID)
	if err != nil {
		return game.QuizDocument{}, err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return game.QuizDocument{Category: folderID, Quizzes: []game.QuizItem{}}, nil
		}
		return game.QuizDocument{}, fmt.Errorf("reading quiz document: %w", err)
	}

	var doc game.QuizDocument
	if err := json.Unmarshal(data, &doc); err != nil {
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

// WriteQuizDocument replaces the folder's quiz document, creating the
// folder on demand. The write is atomic from the caller's perspective
// (temp file + rename, last write wins).
func (s *FolderStore) WriteQuizDocument(folderID, category string, quizzes []game.QuizItem) error {
	for _, q := range quizzes {
		if strings.TrimSpace(q.ID) == "" || strings.TrimSpace(q.Quiz) == "" || strings.TrimSpace(q.Answer) == "" {
			return fmt.Errorf("%w: each quiz needs an id, question and answer", game.ErrValidation)
		}
	}

	folder, file, err := s.quizDocumentPath(folderID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(folder, 0755); err != nil {
		return fmt.Errorf("creating quiz folder: %w", err)
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

	if err := atomicWrite(file, data); err != nil {
		return fmt.Errorf("writing quiz document: %w", err)
	}

	s.logger.Info("quiz document saved", "folder", folderID, "items", len(quizzes))
	return nil
}

// atomicWrite writes data via a temp file in the same directory and an
// atomic rename.
func atomicWrite(destPath string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	success = true
	return nil
}

// ReadQuizSummary is purely advisory for list previews: every failure
// reads as a missing document.
func (s *FolderStore) ReadQuizSummary(folderID string) game.QuizSummary {
	empty := game.QuizSummary{Preview: []game.QuizItem{}}

	_, file, err := s.quizDocumentPath(folderID)
	if err != nil {
		return empty
	}
	info, err := os.Stat(file)
	if err != nil {
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
		ModifiedAt: info.ModTime().UnixMilli(),
		Preview:    preview,
	}
}

// SaveQuizImage stores an image under <itemID>.<ext>, the binding being
// the file name stem rather than any stored path. Any variant of the id
// under another extension is removed first so extension probing finds
// exactly one file.
func (s *FolderStore) SaveQuizImage(folderID, itemID string, data []byte, originalName string) (string, error) {
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

	folder, err := s.folderPath(game.KindQuiz, folderID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(folder, 0755); err != nil {
		return "", fmt.Errorf("creating quiz folder: %w", err)
	}

	fileName := itemID + ext
	path, err := securePath(folder, fileName)
	if err != nil {
		return "", err
	}

	// Drop stale variants under other extensions before writing.
	for _, other := range game.ImageExtensions() {
		if other == ext {
			continue
		}
		if otherPath, err := securePath(folder, itemID+other); err == nil && fileExists(otherPath) {
			os.Remove(otherPath)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing quiz image: %w", err)
	}

	s.logger.Info("quiz image saved", "folder", folderID, "id", itemID, "name", fileName)
	return fileName, nil
}

// DeleteQuizImage probes all allowed extensions in fixed order and
// removes the first match.
func (s *FolderStore) DeleteQuizImage(folderID, itemID string) error {
	folder, err := s.existingFolderPath(game.KindQuiz, folderID)
	if err != nil {
		return err
	}

	for _, ext := range game.ImageExtensions() {
		path, err := securePath(folder, itemID+ext)
		if err != nil {
			return err
		}
		if fileExists(path) {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("deleting quiz image: %w", err)
			}
			s.logger.Info("quiz image deleted", "folder", folderID, "id", itemID)
			return nil
		}
	}
	return fmt.Errorf("%w: image for quiz %s", game.ErrNotFound, itemID)
}

// ReadQuizImage looks up the item's image by probing extensions. A
// missing image is reported via ok, not an error.
func (s *FolderStore) ReadQuizImage(folderID, itemID string) (game.InlineImage, bool, error) {
	folder, err := s.existingFolderPath(game.KindQuiz, folderID)
	if err != nil {
		return game.InlineImage{}, false, err
	}

	for _, ext := range game.ImageExtensions() {
		path, err := securePath(folder, itemID+ext)
		if err != nil {
			return game.InlineImage{}, false, err
		}
		if !fileExists(path) {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return game.InlineImage{}, false, fmt.Errorf("reading quiz image: %w", err)
		}
		fileName := itemID + ext
		return game.InlineImage{
			MIMEType: game.MIMETypeFor(fileName),
			Data:     data,
			FileName: fileName,
		}, true, nil
	}
	return game.InlineImage{}, false, nil
}

// Compile-time check that FolderStore implements the store contract.
var _ game.ContentStore = (*FolderStore)(nil)
