package game

import (
	"path/filepath"
	"strings"
)

// Kind distinguishes the two content namespaces. Folder ids are unique
// only within their namespace.
type Kind string

const (
	KindImage Kind = "image"
	KindQuiz  Kind = "quiz"
)

// Valid reports whether k is one of the two known namespaces.
func (k Kind) Valid() bool {
	return k == KindImage || k == KindQuiz
}

// ContentFolder is a named game folder. The id doubles as the directory
// name under the namespace root.
type ContentFolder struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ImageAsset describes one image file inside a content folder.
type ImageAsset struct {
	Name       string `json:"name"`
	SizeBytes  int64  `json:"size"`
	ModifiedAt int64  `json:"modifiedAt"` // epoch milliseconds
}

// QuizItem is one question/answer pair. Index is the authoring-time
// position; play-order position during a session is never written back.
type QuizItem struct {
	ID     string `json:"id"`
	Index  int    `json:"index"`
	Quiz   string `json:"quiz"`
	Answer string `json:"answer"`
}

// QuizDocument is the JSON document persisted per quiz folder as
// <folder>/<folder>.json.
type QuizDocument struct {
	Category string     `json:"category"`
	Quizzes  []QuizItem `json:"quizzes"`
}

// QuizSummary is the best-effort preview used by folder listings. It
// never carries an error; a broken document reads as a missing one.
type QuizSummary struct {
	Exists     bool       `json:"exists"`
	Count      int        `json:"count"`
	ModifiedAt int64      `json:"modifiedAt,omitempty"` // epoch milliseconds
	Preview    []QuizItem `json:"quizzes"`              // at most the first 2 items
}

// InlineImage holds decoded image bytes paired with the MIME type derived
// from the file extension.
type InlineImage struct {
	MIMEType string
	Data     []byte
	FileName string
}

// imageExtensions is the fixed probe order for id-keyed quiz images. Only
// files with these extensions are visible to the store.
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}

var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
}

// ImageExtensions returns the allowed image extensions in probe order.
func ImageExtensions() []string {
	out := make([]string, len(imageExtensions))
	copy(out, imageExtensions)
	return out
}

// AllowedImageExtension reports whether name carries an allowed image
// extension, case-insensitively.
func AllowedImageExtension(name string) bool {
	return AllowedExtension(filepath.Ext(name))
}

// AllowedExtension reports whether ext (including the leading dot) is
// an allowed image extension, case-insensitively.
func AllowedExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, allowed := range imageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// MIMETypeFor returns the MIME type for a file name based on its
// extension, defaulting to image/jpeg for unrecognized extensions.
func MIMETypeFor(name string) string {
	if mt, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return mt
	}
	return "image/jpeg"
}

// forbiddenNameChars are stripped from user-supplied folder and file
// names before any path is built from them.
const forbiddenNameChars = `<>:"/\|?*`

// SanitizeName trims whitespace and strips the characters that are not
// portable in file names. The result may be empty; callers treat that as
// ErrInvalidName.
func SanitizeName(raw string) string {
	trimmed := strings.TrimSpace(raw)
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbiddenNameChars, r) {
			return -1
		}
		return r
	}, trimmed)
}

// ImageAnswer derives the displayed answer for an image slide: the bare
// file name with its extension stripped.
func ImageAnswer(fileName string) string {
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}
