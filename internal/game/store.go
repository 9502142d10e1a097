package game

// ContentStore is the contract for namespaced folder content. The
// filesystem implementation lives in internal/content; an in-memory
// implementation backs tests.
//
// Every operation that incorporates a user-supplied name component
// checks path containment before touching the backing store and fails
// with ErrPathEscape on traversal attempts. Listing operations degrade
// to empty results instead of failing so browsing UI stays usable.
type ContentStore interface {
	// ListFolders lists the folders of a namespace, creating the
	// namespace root on demand. It never fails: unreadable roots are
	// logged and reported as an empty list.
	ListFolders(kind Kind) []ContentFolder

	// CreateFolder validates, sanitizes and creates a folder. It fails
	// with ErrInvalidName, ErrConflict (sanitized id already exists),
	// ErrPathEscape or ErrCreateFailed.
	CreateFolder(kind Kind, rawName string) (ContentFolder, error)

	// DeleteFolder recursively removes a folder and all its contents.
	DeleteFolder(kind Kind, folderID string) error

	// ListImages returns the folder's images, newest first. Files
	// without an allowed image extension are invisible.
	ListImages(folderID string) ([]ImageAsset, error)

	// SaveImage writes image bytes under a sanitized file name,
	// silently overwriting an existing file of the same name. It
	// returns the name actually written.
	SaveImage(folderID, fileName string, data []byte) (string, error)

	// DeleteImage removes one image file.
	DeleteImage(folderID, fileName string) error

	// RenameImage renames an image, failing with ErrConflict when the
	// sanitized target name is already taken. It returns the name
	// actually written.
	RenameImage(folderID, oldName, newName string) (string, error)

	// ReadImage returns the image bytes with the MIME type derived
	// from the extension.
	ReadImage(folderID, fileName string) (InlineImage, error)

	// ReadQuizDocument returns the folder's quiz document. A missing
	// document reads as {category: folderID, quizzes: []} and creates
	// no file. An unparseable document fails with ErrParse.
	ReadQuizDocument(folderID string) (QuizDocument, error)

	// WriteQuizDocument replaces the folder's quiz document, creating
	// the folder on demand. Items missing an id, question or answer
	// fail with ErrValidation.
	WriteQuizDocument(folderID, category string, quizzes []QuizItem) error

	// ReadQuizSummary is best-effort: any failure reads as a missing
	// document.
	ReadQuizSummary(folderID string) QuizSummary

	// SaveQuizImage stores an image keyed by quiz item id. The
	// extension is taken from originalName (lowercased, .png when
	// absent) and must be an allowed image extension; any existing
	// image for the id under a different extension is removed first so
	// at most one variant exists.
	SaveQuizImage(folderID, itemID string, data []byte, originalName string) (string, error)

	// DeleteQuizImage removes the image for a quiz item id, probing
	// all allowed extensions in fixed order.
	DeleteQuizImage(folderID, itemID string) error

	// ReadQuizImage looks up a quiz item's image by id with extension
	// probing. A missing image is not an error: ok is false.
	ReadQuizImage(folderID, itemID string) (img InlineImage, ok bool, err error)
}
