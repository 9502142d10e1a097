package content

import (
	"errors"
	"testing"
	"time"

	"partydeck/internal/game"
)

// tickClock returns a time that advances one second per call so mtime
// ordering is deterministic.
type tickClock struct {
	now time.Time
}

func (c *tickClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func newMemory() *MemoryStore {
	return NewMemoryStore(&tickClock{now: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)})
}

func TestMemoryFolderLifecycle(t *testing.T) {
	store := newMemory()

	folder, err := store.CreateFolder(game.KindImage, " pa/rty ")
	if err != nil {
		t.Fatalf("creating folder: %v", err)
	}
	if folder.ID != "party" {
		t.Errorf("folder id = %q, want sanitized party", folder.ID)
	}
	if _, err := store.CreateFolder(game.KindImage, "party"); !errors.Is(err, game.ErrConflict) {
		t.Errorf("duplicate create error = %v, want ErrConflict", err)
	}
	if _, err := store.CreateFolder(game.KindImage, " / "); !errors.Is(err, game.ErrInvalidName) {
		t.Errorf("empty sanitized name error = %v, want ErrInvalidName", err)
	}

	if err := store.DeleteFolder(game.KindImage, "party"); err != nil {
		t.Fatalf("deleting folder: %v", err)
	}
	if err := store.DeleteFolder(game.KindImage, "party"); !errors.Is(err, game.ErrNotFound) {
		t.Errorf("delete of missing folder error = %v, want ErrNotFound", err)
	}
}

func TestMemoryRejectsTraversalNames(t *testing.T) {
	store := newMemory()
	if _, err := store.CreateFolder(game.KindImage, "party"); err != nil {
		t.Fatal(err)
	}

	if _, err := store.ListImages(".."); !errors.Is(err, game.ErrPathEscape) {
		t.Errorf("ListImages(..) error = %v, want ErrPathEscape", err)
	}
	if _, err := store.ReadImage("party", "../a.jpg"); !errors.Is(err, game.ErrPathEscape) {
		t.Errorf("ReadImage(../a.jpg) error = %v, want ErrPathEscape", err)
	}
	if err := store.DeleteImage("party", `..\a.jpg`); !errors.Is(err, game.ErrPathEscape) {
		t.Errorf(`DeleteImage(..\a.jpg) error = %v, want ErrPathEscape`, err)
	}
}

func TestMemoryImagesNewestFirst(t *testing.T) {
	store := newMemory()
	if _, err := store.CreateFolder(game.KindImage, "party"); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"first.jpg", "second.jpg", "third.jpg"} {
		if _, err := store.SaveImage("party", name, []byte(name)); err != nil {
			t.Fatal(err)
		}
	}

	images, err := store.ListImages("party")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"third.jpg", "second.jpg", "first.jpg"}
	for i, name := range want {
		if images[i].Name != name {
			t.Errorf("images[%d] = %q, want %q", i, images[i].Name, name)
		}
	}
}

func TestMemoryRenameImage(t *testing.T) {
	store := newMemory()
	if _, err := store.CreateFolder(game.KindImage, "party"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveImage("party", "old.jpg", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveImage("party", "taken.jpg", []byte("y")); err != nil {
		t.Fatal(err)
	}

	if _, err := store.RenameImage("party", "old.jpg", "taken.jpg"); !errors.Is(err, game.ErrConflict) {
		t.Errorf("rename onto existing error = %v, want ErrConflict", err)
	}
	name, err := store.RenameImage("party", "old.jpg", "new.jpg")
	if err != nil || name != "new.jpg" {
		t.Fatalf("rename = %q, %v", name, err)
	}
	if _, err := store.ReadImage("party", "old.jpg"); !errors.Is(err, game.ErrNotFound) {
		t.Errorf("old name error = %v, want ErrNotFound", err)
	}
}

func TestMemoryQuizDocumentRoundTrip(t *testing.T) {
	store := newMemory()

	doc, err := store.ReadQuizDocument("trivia")
	if err != nil {
		t.Fatalf("reading missing document: %v", err)
	}
	if doc.Category != "trivia" || len(doc.Quizzes) != 0 {
		t.Errorf("missing document = %+v, want canonical empty", doc)
	}

	quizzes := []game.QuizItem{{ID: "q-1", Index: 1, Quiz: "a?", Answer: "a"}}
	if err := store.WriteQuizDocument("trivia", "", quizzes); err != nil {
		t.Fatalf("writing document: %v", err)
	}

	doc, err = store.ReadQuizDocument("trivia")
	if err != nil {
		t.Fatal(err)
	}
	// Empty category defaults to the folder id at write time.
	if doc.Category != "trivia" || len(doc.Quizzes) != 1 || doc.Quizzes[0] != quizzes[0] {
		t.Errorf("round-tripped document = %+v", doc)
	}

	summary := store.ReadQuizSummary("trivia")
	if !summary.Exists || summary.Count != 1 {
		t.Errorf("summary = %+v, want Exists with Count 1", summary)
	}
}

func TestMemoryQuizImageReplaceAcrossExtensions(t *testing.T) {
	store := newMemory()

	if _, err := store.SaveQuizImage("trivia", "q-1", []byte("a"), "a.jpg"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveQuizImage("trivia", "q-1", []byte("b"), "b.webp"); err != nil {
		t.Fatal(err)
	}

	img, ok, err := store.ReadQuizImage("trivia", "q-1")
	if err != nil || !ok {
		t.Fatalf("reading quiz image: ok=%v err=%v", ok, err)
	}
	if img.FileName != "q-1.webp" || img.MIMEType != "image/webp" {
		t.Errorf("read %+v, want the webp replacement only", img)
	}

	if err := store.DeleteQuizImage("trivia", "q-1"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := store.ReadQuizImage("trivia", "q-1"); ok {
		t.Error("image still present after delete")
	}
}
