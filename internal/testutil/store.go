package testutil

import (
	"fmt"
	"testing"
	"time"

	"partydeck/internal/content"
	"partydeck/internal/game"
)

// NewSeededStore returns a memory store on a fixed clock, pre-populated
// with one image folder ("party") holding the given image names and one
// quiz folder ("trivia") holding the given quiz items.
func NewSeededStore(t *testing.T, imageNames []string, quizzes []game.QuizItem) *content.MemoryStore {
	t.Helper()

	clock := FixedClock()
	store := content.NewMemoryStore(clock)

	if _, err := store.CreateFolder(game.KindImage, "party"); err != nil {
		t.Fatalf("seeding image folder: %v", err)
	}
	for i, name := range imageNames {
		if _, err := store.SaveImage("party", name, []byte(fmt.Sprintf("img-%d", i))); err != nil {
			t.Fatalf("seeding image %s: %v", name, err)
		}
		// Distinct mtimes so newest-first ordering is observable.
		clock.Advance(time.Second)
	}

	if _, err := store.CreateFolder(game.KindQuiz, "trivia"); err != nil {
		t.Fatalf("seeding quiz folder: %v", err)
	}
	if len(quizzes) > 0 {
		if err := store.WriteQuizDocument("trivia", "trivia", quizzes); err != nil {
			t.Fatalf("seeding quiz document: %v", err)
		}
	}

	return store
}

// Quizzes builds n quiz items with deterministic ids q-1..q-n.
func Quizzes(n int) []game.QuizItem {
	items := make([]game.QuizItem, n)
	for i := range items {
		items[i] = game.QuizItem{
			ID:     fmt.Sprintf("q-%d", i+1),
			Index:  i + 1,
			Quiz:   fmt.Sprintf("question %d", i+1),
			Answer: fmt.Sprintf("answer %d", i+1),
		}
	}
	return items
}
