package game

import (
	"fmt"
	"math/rand"
	"testing"
)

func TestNewImageSequencePreservesOrder(t *testing.T) {
	images := []ImageAsset{
		{Name: "newest.jpg"},
		{Name: "middle.png"},
		{Name: "oldest.gif"},
	}

	seq := NewImageSequence(images)
	if seq.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", seq.Len())
	}
	for i, img := range images {
		item, ok := seq.At(i)
		if !ok {
			t.Fatalf("At(%d) reported no item", i)
		}
		if item.ImageName != img.Name {
			t.Errorf("At(%d).ImageName = %q, want %q", i, item.ImageName, img.Name)
		}
		if item.Quiz != nil {
			t.Errorf("At(%d) carries a quiz item on an image sequence", i)
		}
	}
}

func TestPlaySequenceNilAndBounds(t *testing.T) {
	var seq *PlaySequence
	if seq.Len() != 0 {
		t.Errorf("nil sequence Len() = %d, want 0", seq.Len())
	}
	if _, ok := seq.At(0); ok {
		t.Error("nil sequence At(0) reported an item")
	}

	seq = NewImageSequence([]ImageAsset{{Name: "a.jpg"}})
	if _, ok := seq.At(-1); ok {
		t.Error("At(-1) reported an item")
	}
	if _, ok := seq.At(1); ok {
		t.Error("At(1) reported an item past the end")
	}
}

func TestNewQuizSequenceIsPermutation(t *testing.T) {
	quizzes := make([]QuizItem, 10)
	for i := range quizzes {
		quizzes[i] = QuizItem{ID: fmt.Sprintf("q-%d", i), Index: i + 1}
	}

	seq := NewQuizSequence(quizzes, rand.New(rand.NewSource(42)))
	if seq.Len() != len(quizzes) {
		t.Fatalf("Len() = %d, want %d", seq.Len(), len(quizzes))
	}

	seen := make(map[string]bool)
	for i := 0; i < seq.Len(); i++ {
		item, _ := seq.At(i)
		if item.Quiz == nil {
			t.Fatalf("At(%d) has no quiz item", i)
		}
		if seen[item.Quiz.ID] {
			t.Fatalf("id %s appears twice", item.Quiz.ID)
		}
		seen[item.Quiz.ID] = true
	}
	if len(seen) != len(quizzes) {
		t.Errorf("permutation covers %d items, want %d", len(seen), len(quizzes))
	}
}

func TestNewQuizSequenceDoesNotMutateInput(t *testing.T) {
	quizzes := []QuizItem{{ID: "a", Index: 1}, {ID: "b", Index: 2}, {ID: "c", Index: 3}}
	NewQuizSequence(quizzes, rand.New(rand.NewSource(7)))

	for i, want := range []string{"a", "b", "c"} {
		if quizzes[i].ID != want {
			t.Fatalf("input slice reordered: quizzes[%d].ID = %q, want %q", i, quizzes[i].ID, want)
		}
	}
}

// Every permutation of a small set should turn up across many seeds. A
// biased shuffle (e.g. Intn(len) instead of Intn(i+1)) fails this badly.
func TestNewQuizSequenceReachesAllPermutations(t *testing.T) {
	quizzes := []QuizItem{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	counts := make(map[string]int)

	const trials = 3000
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < trials; i++ {
		seq := NewQuizSequence(quizzes, rng)
		key := ""
		for j := 0; j < seq.Len(); j++ {
			item, _ := seq.At(j)
			key += item.Quiz.ID
		}
		counts[key]++
	}

	if len(counts) != 6 {
		t.Fatalf("saw %d distinct permutations, want 6: %v", len(counts), counts)
	}
	// Expected 500 per permutation; anything under 350 is far outside
	// normal variance for a uniform shuffle.
	for perm, n := range counts {
		if n < 350 {
			t.Errorf("permutation %s occurred %d times in %d trials, suspiciously few", perm, n, trials)
		}
	}
}

func TestNewQuizSequenceSingleAndEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	seq := NewQuizSequence(nil, rng)
	if seq.Len() != 0 {
		t.Errorf("empty input Len() = %d, want 0", seq.Len())
	}

	seq = NewQuizSequence([]QuizItem{{ID: "only"}}, rng)
	item, ok := seq.At(0)
	if !ok || item.Quiz.ID != "only" {
		t.Errorf("single-item sequence At(0) = %+v, %v", item, ok)
	}
}
