package game

import "math/rand"

// PlayItem is one entry of a play sequence. Exactly one of the two
// shapes is populated: image slides carry the file name, quiz slides
// carry the item.
type PlayItem struct {
	ImageName string
	Quiz      *QuizItem
}

// PlaySequence is the ordered list of items for one session. It is
// built once at session start and never mutated afterwards; edits to
// the underlying folder do not invalidate a running sequence.
type PlaySequence struct {
	items []PlayItem
}

// Len returns the number of items in the sequence.
func (s *PlaySequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// At returns the item at position i and whether it exists.
func (s *PlaySequence) At(i int) (PlayItem, bool) {
	if s == nil || i < 0 || i >= len(s.items) {
		return PlayItem{}, false
	}
	return s.items[i], true
}

// NewImageSequence builds a sequence from an image listing in its
// natural newest-first order. Image sets are never shuffled.
func NewImageSequence(images []ImageAsset) *PlaySequence {
	items := make([]PlayItem, len(images))
	for i, img := range images {
		items[i] = PlayItem{ImageName: img.Name}
	}
	return &PlaySequence{items: items}
}

// NewQuizSequence builds a sequence as a uniform random permutation of
// the quiz items. The shuffle walks from the last element down to the
// first, swapping each element with a uniformly chosen one among
// positions 0..i inclusive (Fisher-Yates), so every permutation is
// equally likely.
func NewQuizSequence(quizzes []QuizItem, rng *rand.Rand) *PlaySequence {
	items := make([]PlayItem, len(quizzes))
	for i := range quizzes {
		q := quizzes[i]
		items[i] = PlayItem{Quiz: &q}
	}
	for i := len(items) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
	return &PlaySequence{items: items}
}
