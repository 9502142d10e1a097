// Package session implements the game-session core: the typed message
// channel linking the presenter and controller contexts, the presenter
// state machine that owns the play sequence, and the controller
// view-model that mirrors it.
package session

// ItemDescriptor carries enough information for the controller to
// display the current item without any additional lookup. Image slides
// populate ImageName; quiz slides populate QuizID and Question. Answer
// is always set (for images it is the file name with the extension
// stripped). Position is the play position in the session sequence, not
// any authoring-time order.
type ItemDescriptor struct {
	ImageName string `json:"imageName,omitempty"`
	QuizID    string `json:"quizId,omitempty"`
	Position  int    `json:"position"`
	Question  string `json:"quiz,omitempty"`
	Answer    string `json:"answer"`
}

// ControlMessage is a controller-to-presenter command. The two
// directions are distinct, asymmetric channels, not a request/reply
// protocol.
type ControlMessage interface {
	isControl()
}

// SessionStart asks the presenter to (re)build its play sequence for
// the folder and reset to the first item.
type SessionStart struct {
	FolderID string
}

// Advance asks the presenter to move to the next item. Advancing past
// the last item is a no-op on the presenter side; the controller gates
// its own affordance but the presenter tolerates a stray Advance.
type Advance struct{}

// SessionEnd asks the presenter to discard all session state.
type SessionEnd struct{}

func (SessionStart) isControl() {}
func (Advance) isControl()      {}
func (SessionEnd) isControl()   {}

// StateMessage is a presenter-to-controller update.
type StateMessage interface {
	isState()
}

// CurrentItemChanged announces the item now showing.
type CurrentItemChanged struct {
	Item ItemDescriptor
}

func (CurrentItemChanged) isState() {}
