package session

import (
	"fmt"
	"math/rand"
	"sync"

	"partydeck/internal/game"
)

// PresenterState names the presenter's lifecycle phase.
type PresenterState string

const (
	// StateIdle means no session is running.
	StateIdle PresenterState = "idle"
	// StateLoading means content is being fetched and sequenced.
	StateLoading PresenterState = "loading"
	// StateReady means a play sequence exists and a position is valid
	// (or the sequence is empty and there is no current item).
	StateReady PresenterState = "ready"
)

// Slide is what the rendering layer receives for the current item. The
// displayable asset is resolved lazily when the item becomes current,
// so only one image is ever held in memory per session.
type Slide struct {
	Item     *game.PlayItem
	Position int
	Total    int
	Image    *game.InlineImage
}

// Display is the rendering-layer collaborator. The presenter calls it
// from whichever goroutine delivered the triggering command.
type Display interface {
	ShowSlide(Slide)
	SessionEnded()
}

// NopDisplay discards all rendering calls.
type NopDisplay struct{}

func (NopDisplay) ShowSlide(Slide) {}
func (NopDisplay) SessionEnded()   {}

// Presenter owns the canonical play sequence and position for the
// running session. It is the sole source of truth for "current item":
// the controller only mirrors what the presenter emits over the hub.
type Presenter struct {
	store   game.ContentStore
	hub     *Hub
	logger  game.Logger
	rng     *rand.Rand
	kind    game.Kind
	display Display

	mu       sync.Mutex
	state    PresenterState
	folderID string
	seq      *game.PlaySequence
	position int

	detach func()
}

// NewPresenter creates a presenter for one content kind and registers
// it as the hub's command handler, replacing any previous presenter.
func NewPresenter(store game.ContentStore, hub *Hub, logger game.Logger, rng *rand.Rand, kind game.Kind, display Display) *Presenter {
	if logger == nil {
		logger = game.NewNopLogger()
	}
	if display == nil {
		display = NopDisplay{}
	}
	p := &Presenter{
		store:   store,
		hub:     hub,
		logger:  logger,
		rng:     rng,
		kind:    kind,
		display: display,
		state:   StateIdle,
	}
	p.detach = hub.SetPresenter(p.handleControl)
	return p
}

// Close detaches the presenter from the hub.
func (p *Presenter) Close() {
	if p.detach != nil {
		p.detach()
	}
}

// Snapshot returns the presenter's current state for inspection.
func (p *Presenter) Snapshot() (state PresenterState, folderID string, position, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state, p.folderID, p.position, p.seq.Len()
}

func (p *Presenter) handleControl(msg ControlMessage) {
	switch m := msg.(type) {
	case SessionStart:
		p.startSession(m.FolderID)
	case Advance:
		p.advance()
	case SessionEnd:
		p.endSession()
	default:
		p.logger.Warn("unknown control message", "message", fmt.Sprintf("%T", msg))
	}
}

// startSession rebuilds the play sequence for the folder and resets the
// position to the beginning. Quiz sequences are shuffled once, here;
// image sequences keep the store's newest-first order.
func (p *Presenter) startSession(folderID string) {
	p.mu.Lock()
	p.state = StateLoading
	p.folderID = folderID
	p.mu.Unlock()

	seq, err := p.buildSequence(folderID)
	if err != nil {
		p.logger.Error("loading session content", "folder", folderID, "error", err)
		p.mu.Lock()
		p.state = StateIdle
		p.seq = nil
		p.mu.Unlock()
		return
	}

	p.mu.Lock()
	p.state = StateReady
	p.seq = seq
	p.position = 0
	p.mu.Unlock()

	p.logger.Info("session started", "folder", folderID, "kind", string(p.kind), "items", seq.Len())

	if seq.Len() == 0 {
		// Empty folder: Ready with an empty sequence, no current item.
		p.display.ShowSlide(Slide{Position: 0, Total: 0})
		return
	}
	p.emitCurrent()
}

// advance moves to the next item if one exists. Past the last item it
// is a no-op: the position stays clamped and nothing is re-emitted.
func (p *Presenter) advance() {
	p.mu.Lock()
	if p.state != StateReady || p.position >= p.seq.Len()-1 {
		p.mu.Unlock()
		return
	}
	p.position++
	p.mu.Unlock()

	p.emitCurrent()
}

func (p *Presenter) endSession() {
	p.mu.Lock()
	folderID := p.folderID
	p.state = StateIdle
	p.folderID = ""
	p.seq = nil
	p.position = 0
	p.mu.Unlock()

	p.hub.ClearLastItem()
	p.display.SessionEnded()
	p.logger.Info("session ended", "folder", folderID)
}

func (p *Presenter) buildSequence(folderID string) (*game.PlaySequence, error) {
	switch p.kind {
	case game.KindQuiz:
		doc, err := p.store.ReadQuizDocument(folderID)
		if err != nil {
			return nil, fmt.Errorf("reading quiz document: %w", err)
		}
		return game.NewQuizSequence(doc.Quizzes, p.rng), nil
	default:
		images, err := p.store.ListImages(folderID)
		if err != nil {
			return nil, fmt.Errorf("listing images: %w", err)
		}
		return game.NewImageSequence(images), nil
	}
}

// emitCurrent resolves the current item's asset and publishes it to the
// display and, via the hub, to the controller.
func (p *Presenter) emitCurrent() {
	p.mu.Lock()
	folderID := p.folderID
	position := p.position
	item, ok := p.seq.At(position)
	total := p.seq.Len()
	p.mu.Unlock()

	if !ok {
		return
	}

	slide := Slide{Item: &item, Position: position, Total: total}
	desc := ItemDescriptor{Position: position}

	if item.Quiz != nil {
		desc.QuizID = item.Quiz.ID
		desc.Question = item.Quiz.Quiz
		desc.Answer = item.Quiz.Answer
		if img, found, err := p.store.ReadQuizImage(folderID, item.Quiz.ID); err != nil {
			p.logger.Warn("loading quiz image", "folder", folderID, "id", item.Quiz.ID, "error", err)
		} else if found {
			slide.Image = &img
		}
	} else {
		desc.ImageName = item.ImageName
		desc.Answer = game.ImageAnswer(item.ImageName)
		if img, err := p.store.ReadImage(folderID, item.ImageName); err != nil {
			p.logger.Warn("loading image", "folder", folderID, "name", item.ImageName, "error", err)
		} else {
			slide.Image = &img
		}
	}

	p.display.ShowSlide(slide)
	p.hub.SendState(CurrentItemChanged{Item: desc})
}
