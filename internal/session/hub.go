package session

import (
	"sync"

	"partydeck/internal/game"
)

// ControlHandler receives controller-to-presenter commands.
type ControlHandler func(ControlMessage)

// StateHandler receives presenter-to-controller updates.
type StateHandler func(StateMessage)

// Hub is the session channel: a fire-and-forget message link between
// one presenter context and at most one controller context. Each side
// holds a single handler slot; registering a new handler replaces the
// previous one rather than stacking. Messages sent while the receiving
// slot is empty are dropped.
//
// The hub retains the presenter's last CurrentItemChanged payload and
// replays it to a newly attached controller, so a controller window
// that opens mid-session syncs immediately instead of waiting for the
// next emission.
type Hub struct {
	mu            sync.Mutex
	presenter     ControlHandler
	presenterGen  int
	controller    StateHandler
	controllerGen int
	lastItem      *CurrentItemChanged
	logger        game.Logger
}

// NewHub creates an empty hub.
func NewHub(logger game.Logger) *Hub {
	if logger == nil {
		logger = game.NewNopLogger()
	}
	return &Hub{logger: logger}
}

// SetPresenter registers the presenter-side command handler, replacing
// any previous registration. The returned handle detaches the handler;
// it is a no-op once the registration has been replaced.
func (h *Hub) SetPresenter(handler ControlHandler) (detach func()) {
	h.mu.Lock()
	h.presenter = handler
	h.presenterGen++
	gen := h.presenterGen
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		if h.presenterGen == gen {
			h.presenter = nil
		}
		h.mu.Unlock()
	}
}

// AttachController registers the controller-side state handler,
// replacing any previous registration, and immediately replays the
// last known item if a session is in progress.
func (h *Hub) AttachController(handler StateHandler) (detach func()) {
	h.mu.Lock()
	h.controller = handler
	h.controllerGen++
	gen := h.controllerGen
	replay := h.lastItem
	h.mu.Unlock()

	if replay != nil {
		handler(*replay)
	}

	return func() {
		h.mu.Lock()
		if h.controllerGen == gen {
			h.controller = nil
		}
		h.mu.Unlock()
	}
}

// SendControl delivers a command to the presenter, or drops it when no
// presenter handler is registered.
func (h *Hub) SendControl(msg ControlMessage) {
	h.mu.Lock()
	handler := h.presenter
	h.mu.Unlock()

	if handler == nil {
		h.logger.Debug("control message dropped, no presenter attached")
		return
	}
	handler(msg)
}

// SendState delivers an update to the controller, or drops it when no
// controller is attached. CurrentItemChanged payloads are cached for
// replay to the next controller.
func (h *Hub) SendState(msg StateMessage) {
	h.mu.Lock()
	if item, ok := msg.(CurrentItemChanged); ok {
		h.lastItem = &item
	}
	handler := h.controller
	h.mu.Unlock()

	if handler == nil {
		h.logger.Debug("state message dropped, no controller attached")
		return
	}
	handler(msg)
}

// ClearLastItem forgets the replay cache. The presenter calls this when
// a session ends so a controller attached afterwards sees no stale item.
func (h *Hub) ClearLastItem() {
	h.mu.Lock()
	h.lastItem = nil
	h.mu.Unlock()
}
