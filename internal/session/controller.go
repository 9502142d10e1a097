package session

import (
	"sync"

	"partydeck/internal/game"
)

// ControllerState is a copy of the controller's mirrored state.
type ControllerState struct {
	Started    bool            `json:"started"`
	Position   int             `json:"position"`
	Total      int             `json:"total"`
	Current    *ItemDescriptor `json:"current,omitempty"`
	IsLastItem bool            `json:"isLastItem"`
}

// Controller is the host-facing view-model. It mirrors presenter state
// for display and issues start/advance/end commands; none of its local
// state is authoritative. The mirrored position decides only which
// affordance the host sees (next vs end); the presenter independently
// refuses to advance past the end.
type Controller struct {
	hub      *Hub
	folderID string
	kind     game.Kind

	mu       sync.Mutex
	started  bool
	position int
	total    int
	current  *ItemDescriptor

	detach func()

	// onChange, when set, is invoked after every state change with a
	// fresh snapshot. The websocket bridge uses it to push updates to
	// the admin window.
	onChange func(ControllerState)
}

// newController builds a controller for one folder and attaches it to
// the hub. The total item count is loaded from the store up front so
// progress can display before the first state message arrives.
func newController(hub *Hub, store game.ContentStore, logger game.Logger, folderID string, kind game.Kind) *Controller {
	c := &Controller{
		hub:      hub,
		folderID: folderID,
		kind:     kind,
	}

	switch kind {
	case game.KindQuiz:
		summary := store.ReadQuizSummary(folderID)
		c.total = summary.Count
	default:
		images, err := store.ListImages(folderID)
		if err != nil {
			logger.Warn("counting images for controller", "folder", folderID, "error", err)
		}
		c.total = len(images)
	}

	c.detach = hub.AttachController(c.handleState)
	return c
}

// FolderID returns the folder this controller was opened for.
func (c *Controller) FolderID() string { return c.folderID }

// Kind returns the content kind this controller was opened for.
func (c *Controller) Kind() game.Kind { return c.kind }

// SetOnChange registers the state-change callback, replacing any
// previous one, and immediately delivers the current snapshot.
func (c *Controller) SetOnChange(fn func(ControllerState)) {
	c.mu.Lock()
	c.onChange = fn
	snap := c.snapshotLocked()
	c.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

// Start begins the session. The local state flips optimistically; the
// authoritative confirmation arrives asynchronously as a
// CurrentItemChanged message.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.position = 0
	snap := c.snapshotLocked()
	fn := c.onChange
	c.mu.Unlock()

	c.hub.SendControl(SessionStart{FolderID: c.folderID})
	if fn != nil {
		fn(snap)
	}
}

// Next advances the session. The controller gates the call: past the
// last item it sends nothing (the host-facing button has switched to
// "end" by then).
func (c *Controller) Next() {
	c.mu.Lock()
	send := c.started && !c.isLastLocked()
	c.mu.Unlock()

	if send {
		c.hub.SendControl(Advance{})
	}
}

// End terminates the session and resets the mirror to not-started.
func (c *Controller) End() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	c.position = 0
	c.current = nil
	snap := c.snapshotLocked()
	fn := c.onChange
	c.mu.Unlock()

	c.hub.SendControl(SessionEnd{})
	if fn != nil {
		fn(snap)
	}
}

// Close detaches the controller from the hub.
func (c *Controller) Close() {
	if c.detach != nil {
		c.detach()
	}
}

// IsLastItem reports whether the current item is the last one. An
// empty sequence counts as "last" so the host's only affordance on an
// empty folder is ending the session.
func (c *Controller) IsLastItem() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isLastLocked()
}

func (c *Controller) isLastLocked() bool {
	if !c.started {
		return false
	}
	if c.total == 0 {
		return true
	}
	return c.position >= c.total-1
}

// Snapshot returns a copy of the mirrored state.
func (c *Controller) Snapshot() ControllerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() ControllerState {
	state := ControllerState{
		Started:    c.started,
		Position:   c.position,
		Total:      c.total,
		IsLastItem: c.isLastLocked(),
	}
	if c.current != nil {
		item := *c.current
		state.Current = &item
	}
	return state
}

// handleState overwrites the mirror unconditionally: the controller has
// no authoritative state of its own.
func (c *Controller) handleState(msg StateMessage) {
	changed, ok := msg.(CurrentItemChanged)
	if !ok {
		return
	}

	c.mu.Lock()
	item := changed.Item
	c.started = true
	c.position = item.Position
	c.current = &item
	snap := c.snapshotLocked()
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}
