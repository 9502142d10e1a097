package testutil

import (
	"sync"

	"partydeck/internal/session"
)

// RecordingDisplay captures every slide and end-of-session signal the
// presenter sends to its rendering layer.
type RecordingDisplay struct {
	mu     sync.Mutex
	slides []session.Slide
	ended  int
}

func NewRecordingDisplay() *RecordingDisplay {
	return &RecordingDisplay{}
}

func (d *RecordingDisplay) ShowSlide(s session.Slide) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slides = append(d.slides, s)
}

func (d *RecordingDisplay) SessionEnded() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ended++
}

// Slides returns a copy of the captured slides in order.
func (d *RecordingDisplay) Slides() []session.Slide {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]session.Slide, len(d.slides))
	copy(out, d.slides)
	return out
}

// LastSlide returns the most recent slide and whether one exists.
func (d *RecordingDisplay) LastSlide() (session.Slide, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.slides) == 0 {
		return session.Slide{}, false
	}
	return d.slides[len(d.slides)-1], true
}

// EndCount returns how many times the session ended.
func (d *RecordingDisplay) EndCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ended
}

// RecordingStateHandler captures state messages delivered over the hub
// to a controller-side subscriber.
type RecordingStateHandler struct {
	mu       sync.Mutex
	messages []session.StateMessage
}

func NewRecordingStateHandler() *RecordingStateHandler {
	return &RecordingStateHandler{}
}

// Handle is the session.StateHandler to attach.
func (r *RecordingStateHandler) Handle(msg session.StateMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

// Messages returns a copy of the captured messages in order.
func (r *RecordingStateHandler) Messages() []session.StateMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]session.StateMessage, len(r.messages))
	copy(out, r.messages)
	return out
}
