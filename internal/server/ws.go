package server

import (
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"partydeck/internal/game"
	"partydeck/internal/session"
)

const (
	wsWriteWait  = 10 * time.Second
	wsSendBuffer = 16
)

// upgrader accepts any origin: the server binds to loopback and the
// only clients are the tool's own windows.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsConn wraps a websocket connection with a buffered outbound queue so
// that hub callbacks never block on a slow window. A full queue drops
// the message, matching the channel's fire-and-forget contract.
type wsConn struct {
	conn   *websocket.Conn
	logger game.Logger

	send chan any
	once sync.Once
	done chan struct{}
}

func newWSConn(conn *websocket.Conn, logger game.Logger) *wsConn {
	c := &wsConn{
		conn:   conn,
		logger: logger,
		send:   make(chan any, wsSendBuffer),
		done:   make(chan struct{}),
	}
	go c.writePump()
	return c
}

func (c *wsConn) writePump() {
	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug("websocket write failed", "error", err)
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// enqueue queues a message for delivery, dropping it if the window is
// not keeping up.
func (c *wsConn) enqueue(msg any) {
	select {
	case c.send <- msg:
	case <-c.done:
	default:
		c.logger.Debug("websocket send queue full, dropping message")
	}
}

func (c *wsConn) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// SessionHandler bridges the two browser windows onto the session
// channel and exposes the controller lifecycle over HTTP.
type SessionHandler struct {
	store   game.ContentStore
	hub     *session.Hub
	manager *session.Manager
	logger  game.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(store game.ContentStore, hub *session.Hub, manager *session.Manager, logger game.Logger) *SessionHandler {
	return &SessionHandler{store: store, hub: hub, manager: manager, logger: logger}
}

// slideMessage is the wire form of a slide pushed to the presenter
// window.
type slideMessage struct {
	Type      string `json:"type"`
	Position  int    `json:"position"`
	Total     int    `json:"total"`
	ImageName string `json:"imageName,omitempty"`
	QuizID    string `json:"quizId,omitempty"`
	Question  string `json:"quiz,omitempty"`
	Answer    string `json:"answer,omitempty"`
	Image     string `json:"image,omitempty"`
}

// sessionEndMessage tells the presenter window to return to its idle
// screen.
type sessionEndMessage struct {
	Type string `json:"type"`
}

// wsDisplay adapts a presenter-window connection to the rendering
// collaborator the presenter drives.
type wsDisplay struct {
	conn *wsConn
}

func (d *wsDisplay) ShowSlide(slide session.Slide) {
	msg := slideMessage{
		Type:     "slide",
		Position: slide.Position,
		Total:    slide.Total,
	}
	if slide.Item != nil {
		msg.ImageName = slide.Item.ImageName
		if slide.Item.Quiz != nil {
			msg.QuizID = slide.Item.Quiz.ID
			msg.Question = slide.Item.Quiz.Quiz
			msg.Answer = slide.Item.Quiz.Answer
		}
	}
	if slide.Image != nil {
		msg.Image = dataURL(*slide.Image)
	}
	d.conn.enqueue(msg)
}

func (d *wsDisplay) SessionEnded() {
	d.conn.enqueue(sessionEndMessage{Type: "sessionEnd"})
}

// Presenter upgrades the presenter window's connection and binds a
// fresh presenter to the hub. Opening a second presenter window
// replaces the first on the channel.
// GET /ws/presenter?kind=image|quiz
func (h *SessionHandler) Presenter(w http.ResponseWriter, r *http.Request) {
	kind := game.Kind(r.URL.Query().Get("kind"))
	if !kind.Valid() {
		http.Error(w, "unknown content kind", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("presenter websocket upgrade failed", "error", err)
		return
	}

	wc := newWSConn(conn, h.logger)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	presenter := session.NewPresenter(h.store, h.hub, h.logger, rng, kind, &wsDisplay{conn: wc})
	h.logger.Info("presenter window connected", "kind", kind)

	// The presenter window never sends commands; the read loop exists
	// to notice the window going away.
	defer func() {
		presenter.Close()
		wc.close()
		h.logger.Info("presenter window disconnected", "kind", kind)
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// controllerCommand is a command sent by the admin window.
type controllerCommand struct {
	Action string `json:"action"`
}

// stateMessage is the wire form of the controller's mirrored state.
type stateMessage struct {
	Type string `json:"type"`
	session.ControllerState
}

// Controller upgrades the admin window's connection, opens a controller
// for the requested folder and pumps state changes out and commands in.
// Opening a second admin window replaces the first.
// GET /ws/controller?folder=<id>&kind=image|quiz
func (h *SessionHandler) Controller(w http.ResponseWriter, r *http.Request) {
	kind := game.Kind(r.URL.Query().Get("kind"))
	if !kind.Valid() {
		http.Error(w, "unknown content kind", http.StatusBadRequest)
		return
	}
	folderID := r.URL.Query().Get("folder")
	if folderID == "" {
		http.Error(w, "missing folder", http.StatusBadRequest)
		return
	}

	ctrl, err := h.manager.OpenController(folderID, kind)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("controller websocket upgrade failed", "error", err)
		return
	}

	wc := newWSConn(conn, h.logger)
	ctrl.SetOnChange(func(state session.ControllerState) {
		wc.enqueue(stateMessage{Type: "state", ControllerState: state})
	})
	h.logger.Info("admin window connected", "folderID", folderID, "kind", kind)

	defer func() {
		wc.close()
		// Only tear the controller down if this window still owns it;
		// a replacement window may have opened its own in the meantime.
		if h.manager.Controller() == ctrl {
			h.manager.CloseController()
		}
		h.logger.Info("admin window disconnected", "folderID", folderID)
	}()
	for {
		var cmd controllerCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}
		switch cmd.Action {
		case "start":
			ctrl.Start()
		case "next":
			ctrl.Next()
		case "end":
			ctrl.End()
		default:
			h.logger.Warn("unknown controller command", "action", cmd.Action)
		}
	}
}

// ControllerStatus reports whether an admin window currently holds a
// controller and, if so, its mirrored state.
// GET /api/session/controller
func (h *SessionHandler) ControllerStatus(w http.ResponseWriter, r *http.Request) {
	ctrl := h.manager.Controller()
	if ctrl == nil {
		writeJSON(w, http.StatusOK, map[string]bool{"open": false})
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Open     bool                    `json:"open"`
		FolderID string                  `json:"folderId"`
		Kind     game.Kind               `json:"kind"`
		State    session.ControllerState `json:"state"`
	}{true, ctrl.FolderID(), ctrl.Kind(), ctrl.Snapshot()})
}

// CloseController detaches the current controller, if any.
// DELETE /api/session/controller
func (h *SessionHandler) CloseController(w http.ResponseWriter, r *http.Request) {
	h.manager.CloseController()
	w.WriteHeader(http.StatusNoContent)
}
