package session_test

import (
	"testing"

	"partydeck/internal/session"
	"partydeck/internal/testutil"
)

func TestHubDropsControlWithoutPresenter(t *testing.T) {
	hub := session.NewHub(nil)

	// Must not panic or block.
	hub.SendControl(session.SessionStart{FolderID: "party"})
	hub.SendControl(session.Advance{})
}

func TestHubDeliversControlToPresenter(t *testing.T) {
	hub := session.NewHub(nil)

	var got []session.ControlMessage
	hub.SetPresenter(func(msg session.ControlMessage) {
		got = append(got, msg)
	})

	hub.SendControl(session.SessionStart{FolderID: "party"})
	hub.SendControl(session.Advance{})
	hub.SendControl(session.SessionEnd{})

	if len(got) != 3 {
		t.Fatalf("presenter received %d messages, want 3", len(got))
	}
	if start, ok := got[0].(session.SessionStart); !ok || start.FolderID != "party" {
		t.Errorf("first message = %#v, want SessionStart{party}", got[0])
	}
	if _, ok := got[1].(session.Advance); !ok {
		t.Errorf("second message = %#v, want Advance", got[1])
	}
	if _, ok := got[2].(session.SessionEnd); !ok {
		t.Errorf("third message = %#v, want SessionEnd", got[2])
	}
}

func TestHubReplacesPresenterHandler(t *testing.T) {
	hub := session.NewHub(nil)

	first, second := 0, 0
	hub.SetPresenter(func(session.ControlMessage) { first++ })
	hub.SetPresenter(func(session.ControlMessage) { second++ })

	hub.SendControl(session.Advance{})

	if first != 0 {
		t.Errorf("replaced handler received %d messages, want 0", first)
	}
	if second != 1 {
		t.Errorf("current handler received %d messages, want 1", second)
	}
}

func TestHubDetachIsScopedToItsRegistration(t *testing.T) {
	hub := session.NewHub(nil)

	detachFirst := hub.SetPresenter(func(session.ControlMessage) {})

	received := 0
	hub.SetPresenter(func(session.ControlMessage) { received++ })

	// Detaching the replaced registration must not unhook the current one.
	detachFirst()
	hub.SendControl(session.Advance{})

	if received != 1 {
		t.Errorf("current handler received %d messages after stale detach, want 1", received)
	}
}

func TestHubDetachClearsCurrentRegistration(t *testing.T) {
	hub := session.NewHub(nil)

	received := 0
	detach := hub.SetPresenter(func(session.ControlMessage) { received++ })
	detach()

	hub.SendControl(session.Advance{})
	if received != 0 {
		t.Errorf("detached handler received %d messages, want 0", received)
	}
}

func TestHubReplaysLastItemToNewController(t *testing.T) {
	hub := session.NewHub(nil)

	item := session.ItemDescriptor{QuizID: "q-1", Position: 2, Question: "who?", Answer: "them"}
	hub.SendState(session.CurrentItemChanged{Item: item})

	rec := testutil.NewRecordingStateHandler()
	hub.AttachController(rec.Handle)

	msgs := rec.Messages()
	if len(msgs) != 1 {
		t.Fatalf("newly attached controller received %d messages, want 1 replay", len(msgs))
	}
	changed, ok := msgs[0].(session.CurrentItemChanged)
	if !ok {
		t.Fatalf("replayed message = %#v, want CurrentItemChanged", msgs[0])
	}
	if changed.Item != item {
		t.Errorf("replayed item = %+v, want %+v", changed.Item, item)
	}
}

func TestHubClearLastItemStopsReplay(t *testing.T) {
	hub := session.NewHub(nil)

	hub.SendState(session.CurrentItemChanged{Item: session.ItemDescriptor{QuizID: "q-1"}})
	hub.ClearLastItem()

	rec := testutil.NewRecordingStateHandler()
	hub.AttachController(rec.Handle)

	if n := len(rec.Messages()); n != 0 {
		t.Errorf("controller received %d messages after cache clear, want 0", n)
	}
}

func TestHubReplacesControllerHandler(t *testing.T) {
	hub := session.NewHub(nil)

	old := testutil.NewRecordingStateHandler()
	hub.AttachController(old.Handle)

	current := testutil.NewRecordingStateHandler()
	hub.AttachController(current.Handle)

	hub.SendState(session.CurrentItemChanged{Item: session.ItemDescriptor{Position: 1}})

	if n := len(old.Messages()); n != 0 {
		t.Errorf("replaced controller received %d live messages, want 0", n)
	}
	if n := len(current.Messages()); n != 1 {
		t.Errorf("current controller received %d messages, want 1", n)
	}
}
