package host

import (
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialWS(t *testing.T, httpURL string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(httpURL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntilStage collects frames until an event with the given stage arrives.
func readUntilStage(t *testing.T, conn *websocket.Conn, stage string) []serverMessage {
	t.Helper()
	var msgs []serverMessage
	for {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var msg serverMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON (after %d frames): %v", len(msgs), err)
		}
		msgs = append(msgs, msg)
		if msg.Type == "event" && msg.Stage == stage {
			return msgs
		}
	}
}

func findType(msgs []serverMessage, typ string) []serverMessage {
	var found []serverMessage
	for _, msg := range msgs {
		if msg.Type == typ {
			found = append(found, msg)
		}
	}
	return found
}

func TestSessionNavigate(t *testing.T) {
	ts := newTestServer(t, Config{})
	conn := dialWS(t, ts.URL)

	if err := conn.WriteJSON(clientMessage{Action: "navigate", URL: "/team/3"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	msgs := readUntilStage(t, conn, "succeeded")

	final := msgs[len(msgs)-1]
	if final.FinalURL != "/team/3" {
		t.Errorf("finalUrl = %q, want %q", final.FinalURL, "/team/3")
	}

	activations := findType(msgs, "activate")
	if len(activations) != 1 {
		t.Fatalf("activations = %+v, want 1", activations)
	}
	act := activations[0]
	if act.Outlet != "primary" || act.Component != "team" || act.Params["id"] != "3" {
		t.Errorf("activate = %+v", act)
	}
}

func TestSessionParamChangeSendsUpdate(t *testing.T) {
	ts := newTestServer(t, Config{})
	conn := dialWS(t, ts.URL)

	conn.WriteJSON(clientMessage{Action: "navigate", URL: "/team/3"})
	readUntilStage(t, conn, "succeeded")

	conn.WriteJSON(clientMessage{Action: "navigate", URL: "/team/4"})
	msgs := readUntilStage(t, conn, "succeeded")

	if got := findType(msgs, "activate"); len(got) != 0 {
		t.Errorf("activations = %+v, want none", got)
	}
	updates := findType(msgs, "update")
	if len(updates) != 1 {
		t.Fatalf("updates = %+v, want 1", updates)
	}
	if updates[0].Component != "team" || updates[0].Params["id"] != "4" {
		t.Errorf("update = %+v", updates[0])
	}
}

func TestSessionRedirectReportsFinalURL(t *testing.T) {
	ts := newTestServer(t, Config{})
	conn := dialWS(t, ts.URL)

	conn.WriteJSON(clientMessage{Action: "navigate", URL: "/"})
	msgs := readUntilStage(t, conn, "succeeded")

	final := msgs[len(msgs)-1]
	if final.FinalURL != "/dashboard" {
		t.Errorf("finalUrl = %q, want %q", final.FinalURL, "/dashboard")
	}
	activations := findType(msgs, "activate")
	if len(activations) != 1 || activations[0].Component != "dashboard" {
		t.Errorf("activations = %+v", activations)
	}
}

func TestSessionFailedNavigation(t *testing.T) {
	ts := newTestServer(t, Config{})
	conn := dialWS(t, ts.URL)

	conn.WriteJSON(clientMessage{Action: "navigate", URL: "/nope"})
	msgs := readUntilStage(t, conn, "errored")

	final := msgs[len(msgs)-1]
	if final.Error == "" {
		t.Error("expected an error on the errored event")
	}
	if got := findType(msgs, "activate"); len(got) != 0 {
		t.Errorf("activations = %+v, want none", got)
	}
}

func TestSessionUnknownAction(t *testing.T) {
	ts := newTestServer(t, Config{})
	conn := dialWS(t, ts.URL)

	conn.WriteJSON(clientMessage{Action: "zap"})

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg serverMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if msg.Type != "error" || !strings.Contains(msg.Error, "zap") {
		t.Errorf("msg = %+v", msg)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	ts := newTestServer(t, Config{})
	first := dialWS(t, ts.URL)
	second := dialWS(t, ts.URL)

	first.WriteJSON(clientMessage{Action: "navigate", URL: "/team/1"})
	readUntilStage(t, first, "succeeded")

	// The second session starts empty: its first navigation activates rather
	// than updates.
	second.WriteJSON(clientMessage{Action: "navigate", URL: "/team/2"})
	msgs := readUntilStage(t, second, "succeeded")
	activations := findType(msgs, "activate")
	if len(activations) != 1 || activations[0].Params["id"] != "2" {
		t.Errorf("activations = %+v", activations)
	}
}
