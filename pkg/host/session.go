package host

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sextant-dev/sextant/pkg/router"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second

	// outboundBuffer bounds queued messages per session; a navigation that
	// produces more blocks until the writer catches up.
	outboundBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// clientMessage is one inbound websocket frame.
type clientMessage struct {
	// Action is "navigate".
	Action string `json:"action"`

	// URL is the navigation target.
	URL string `json:"url"`

	// Replace suppresses the history push for this navigation.
	Replace bool `json:"replace,omitempty"`
}

// serverMessage is one outbound websocket frame: a lifecycle event or a
// rendering instruction.
type serverMessage struct {
	// Type is "event", "activate", "deactivate", "update" or "error".
	Type string `json:"type"`

	// Event fields.
	ID       int64  `json:"id,omitempty"`
	Stage    string `json:"stage,omitempty"`
	URL      string `json:"url,omitempty"`
	FinalURL string `json:"finalUrl,omitempty"`
	Error    string `json:"error,omitempty"`

	// Instruction fields.
	Outlet    string            `json:"outlet,omitempty"`
	Component any               `json:"component,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
	Data      map[string]any    `json:"data,omitempty"`
}

// session drives one router engine for one websocket connection. The
// rendering collaborator lives on the far side: activate, deactivate and
// update instructions go out as frames, navigation requests come in.
type session struct {
	conn   *websocket.Conn
	engine *router.Router
	logger *slog.Logger
	out    chan serverMessage
	done   chan struct{}
}

// wsRenderer forwards rendering instructions to the session's connection.
type wsRenderer struct {
	s *session
}

func (r wsRenderer) Activate(route *router.ActivatedRoute) {
	snap := route.Snapshot()
	r.s.send(serverMessage{
		Type:      "activate",
		Outlet:    route.Outlet,
		Component: route.Route.Component,
		Params:    snap.Params,
		Data:      snap.Data,
	})
}

func (r wsRenderer) Deactivate(snap *router.ActivatedRouteSnapshot) {
	r.s.send(serverMessage{
		Type:      "deactivate",
		Outlet:    snap.Outlet,
		Component: snap.Component(),
	})
}

func (r wsRenderer) UpdateParams(route *router.ActivatedRoute) {
	snap := route.Snapshot()
	r.s.send(serverMessage{
		Type:      "update",
		Outlet:    route.Outlet,
		Component: route.Route.Component,
		Params:    snap.Params,
		Data:      snap.Data,
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "err", err)
		return
	}

	sess := &session{
		conn:   conn,
		logger: s.logger.With("remote", conn.RemoteAddr().String()),
		out:    make(chan serverMessage, outboundBuffer),
		done:   make(chan struct{}),
	}
	engine, err := s.newEngine(wsRenderer{sess}, []router.Observer{sess.observe})
	if err != nil {
		// The shared config was validated in New; a failure here means the
		// lazily merged config went bad, which is a server-side bug.
		s.logger.Error("session engine creation failed", "err", err)
		conn.Close()
		return
	}
	sess.engine = engine

	go sess.writeLoop()
	sess.readLoop(r.Context())
}

// observe forwards lifecycle events to the client.
func (s *session) observe(ev router.Event) {
	msg := serverMessage{
		Type:     "event",
		ID:       ev.ID,
		Stage:    ev.Stage.String(),
		URL:      ev.URL,
		FinalURL: ev.FinalURL,
	}
	if ev.Err != nil {
		msg.Error = ev.Err.Error()
	}
	s.send(msg)
}

func (s *session) send(msg serverMessage) {
	select {
	case s.out <- msg:
	case <-s.done:
	}
}

func (s *session) writeLoop() {
	for {
		select {
		case msg := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := s.conn.WriteJSON(msg); err != nil {
				s.logger.Error("websocket write failed", "err", err)
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *session) readLoop(ctx context.Context) {
	defer close(s.done)
	defer s.conn.Close()

	for {
		s.conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("websocket read failed", "err", err)
			}
			return
		}

		if messageType != websocket.TextMessage {
			continue
		}
		s.handleMessage(ctx, data)
	}
}

func (s *session) handleMessage(ctx context.Context, data []byte) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.send(serverMessage{Type: "error", Error: "malformed message: " + err.Error()})
		return
	}

	switch msg.Action {
	case "navigate":
		var opts []router.NavigateOption
		if msg.Replace {
			opts = append(opts, router.WithReplace())
		}
		// The navigation's own lifecycle events report the outcome; errors
		// surface to the client through the errored event.
		if _, err := s.engine.NavigateByURL(ctx, msg.URL, opts...); err != nil {
			s.logger.Debug("session navigation failed", "url", msg.URL, "err", err)
		}
	default:
		s.send(serverMessage{Type: "error", Error: "unknown action: " + msg.Action})
	}
}
