package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/harpiadesk/harpia/internal/protocol"
)

var upgrader = websocket.Upgrader{}

// echoServer records every frame it receives and sends the frames in
// greet right after the upgrade.
type echoServer struct {
	received chan protocol.Envelope
	greet    [][]byte
	cookie   string
}

func (s *echoServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != DashboardPath {
		http.NotFound(w, r)
		return
	}
	if c, err := r.Cookie("session"); err == nil {
		s.cookie = c.Value
	}
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer ws.Close()
	for _, frame := range s.greet {
		if err := ws.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		env, err := protocol.Decode(data)
		if err != nil {
			continue
		}
		s.received <- env
	}
}

func startServer(t *testing.T, greet ...[]byte) (*echoServer, string) {
	t.Helper()
	srv := &echoServer{received: make(chan protocol.Envelope, 16), greet: greet}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	url, err := DashboardURL(ts.URL)
	if err != nil {
		t.Fatalf("DashboardURL() error = %v", err)
	}
	return srv, url
}

func frame(t *testing.T, event string, data any) []byte {
	t.Helper()
	b, err := protocol.Encode(event, data)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return b
}

func receive(t *testing.T, ch <-chan protocol.Envelope) protocol.Envelope {
	t.Helper()
	select {
	case env := <-ch:
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return protocol.Envelope{}
	}
}

func TestDashboardURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"http://10.0.0.5:5000", "ws://10.0.0.5:5000/ws/dashboard", false},
		{"https://harpia.example.com/", "wss://harpia.example.com/ws/dashboard", false},
		{"http://host/base?x=1", "ws://host/base/ws/dashboard", false},
		{"ftp://host", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := DashboardURL(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DashboardURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DashboardURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConn_EmitAndReceive(t *testing.T) {
	srv, url := startServer(t, frame(t, protocol.EventOBSStatus, map[string]any{"connected": true}))

	conn, err := Dial(context.Background(), url, SessionHeader("tok"))
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	env := receive(t, conn.Events())
	if env.Event != protocol.EventOBSStatus {
		t.Errorf("inbound event = %q", env.Event)
	}

	if err := conn.Emit(protocol.SetScene("Game")); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	got := receive(t, srv.received)
	var req protocol.SceneRequest
	if err := got.DecodeData(&req); err != nil || got.Event != protocol.EventSetScene || req.SceneName != "Game" {
		t.Errorf("server got %s %+v (%v)", got.Event, req, err)
	}
	if srv.cookie != "tok" {
		t.Errorf("session cookie = %q, want tok", srv.cookie)
	}
}

func TestConn_RequestSnapshots(t *testing.T) {
	srv, url := startServer(t)
	conn, err := Dial(context.Background(), url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if err := conn.RequestSnapshots(); err != nil {
		t.Fatalf("RequestSnapshots() error = %v", err)
	}
	first := receive(t, srv.received)
	second := receive(t, srv.received)
	if first.Event != protocol.EventGetSceneDetails || second.Event != protocol.EventGetAvatarData {
		t.Errorf("events = %s, %s", first.Event, second.Event)
	}
}

func TestConn_Reconnect(t *testing.T) {
	srv, url := startServer(t)
	conn, err := Dial(context.Background(), url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if err := conn.Reconnect(protocol.ServiceVTS); err != nil {
		t.Fatalf("Reconnect() error = %v", err)
	}
	if env := receive(t, srv.received); env.Event != protocol.EventReconnectVTS {
		t.Errorf("event = %s, want %s", env.Event, protocol.EventReconnectVTS)
	}
}

func TestConn_EmitLocalIntent(t *testing.T) {
	_, url := startServer(t)
	conn, err := Dial(context.Background(), url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if err := conn.Emit(protocol.Navigate("musica")); !errors.Is(err, ErrLocalIntent) {
		t.Errorf("Emit(navigate) error = %v, want ErrLocalIntent", err)
	}
}

func TestConn_CloseEndsEvents(t *testing.T) {
	_, url := startServer(t)
	conn, err := Dial(context.Background(), url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}

	conn.Close()

	select {
	case <-conn.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done not closed after Close")
	}
	if conn.Connected() {
		t.Error("Connected() = true after Close")
	}
	if err := conn.Err(); err != nil {
		t.Errorf("Err() = %v after clean close", err)
	}
	if err := conn.Emit(protocol.ToggleStream()); !errors.Is(err, ErrClosed) {
		t.Errorf("Emit after Close error = %v, want ErrClosed", err)
	}
}

func TestConn_ServerDrop(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ws.UnderlyingConn().Close()
	}))
	defer ts.Close()
	url, _ := DashboardURL(ts.URL)

	conn, err := Dial(context.Background(), url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}

	select {
	case <-conn.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done not closed after server drop")
	}
	if conn.Err() == nil {
		t.Error("Err() = nil after abnormal drop")
	}
}

func TestDial_Unauthorized(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer ts.Close()
	url, _ := DashboardURL(ts.URL)

	_, err := Dial(context.Background(), url, nil)
	var hsErr *HandshakeError
	if !errors.As(err, &hsErr) || !hsErr.Unauthorized() {
		t.Fatalf("Dial() error = %v, want unauthorized handshake error", err)
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %q, want status code", err.Error())
	}
}

func TestConn_DropsMalformedFrames(t *testing.T) {
	_, url := startServer(t,
		[]byte(`not json`),
		[]byte(`{"data":{}}`),
		frame(t, protocol.EventActivity, protocol.Activity{Message: "hi", Type: "channel.follow"}),
	)
	conn, err := Dial(context.Background(), url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if env := receive(t, conn.Events()); env.Event != protocol.EventActivity {
		t.Errorf("first delivered event = %q, want the activity", env.Event)
	}
}
