package wsscene

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/phanxgames/gemfall"
)

func newTestHub(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()
	hub := NewHub(320, 480)
	hub.SetLogger(log.New(io.Discard, "", 0))
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return hub, conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return ev
}

func TestClientReceivesSizeFirst(t *testing.T) {
	_, conn := newTestHub(t)
	ev := readEvent(t, conn)
	if ev.Op != OpSize || ev.Width != 320 || ev.Height != 480 {
		t.Errorf("first event = %+v, want size 320x480", ev)
	}
}

func TestBroadcastChangeAndRemove(t *testing.T) {
	hub, conn := newTestHub(t)
	readEvent(t, conn) // size; the client is registered from here on

	id := hub.Add(gemfall.Attrs{Mask: gemfall.AttrX | gemfall.AttrY | gemfall.AttrLayer, X: 30, Y: 60, Layer: 2})
	ev := readEvent(t, conn)
	if ev.Op != OpAdd || ev.ID != id || ev.Layer == nil || *ev.Layer != 2 {
		t.Errorf("add event = %+v", ev)
	}

	hub.Change(id, gemfall.Attrs{Mask: gemfall.AttrY, Y: 55})
	ev = readEvent(t, conn)
	if ev.Op != OpChange || ev.ID != id {
		t.Fatalf("change event = %+v", ev)
	}
	if ev.X != nil {
		t.Errorf("x = %v, want omitted", *ev.X)
	}
	if ev.Y == nil || *ev.Y != 55 {
		t.Errorf("y = %v, want 55", ev.Y)
	}

	hub.Remove(id)
	ev = readEvent(t, conn)
	if ev.Op != OpRemove || ev.ID != id {
		t.Errorf("remove event = %+v", ev)
	}
	if hub.Len() != 0 {
		t.Errorf("Len = %d, want 0", hub.Len())
	}
}

func TestLateClientGetsSnapshot(t *testing.T) {
	hub := NewHub(100, 100)
	hub.SetLogger(log.New(io.Discard, "", 0))
	id := hub.Add(gemfall.Position(1, 2))
	hub.Change(id, gemfall.Attrs{Mask: gemfall.AttrFrame, Frame: 4})

	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readEvent(t, conn) // size
	ev := readEvent(t, conn)
	if ev.Op != OpAdd || ev.ID != id {
		t.Fatalf("snapshot event = %+v", ev)
	}
	if ev.X == nil || *ev.X != 1 || ev.Frame == nil || *ev.Frame != 4 {
		t.Errorf("snapshot = %s", mustJSON(ev))
	}
}

func TestLargeSnapshotKeepsClient(t *testing.T) {
	hub := NewHub(100, 100)
	hub.SetLogger(log.New(io.Discard, "", 0))
	const n = sendBuffer + 44
	for i := 0; i < n; i++ {
		hub.Add(gemfall.Position(float64(i), 0))
	}

	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if ev := readEvent(t, conn); ev.Op != OpSize {
		t.Fatalf("first event = %+v, want size", ev)
	}
	seen := make(map[gemfall.Handle]bool)
	for i := 0; i < n; i++ {
		ev := readEvent(t, conn)
		if ev.Op != OpAdd {
			t.Fatalf("event %d = %+v, want add", i, ev)
		}
		seen[ev.ID] = true
	}
	if len(seen) != n {
		t.Errorf("snapshot covered %d objects, want %d", len(seen), n)
	}
	if hub.NumClients() != 1 {
		t.Errorf("NumClients = %d, want 1", hub.NumClients())
	}
}

func TestSetLoggerWhileConnected(t *testing.T) {
	hub, conn := newTestHub(t)
	readEvent(t, conn)

	var buf bytes.Buffer
	hub.SetLogger(log.New(&buf, "", 0))
	msg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "boom")
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
		t.Fatalf("write close: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.NumClients() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client was not dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !strings.Contains(buf.String(), "wsscene: read:") {
		t.Errorf("log = %q, want the read error", buf.String())
	}
}

func TestUnknownHandleIgnored(t *testing.T) {
	hub := NewHub(10, 10)
	hub.Change(42, gemfall.Position(1, 1))
	hub.Remove(42)
	if hub.Len() != 0 {
		t.Errorf("Len = %d, want 0", hub.Len())
	}
}

func TestClientDisconnectIsDropped(t *testing.T) {
	hub, conn := newTestHub(t)
	readEvent(t, conn)
	if hub.NumClients() != 1 {
		t.Fatalf("NumClients = %d, want 1", hub.NumClients())
	}
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.NumClients() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("closed client was not dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestEngineStreamsOverWebsocket(t *testing.T) {
	hub, conn := newTestHub(t)
	readEvent(t, conn)

	id := hub.Add(gemfall.Position(10, 0))
	readEvent(t, conn)

	e := gemfall.NewParticleEngine(hub)
	e.Add(id, 10, 0, gemfall.Motion{Y: gemfall.Move(0, 1e5)})

	sawChange := false
	for {
		ev := readEvent(t, conn)
		if ev.Op == OpChange {
			sawChange = true
			continue
		}
		if ev.Op == OpRemove && ev.ID == id {
			break
		}
	}
	if !sawChange {
		t.Error("no change event before removal")
	}
}

func mustJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
