// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"eeg/pkg/utils"

	"github.com/gorilla/websocket"
)

func TestMultiFansOut(t *testing.T) {
	a, b := &utils.MockTransport{}, &utils.MockTransport{}
	b.Err = errors.New("offline")
	m := Multi{a, b}

	err := m.Send(42)
	if err == nil || !errors.Is(err, b.Err) {
		t.Errorf("Send error = %v, want wrapped offline", err)
	}
	if got := a.Sent(); len(got) != 1 || got[0] != 42 {
		t.Errorf("a received %v", got)
	}
	_ = m.Close()
	if !a.Closed() || !b.Closed() {
		t.Error("not every transport closed")
	}
}

func TestLoggingTransportCounts(t *testing.T) {
	lt := NewLoggingTransport()
	for i := range 3 {
		if err := lt.Send(i); err != nil {
			t.Fatal(err)
		}
	}
	if lt.Sent() != 3 {
		t.Errorf("Sent = %d, want 3", lt.Sent())
	}
	_ = lt.Close()
}

func TestWebSocketBroadcast(t *testing.T) {
	wst, err := NewWebSocketTransport("127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer wst.Close()

	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws", wst.Addr()), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for wst.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if wst.Clients() != 1 {
		t.Fatalf("clients = %d, want 1", wst.Clients())
	}

	if err := wst.Send(map[string]any{"windowIndex": 0, "variance": 1.5}); err != nil {
		t.Fatal(err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got map[string]any
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got["variance"] != 1.5 {
		t.Errorf("received %v", got)
	}

	_ = wst.Close()
	if err := wst.Send(1); !errors.Is(err, ErrClosed) {
		t.Errorf("Send after Close = %v, want ErrClosed", err)
	}
}
