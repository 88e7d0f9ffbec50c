package hub

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"
)

func TestBroadcastReachesSubscriber(t *testing.T) {
	h := New(nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "done") }()

	// Wait for the server side to register the subscriber.
	deadline := time.Now().Add(2 * time.Second)
	for {
		h.mu.Lock()
		n := len(h.subs)
		h.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("subscriber never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	status := 200
	h.Broadcast(Message{RecordID: "r1", Kind: "responseSuccess", URL: "http://x.com/a.png", StatusCode: &status})

	_, b, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Message
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.RecordID != "r1" || got.Kind != "responseSuccess" || got.StatusCode == nil || *got.StatusCode != 200 {
		t.Fatalf("message = %+v", got)
	}
}

func TestBroadcastWithoutSubscribers(t *testing.T) {
	h := New(nil)
	// Must not block or panic.
	h.Broadcast(Message{RecordID: "r1", Kind: "requestSent"})
}
