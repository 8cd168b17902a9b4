package dev

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialFeed(t *testing.T, f *RouteFeed) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(f)
	t.Cleanup(ts.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	waitFor(t, 2*time.Second, func() bool { return f.Subscribers() > 0 })
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func readFeed(t *testing.T, conn *websocket.Conn) FeedMessage {
	t.Helper()
	var msg FeedMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return msg
}

func TestRouteFeedReplay(t *testing.T) {
	tests := []struct {
		name    string
		publish func(f *RouteFeed)
		want    []FeedMessage
	}{
		{
			name:    "latest routes",
			publish: func(f *RouteFeed) { f.PublishRoutes("h1", "written"); f.PublishRoutes("h2", "written") },
			want:    []FeedMessage{{Type: FeedRoutes, Hash: "h2", Status: "written"}},
		},
		{
			name:    "routes then failure",
			publish: func(f *RouteFeed) { f.PublishRoutes("h1", "written"); f.PublishError("E202") },
			want:    []FeedMessage{{Type: FeedRoutes, Hash: "h1", Status: "written"}, {Type: FeedError, Error: "E202"}},
		},
		{
			name: "cleared failure",
			publish: func(f *RouteFeed) {
				f.PublishRoutes("h1", "written")
				f.PublishError("E202")
				f.PublishClear()
			},
			want: []FeedMessage{{Type: FeedRoutes, Hash: "h1", Status: "written"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewRouteFeed()
			defer f.Close()
			tt.publish(f)

			conn := dialFeed(t, f)
			for i, want := range tt.want {
				if got := readFeed(t, conn); got != want {
					t.Errorf("message %d = %+v, want %+v", i, got, want)
				}
			}

			// Nothing else was replayed: the next message is a live one.
			f.PublishRoutes("live", "written")
			if got := readFeed(t, conn); got.Hash != "live" {
				t.Errorf("next message = %+v, want the live update", got)
			}
		})
	}
}

func TestRouteFeedEmpty(t *testing.T) {
	f := NewRouteFeed()
	defer f.Close()

	conn := dialFeed(t, f)

	f.PublishError("E202")
	if got := readFeed(t, conn); got.Type != FeedError || got.Error != "E202" {
		t.Errorf("message = %+v, want the error", got)
	}
}

func TestRouteFeedClose(t *testing.T) {
	f := NewRouteFeed()
	conn := dialFeed(t, f)

	f.Close()
	if f.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d after Close, want 0", f.Subscribers())
	}
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("ReadMessage() error = %v, want a normal close", err)
	}

	// Publishing after Close is a no-op.
	f.PublishRoutes("h1", "written")
}

func TestRouteFeedDropsSlowSubscriber(t *testing.T) {
	f := NewRouteFeed()
	defer f.Close()

	// A subscriber whose writer is not draining its queue.
	sub := &subscriber{send: make(chan FeedMessage, feedBuffer)}
	if !f.subscribe(sub) {
		t.Fatal("subscribe() refused an open feed")
	}
	for i := 0; i <= feedBuffer; i++ {
		f.PublishRoutes("h", "written")
	}

	if n := f.Subscribers(); n != 0 {
		t.Errorf("Subscribers() = %d, want the slow subscriber dropped", n)
	}
	if _, ok := <-sub.send; !ok {
		t.Error("queued messages were discarded")
	}
}
