package dev

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// FeedMessageType identifies a route feed message.
type FeedMessageType string

const (
	FeedRoutes FeedMessageType = "routes"
	FeedError  FeedMessageType = "error"
	FeedClear  FeedMessageType = "clear"
)

// FeedMessage is sent to runtimes subscribed to the route feed.
type FeedMessage struct {
	Type FeedMessageType `json:"type"`

	// Hash is the generated-region hash of the current artifact.
	Hash string `json:"hash,omitempty"`

	// Status is "written" or "unchanged".
	Status string `json:"status,omitempty"`

	Error string `json:"error,omitempty"`
}

const (
	// feedBuffer is how many messages may queue for one subscriber before it
	// is dropped.
	feedBuffer = 16

	feedWriteWait = 5 * time.Second
)

// RouteFeed streams route table updates to runtimes over WebSocket. A new
// subscriber first receives the current route table and, while the last
// build is failing, its error, so a runtime that connects late starts in
// the same state as one that was connected all along.
type RouteFeed struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	subs    map[*subscriber]struct{}
	routes  *FeedMessage
	failure *FeedMessage
	closed  bool
}

type subscriber struct {
	conn *websocket.Conn
	send chan FeedMessage
}

// NewRouteFeed creates an empty feed.
func NewRouteFeed() *RouteFeed {
	return &RouteFeed{
		subs: make(map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins in dev
			},
		},
	}
}

// ServeHTTP upgrades the request and keeps the subscriber until the client
// goes away or the feed is closed. Client messages are discarded.
func (f *RouteFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	sub := &subscriber{conn: conn, send: make(chan FeedMessage, feedBuffer)}
	if !f.subscribe(sub) {
		conn.Close()
		return
	}
	go sub.writeLoop()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	f.unsubscribe(sub)
}

// subscribe registers sub and queues the current state for it.
func (f *RouteFeed) subscribe(sub *subscriber) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	if f.routes != nil {
		sub.send <- *f.routes
	}
	if f.failure != nil {
		sub.send <- *f.failure
	}
	f.subs[sub] = struct{}{}
	return true
}

// unsubscribe ends sub's writer. The caller must not hold f.mu.
func (f *RouteFeed) unsubscribe(sub *subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dropLocked(sub)
}

func (f *RouteFeed) dropLocked(sub *subscriber) {
	if _, ok := f.subs[sub]; ok {
		delete(f.subs, sub)
		close(sub.send)
	}
}

// writeLoop is the only writer on the connection. It drains the queue and
// closes the connection once the queue is closed or a write fails.
func (s *subscriber) writeLoop() {
	defer s.conn.Close()

	for msg := range s.send {
		s.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
		if err := s.conn.WriteJSON(msg); err != nil {
			return
		}
	}
	s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(feedWriteWait))
}

// PublishRoutes announces a new route table.
func (f *RouteFeed) PublishRoutes(hash, status string) {
	f.publish(FeedMessage{Type: FeedRoutes, Hash: hash, Status: status})
}

// PublishError announces a failed build. The previous route table stays
// current.
func (f *RouteFeed) PublishError(msg string) {
	f.publish(FeedMessage{Type: FeedError, Error: msg})
}

// PublishClear announces that the last failure was resolved.
func (f *RouteFeed) PublishClear() {
	f.publish(FeedMessage{Type: FeedClear})
}

// publish records msg as current state and queues it for every subscriber.
// A subscriber whose queue is full is dropped rather than blocking the
// build loop.
func (f *RouteFeed) publish(msg FeedMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch msg.Type {
	case FeedRoutes:
		f.routes = &msg
	case FeedError:
		f.failure = &msg
	case FeedClear:
		f.failure = nil
	}

	for sub := range f.subs {
		select {
		case sub.send <- msg:
		default:
			f.dropLocked(sub)
		}
	}
}

// Subscribers returns the number of connected runtimes.
func (f *RouteFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Close disconnects every subscriber and refuses new ones.
func (f *RouteFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for sub := range f.subs {
		f.dropLocked(sub)
	}
}
