// Package sse streams note events to browsers as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	clientBuffer     = 64
	defaultThrottle  = 2 * time.Second
	defaultKeepAlive = 15 * time.Second
)

// Event is one SSE message. Data is encoded as JSON.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func (e Event) frame() ([]byte, error) {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, "event: %s\ndata: %s\n\n", e.Type, payload), nil
}

// hub is the state owned by the broker loop.
type hub struct {
	clients    map[chan []byte]struct{}
	lastChange time.Time
}

// send never blocks; a client whose buffer is full misses the frame.
func (h *hub) send(e Event) {
	raw, err := e.frame()
	if err != nil {
		return
	}
	for ch := range h.clients {
		select {
		case ch <- raw:
		default:
		}
	}
}

// Broker fans events out to subscribed clients.
//
// All state lives in one loop goroutine. Callers hand it closures over an
// unbuffered channel, so a command accepted by the loop always runs and
// commands run in the order callers issued them.
//
// Note events are followed by "notes.changed" {source}, rate limited to one
// per throttle interval. External store edits produce only the latter.
type Broker struct {
	throttle  time.Duration
	keepAlive time.Duration

	cmds   chan func(*hub)
	quit   chan struct{}
	done   chan struct{}
	closed atomic.Bool
}

// NewBroker starts a broker. throttle bounds how often notes.changed is
// sent; zero means two seconds.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = defaultThrottle
	}
	b := &Broker{
		throttle:  throttle,
		keepAlive: defaultKeepAlive,
		cmds:      make(chan func(*hub)),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.done)
	h := &hub{clients: make(map[chan []byte]struct{})}
	for {
		select {
		case <-b.quit:
			for ch := range h.clients {
				close(ch)
			}
			return
		case fn := <-b.cmds:
			fn(h)
		}
	}
}

// do runs fn on the loop. It reports false once the broker is closed.
func (b *Broker) do(fn func(*hub)) bool {
	if b.closed.Load() {
		return false
	}
	select {
	case b.cmds <- fn:
		return true
	case <-b.done:
		return false
	}
}

// Close stops the loop and closes every subscriber channel. It is safe to
// call more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.quit)
	}
	<-b.done
}

// Subscribe registers a client. The channel is closed when the broker
// shuts down, or immediately if it already has.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if !b.do(func(h *hub) { h.clients[ch] = struct{}{} }) {
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.do(func(h *hub) {
		if _, ok := h.clients[ch]; ok {
			delete(h.clients, ch)
			close(ch)
		}
	})
}

// ClientCount returns the number of subscribed clients.
func (b *Broker) ClientCount() int {
	n := make(chan int, 1)
	if !b.do(func(h *hub) { n <- len(h.clients) }) {
		return 0
	}
	return <-n
}

// Publish sends event to every client as is.
func (b *Broker) Publish(event Event) {
	b.do(func(h *hub) { h.send(event) })
}

// PublishNoteEvent sends "note.<kind>" {email} and then, unless throttled,
// notes.changed with source "api".
func (b *Broker) PublishNoteEvent(kind, email string) {
	ev := Event{Type: "note." + kind, Data: map[string]string{"email": email}}
	b.do(func(h *hub) {
		h.send(ev)
		b.changed(h, "api")
	})
}

// PublishStoreChange reports a store modification made outside the API.
func (b *Broker) PublishStoreChange(source string) {
	b.do(func(h *hub) { b.changed(h, source) })
}

func (b *Broker) changed(h *hub, source string) {
	now := time.Now()
	if now.Sub(h.lastChange) < b.throttle {
		return
	}
	h.lastChange = now
	h.send(Event{Type: "notes.changed", Data: map[string]string{"source": source}})
}

// ServeHTTP streams events to one client until it disconnects or the
// broker closes. Idle streams get a comment line every keep-alive interval
// so proxies do not drop them.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(b.keepAlive)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			if _, err := w.Write([]byte(": keep-alive\n\n")); err != nil {
				return
			}
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
		}
		flusher.Flush()
	}
}
