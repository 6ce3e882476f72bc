// pattern: Imperative Shell

package web

import (
	"fmt"
	"net/http"
	"sync"
)

// eventBroker fans out reload signals, carrying the new project count, to
// SSE subscribers.
type eventBroker struct {
	mu          sync.Mutex
	subscribers map[chan int]struct{}
}

func newEventBroker() *eventBroker {
	return &eventBroker{
		subscribers: make(map[chan int]struct{}),
	}
}

// Subscribe returns a channel that receives the project count after each
// reload. The caller must call Unsubscribe when done.
func (b *eventBroker) Subscribe() chan int {
	ch := make(chan int, 1)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *eventBroker) Unsubscribe(ch chan int) {
	b.mu.Lock()
	delete(b.subscribers, ch)
	b.mu.Unlock()
}

// Notify never blocks. A subscriber that has not consumed the previous
// signal only sees the latest count.
func (b *eventBroker) Notify(count int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- count
	}
}

// handleEvents is the SSE endpoint. It sends a "connected" event on open,
// then a "refresh" event after every reload.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.events.Subscribe()
	defer s.events.Unsubscribe(ch)

	fmt.Fprintf(w, "event: connected\ndata: ok\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case count := <-ch:
			fmt.Fprintf(w, "event: refresh\ndata: {\"count\":%d}\n\n", count)
			flusher.Flush()
		}
	}
}
