package server

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"meetScribe/core"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// LiveHub fans transcript fragments out to websocket subscribers, keyed by
// meeting ID. Slow subscribers are dropped rather than blocking the
// pipeline.
type LiveHub struct {
	mu   sync.RWMutex
	subs map[string]map[chan core.TranscriptFragment]struct{}
}

func NewLiveHub() *LiveHub {
	return &LiveHub{subs: make(map[string]map[chan core.TranscriptFragment]struct{})}
}

// Publish delivers a fragment to every subscriber of the meeting.
func (h *LiveHub) Publish(meetingID string, frag core.TranscriptFragment) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[meetingID] {
		select {
		case ch <- frag:
		default:
		}
	}
}

func (h *LiveHub) subscribe(meetingID string) chan core.TranscriptFragment {
	ch := make(chan core.TranscriptFragment, 64)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[meetingID] == nil {
		h.subs[meetingID] = make(map[chan core.TranscriptFragment]struct{})
	}
	h.subs[meetingID][ch] = struct{}{}
	return ch
}

func (h *LiveHub) unsubscribe(meetingID string, ch chan core.TranscriptFragment) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[meetingID], ch)
	if len(h.subs[meetingID]) == 0 {
		delete(h.subs, meetingID)
	}
}

// SubscriberCount reports how many live connections a meeting has.
func (h *LiveHub) SubscriberCount(meetingID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[meetingID])
}

func (s *Server) liveHandler(w http.ResponseWriter, r *http.Request) {
	meetingID := r.URL.Query().Get("meeting_id")
	if meetingID == "" {
		core.WriteError(w, http.StatusBadRequest, "meeting_id is required")
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Live] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ch := s.live.subscribe(meetingID)
	defer s.live.unsubscribe(meetingID, ch)
	log.Printf("[Live] subscriber joined meeting %s", meetingID)

	// Reads are discarded; a read error means the client went away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case frag := <-ch:
			if err := conn.WriteJSON(frag); err != nil {
				log.Printf("[Live] write to subscriber of %s: %v", meetingID, err)
				return
			}
		case <-done:
			return
		}
	}
}
