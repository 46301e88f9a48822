package server

import (
	"net/http"
	"sync/atomic"
	"time"

	"meetScribe/config"
	"meetScribe/integrations"
	"meetScribe/processors"
	"meetScribe/storage"
)

// defaultOwner is the owner ID used when the client sends no identity.
// Browser sessions set X-User-ID; single-user deployments run as "local".
const defaultOwner = "local"

// Server wires the HTTP surface to the stores and the pipeline.
type Server struct {
	cfg      *config.Config
	store    storage.MeetingStore
	vector   storage.VectorStore
	pipeline *processors.Pipeline
	engine   *processors.SummaryEngine
	oauth    *integrations.OAuthManager
	live     *LiveHub

	started   time.Time
	processed atomic.Int64
}

func New(cfg *config.Config, store storage.MeetingStore, vector storage.VectorStore, pipeline *processors.Pipeline, oauth *integrations.OAuthManager, live *LiveHub) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		vector:   vector,
		pipeline: pipeline,
		engine:   pipeline.Engine,
		oauth:    oauth,
		live:     live,
		started:  time.Now(),
	}
}

// Routes registers every handler on the given mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/meetings", s.meetingsHandler)
	mux.HandleFunc("/meeting-summary", s.meetingSummaryHandler)
	mux.HandleFunc("/transcribe", s.transcribeHandler)
	mux.HandleFunc("/summarize", s.summarizeHandler)
	mux.HandleFunc("/process-meeting", s.processMeetingHandler)
	mux.HandleFunc("/search", s.searchHandler)
	mux.HandleFunc("/oauth/connect", s.oauthConnectHandler)
	mux.HandleFunc("/oauth/callback", s.oauthCallbackHandler)
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/stats", s.statsHandler)
	mux.HandleFunc("/live", s.liveHandler)
}

func ownerID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return defaultOwner
}
