package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"meetScribe/core"
	"meetScribe/storage"
)

type createMeetingRequest struct {
	Title     string          `json:"title"`
	StartTime time.Time       `json:"start_time"`
	EndTime   time.Time       `json:"end_time"`
	Attendees []core.Attendee `json:"attendees"`
}

func (s *Server) meetingsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createMeeting(w, r)
	case http.MethodGet:
		s.listMeetings(w, r)
	default:
		core.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) createMeeting(w http.ResponseWriter, r *http.Request) {
	var req createMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.WriteError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Title == "" {
		core.WriteError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.StartTime.IsZero() {
		req.StartTime = time.Now()
	}

	meeting := core.Meeting{
		ID:        core.NewID(),
		OwnerID:   ownerID(r),
		Title:     req.Title,
		Provider:  core.ProviderManual,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    core.StatusScheduled,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateMeeting(r.Context(), meeting); err != nil {
		core.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("create meeting: %v", err))
		return
	}
	if len(req.Attendees) > 0 {
		if err := s.store.SaveAttendees(r.Context(), meeting.ID, req.Attendees); err != nil {
			core.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("save attendees: %v", err))
			return
		}
	}
	core.WriteJSON(w, http.StatusCreated, meeting)
}

func (s *Server) listMeetings(w http.ResponseWriter, r *http.Request) {
	meetings, err := s.store.ListMeetings(r.Context(), ownerID(r))
	if err != nil {
		core.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("list meetings: %v", err))
		return
	}
	core.WriteJSON(w, http.StatusOK, map[string]any{"meetings": meetings})
}

func (s *Server) meetingSummaryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		core.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	meetingID := r.URL.Query().Get("meeting_id")
	if meetingID == "" {
		core.WriteError(w, http.StatusBadRequest, "meeting_id is required")
		return
	}
	summary, err := s.store.GetSummary(r.Context(), meetingID, ownerID(r))
	if errors.Is(err, storage.ErrNotFound) {
		core.WriteError(w, http.StatusNotFound, "summary not found")
		return
	}
	if err != nil {
		core.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("load summary: %v", err))
		return
	}
	core.WriteJSON(w, http.StatusOK, summary)
}

type transcribeRequest struct {
	RecordingPath string `json:"recording_path"`
	Language      string `json:"language"`
}

func (s *Server) transcribeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		core.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req transcribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.WriteError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.RecordingPath == "" {
		core.WriteError(w, http.StatusBadRequest, "recording_path is required")
		return
	}
	fragments, err := s.pipeline.Transcriber.Transcribe(req.RecordingPath, req.Language)
	if err != nil {
		core.WriteError(w, http.StatusBadRequest, fmt.Sprintf("transcribe: %v", err))
		return
	}
	core.WriteJSON(w, http.StatusOK, map[string]any{"fragments": fragments})
}

type summarizeRequest struct {
	Fragments []core.TranscriptFragment `json:"fragments"`
}

func (s *Server) summarizeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		core.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.WriteError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	core.WriteJSON(w, http.StatusOK, s.engine.GenerateSummary(req.Fragments))
}

type processMeetingRequest struct {
	MeetingID     string `json:"meeting_id"`
	RecordingPath string `json:"recording_path"`
	Language      string `json:"language"`
}

type processMeetingResponse struct {
	MeetingID string             `json:"meeting_id"`
	Message   string             `json:"message"`
	Result    core.SummaryResult `json:"result"`
}

func (s *Server) processMeetingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		core.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req processMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.WriteError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.MeetingID == "" || req.RecordingPath == "" {
		core.WriteError(w, http.StatusBadRequest, "meeting_id and recording_path are required")
		return
	}

	result, err := s.pipeline.ProcessRecording(r.Context(), req.MeetingID, ownerID(r), req.RecordingPath, req.Language)
	if errors.Is(err, storage.ErrNotFound) {
		core.WriteError(w, http.StatusNotFound, "meeting not found")
		return
	}
	if err != nil {
		core.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("process meeting: %v", err))
		return
	}
	s.processed.Add(1)
	core.WriteJSON(w, http.StatusOK, processMeetingResponse{
		MeetingID: req.MeetingID,
		Message:   "Meeting processed successfully",
		Result:    result,
	})
}

func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		core.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	meetingID := r.URL.Query().Get("meeting_id")
	query := r.URL.Query().Get("q")
	if meetingID == "" || query == "" {
		core.WriteError(w, http.StatusBadRequest, "meeting_id and q are required")
		return
	}
	if _, err := s.store.GetMeeting(r.Context(), meetingID, ownerID(r)); err != nil {
		core.WriteError(w, http.StatusNotFound, "meeting not found")
		return
	}
	topK := 5
	if v := r.URL.Query().Get("top_k"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			topK = n
		}
	}
	hits := s.vector.Search(meetingID, query, topK)
	core.WriteJSON(w, http.StatusOK, map[string]any{"hits": hits})
}

func (s *Server) oauthConnectHandler(w http.ResponseWriter, r *http.Request) {
	provider := core.MeetingProvider(r.URL.Query().Get("provider"))
	url, err := s.oauth.AuthCodeURL(provider, ownerID(r))
	if err != nil {
		core.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (s *Server) oauthCallbackHandler(w http.ResponseWriter, r *http.Request) {
	provider := core.MeetingProvider(r.URL.Query().Get("provider"))
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		core.WriteError(w, http.StatusBadRequest, "code and state are required")
		return
	}
	if err := s.oauth.Exchange(r.Context(), provider, code, state); err != nil {
		core.WriteError(w, http.StatusBadGateway, fmt.Sprintf("token exchange: %v", err))
		return
	}
	core.WriteJSON(w, http.StatusOK, map[string]string{
		"status":   "connected",
		"provider": string(provider),
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	core.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	core.WriteJSON(w, http.StatusOK, map[string]any{
		"uptime_seconds":     int64(time.Since(s.started).Seconds()),
		"meetings_processed": s.processed.Load(),
		"goroutines":         runtime.NumGoroutine(),
		"heap_alloc_bytes":   mem.HeapAlloc,
	})
}
