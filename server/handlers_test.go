package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"meetScribe/config"
	"meetScribe/core"
	"meetScribe/processors"
	"meetScribe/storage"
)

func newTestServer(t *testing.T) (*Server, *http.ServeMux) {
	t.Helper()
	cfg := &config.Config{}
	store := storage.NewMemoryMeetingStore()
	vector := storage.NewMemoryVectorStore()
	pipeline := &processors.Pipeline{
		Store:       store,
		Vector:      vector,
		Transcriber: processors.MockTranscriber{},
		Translator:  processors.NewTranslator(cfg),
		Engine:      processors.NewSummaryEngine(),
	}
	srv := New(cfg, store, vector, pipeline, nil, NewLiveHub())
	mux := http.NewServeMux()
	srv.Routes(mux)
	return srv, mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any, owner string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if owner != "" {
		req.Header.Set("X-User-ID", owner)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func tempRecording(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rec.webm")
	if err := os.WriteFile(path, []byte("webm"), 0o644); err != nil {
		t.Fatalf("write recording: %v", err)
	}
	return path
}

func TestCreateAndListMeetings(t *testing.T) {
	_, mux := newTestServer(t)

	rec := doJSON(t, mux, http.MethodPost, "/meetings", map[string]any{
		"title":     "Sprint Planning",
		"attendees": []map[string]string{{"name": "Alice", "email": "alice@example.com"}},
	}, "u1")
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /meetings = %d: %s", rec.Code, rec.Body.String())
	}
	var created core.Meeting
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode meeting: %v", err)
	}
	if created.ID == "" || created.Status != core.StatusScheduled || created.Provider != core.ProviderManual {
		t.Errorf("unexpected meeting: %+v", created)
	}

	rec = doJSON(t, mux, http.MethodGet, "/meetings", nil, "u1")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /meetings = %d", rec.Code)
	}
	var listed struct {
		Meetings []core.Meeting `json:"meetings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Meetings) != 1 || listed.Meetings[0].ID != created.ID {
		t.Errorf("unexpected list: %+v", listed.Meetings)
	}

	// Another owner must not see these meetings.
	rec = doJSON(t, mux, http.MethodGet, "/meetings", nil, "u2")
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Meetings) != 0 {
		t.Errorf("owner isolation violated: %+v", listed.Meetings)
	}
}

func TestCreateMeetingValidation(t *testing.T) {
	_, mux := newTestServer(t)
	rec := doJSON(t, mux, http.MethodPost, "/meetings", map[string]any{}, "u1")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing title = %d, want 400", rec.Code)
	}
}

func TestTranscribeEndpoint(t *testing.T) {
	_, mux := newTestServer(t)
	rec := doJSON(t, mux, http.MethodPost, "/transcribe", map[string]string{
		"recording_path": tempRecording(t),
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /transcribe = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Fragments []core.TranscriptFragment `json:"fragments"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Fragments) == 0 {
		t.Error("expected fragments from mock transcriber")
	}

	rec = doJSON(t, mux, http.MethodPost, "/transcribe", map[string]string{
		"recording_path": "/nonexistent/rec.webm",
	}, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing file = %d, want 400", rec.Code)
	}
}

func TestSummarizeEndpoint(t *testing.T) {
	_, mux := newTestServer(t)
	rec := doJSON(t, mux, http.MethodPost, "/summarize", map[string]any{
		"fragments": []core.TranscriptFragment{},
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /summarize = %d", rec.Code)
	}
	var result core.SummaryResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Summary != "No transcriptions available for this meeting." {
		t.Errorf("empty summarize = %q", result.Summary)
	}
}

func TestProcessMeetingEndToEnd(t *testing.T) {
	srv, mux := newTestServer(t)

	meeting := core.Meeting{
		ID:        "m1",
		OwnerID:   "u1",
		Title:     "Roadmap Review",
		Provider:  core.ProviderManual,
		StartTime: time.Now(),
		Status:    core.StatusScheduled,
		CreatedAt: time.Now(),
	}
	if err := srv.store.CreateMeeting(context.Background(), meeting); err != nil {
		t.Fatalf("CreateMeeting: %v", err)
	}

	rec := doJSON(t, mux, http.MethodPost, "/process-meeting", map[string]string{
		"meeting_id":     "m1",
		"recording_path": tempRecording(t),
	}, "u1")
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /process-meeting = %d: %s", rec.Code, rec.Body.String())
	}
	var resp processMeetingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Result.Summary == "" {
		t.Error("expected a summary in the response")
	}

	rec = doJSON(t, mux, http.MethodGet, "/meeting-summary?meeting_id=m1", nil, "u1")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /meeting-summary = %d: %s", rec.Code, rec.Body.String())
	}

	// Owner mismatch reads as absence.
	rec = doJSON(t, mux, http.MethodGet, "/meeting-summary?meeting_id=m1", nil, "intruder")
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign owner = %d, want 404", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodGet, "/search?meeting_id=m1&q=pricing+page", nil, "u1")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /search = %d: %s", rec.Code, rec.Body.String())
	}
	var hits struct {
		Hits []core.SearchHit `json:"hits"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &hits); err != nil {
		t.Fatalf("decode hits: %v", err)
	}
	if len(hits.Hits) == 0 {
		t.Error("expected search hits after processing")
	}
}

func TestProcessMeetingUnknownID(t *testing.T) {
	_, mux := newTestServer(t)
	rec := doJSON(t, mux, http.MethodPost, "/process-meeting", map[string]string{
		"meeting_id":     "ghost",
		"recording_path": tempRecording(t),
	}, "u1")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown meeting = %d, want 404", rec.Code)
	}
}

func TestHealthAndStats(t *testing.T) {
	_, mux := newTestServer(t)
	rec := doJSON(t, mux, http.MethodGet, "/health", nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET /health = %d", rec.Code)
	}
	rec = doJSON(t, mux, http.MethodGet, "/stats", nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET /stats = %d", rec.Code)
	}
	var stats map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if _, ok := stats["uptime_seconds"]; !ok {
		t.Error("stats missing uptime_seconds")
	}
}

func TestLiveHubPublish(t *testing.T) {
	hub := NewLiveHub()
	ch := hub.subscribe("m1")
	defer hub.unsubscribe("m1", ch)

	frag := core.TranscriptFragment{Speaker: "Alice", OriginalText: "hello", TimestampStart: 0, TimestampEnd: 1000}
	hub.Publish("m1", frag)
	hub.Publish("other", core.TranscriptFragment{OriginalText: "noise"})

	select {
	case got := <-ch:
		if got.OriginalText != "hello" {
			t.Errorf("got %q, want hello", got.OriginalText)
		}
	default:
		t.Fatal("no fragment delivered")
	}
	select {
	case got := <-ch:
		t.Errorf("unexpected extra fragment: %+v", got)
	default:
	}
}
