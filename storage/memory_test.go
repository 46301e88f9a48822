package storage

import (
	"context"
	"testing"
	"time"

	"meetScribe/core"
)

func testMeeting(id, owner string, start time.Time) core.Meeting {
	return core.Meeting{
		ID:        id,
		OwnerID:   owner,
		Title:     "Weekly sync",
		Provider:  core.ProviderManual,
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Status:    core.StatusScheduled,
		CreatedAt: time.Now(),
	}
}

func TestMemoryStoreOwnershipCheck(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryMeetingStore()

	m := testMeeting("m1", "alice", time.Now())
	if err := s.CreateMeeting(ctx, m); err != nil {
		t.Fatal(err)
	}

	if _, err := s.GetMeeting(ctx, "m1", "alice"); err != nil {
		t.Fatalf("owner should see the meeting: %v", err)
	}
	if _, err := s.GetMeeting(ctx, "m1", "bob"); err != ErrNotFound {
		t.Fatalf("non-owner access = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreStatusTransitions(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryMeetingStore()

	if err := s.CreateMeeting(ctx, testMeeting("m1", "alice", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateMeetingStatus(ctx, "m1", core.StatusRecording); err != nil {
		t.Fatal(err)
	}
	m, err := s.GetMeeting(ctx, "m1", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if m.Status != core.StatusRecording {
		t.Errorf("status = %s, want recording", m.Status)
	}
	if err := s.UpdateMeetingStatus(ctx, "missing", core.StatusFailed); err != ErrNotFound {
		t.Errorf("updating a missing meeting = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreListMeetingsDueBy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryMeetingStore()
	now := time.Now()

	past := testMeeting("past", "alice", now.Add(-5*time.Minute))
	future := testMeeting("future", "alice", now.Add(2*time.Hour))
	done := testMeeting("done", "alice", now.Add(-time.Hour))
	done.Status = core.StatusCompleted

	for _, m := range []core.Meeting{past, future, done} {
		if err := s.CreateMeeting(ctx, m); err != nil {
			t.Fatal(err)
		}
	}

	due, err := s.ListMeetingsDueBy(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 || due[0].ID != "past" {
		t.Fatalf("due meetings = %v, want just \"past\"", due)
	}
}

func TestMemoryStoreFindByExternalID(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryMeetingStore()

	m := testMeeting("m1", "alice", time.Now())
	m.Provider = core.ProviderGoogle
	m.ExternalID = "evt-123"
	if err := s.CreateMeeting(ctx, m); err != nil {
		t.Fatal(err)
	}

	got, found, err := s.FindMeetingByExternalID(ctx, core.ProviderGoogle, "evt-123")
	if err != nil || !found {
		t.Fatalf("expected meeting to be found (found=%v err=%v)", found, err)
	}
	if got.ID != "m1" {
		t.Errorf("found meeting %s, want m1", got.ID)
	}

	if _, found, _ := s.FindMeetingByExternalID(ctx, core.ProviderZoom, "evt-123"); found {
		t.Error("provider must participate in the lookup key")
	}
}

func TestMemoryStoreFragmentsAndSummary(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryMeetingStore()

	if err := s.CreateMeeting(ctx, testMeeting("m1", "alice", time.Now())); err != nil {
		t.Fatal(err)
	}
	fragments := []core.TranscriptFragment{
		{OriginalText: "first utterance of the meeting", TimestampStart: 0, TimestampEnd: 2000},
		{OriginalText: "second utterance of the meeting", TimestampStart: 3000, TimestampEnd: 5000},
	}
	if err := s.SaveFragments(ctx, "m1", fragments); err != nil {
		t.Fatal(err)
	}
	got, err := s.Fragments(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].OriginalText != fragments[0].OriginalText {
		t.Fatalf("fragments round trip failed: %v", got)
	}

	sum := core.StoredSummary{
		MeetingID:   "m1",
		Summary:     "Summary text",
		KeyPoints:   []string{"point"},
		ActionItems: []string{"item"},
		CreatedAt:   time.Now(),
	}
	if err := s.SaveSummary(ctx, sum); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetSummary(ctx, "m1", "bob"); err != ErrNotFound {
		t.Errorf("non-owner summary access = %v, want ErrNotFound", err)
	}
	stored, err := s.GetSummary(ctx, "m1", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Summary != "Summary text" {
		t.Errorf("summary = %q", stored.Summary)
	}
}

func TestMemoryStoreTokens(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryMeetingStore()

	tok := core.OAuthToken{
		UserID:       "alice",
		Provider:     "google",
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
		Expiry:       time.Now().Add(time.Hour),
	}
	if err := s.UpsertToken(ctx, tok); err != nil {
		t.Fatal(err)
	}

	// Upsert replaces in place.
	tok.AccessToken = "at-2"
	if err := s.UpsertToken(ctx, tok); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.GetToken(ctx, "alice", "google")
	if err != nil || !ok {
		t.Fatalf("GetToken: ok=%v err=%v", ok, err)
	}
	if got.AccessToken != "at-2" {
		t.Errorf("access token = %q, want the refreshed value", got.AccessToken)
	}

	conns, err := s.ListConnections(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(conns) != 1 {
		t.Fatalf("connections = %d, want 1", len(conns))
	}
}
