package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"meetScribe/config"
	"meetScribe/core"
)

// ErrNotFound is returned for missing rows and for rows the caller does not
// own. Ownership failures are indistinguishable from absence on purpose.
var ErrNotFound = errors.New("not found")

// MeetingStore is the row-oriented datastore behind the service: meetings,
// attendees, transcript fragments, summaries and OAuth tokens.
type MeetingStore interface {
	CreateMeeting(ctx context.Context, m core.Meeting) error
	GetMeeting(ctx context.Context, id, ownerID string) (core.Meeting, error)
	// GetMeetingByID bypasses the ownership check. Internal callers only,
	// never HTTP handlers.
	GetMeetingByID(ctx context.Context, id string) (core.Meeting, error)
	ListMeetings(ctx context.Context, ownerID string) ([]core.Meeting, error)
	UpdateMeetingStatus(ctx context.Context, id string, status core.MeetingStatus) error
	FindMeetingByExternalID(ctx context.Context, provider core.MeetingProvider, externalID string) (core.Meeting, bool, error)
	// ListMeetingsDueBy returns scheduled meetings whose start time is at
	// or before now, for promotion into recording.
	ListMeetingsDueBy(ctx context.Context, now time.Time) ([]core.Meeting, error)

	SaveAttendees(ctx context.Context, meetingID string, attendees []core.Attendee) error
	Attendees(ctx context.Context, meetingID string) ([]core.Attendee, error)

	SaveFragments(ctx context.Context, meetingID string, fragments []core.TranscriptFragment) error
	Fragments(ctx context.Context, meetingID string) ([]core.TranscriptFragment, error)

	SaveSummary(ctx context.Context, s core.StoredSummary) error
	GetSummary(ctx context.Context, meetingID, ownerID string) (core.StoredSummary, error)

	UpsertToken(ctx context.Context, tok core.OAuthToken) error
	GetToken(ctx context.Context, userID, provider string) (core.OAuthToken, bool, error)
	// ListConnections enumerates every stored (user, provider) credential,
	// which is what the scheduler polls over.
	ListConnections(ctx context.Context) ([]core.OAuthToken, error)

	Close(ctx context.Context)
}

// NewMeetingStore selects the backend from the MEETING_STORE env var:
// "postgres" or "memory" (default). A postgres failure falls back to memory
// with a warning rather than refusing to start.
func NewMeetingStore(ctx context.Context, cfg *config.Config) MeetingStore {
	kind := strings.ToLower(strings.TrimSpace(os.Getenv("MEETING_STORE")))
	if kind == "postgres" {
		s, err := newPostgresMeetingStore(ctx, cfg.PostgresURL)
		if err != nil {
			fmt.Printf("Warning: Failed to initialize postgres meeting store (%v), falling back to memory store\n", err)
			return NewMemoryMeetingStore()
		}
		return s
	}
	return NewMemoryMeetingStore()
}
