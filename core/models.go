package core

import (
	"strings"
	"time"
)

// ========== Transcript structures ==========

// TranscriptFragment is one recognized utterance. Fragments are immutable
// inputs to the summarization pipeline; nothing downstream mutates them.
type TranscriptFragment struct {
	Speaker        string  `json:"speaker,omitempty"`
	OriginalText   string  `json:"original_text"`
	TranslatedText string  `json:"translated_text,omitempty"`
	TimestampStart int64   `json:"timestamp_start"` // ms from meeting start
	TimestampEnd   int64   `json:"timestamp_end"`   // ms from meeting start
	Confidence     float64 `json:"confidence"`
}

// DefaultSpeaker labels fragments whose speaker was not recognized.
const DefaultSpeaker = "Unknown"

// SpeakerLabel returns the fragment's speaker, or DefaultSpeaker when unset.
func (f TranscriptFragment) SpeakerLabel() string {
	if strings.TrimSpace(f.Speaker) == "" {
		return DefaultSpeaker
	}
	return f.Speaker
}

// PreferredText returns the translated text when present, otherwise the
// original. Summarization always works on the preferred text.
func (f TranscriptFragment) PreferredText() string {
	if f.TranslatedText != "" {
		return f.TranslatedText
	}
	return f.OriginalText
}

// TopicSegment is a maximal run of consecutive fragments with no internal
// silence gap exceeding the segmenter threshold. Segments partition the
// fragment sequence and never reorder it.
type TopicSegment struct {
	Start     int64                `json:"start"` // ms
	End       int64                `json:"end"`   // ms
	Fragments []TranscriptFragment `json:"fragments"`
}

// SummaryResult is the derived artifact of one summarization pass. It is
// produced fresh on every call and never cached.
type SummaryResult struct {
	Summary     string   `json:"summary"`
	KeyPoints   []string `json:"key_points"`
	ActionItems []string `json:"action_items"`
}

// ========== Meeting structures ==========

type MeetingStatus string

const (
	StatusScheduled MeetingStatus = "scheduled"
	StatusRecording MeetingStatus = "recording"
	StatusCompleted MeetingStatus = "completed"
	StatusFailed    MeetingStatus = "failed"
)

// MeetingProvider identifies where a scheduled meeting was discovered.
type MeetingProvider string

const (
	ProviderGoogle MeetingProvider = "google"
	ProviderZoom   MeetingProvider = "zoom"
	ProviderManual MeetingProvider = "manual"
)

type Meeting struct {
	ID         string          `json:"id"`
	OwnerID    string          `json:"owner_id"`
	Title      string          `json:"title"`
	Provider   MeetingProvider `json:"provider"`
	ExternalID string          `json:"external_id,omitempty"` // calendar event / zoom meeting id
	StartTime  time.Time       `json:"start_time"`
	EndTime    time.Time       `json:"end_time"`
	Status     MeetingStatus   `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}

type Attendee struct {
	ID        string `json:"id"`
	MeetingID string `json:"meeting_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// StoredSummary is a persisted SummaryResult bound to its meeting.
type StoredSummary struct {
	MeetingID   string    `json:"meeting_id"`
	Summary     string    `json:"summary"`
	KeyPoints   []string  `json:"key_points"`
	ActionItems []string  `json:"action_items"`
	CreatedAt   time.Time `json:"created_at"`
}

// OAuthToken is a stored provider credential for one user.
type OAuthToken struct {
	UserID       string    `json:"user_id"`
	Provider     string    `json:"provider"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Expiry       time.Time `json:"expiry"`
	Scope        string    `json:"scope,omitempty"`
}

// ========== Search structures ==========

// SearchHit is one transcript segment returned by the vector store.
type SearchHit struct {
	MeetingID string  `json:"meeting_id"`
	Score     float64 `json:"score"`
	Start     int64   `json:"start"`
	End       int64   `json:"end"`
	Text      string  `json:"text"`
	Summary   string  `json:"summary,omitempty"`
}
