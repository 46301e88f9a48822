package processors

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"meetScribe/config"
	"meetScribe/core"
)

// TranscriptionProvider turns a recorded meeting file into transcript
// fragments.
type TranscriptionProvider interface {
	Transcribe(recordingPath string, language string) ([]core.TranscriptFragment, error)
}

// NewTranscriptionProvider selects a backend from configuration. Only the
// mock backend ships today; real recognition happens client-side in the
// browser, so the server-side worker is a stand-in returning canned
// phrases.
func NewTranscriptionProvider() TranscriptionProvider {
	cfg, err := config.LoadConfig()
	if err != nil || cfg.TranscribeProvider == "" || cfg.TranscribeProvider == "mock" {
		return MockTranscriber{}
	}
	log.Printf("[Transcribe] unknown provider %q, falling back to mock", cfg.TranscribeProvider)
	return MockTranscriber{}
}

// MockTranscriber fabricates a plausible meeting transcript with synthetic
// timestamps and confidences. Output is deterministic so repeated runs
// stay comparable.
type MockTranscriber struct{}

var cannedUtterances = []struct {
	speaker string
	text    string
}{
	{"Alice", "Hello everyone, thanks for joining today's product sync on short notice."},
	{"Alice", "The main agenda is the quarterly roadmap review and the launch timeline."},
	{"Bob", "We finished the billing migration last week and the error rates look stable."},
	{"Bob", "We will need to finalize the pricing page copy before the Friday deadline."},
	{"Carol", "Action item: collect customer feedback on the new onboarding flow."},
	{"Carol", "I am responsible for the analytics dashboard rollout next sprint."},
	{"Alice", "Let's schedule a follow up: confirm the marketing assets with the design team."},
	{"Bob", "The infrastructure budget should cover the extra capacity through the quarter."},
}

func (MockTranscriber) Transcribe(recordingPath string, language string) ([]core.TranscriptFragment, error) {
	info, err := os.Stat(recordingPath)
	if err != nil {
		return nil, fmt.Errorf("stat recording: %w", err)
	}
	log.Printf("[Mock] transcribing %s (%d bytes, language=%s)",
		filepath.Base(recordingPath), info.Size(), language)

	// One utterance every ~8 seconds, separated by a 2 second pause.
	fragments := make([]core.TranscriptFragment, 0, len(cannedUtterances))
	var cursor int64
	for i, u := range cannedUtterances {
		start := cursor
		end := start + 8000
		fragments = append(fragments, core.TranscriptFragment{
			Speaker:        u.speaker,
			OriginalText:   u.text,
			TimestampStart: start,
			TimestampEnd:   end,
			Confidence:     0.9 - float64(i%4)*0.05,
		})
		cursor = end + 2000
	}
	return fragments, nil
}
