package processors

import (
	"fmt"
	"testing"

	"meetScribe/core"
)

// talkFrag builds a fragment whose text clears the sentence-length filter.
func talkFrag(start, end int64, text string) core.TranscriptFragment {
	return core.TranscriptFragment{
		OriginalText:   text,
		TimestampStart: start,
		TimestampEnd:   end,
		Confidence:     0.95,
	}
}

func TestExtractKeyPointsCapAndOrder(t *testing.T) {
	engine := NewSummaryEngine()

	// Eight segments, 20 second gaps between them, each with a distinct
	// qualifying first sentence.
	var fragments []core.TranscriptFragment
	var cursor int64
	for i := 0; i < 8; i++ {
		text := fmt.Sprintf("Segment number %d discusses the deployment plan in detail.", i)
		fragments = append(fragments, talkFrag(cursor, cursor+5000, text))
		cursor += 5000 + 20000
	}

	points := engine.ExtractKeyPoints(fragments)
	if len(points) != 5 {
		t.Fatalf("expected 5 key points from 8 segments, got %d", len(points))
	}
	for i, p := range points {
		want := fmt.Sprintf("Segment number %d discusses the deployment plan in detail", i)
		if p != want {
			t.Errorf("key point %d = %q, want %q (segment order, not score order)", i, p, want)
		}
	}
}

func TestExtractKeyPointsSkipsSegmentsWithoutSentences(t *testing.T) {
	engine := NewSummaryEngine()

	fragments := []core.TranscriptFragment{
		talkFrag(0, 5000, "The first segment has a proper qualifying sentence."),
		// 20s gap: new segment whose text never clears the length filter.
		talkFrag(25000, 26000, "Hi. Ok."),
		// Another gap: third segment qualifies again.
		talkFrag(50000, 55000, "The third segment also has enough said to qualify."),
	}

	points := engine.ExtractKeyPoints(fragments)
	if len(points) != 2 {
		t.Fatalf("expected the short segment to be skipped, got %d points: %v", len(points), points)
	}
	if points[0] != "The first segment has a proper qualifying sentence" {
		t.Errorf("unexpected first key point %q", points[0])
	}
	if points[1] != "The third segment also has enough said to qualify" {
		t.Errorf("unexpected second key point %q", points[1])
	}
}

func TestExtractKeyPointsPrefersTranslatedText(t *testing.T) {
	engine := NewSummaryEngine()

	fragments := []core.TranscriptFragment{
		{
			OriginalText:   "Hablamos del calendario de lanzamiento para el proximo trimestre.",
			TranslatedText: "We discussed the launch calendar for the next quarter.",
			TimestampStart: 0,
			TimestampEnd:   4000,
			Confidence:     0.8,
		},
	}

	points := engine.ExtractKeyPoints(fragments)
	if len(points) != 1 {
		t.Fatalf("expected 1 key point, got %d", len(points))
	}
	if points[0] != "We discussed the launch calendar for the next quarter" {
		t.Errorf("key point should use translated text, got %q", points[0])
	}
}

func TestExtractKeyPointsEmptyInput(t *testing.T) {
	engine := NewSummaryEngine()
	if points := engine.ExtractKeyPoints(nil); len(points) != 0 {
		t.Fatalf("expected no key points, got %v", points)
	}
}
