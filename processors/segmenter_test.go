package processors

import (
	"testing"

	"meetScribe/core"
)

func frag(start, end int64) core.TranscriptFragment {
	return core.TranscriptFragment{
		OriginalText:   "placeholder fragment text for segmentation",
		TimestampStart: start,
		TimestampEnd:   end,
		Confidence:     0.9,
	}
}

func TestSegmentFragmentsBoundary(t *testing.T) {
	// Gap of 13000ms before the third fragment splits the sequence.
	fragments := []core.TranscriptFragment{
		frag(0, 1000),
		frag(1200, 2000),
		frag(15000, 16000),
	}

	segments := SegmentFragments(fragments)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if len(segments[0].Fragments) != 2 {
		t.Errorf("first segment should hold 2 fragments, got %d", len(segments[0].Fragments))
	}
	if len(segments[1].Fragments) != 1 {
		t.Errorf("second segment should hold 1 fragment, got %d", len(segments[1].Fragments))
	}
	if segments[0].Start != 0 || segments[0].End != 2000 {
		t.Errorf("first segment span = [%d,%d], want [0,2000]", segments[0].Start, segments[0].End)
	}
	if segments[1].Start != 15000 || segments[1].End != 16000 {
		t.Errorf("second segment span = [%d,%d], want [15000,16000]", segments[1].Start, segments[1].End)
	}
}

func TestSegmentFragmentsNoSplitUnderThreshold(t *testing.T) {
	// 4000ms gap stays below the 10000ms threshold.
	fragments := []core.TranscriptFragment{
		frag(0, 1000),
		frag(5000, 6000),
	}

	segments := SegmentFragments(fragments)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if len(segments[0].Fragments) != 2 {
		t.Errorf("segment should hold both fragments, got %d", len(segments[0].Fragments))
	}
}

func TestSegmentFragmentsExactThresholdDoesNotSplit(t *testing.T) {
	fragments := []core.TranscriptFragment{
		frag(0, 1000),
		frag(11000, 12000), // gap exactly 10000: not strictly greater
	}
	if got := len(SegmentFragments(fragments)); got != 1 {
		t.Fatalf("gap equal to threshold must not split, got %d segments", got)
	}

	fragments[1].TimestampStart = 11001 // gap 10001
	if got := len(SegmentFragments(fragments)); got != 2 {
		t.Fatalf("gap above threshold must split, got %d segments", got)
	}
}

func TestSegmentFragmentsFirstFragmentNeverSplits(t *testing.T) {
	// lastEnd starts at 0, so a first fragment at a huge timestamp does not
	// open with a spurious boundary.
	fragments := []core.TranscriptFragment{
		frag(500000, 501000),
		frag(502000, 503000),
	}
	segments := SegmentFragments(fragments)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
}

func TestSegmentFragmentsEmptyInput(t *testing.T) {
	segments := SegmentFragments(nil)
	if len(segments) != 0 {
		t.Fatalf("expected no segments for empty input, got %d", len(segments))
	}
}
