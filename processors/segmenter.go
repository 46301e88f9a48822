package processors

import "meetScribe/core"

// segmentGapMS is the silence threshold separating topic segments. A new
// segment starts when the gap between one fragment's end and the next
// fragment's start exceeds this many milliseconds.
const segmentGapMS int64 = 10000

// SegmentFragments groups a time-ordered fragment sequence into topic
// segments by gap-based boundary detection. Input order is assumed to be
// chronological already; the segmenter never sorts, so out-of-order input
// produces exactly the boundaries its order implies.
//
// The lastEnd cursor starts at 0, so the very first fragment can never
// trigger a split even when it starts at a very large timestamp.
func SegmentFragments(fragments []core.TranscriptFragment) []core.TopicSegment {
	segments := make([]core.TopicSegment, 0)
	var current []core.TranscriptFragment
	var lastEnd int64

	for _, frag := range fragments {
		if lastEnd != 0 && len(current) > 0 && frag.TimestampStart-lastEnd > segmentGapMS {
			segments = append(segments, buildSegment(current))
			current = nil
		}
		current = append(current, frag)
		lastEnd = frag.TimestampEnd
	}
	if len(current) > 0 {
		segments = append(segments, buildSegment(current))
	}
	return segments
}

func buildSegment(fragments []core.TranscriptFragment) core.TopicSegment {
	return core.TopicSegment{
		Start:     fragments[0].TimestampStart,
		End:       fragments[len(fragments)-1].TimestampEnd,
		Fragments: fragments,
	}
}
