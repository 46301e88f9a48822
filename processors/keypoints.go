package processors

import (
	"strings"

	"meetScribe/core"
)

// maxKeyPoints caps how many topic segments contribute a key point.
const maxKeyPoints = 5

// ExtractKeyPoints derives up to five key points from the fragment
// sequence: one per topic segment, in segment order, each being the first
// sentence of the segment that survives candidate filtering. Segments with
// no qualifying sentence are skipped silently.
func (e *SummaryEngine) ExtractKeyPoints(fragments []core.TranscriptFragment) []string {
	segments := SegmentFragments(fragments)
	if len(segments) > maxKeyPoints {
		segments = segments[:maxKeyPoints]
	}

	points := make([]string, 0, len(segments))
	for _, seg := range segments {
		sentences := splitSentences(joinFragmentText(seg.Fragments))
		if len(sentences) == 0 {
			continue
		}
		points = append(points, sentences[0])
	}
	return points
}

// joinFragmentText concatenates the preferred text of each fragment with
// single-space separators, in input order.
func joinFragmentText(fragments []core.TranscriptFragment) string {
	var b strings.Builder
	for _, frag := range fragments {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(strings.TrimSpace(frag.PreferredText()))
	}
	return b.String()
}
