package processors

import "meetScribe/core"

// emptyTranscriptSummary is the fixed result for a meeting with no
// fragments at all.
const emptyTranscriptSummary = "No transcriptions available for this meeting."

// defaultSummarySentences is how many sentences the orchestrated summary
// keeps.
const defaultSummarySentences = 3

// GenerateSummary composes the segmenter, the extractive summarizer, the
// key-point extractor and the action-item extractor into one summary
// record. It is pure: no I/O, no shared state, identical output for
// identical input, and it never fails — every branch has a fallback, so
// callers can treat the result as always present.
func (e *SummaryEngine) GenerateSummary(fragments []core.TranscriptFragment) core.SummaryResult {
	if len(fragments) == 0 {
		return core.SummaryResult{
			Summary:     emptyTranscriptSummary,
			KeyPoints:   []string{},
			ActionItems: []string{},
		}
	}

	fullText := joinFragmentText(fragments)
	return core.SummaryResult{
		Summary:     e.Summarize(fullText, defaultSummarySentences),
		KeyPoints:   e.ExtractKeyPoints(fragments),
		ActionItems: e.ExtractActionItems(fullText),
	}
}
