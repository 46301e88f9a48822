package processors

import (
	"regexp"
	"sort"
	"strings"
)

// fallbackSummary is returned when no sentence survives candidate filtering.
const fallbackSummary = "Meeting recording in progress."

// minSentenceLen is the candidate filter shared by the summarizer and the
// key-point extractor: a sentence must be strictly longer than this.
const minSentenceLen = 20

// minImportantWordLen: words at or below this length never count as
// important, whatever the stop-word set says.
const minImportantWordLen = 4

// sentenceTerminators splits text into sentence candidates. Runs of
// terminal punctuation collapse into a single boundary.
var sentenceTerminators = regexp.MustCompile(`[.!?]+`)

// SummaryEngine scores and ranks sentences by lexical density. It holds an
// immutable stop-word set, carries no other state, and is safe for
// concurrent use; every method is a pure function of its inputs.
type SummaryEngine struct {
	stopWords map[string]struct{}
}

// NewSummaryEngine builds an engine with the default stop-word set.
func NewSummaryEngine() *SummaryEngine {
	return &SummaryEngine{stopWords: newStopWordSet()}
}

// Summarize returns an extractive pseudo-summary of fullText: the top
// maxSentences candidates by score, joined in score order with ". " and a
// trailing period. maxSentences <= 0 falls back to 3.
func (e *SummaryEngine) Summarize(fullText string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = 3
	}

	candidates := splitSentences(fullText)
	if len(candidates) == 0 {
		return fallbackSummary
	}

	type scored struct {
		text  string
		score float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, scored{text: c, score: e.scoreSentence(c)})
	}
	// Stable sort keeps the original relative order of equal-score
	// sentences.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	n := maxSentences
	if len(ranked) < n {
		n = len(ranked)
	}
	parts := make([]string, 0, n)
	for _, r := range ranked[:n] {
		parts = append(parts, r.text)
	}
	return strings.Join(parts, ". ") + "."
}

// scoreSentence rates a sentence by the fraction of its words that are
// important: longer than four characters and not a stop word. An empty
// word list scores zero; candidates from splitSentences can't hit that,
// but the guard stays.
func (e *SummaryEngine) scoreSentence(sentence string) float64 {
	words := strings.Fields(strings.ToLower(sentence))
	if len(words) == 0 {
		return 0
	}
	important := 0
	for _, w := range words {
		if len(w) <= minImportantWordLen {
			continue
		}
		if _, stop := e.stopWords[w]; stop {
			continue
		}
		important++
	}
	return float64(important) / float64(len(words))
}

// splitSentences breaks text on terminal punctuation, trims each piece and
// keeps only candidates longer than minSentenceLen characters.
func splitSentences(text string) []string {
	pieces := sentenceTerminators.Split(text, -1)
	out := make([]string, 0, len(pieces))
	for _, p := range pieces {
		p = strings.TrimSpace(p)
		if len(p) > minSentenceLen {
			out = append(out, p)
		}
	}
	return out
}
