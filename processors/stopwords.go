package processors

import "strings"

// stopWordList feeds the sentence scorer. Only entries longer than four
// characters can actually change a score (shorter words never count as
// important), but the full list is kept so the set reads as one unit.
// Includes the filler vocabulary that dominates meeting speech.
var stopWordList = []string{
	"a", "an", "and", "are", "as", "at", "be", "been", "but", "by",
	"for", "from", "had", "has", "have", "he", "her", "him", "his",
	"i", "in", "is", "it", "its", "me", "my", "no", "not", "of",
	"on", "or", "our", "she", "so", "that", "the", "their", "them",
	"then", "there", "these", "they", "this", "those", "to", "us",
	"was", "we", "were", "what", "when", "where", "which", "while",
	"who", "will", "with", "would", "you", "your",
	"about", "after", "again", "before", "being", "below", "between",
	"could", "doing", "during", "every", "going", "gonna", "other",
	"really", "right", "should", "since", "still", "thing", "things",
	"think", "until", "very", "want", "wanted", "yeah", "okay",
	"actually", "basically", "because", "anyway", "alright", "little",
	"maybe", "might", "something", "though",
}

// newStopWordSet builds the immutable membership set the scorer holds a
// reference to. Built once per engine so concurrent engines never share
// mutable state.
func newStopWordSet() map[string]struct{} {
	set := make(map[string]struct{}, len(stopWordList))
	for _, w := range stopWordList {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}
