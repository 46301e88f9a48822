package processors

import (
	"regexp"
	"strings"
)

const (
	maxActionItems   = 5
	minActionItemLen = 10  // exclusive
	maxActionItemLen = 200 // exclusive
)

// actionItemPatterns are the three case-insensitive pattern families the
// extractor runs over the full text. Each match is the whole span from the
// trigger phrase up to the next sentence terminator.
var actionItemPatterns = []*regexp.Regexp{
	// modal / intent phrases
	regexp.MustCompile(`(?i)(need to|must|should|will|have to|going to)[^.!?]*`),
	// explicit markers
	regexp.MustCompile(`(?i)(action item|task|todo|follow up):[^.!?]*`),
	// assignment phrases
	regexp.MustCompile(`(?i)(assign|assigned to|responsible for)[^.!?]*`),
}

// ExtractActionItems collects every pattern match in fullText, trims it,
// keeps spans whose length is strictly between 10 and 200 characters,
// deduplicates exact strings and returns at most five in the order they
// were first encountered.
func (e *SummaryEngine) ExtractActionItems(fullText string) []string {
	seen := make(map[string]struct{})
	items := make([]string, 0, maxActionItems)

	for _, pattern := range actionItemPatterns {
		for _, match := range pattern.FindAllString(fullText, -1) {
			item := strings.TrimSpace(match)
			if len(item) <= minActionItemLen || len(item) >= maxActionItemLen {
				continue
			}
			if _, dup := seen[item]; dup {
				continue
			}
			seen[item] = struct{}{}
			items = append(items, item)
		}
	}

	if len(items) > maxActionItems {
		items = items[:maxActionItems]
	}
	return items
}
