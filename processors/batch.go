package processors

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"meetScribe/core"
)

// SummarizeMeetings runs the engine over many meetings' fragments
// concurrently with at most workers goroutines. The engine is pure, so the
// only coordination needed is around the result map.
func SummarizeMeetings(ctx context.Context, engine *SummaryEngine, batches map[string][]core.TranscriptFragment, workers int) map[string]core.SummaryResult {
	if workers <= 0 {
		workers = 4
	}

	var mu sync.Mutex
	results := make(map[string]core.SummaryResult, len(batches))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for meetingID, fragments := range batches {
		meetingID, fragments := meetingID, fragments
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			result := engine.GenerateSummary(fragments)
			mu.Lock()
			results[meetingID] = result
			mu.Unlock()
			return nil
		})
	}
	// GenerateSummary never errors; the only error here is cancellation.
	_ = g.Wait()
	return results
}
