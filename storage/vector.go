package storage

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"sync"

	"meetScribe/config"
	"meetScribe/core"
)

// VectorStore indexes transcript fragments for semantic search over a
// meeting. Upsert returns how many fragments were actually indexed.
type VectorStore interface {
	Upsert(meetingID string, fragments []core.TranscriptFragment) int
	Search(meetingID string, query string, topK int) []core.SearchHit
}

// NewVectorStore selects the backend from the STORE env var: "milvus",
// "pgvector" or in-memory (default). API-backed stores need embedding
// credentials; anything missing degrades to the memory store with a
// warning so search keeps working in dev.
func NewVectorStore(cfg *config.Config) VectorStore {
	kind := strings.ToLower(strings.TrimSpace(os.Getenv("STORE")))
	switch kind {
	case "milvus":
		if !cfg.HasValidAPI() {
			config.PrintConfigInstructions()
			fmt.Println("Warning: API configuration required for Milvus store, falling back to memory store")
			return NewMemoryVectorStore()
		}
		s, err := newMilvusVectorStore(cfg)
		if err != nil {
			fmt.Printf("Warning: Failed to initialize Milvus store (%v), falling back to memory store\n", err)
			return NewMemoryVectorStore()
		}
		return s
	case "pgvector":
		if !cfg.HasValidAPI() {
			config.PrintConfigInstructions()
			fmt.Println("Warning: API configuration required for PgVector store, falling back to memory store")
			return NewMemoryVectorStore()
		}
		s, err := newPgVectorStore(cfg)
		if err != nil {
			fmt.Printf("Warning: Failed to initialize PgVector store (%v), falling back to memory store\n", err)
			return NewMemoryVectorStore()
		}
		return s
	}
	return NewMemoryVectorStore()
}

// ---------------- Memory implementation (kept for fallback) ----------------

// MemoryVectorStore ranks fragments by term-frequency cosine similarity.
// No API calls, deterministic, good enough for dev and tests.
type MemoryVectorStore struct {
	mu   sync.RWMutex
	docs map[string][]memoryDoc // meetingID -> docs
}

type memoryDoc struct {
	start, end int64
	text       string
	embed      map[string]float64 // term -> weight
}

func NewMemoryVectorStore() *MemoryVectorStore {
	return &MemoryVectorStore{docs: map[string][]memoryDoc{}}
}

func (s *MemoryVectorStore) Upsert(meetingID string, fragments []core.TranscriptFragment) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := make([]memoryDoc, 0, len(fragments))
	for _, f := range fragments {
		text := f.PreferredText()
		docs = append(docs, memoryDoc{
			start: f.TimestampStart,
			end:   f.TimestampEnd,
			text:  text,
			embed: termFrequency(text),
		})
	}
	s.docs[meetingID] = docs
	return len(docs)
}

func (s *MemoryVectorStore) Search(meetingID string, query string, topK int) []core.SearchHit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := s.docs[meetingID]
	qv := termFrequency(query)

	type scored struct {
		i     int
		score float64
	}
	scores := make([]scored, 0, len(docs))
	for i, d := range docs {
		scores = append(scores, scored{i, cosineTF(qv, d.embed)})
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	if topK <= 0 || topK > len(scores) {
		topK = len(scores)
		if topK > 5 {
			topK = 5
		}
	}
	hits := make([]core.SearchHit, 0, topK)
	for _, sc := range scores[:topK] {
		d := docs[sc.i]
		hits = append(hits, core.SearchHit{
			MeetingID: meetingID,
			Score:     sc.score,
			Start:     d.start,
			End:       d.end,
			Text:      d.text,
		})
	}
	return hits
}

func termFrequency(text string) map[string]float64 {
	out := map[string]float64{}
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,!?;:\"'()")
		if tok == "" {
			continue
		}
		out[tok]++
	}
	return out
}

func cosineTF(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for k, va := range a {
		normA += va * va
		if vb, ok := b[k]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
