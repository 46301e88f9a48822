package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"meetScribe/config"
	"meetScribe/core"
)

// PgVectorStore indexes transcript fragments in PostgreSQL via pgvector.
type PgVectorStore struct {
	conn *pgx.Conn
	emb  *embedder
}

func newPgVectorStore(cfg *config.Config) (*PgVectorStore, error) {
	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &PgVectorStore{conn: conn, emb: newEmbedder(cfg)}
	if err := s.ensureTable(ctx); err != nil {
		conn.Close(ctx)
		return nil, err
	}
	return s, nil
}

func (s *PgVectorStore) ensureTable(ctx context.Context) error {
	if _, err := s.conn.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector;"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS meeting_segments (
			id SERIAL PRIMARY KEY,
			meeting_id VARCHAR(64) NOT NULL,
			ts_start BIGINT NOT NULL,
			ts_end BIGINT NOT NULL,
			text TEXT NOT NULL,
			embedding vector(%d),
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);`, embedDim)
	if _, err := s.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create meeting_segments table: %w", err)
	}
	if _, err := s.conn.Exec(ctx,
		"CREATE INDEX IF NOT EXISTS idx_segments_meeting ON meeting_segments(meeting_id);"); err != nil {
		return fmt.Errorf("failed to create meeting index: %w", err)
	}
	return nil
}

func (s *PgVectorStore) Upsert(meetingID string, fragments []core.TranscriptFragment) int {
	if len(fragments) == 0 {
		return 0
	}
	ctx := context.Background()

	// Re-indexing a meeting replaces its previous rows.
	if _, err := s.conn.Exec(ctx, "DELETE FROM meeting_segments WHERE meeting_id = $1", meetingID); err != nil {
		fmt.Printf("Warning: failed to clear previous segments for %s: %v\n", meetingID, err)
	}

	count := 0
	for _, f := range fragments {
		text := f.PreferredText()
		v, err := s.emb.embed(strings.ToLower(text))
		if err != nil {
			continue
		}
		_, err = s.conn.Exec(ctx,
			`INSERT INTO meeting_segments (meeting_id, ts_start, ts_end, text, embedding)
			 VALUES ($1,$2,$3,$4,$5)`,
			meetingID, f.TimestampStart, f.TimestampEnd, text, pgvector.NewVector(v))
		if err != nil {
			continue
		}
		count++
	}
	return count
}

func (s *PgVectorStore) Search(meetingID string, query string, topK int) []core.SearchHit {
	v, err := s.emb.embed(strings.ToLower(query))
	if err != nil {
		return nil
	}
	if topK <= 0 {
		topK = 5
	}
	ctx := context.Background()
	rows, err := s.conn.Query(ctx,
		`SELECT ts_start, ts_end, text, 1 - (embedding <=> $2) AS score
		 FROM meeting_segments
		 WHERE meeting_id = $1
		 ORDER BY embedding <=> $2
		 LIMIT $3`,
		meetingID, pgvector.NewVector(v), topK)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var hits []core.SearchHit
	for rows.Next() {
		var h core.SearchHit
		if err := rows.Scan(&h.Start, &h.End, &h.Text, &h.Score); err != nil {
			continue
		}
		h.MeetingID = meetingID
		hits = append(hits, h)
	}
	return hits
}
