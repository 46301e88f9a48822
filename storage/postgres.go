package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"meetScribe/core"
)

// PostgresMeetingStore persists all application rows in PostgreSQL.
type PostgresMeetingStore struct {
	pool *pgxpool.Pool
}

func newPostgresMeetingStore(ctx context.Context, url string) (*PostgresMeetingStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &PostgresMeetingStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresMeetingStore) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meetings (
			id VARCHAR(64) PRIMARY KEY,
			owner_id VARCHAR(64) NOT NULL,
			title VARCHAR(500) NOT NULL,
			provider VARCHAR(32) NOT NULL,
			external_id VARCHAR(255),
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ NOT NULL,
			status VARCHAR(32) NOT NULL,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_meetings_owner ON meetings(owner_id);`,
		`CREATE INDEX IF NOT EXISTS idx_meetings_external ON meetings(provider, external_id);`,
		`CREATE TABLE IF NOT EXISTS attendees (
			id VARCHAR(64) PRIMARY KEY,
			meeting_id VARCHAR(64) NOT NULL REFERENCES meetings(id),
			name VARCHAR(255),
			email VARCHAR(255) NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS transcript_fragments (
			id SERIAL PRIMARY KEY,
			meeting_id VARCHAR(64) NOT NULL,
			seq INT NOT NULL,
			speaker VARCHAR(255),
			original_text TEXT NOT NULL,
			translated_text TEXT,
			ts_start BIGINT NOT NULL,
			ts_end BIGINT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_fragments_meeting ON transcript_fragments(meeting_id, seq);`,
		`CREATE TABLE IF NOT EXISTS summaries (
			meeting_id VARCHAR(64) PRIMARY KEY,
			summary TEXT NOT NULL,
			key_points TEXT[] NOT NULL DEFAULT '{}',
			action_items TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS oauth_tokens (
			user_id VARCHAR(64) NOT NULL,
			provider VARCHAR(32) NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT,
			expiry TIMESTAMPTZ,
			scope TEXT,
			PRIMARY KEY (user_id, provider)
		);`,
	}
	for _, q := range stmts {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresMeetingStore) CreateMeeting(ctx context.Context, m core.Meeting) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO meetings (id, owner_id, title, provider, external_id, start_time, end_time, status, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		m.ID, m.OwnerID, m.Title, string(m.Provider), m.ExternalID, m.StartTime, m.EndTime, string(m.Status), m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert meeting: %w", err)
	}
	return nil
}

func scanMeeting(row pgx.Row) (core.Meeting, error) {
	var m core.Meeting
	var provider, status string
	err := row.Scan(&m.ID, &m.OwnerID, &m.Title, &provider, &m.ExternalID, &m.StartTime, &m.EndTime, &status, &m.CreatedAt)
	if err != nil {
		return core.Meeting{}, err
	}
	m.Provider = core.MeetingProvider(provider)
	m.Status = core.MeetingStatus(status)
	return m, nil
}

const meetingCols = `id, owner_id, title, provider, COALESCE(external_id,''), start_time, end_time, status, created_at`

func (s *PostgresMeetingStore) GetMeeting(ctx context.Context, id, ownerID string) (core.Meeting, error) {
	m, err := scanMeeting(s.pool.QueryRow(ctx,
		`SELECT `+meetingCols+` FROM meetings WHERE id = $1 AND owner_id = $2`, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Meeting{}, ErrNotFound
	}
	if err != nil {
		return core.Meeting{}, fmt.Errorf("get meeting: %w", err)
	}
	return m, nil
}

func (s *PostgresMeetingStore) GetMeetingByID(ctx context.Context, id string) (core.Meeting, error) {
	m, err := scanMeeting(s.pool.QueryRow(ctx,
		`SELECT `+meetingCols+` FROM meetings WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Meeting{}, ErrNotFound
	}
	if err != nil {
		return core.Meeting{}, fmt.Errorf("get meeting by id: %w", err)
	}
	return m, nil
}

func (s *PostgresMeetingStore) ListMeetings(ctx context.Context, ownerID string) ([]core.Meeting, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+meetingCols+` FROM meetings WHERE owner_id = $1 ORDER BY start_time`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	defer rows.Close()
	return collectMeetings(rows)
}

func collectMeetings(rows pgx.Rows) ([]core.Meeting, error) {
	out := make([]core.Meeting, 0)
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresMeetingStore) UpdateMeetingStatus(ctx context.Context, id string, status core.MeetingStatus) error {
	tag, err := s.pool.Exec(ctx, `UPDATE meetings SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("update meeting status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresMeetingStore) FindMeetingByExternalID(ctx context.Context, provider core.MeetingProvider, externalID string) (core.Meeting, bool, error) {
	m, err := scanMeeting(s.pool.QueryRow(ctx,
		`SELECT `+meetingCols+` FROM meetings WHERE provider = $1 AND external_id = $2`, string(provider), externalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Meeting{}, false, nil
	}
	if err != nil {
		return core.Meeting{}, false, fmt.Errorf("find meeting: %w", err)
	}
	return m, true, nil
}

func (s *PostgresMeetingStore) ListMeetingsDueBy(ctx context.Context, now time.Time) ([]core.Meeting, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+meetingCols+` FROM meetings WHERE status = $1 AND start_time <= $2 ORDER BY start_time`,
		string(core.StatusScheduled), now)
	if err != nil {
		return nil, fmt.Errorf("list due meetings: %w", err)
	}
	defer rows.Close()
	return collectMeetings(rows)
}

func (s *PostgresMeetingStore) SaveAttendees(ctx context.Context, meetingID string, attendees []core.Attendee) error {
	for _, a := range attendees {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO attendees (id, meeting_id, name, email) VALUES ($1,$2,$3,$4)
			 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email`,
			a.ID, meetingID, a.Name, a.Email)
		if err != nil {
			return fmt.Errorf("save attendee: %w", err)
		}
	}
	return nil
}

func (s *PostgresMeetingStore) Attendees(ctx context.Context, meetingID string) ([]core.Attendee, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, meeting_id, COALESCE(name,''), email FROM attendees WHERE meeting_id = $1`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	defer rows.Close()
	out := make([]core.Attendee, 0)
	for rows.Next() {
		var a core.Attendee
		if err := rows.Scan(&a.ID, &a.MeetingID, &a.Name, &a.Email); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresMeetingStore) SaveFragments(ctx context.Context, meetingID string, fragments []core.TranscriptFragment) error {
	var base int
	if err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(seq),-1)+1 FROM transcript_fragments WHERE meeting_id = $1`, meetingID).Scan(&base); err != nil {
		return fmt.Errorf("next fragment seq: %w", err)
	}
	for i, f := range fragments {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO transcript_fragments (meeting_id, seq, speaker, original_text, translated_text, ts_start, ts_end, confidence)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			meetingID, base+i, f.Speaker, f.OriginalText, f.TranslatedText, f.TimestampStart, f.TimestampEnd, f.Confidence)
		if err != nil {
			return fmt.Errorf("insert fragment: %w", err)
		}
	}
	return nil
}

func (s *PostgresMeetingStore) Fragments(ctx context.Context, meetingID string) ([]core.TranscriptFragment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT COALESCE(speaker,''), original_text, COALESCE(translated_text,''), ts_start, ts_end, confidence
		 FROM transcript_fragments WHERE meeting_id = $1 ORDER BY seq`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("list fragments: %w", err)
	}
	defer rows.Close()
	out := make([]core.TranscriptFragment, 0)
	for rows.Next() {
		var f core.TranscriptFragment
		if err := rows.Scan(&f.Speaker, &f.OriginalText, &f.TranslatedText, &f.TimestampStart, &f.TimestampEnd, &f.Confidence); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *PostgresMeetingStore) SaveSummary(ctx context.Context, sum core.StoredSummary) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO summaries (meeting_id, summary, key_points, action_items, created_at)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (meeting_id) DO UPDATE SET
		   summary = EXCLUDED.summary,
		   key_points = EXCLUDED.key_points,
		   action_items = EXCLUDED.action_items,
		   created_at = EXCLUDED.created_at`,
		sum.MeetingID, sum.Summary, sum.KeyPoints, sum.ActionItems, sum.CreatedAt)
	if err != nil {
		return fmt.Errorf("save summary: %w", err)
	}
	return nil
}

func (s *PostgresMeetingStore) GetSummary(ctx context.Context, meetingID, ownerID string) (core.StoredSummary, error) {
	var sum core.StoredSummary
	err := s.pool.QueryRow(ctx,
		`SELECT s.meeting_id, s.summary, s.key_points, s.action_items, s.created_at
		 FROM summaries s JOIN meetings m ON m.id = s.meeting_id
		 WHERE s.meeting_id = $1 AND m.owner_id = $2`, meetingID, ownerID).
		Scan(&sum.MeetingID, &sum.Summary, &sum.KeyPoints, &sum.ActionItems, &sum.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.StoredSummary{}, ErrNotFound
	}
	if err != nil {
		return core.StoredSummary{}, fmt.Errorf("get summary: %w", err)
	}
	return sum, nil
}

func (s *PostgresMeetingStore) UpsertToken(ctx context.Context, tok core.OAuthToken) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO oauth_tokens (user_id, provider, access_token, refresh_token, expiry, scope)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (user_id, provider) DO UPDATE SET
		   access_token = EXCLUDED.access_token,
		   refresh_token = EXCLUDED.refresh_token,
		   expiry = EXCLUDED.expiry,
		   scope = EXCLUDED.scope`,
		tok.UserID, tok.Provider, tok.AccessToken, tok.RefreshToken, tok.Expiry, tok.Scope)
	if err != nil {
		return fmt.Errorf("upsert token: %w", err)
	}
	return nil
}

func (s *PostgresMeetingStore) GetToken(ctx context.Context, userID, provider string) (core.OAuthToken, bool, error) {
	var tok core.OAuthToken
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, provider, access_token, COALESCE(refresh_token,''), COALESCE(expiry, 'epoch'::timestamptz), COALESCE(scope,'')
		 FROM oauth_tokens WHERE user_id = $1 AND provider = $2`, userID, provider).
		Scan(&tok.UserID, &tok.Provider, &tok.AccessToken, &tok.RefreshToken, &tok.Expiry, &tok.Scope)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.OAuthToken{}, false, nil
	}
	if err != nil {
		return core.OAuthToken{}, false, fmt.Errorf("get token: %w", err)
	}
	return tok, true, nil
}

func (s *PostgresMeetingStore) ListConnections(ctx context.Context) ([]core.OAuthToken, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, provider, access_token, COALESCE(refresh_token,''), COALESCE(expiry, 'epoch'::timestamptz), COALESCE(scope,'')
		 FROM oauth_tokens ORDER BY user_id, provider`)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer rows.Close()
	out := make([]core.OAuthToken, 0)
	for rows.Next() {
		var tok core.OAuthToken
		if err := rows.Scan(&tok.UserID, &tok.Provider, &tok.AccessToken, &tok.RefreshToken, &tok.Expiry, &tok.Scope); err != nil {
			return nil, err
		}
		out = append(out, tok)
	}
	return out, rows.Err()
}

func (s *PostgresMeetingStore) Close(context.Context) {
	s.pool.Close()
}
