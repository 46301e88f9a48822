package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"meetScribe/config"
	"meetScribe/core"
	"meetScribe/integrations"
	"meetScribe/storage"
)

// EventSource produces upcoming calendar events for a connected user. In
// production this is the OAuthManager; tests inject a fake.
type EventSource interface {
	UpcomingEvents(ctx context.Context, userID string, provider core.MeetingProvider, window time.Duration) ([]integrations.CalendarEvent, error)
}

// Scheduler polls connected calendars on a cron schedule, records upcoming
// meetings, and promotes meetings whose start time has arrived.
type Scheduler struct {
	store     storage.MeetingStore
	events    EventSource
	lookahead time.Duration
	interval  time.Duration
	cron      *cron.Cron

	// OnActivated is invoked for each meeting promoted to recording.
	// Optional.
	OnActivated func(meeting core.Meeting)
}

func New(cfg *config.Config, store storage.MeetingStore, events EventSource) *Scheduler {
	return &Scheduler{
		store:     store,
		events:    events,
		lookahead: time.Duration(cfg.LookaheadMin) * time.Minute,
		interval:  cfg.PollInterval,
	}
}

// Start registers the polling job and begins the cron loop. The first poll
// happens on the first tick, not immediately.
func (s *Scheduler) Start() error {
	s.cron = cron.New()
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.interval)
		defer cancel()
		s.Poll(ctx)
	}); err != nil {
		return fmt.Errorf("register poll job: %w", err)
	}
	s.cron.Start()
	log.Printf("[Scheduler] polling calendars every %s, lookahead %s", s.interval, s.lookahead)
	return nil
}

// Stop halts the cron loop and waits for a running poll to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Poll runs one scheduling pass: discover upcoming meetings for every
// connected account, then activate meetings that are due. Per-user and
// per-meeting failures are logged and skipped so one bad account cannot
// stall the rest.
func (s *Scheduler) Poll(ctx context.Context) {
	conns, err := s.store.ListConnections(ctx)
	if err != nil {
		log.Printf("[Scheduler] list connections: %v", err)
		return
	}
	for _, conn := range conns {
		if err := s.ingestUser(ctx, conn.UserID, core.MeetingProvider(conn.Provider)); err != nil {
			log.Printf("[Scheduler] ingest for user %s (%s): %v", conn.UserID, conn.Provider, err)
		}
	}
	s.activateDue(ctx, time.Now())
}

func (s *Scheduler) ingestUser(ctx context.Context, userID string, provider core.MeetingProvider) error {
	events, err := s.events.UpcomingEvents(ctx, userID, provider, s.lookahead)
	if err != nil {
		return fmt.Errorf("fetch events: %w", err)
	}
	for _, ev := range events {
		if _, found, err := s.store.FindMeetingByExternalID(ctx, ev.Provider, ev.ExternalID); err != nil {
			log.Printf("[Scheduler] dedupe lookup for event %s: %v", ev.ExternalID, err)
			continue
		} else if found {
			continue
		}
		meeting := core.Meeting{
			ID:         core.NewID(),
			OwnerID:    userID,
			Title:      ev.Title,
			Provider:   ev.Provider,
			ExternalID: ev.ExternalID,
			StartTime:  ev.Start,
			EndTime:    ev.End,
			Status:     core.StatusScheduled,
			CreatedAt:  time.Now(),
		}
		if err := s.store.CreateMeeting(ctx, meeting); err != nil {
			log.Printf("[Scheduler] create meeting for event %s: %v", ev.ExternalID, err)
			continue
		}
		if len(ev.Attendees) > 0 {
			if err := s.store.SaveAttendees(ctx, meeting.ID, ev.Attendees); err != nil {
				log.Printf("[Scheduler] save attendees for meeting %s: %v", meeting.ID, err)
			}
		}
		log.Printf("[Scheduler] scheduled meeting %s (%s) at %s", meeting.ID, meeting.Title, meeting.StartTime.Format(time.RFC3339))
	}
	return nil
}

func (s *Scheduler) activateDue(ctx context.Context, now time.Time) {
	due, err := s.store.ListMeetingsDueBy(ctx, now)
	if err != nil {
		log.Printf("[Scheduler] list due meetings: %v", err)
		return
	}
	for _, m := range due {
		if err := s.store.UpdateMeetingStatus(ctx, m.ID, core.StatusRecording); err != nil {
			log.Printf("[Scheduler] activate meeting %s: %v", m.ID, err)
			continue
		}
		log.Printf("[Scheduler] meeting %s is due, recording started", m.ID)
		if s.OnActivated != nil {
			m.Status = core.StatusRecording
			s.OnActivated(m)
		}
	}
}
