package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"meetScribe/core"
)

// CalendarEvent is one scheduled meeting discovered from a provider.
type CalendarEvent struct {
	ExternalID string
	Title      string
	Start      time.Time
	End        time.Time
	Attendees  []core.Attendee
	Provider   core.MeetingProvider
}

// UpcomingEvents lists the provider's scheduled meetings starting inside
// [now, now+window] for the given user.
func (m *OAuthManager) UpcomingEvents(ctx context.Context, userID string, provider core.MeetingProvider, window time.Duration) ([]CalendarEvent, error) {
	cli, err := m.Client(ctx, userID, provider)
	if err != nil {
		return nil, err
	}
	switch provider {
	case core.ProviderGoogle:
		return fetchGoogleEvents(ctx, cli, window)
	case core.ProviderZoom:
		return fetchZoomMeetings(ctx, cli, window)
	}
	return nil, fmt.Errorf("unknown provider %s", provider)
}

func fetchGoogleEvents(ctx context.Context, cli *http.Client, window time.Duration) ([]CalendarEvent, error) {
	now := time.Now().UTC()
	q := url.Values{}
	q.Set("timeMin", now.Format(time.RFC3339))
	q.Set("timeMax", now.Add(window).Format(time.RFC3339))
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")

	endpoint := "https://www.googleapis.com/calendar/v3/calendars/primary/events?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := cli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar request returned %s", resp.Status)
	}

	var body struct {
		Items []struct {
			ID      string `json:"id"`
			Summary string `json:"summary"`
			Start   struct {
				DateTime time.Time `json:"dateTime"`
			} `json:"start"`
			End struct {
				DateTime time.Time `json:"dateTime"`
			} `json:"end"`
			Attendees []struct {
				Email       string `json:"email"`
				DisplayName string `json:"displayName"`
			} `json:"attendees"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode calendar response: %w", err)
	}

	events := make([]CalendarEvent, 0, len(body.Items))
	for _, it := range body.Items {
		if it.Start.DateTime.IsZero() {
			// All-day events carry only a date; those are never recorded.
			continue
		}
		ev := CalendarEvent{
			ExternalID: it.ID,
			Title:      it.Summary,
			Start:      it.Start.DateTime,
			End:        it.End.DateTime,
			Provider:   core.ProviderGoogle,
		}
		for _, a := range it.Attendees {
			ev.Attendees = append(ev.Attendees, core.Attendee{Name: a.DisplayName, Email: a.Email})
		}
		events = append(events, ev)
	}
	return events, nil
}

func fetchZoomMeetings(ctx context.Context, cli *http.Client, window time.Duration) ([]CalendarEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://api.zoom.us/v2/users/me/meetings?type=upcoming", nil)
	if err != nil {
		return nil, err
	}
	resp, err := cli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zoom request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("zoom request returned %s", resp.Status)
	}

	var body struct {
		Meetings []struct {
			ID        int64     `json:"id"`
			Topic     string    `json:"topic"`
			StartTime time.Time `json:"start_time"`
			Duration  int       `json:"duration"` // minutes
		} `json:"meetings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode zoom response: %w", err)
	}

	cutoff := time.Now().Add(window)
	events := make([]CalendarEvent, 0, len(body.Meetings))
	for _, mt := range body.Meetings {
		if mt.StartTime.After(cutoff) {
			continue
		}
		events = append(events, CalendarEvent{
			ExternalID: fmt.Sprintf("%d", mt.ID),
			Title:      mt.Topic,
			Start:      mt.StartTime,
			End:        mt.StartTime.Add(time.Duration(mt.Duration) * time.Minute),
			Provider:   core.ProviderZoom,
		})
	}
	return events, nil
}
