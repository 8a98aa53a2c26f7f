package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"vitrine_backend/platform/logger"
)

const googleBaseURL = "https://www.googleapis.com/calendar/v3"

// GoogleClient talks to the Google Calendar REST API (freebusy + events).
type GoogleClient struct {
	httpClient *http.Client
	calendarID string
	token      string
	log        *logger.Logger
}

// NewGoogleClient creates a client for the given calendar, authenticating
// with a bearer token.
func NewGoogleClient(calendarID, token string, log *logger.Logger) *GoogleClient {
	return &GoogleClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		calendarID: calendarID,
		token:      token,
		log:        log,
	}
}

type freeBusyRequest struct {
	TimeMin string         `json:"timeMin"`
	TimeMax string         `json:"timeMax"`
	Items   []freeBusyItem `json:"items"`
}

type freeBusyItem struct {
	ID string `json:"id"`
}

type freeBusyResponse struct {
	Calendars map[string]struct {
		Busy []struct {
			Start time.Time `json:"start"`
			End   time.Time `json:"end"`
		} `json:"busy"`
	} `json:"calendars"`
}

// BusyIntervals queries the freebusy endpoint for the given day window.
func (c *GoogleClient) BusyIntervals(ctx context.Context, dayStart, dayEnd time.Time) ([]Interval, error) {
	payload := freeBusyRequest{
		TimeMin: dayStart.Format(time.RFC3339),
		TimeMax: dayEnd.Format(time.RFC3339),
		Items:   []freeBusyItem{{ID: c.calendarID}},
	}

	var decoded freeBusyResponse
	if err := c.doJSON(ctx, http.MethodPost, googleBaseURL+"/freeBusy", payload, &decoded); err != nil {
		return nil, fmt.Errorf("freebusy query: %w", err)
	}

	busy := decoded.Calendars[c.calendarID].Busy
	intervals := make([]Interval, 0, len(busy))
	for _, b := range busy {
		intervals = append(intervals, Interval{Start: b.Start, End: b.End})
	}
	return intervals, nil
}

type eventRequest struct {
	Summary     string          `json:"summary"`
	Description string          `json:"description,omitempty"`
	Start       eventDateTime   `json:"start"`
	End         eventDateTime   `json:"end"`
	Attendees   []eventAttendee `json:"attendees,omitempty"`
	Location    string          `json:"location,omitempty"`
}

type eventDateTime struct {
	DateTime string `json:"dateTime"`
}

type eventAttendee struct {
	Email string `json:"email"`
}

type eventResponse struct {
	ID          string `json:"id"`
	HangoutLink string `json:"hangoutLink"`
}

// CreateEvent inserts an event on the configured calendar. The meeting link is
// carried in the event location so it survives providers without native
// conferencing support.
func (c *GoogleClient) CreateEvent(ctx context.Context, input EventInput) (*CreatedEvent, error) {
	payload := eventRequest{
		Summary:     input.Summary,
		Description: input.Description,
		Start:       eventDateTime{DateTime: input.Start.Format(time.RFC3339)},
		End:         eventDateTime{DateTime: input.End.Format(time.RFC3339)},
		Location:    input.MeetingLink,
	}
	if input.Attendee != "" {
		payload.Attendees = []eventAttendee{{Email: input.Attendee}}
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events", googleBaseURL, url.PathEscape(c.calendarID))

	var decoded eventResponse
	if err := c.doJSON(ctx, http.MethodPost, endpoint, payload, &decoded); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	link := input.MeetingLink
	if decoded.HangoutLink != "" {
		link = decoded.HangoutLink
	}

	return &CreatedEvent{EventID: decoded.ID, MeetingLink: link}, nil
}

func (c *GoogleClient) doJSON(ctx context.Context, method, endpoint string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("calendar request failed", "error", err, "endpoint", endpoint)
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Error("calendar upstream error", "status", resp.StatusCode, "endpoint", endpoint)
		return fmt.Errorf("upstream error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var _ Provider = (*GoogleClient)(nil)
