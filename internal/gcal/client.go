// Package gcal wraps the Google Calendar API for per-user stored credentials.
package gcal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/aryanma11ick/Neura/internal/database"
)

const primaryCalendar = "primary"

// Event is a read-only view of an existing calendar event.
type Event struct {
	ID          string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	MeetLink    string
}

// EventInput describes a new event to insert.
type EventInput struct {
	Title        string
	Description  string
	Start        time.Time
	End          time.Time
	Attendees    []string
	WantMeetLink bool
}

// CreatedEvent is the backend's answer to an insert.
type CreatedEvent struct {
	ID       string
	MeetLink string
}

// EventPatch carries only the fields an update wants to change.
type EventPatch struct {
	NewStart    *time.Time
	NewEnd      *time.Time
	Description string
}

// Client calls the Calendar API on behalf of whichever user's credential it
// is handed. It holds no per-user state itself.
type Client struct {
	config   *oauth2.Config
	timezone string
	loc      *time.Location
	timeout  time.Duration
	logger   *zap.Logger
}

func NewClient(config *oauth2.Config, timezone string, loc *time.Location, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		config:   config,
		timezone: timezone,
		loc:      loc,
		timeout:  timeout,
		logger:   logger,
	}
}

// bound applies the client's per-call timeout.
func (c *Client) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// Refresh exchanges an expired access token for a fresh one. Returns the
// (possibly unchanged) credential and whether it changed; callers persist
// changed credentials back to the store.
func (c *Client) Refresh(ctx context.Context, cred *database.Credential) (*database.Credential, bool, error) {
	token := tokenFromCredential(cred)
	if token.Expiry.IsZero() || time.Until(token.Expiry) > expiryLeeway {
		return cred, false, nil
	}
	if token.RefreshToken == "" {
		return nil, false, fmt.Errorf("token expired and no refresh token stored")
	}

	ctx, cancel := c.bound(ctx)
	defer cancel()

	fresh, err := c.config.TokenSource(ctx, token).Token()
	if err != nil {
		return nil, false, fmt.Errorf("failed to refresh token: %w", err)
	}
	if fresh.AccessToken == cred.AccessToken {
		return cred, false, nil
	}

	updated := *cred
	updated.AccessToken = fresh.AccessToken
	if fresh.RefreshToken != "" {
		updated.RefreshToken = fresh.RefreshToken
	}
	updated.Expiry = fresh.Expiry
	return &updated, true, nil
}

func (c *Client) service(ctx context.Context, cred *database.Credential) (*calendar.Service, error) {
	ts := c.config.TokenSource(ctx, tokenFromCredential(cred))
	svc, err := calendar.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return svc, nil
}

// ListRange returns non-cancelled events between timeMin and timeMax, ordered
// by start time.
func (c *Client) ListRange(ctx context.Context, cred *database.Credential, timeMin, timeMax time.Time) ([]Event, error) {
	if timeMax.Before(timeMin) {
		return nil, fmt.Errorf("invalid range: time_max is before time_min")
	}

	ctx, cancel := c.bound(ctx)
	defer cancel()

	svc, err := c.service(ctx, cred)
	if err != nil {
		return nil, err
	}

	var result []Event
	pageToken := ""
	for {
		call := svc.Events.List(primaryCalendar).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			SingleEvents(true).
			ShowDeleted(false).
			OrderBy("startTime").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		events, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list events: %w", err)
		}

		for _, item := range events.Items {
			if item == nil || item.Status == "cancelled" {
				continue
			}
			start, end, err := parseEventTimes(item, c.loc)
			if err != nil {
				// Skip malformed events rather than failing the whole request.
				continue
			}
			result = append(result, Event{
				ID:          item.Id,
				Title:       item.Summary,
				Description: item.Description,
				Start:       start,
				End:         end,
				MeetLink:    meetLinkFromEvent(item),
			})
		}

		if events.NextPageToken == "" {
			break
		}
		pageToken = events.NextPageToken
	}

	return result, nil
}

// Insert creates a new event, attaching a Meet link when requested.
func (c *Client) Insert(ctx context.Context, cred *database.Credential, input EventInput) (*CreatedEvent, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	svc, err := c.service(ctx, cred)
	if err != nil {
		return nil, err
	}

	event := &calendar.Event{
		Summary:     input.Title,
		Description: input.Description,
		Start: &calendar.EventDateTime{
			DateTime: input.Start.Format(time.RFC3339),
			TimeZone: c.timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: input.End.Format(time.RFC3339),
			TimeZone: c.timezone,
		},
	}

	for _, email := range input.Attendees {
		if strings.Contains(email, "@") {
			event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
		}
	}

	conferenceVersion := int64(0)
	if input.WantMeetLink {
		conferenceVersion = 1
		event.ConferenceData = &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: "meet-" + uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		}
	}

	created, err := svc.Events.Insert(primaryCalendar, event).
		ConferenceDataVersion(conferenceVersion).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	c.logger.Info("calendar event created",
		zap.String("event_id", created.Id),
		zap.String("title", input.Title))

	return &CreatedEvent{
		ID:       created.Id,
		MeetLink: meetLinkFromEvent(created),
	}, nil
}

// Update patches only the fields set on patch, leaving everything else as the
// backend has it.
func (c *Client) Update(ctx context.Context, cred *database.Credential, eventID string, patch EventPatch) error {
	if eventID == "" {
		return fmt.Errorf("event id is required")
	}

	ctx, cancel := c.bound(ctx)
	defer cancel()

	svc, err := c.service(ctx, cred)
	if err != nil {
		return err
	}

	event := &calendar.Event{}
	if patch.NewStart != nil {
		event.Start = &calendar.EventDateTime{
			DateTime: patch.NewStart.Format(time.RFC3339),
			TimeZone: c.timezone,
		}
	}
	if patch.NewEnd != nil {
		event.End = &calendar.EventDateTime{
			DateTime: patch.NewEnd.Format(time.RFC3339),
			TimeZone: c.timezone,
		}
	}
	if patch.Description != "" {
		event.Description = patch.Description
	}

	if _, err := svc.Events.Patch(primaryCalendar, eventID, event).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	c.logger.Info("calendar event updated", zap.String("event_id", eventID))
	return nil
}

func parseEventTimes(item *calendar.Event, loc *time.Location) (time.Time, time.Time, error) {
	if item.Start == nil || item.End == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("event is missing start or end")
	}

	// All-day events use Date instead of DateTime.
	if item.Start.Date != "" {
		start, err := time.ParseInLocation("2006-01-02", item.Start.Date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("failed to parse all-day start: %w", err)
		}
		end, err := time.ParseInLocation("2006-01-02", item.End.Date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("failed to parse all-day end: %w", err)
		}
		return start, end, nil
	}

	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to parse start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to parse end: %w", err)
	}
	return start.In(loc), end.In(loc), nil
}

// meetLinkFromEvent digs the Meet URL out of an event. Workspace policies
// sometimes omit HangoutLink while still populating conference entry points.
func meetLinkFromEvent(item *calendar.Event) string {
	if item == nil {
		return ""
	}
	if item.HangoutLink != "" {
		return item.HangoutLink
	}
	conf := item.ConferenceData
	if conf == nil {
		return ""
	}
	for _, ep := range conf.EntryPoints {
		if ep != nil && strings.Contains(ep.Uri, "meet.google.com") {
			return ep.Uri
		}
	}
	if conf.ConferenceId != "" {
		return "https://meet.google.com/" + conf.ConferenceId
	}
	return ""
}
