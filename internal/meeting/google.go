// Package meeting provisions Google Calendar events with Meet links for
// booked sessions. Provisioning is best effort: a session without a
// meeting link is retried by a background job.
package meeting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"mentorhub-backend/internal/config"
)

type GoogleProvider struct {
	svc         *calendar.Service
	calendarID  string
	mentorEmail string
}

func NewGoogleProvider(ctx context.Context, cfg config.MeetingConfig) (*GoogleProvider, error) {
	svc, err := calendar.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(calendar.CalendarEventsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}
	return &GoogleProvider{svc: svc, calendarID: calendarID, mentorEmail: cfg.MentorEmail}, nil
}

func (p *GoogleProvider) CreateMeeting(ctx context.Context, title, description string, start, end time.Time, attendeeEmail string) (string, string, error) {
	event := &calendar.Event{
		Summary:     title,
		Description: description,
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)},
		Attendees: []*calendar.EventAttendee{
			{Email: p.mentorEmail},
			{Email: attendeeEmail},
		},
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		},
	}

	created, err := p.svc.Events.Insert(p.calendarID, event).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return "", "", fmt.Errorf("failed to create calendar event: %w", err)
	}
	return created.Id, created.HangoutLink, nil
}

func (p *GoogleProvider) DeleteMeeting(ctx context.Context, eventID string) error {
	err := p.svc.Events.Delete(p.calendarID, eventID).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to delete calendar event %s: %w", eventID, err)
	}
	return nil
}
