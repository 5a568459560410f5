package booking

import (
	"time"

	"mentorhub-backend/internal/calendar"
	"mentorhub-backend/internal/domain"
)

// SlotReason is the single disqualifying reason attached to an
// unavailable slot, in priority order.
type SlotReason string

const (
	SlotReasonNone              SlotReason = ""
	SlotReasonPast              SlotReason = "PAST"
	SlotReasonMentorBlocked     SlotReason = "MENTOR_BLOCKED"
	SlotReasonWeekendRestricted SlotReason = "WEEKEND_RESTRICTED"
	SlotReasonTaken             SlotReason = "ALREADY_BOOKED"
	SlotReasonAtCapacity        SlotReason = "AT_CAPACITY"
	SlotReasonUserConflict      SlotReason = "USER_CONFLICT"
)

// Slot is one bookable hour on the public availability grid
type Slot struct {
	Hour      int        `json:"hour"`
	StartsAt  time.Time  `json:"starts_at"`
	Available bool       `json:"available"`
	Reason    SlotReason `json:"reason,omitempty"`
}

// DaySchedule is the availability grid for one local calendar date
type DaySchedule struct {
	Date        string `json:"date"`
	Weekend     bool   `json:"weekend"`
	Blocked     bool   `json:"blocked"`
	BookedCount int32  `json:"booked_count"`
	Capacity    int32  `json:"capacity"`
	Slots       []Slot `json:"slots"`
}

// ScheduleState is the read-only snapshot the grid is projected from
type ScheduleState struct {
	Blocks []domain.MentorBlock
	// TakenSlots holds the unix seconds of slot instants already holding
	// a SCHEDULED session; unix keys avoid location-sensitive time.Time
	// map comparisons.
	TakenSlots    map[int64]bool
	MentorCounts  map[string]int32 // local date -> mentor's SCHEDULED count
	UserDates     map[string]bool  // local dates with the user's SCHEDULED/COMPLETED sessions
	UserWeekendOK bool             // plan weekend access or active pack
}

// BuildSchedule produces the availability grid for the booking window:
// one DaySchedule per local date from tomorrow through bookingWindowDays
// ahead. It applies the same rule set as Validate so a slot shown as
// available never fails validation under benign concurrency.
func BuildSchedule(cal *calendar.Calendar, now time.Time, cfg domain.MentorConfig, grid Grid, state ScheduleState) ([]DaySchedule, error) {
	today := cal.LocalDate(now)
	days := make([]DaySchedule, 0, cfg.BookingWindowDays)

	for i := 1; i <= int(cfg.BookingWindowDays); i++ {
		date, err := cal.AddDays(today, i)
		if err != nil {
			return nil, err
		}
		weekend, err := cal.IsWeekendDate(date)
		if err != nil {
			return nil, err
		}

		blocked := false
		for _, b := range state.Blocks {
			if b.Covers(date) {
				blocked = true
				break
			}
		}

		day := DaySchedule{
			Date:        date,
			Weekend:     weekend,
			Blocked:     blocked,
			BookedCount: state.MentorCounts[date],
			Capacity:    cfg.MaxSessionsPerDay,
		}

		for hour := grid.FirstHour; hour <= grid.LastHour; hour++ {
			startsAt, err := cal.SlotInstant(date, hour)
			if err != nil {
				return nil, err
			}
			slot := Slot{Hour: hour, StartsAt: startsAt}
			slot.Reason = slotReason(now, startsAt, day, weekend, state)
			slot.Available = slot.Reason == SlotReasonNone
			day.Slots = append(day.Slots, slot)
		}

		days = append(days, day)
	}

	return days, nil
}

func slotReason(now, startsAt time.Time, day DaySchedule, weekend bool, state ScheduleState) SlotReason {
	switch {
	case !startsAt.After(now):
		return SlotReasonPast
	case day.Blocked:
		return SlotReasonMentorBlocked
	case weekend && !state.UserWeekendOK:
		return SlotReasonWeekendRestricted
	case state.TakenSlots[startsAt.Unix()]:
		return SlotReasonTaken
	case day.BookedCount >= day.Capacity:
		return SlotReasonAtCapacity
	case state.UserDates[day.Date]:
		return SlotReasonUserConflict
	}
	return SlotReasonNone
}
