package domain

import "time"

// MentorBlock is a mentor-declared unavailable date range, inclusive on
// both ends, expressed as local calendar dates in the operating timezone.
type MentorBlock struct {
	ID            int32     `json:"id"`
	StartDate     string    `json:"start_date"` // "2006-01-02"
	EndDate       string    `json:"end_date"`   // "2006-01-02"
	Reason        string    `json:"reason"`
	UsersNotified bool      `json:"users_notified"`
	CreatedOn     time.Time `json:"created_on"`
}

// Covers reports whether a local calendar date falls inside the block.
// ISO dates compare lexicographically.
func (b *MentorBlock) Covers(localDate string) bool {
	return localDate >= b.StartDate && localDate <= b.EndDate
}
