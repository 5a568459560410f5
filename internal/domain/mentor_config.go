package domain

// MentorConfig is the singleton mentor-wide configuration row. It is
// loaded once per request/transaction and passed explicitly into the
// booking rules, never read as ambient state.
type MentorConfig struct {
	MaxSessionsPerDay       int32 `json:"max_sessions_per_day"`
	BookingWindowDays       int32 `json:"booking_window_days"`
	CancellationNoticeHours int32 `json:"cancellation_notice_hours"`
}
