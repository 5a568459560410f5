package domain

type PlanPeriod string

const (
	PlanPeriodWeekly  PlanPeriod = "WEEKLY"
	PlanPeriodMonthly PlanPeriod = "MONTHLY"
)

// Plan is a catalog entry referenced by subscriptions. Treated as
// immutable once subscriptions point at it.
type Plan struct {
	ID                int32      `json:"id"`
	Name              string     `json:"name"`
	SessionsPerPeriod int32      `json:"sessions_per_period"`
	Period            PlanPeriod `json:"period"`
	WeekendAccess     bool       `json:"weekend_access"`
	PriceCents        int32      `json:"price_cents"`
	ExternalPriceRef  string     `json:"external_price_ref"`
}
