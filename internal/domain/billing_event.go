package domain

import "time"

type BillingEventType string

const (
	BillingEventRenewed   BillingEventType = "RENEWED"
	BillingEventActivated BillingEventType = "ACTIVATED"
	BillingEventCancelled BillingEventType = "CANCELLED"
	BillingEventPastDue   BillingEventType = "PAST_DUE"
)

// BillingEvent is a billing-provider notification keyed by the provider's
// stable event identity. Events arrive at least once; the processed-event
// marker deduplicates them before any state change.
type BillingEvent struct {
	EventID        string           `json:"event_id"`
	Type           BillingEventType `json:"type"`
	ExternalSubRef string           `json:"external_sub_ref"`
	PlanRef        string           `json:"plan_ref"`
	PaymentRef     string           `json:"payment_ref"`
	PeriodStart    time.Time        `json:"period_start"`
	PeriodEnd      time.Time        `json:"period_end"`
	ReceivedOn     time.Time        `json:"received_on"`
}
