package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"

	"mentorhub-backend/internal/domain"
	"mentorhub-backend/internal/logger"
	"mentorhub-backend/internal/service"
)

// BillingWebhookHandler receives Stripe events and hands them to the
// renewal reconciler. Responses follow webhook retry semantics: 2xx
// acknowledges (including duplicates), 5xx asks Stripe to redeliver.
type BillingWebhookHandler struct {
	renewals      service.RenewalService
	webhookSecret string
}

func NewBillingWebhookHandler(renewals service.RenewalService, webhookSecret string) *BillingWebhookHandler {
	return &BillingWebhookHandler{
		renewals:      renewals,
		webhookSecret: webhookSecret,
	}
}

func (h *BillingWebhookHandler) HandleBillingWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<16))
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		logger.Warn("Rejected webhook with invalid signature", "error", err)
		http.Error(w, "Invalid signature", http.StatusBadRequest)
		return
	}

	billingEvent, err := mapStripeEvent(event)
	if err != nil {
		logger.Error("Failed to parse webhook event", "event_id", event.ID, "type", event.Type, "error", err)
		http.Error(w, "Malformed event", http.StatusBadRequest)
		return
	}
	if billingEvent == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	if _, err := h.renewals.HandleBillingEvent(r.Context(), billingEvent); err != nil {
		if errors.Is(err, domain.ErrUnavailable) {
			http.Error(w, "Temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		logger.Error("Failed to process billing event", "event_id", event.ID, "error", err)
		http.Error(w, "Processing failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// mapStripeEvent translates the Stripe event into the internal billing
// event. Unhandled event types map to nil, acknowledged without action.
func mapStripeEvent(event stripe.Event) (*domain.BillingEvent, error) {
	switch event.Type {
	case "invoice.payment_succeeded":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return nil, err
		}
		if invoice.Subscription == nil {
			return nil, nil
		}
		be := &domain.BillingEvent{
			EventID:        event.ID,
			Type:           domain.BillingEventRenewed,
			ExternalSubRef: invoice.Subscription.ID,
		}
		if invoice.BillingReason == stripe.InvoiceBillingReasonSubscriptionCreate {
			be.Type = domain.BillingEventActivated
		}
		if invoice.PaymentIntent != nil {
			be.PaymentRef = invoice.PaymentIntent.ID
		}
		if len(invoice.Lines.Data) > 0 {
			line := invoice.Lines.Data[0]
			if line.Period != nil {
				be.PeriodStart = time.Unix(line.Period.Start, 0).UTC()
				be.PeriodEnd = time.Unix(line.Period.End, 0).UTC()
			}
			if line.Price != nil {
				be.PlanRef = line.Price.ID
			}
		}
		return be, nil

	case "invoice.payment_failed":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return nil, err
		}
		if invoice.Subscription == nil {
			return nil, nil
		}
		return &domain.BillingEvent{
			EventID:        event.ID,
			Type:           domain.BillingEventPastDue,
			ExternalSubRef: invoice.Subscription.ID,
		}, nil

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, err
		}
		return &domain.BillingEvent{
			EventID:        event.ID,
			Type:           domain.BillingEventCancelled,
			ExternalSubRef: sub.ID,
		}, nil

	default:
		return nil, nil
	}
}

// RegisterBillingRoutes registers the webhook endpoint
func RegisterBillingRoutes(router *mux.Router, renewals service.RenewalService, webhookSecret string) {
	handler := NewBillingWebhookHandler(renewals, webhookSecret)
	router.HandleFunc("/api/v1/billing/webhook", handler.HandleBillingWebhook).Methods("POST")
}
