// Package billing adapts the Stripe API to the billing capability the
// services depend on. Subscription state changes flow back through
// webhooks; this package only issues outbound calls.
package billing

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"

	"mentorhub-backend/internal/config"
)

type StripeProvider struct {
	sc *client.API
}

func NewStripeProvider(cfg config.StripeConfig) *StripeProvider {
	sc := &client.API{}
	sc.Init(cfg.SecretKey, nil)
	return &StripeProvider{sc: sc}
}

func (p *StripeProvider) CreateSubscription(ctx context.Context, planExternalRef string, metadata map[string]string) (string, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(metadata["customer_id"]),
		Items: []*stripe.SubscriptionItemsParams{{
			Price: stripe.String(planExternalRef),
		}},
	}
	params.Context = ctx
	for k, v := range metadata {
		if k == "customer_id" {
			continue
		}
		params.AddMetadata(k, v)
	}
	sub, err := p.sc.Subscriptions.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe subscription create failed: %w", err)
	}
	return sub.ID, nil
}

func (p *StripeProvider) CancelSubscription(ctx context.Context, externalID string) error {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	if _, err := p.sc.Subscriptions.Cancel(externalID, params); err != nil {
		return fmt.Errorf("stripe subscription cancel failed for %s: %w", externalID, err)
	}
	return nil
}

func (p *StripeProvider) Refund(ctx context.Context, paymentRef string, amountCents int64) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentRef),
	}
	if amountCents > 0 {
		params.Amount = stripe.Int64(amountCents)
	}
	params.Context = ctx
	if _, err := p.sc.Refunds.New(params); err != nil {
		return fmt.Errorf("stripe refund failed for %s: %w", paymentRef, err)
	}
	return nil
}
