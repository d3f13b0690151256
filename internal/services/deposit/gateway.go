package deposit

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/paymentintent"
)

// stripeGateway charges cards through Stripe PaymentIntents with manual
// confirmation, so 3-D Secure challenges surface as requires_action instead
// of failing the charge.
type stripeGateway struct{}

// NewStripeGateway configures the Stripe client and returns a Gateway backed
// by it.
func NewStripeGateway(secretKey string) Gateway {
	stripe.Key = secretKey
	return &stripeGateway{}
}

func (g *stripeGateway) Charge(ctx context.Context, amountInCents int64, currency, paymentMethodID string) (*ChargeResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountInCents),
		Currency:           stripe.String(currency),
		PaymentMethod:      stripe.String(paymentMethodID),
		ConfirmationMethod: stripe.String(string(stripe.PaymentIntentConfirmationMethodManual)),
		Confirm:            stripe.Bool(true),
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return &ChargeResult{Status: ChargeRejected}, nil
		}
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return &ChargeResult{Status: ChargeSucceeded, Reference: intent.ID}, nil
	case stripe.PaymentIntentStatusRequiresAction:
		return &ChargeResult{
			Status:      ChargeRequiresAction,
			Reference:   intent.ID,
			ActionToken: intent.ClientSecret,
		}, nil
	default:
		return &ChargeResult{Status: ChargeRejected, Reference: intent.ID}, nil
	}
}
