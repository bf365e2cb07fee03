package services

import (
	"fmt"
	"math"
	"os"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/webhook"

	"rentpay_portal/internal/models"
)

// StripeService wraps the Stripe API for rent collection. Card charges and
// ACH debits (us_bank_account) both flow through PaymentIntents.
type StripeService struct {
	webhookSecret string
}

// NewStripeService configures the global stripe client from the environment.
func NewStripeService() *StripeService {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	return &StripeService{
		webhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
	}
}

// ChargeRequest describes one payment attempt to open at Stripe.
type ChargeRequest struct {
	OrderID     string
	Amount      float64
	Method      models.PaymentMethod
	TenantEmail string
	Description string
	Metadata    map[string]string
}

// CreateIntent opens a PaymentIntent for the charge. ACH debits settle
// asynchronously, so their intents report "processing" until the webhook
// delivers the final status.
func (s *StripeService) CreateIntent(req ChargeRequest) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(toCents(req.Amount)),
		Currency:    stripe.String(string(stripe.CurrencyUSD)),
		Description: stripe.String(req.Description),
	}
	if req.TenantEmail != "" {
		params.ReceiptEmail = stripe.String(req.TenantEmail)
	}

	switch req.Method {
	case models.PaymentMethodACH:
		params.PaymentMethodTypes = stripe.StringSlice([]string{"us_bank_account"})
	default:
		params.PaymentMethodTypes = stripe.StringSlice([]string{"card"})
	}

	params.AddMetadata("order_id", req.OrderID)
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create intent: %w", err)
	}
	return intent, nil
}

// GetIntent fetches the current state of a PaymentIntent.
func (s *StripeService) GetIntent(id string) (*stripe.PaymentIntent, error) {
	intent, err := paymentintent.Get(id, nil)
	if err != nil {
		return nil, fmt.Errorf("stripe get intent: %w", err)
	}
	return intent, nil
}

// CancelIntent abandons a pending PaymentIntent.
func (s *StripeService) CancelIntent(id string) error {
	if _, err := paymentintent.Cancel(id, nil); err != nil {
		return fmt.Errorf("stripe cancel intent: %w", err)
	}
	return nil
}

// VerifyWebhook checks the Stripe-Signature header and parses the event.
func (s *StripeService) VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, s.webhookSecret)
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
