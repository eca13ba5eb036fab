package payments

import (
	"context"
	"errors"
	"log/slog"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// Init binds the processor secret key once at startup; the stripe SDK keeps
// it as process-wide read-only configuration shared by every request.
func Init(secretKey string) {
	stripe.Key = secretKey
}

type Client struct {
	log *slog.Logger
}

func NewClient(log *slog.Logger) *Client {
	return &Client{log: log}
}

func (c *Client) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Description: stripe.String(buildDescription(req)),
	}
	params.Context = ctx
	for k, v := range buildMetadata(req) {
		params.AddMetadata(k, v)
	}
	if req.Email != "" {
		params.ReceiptEmail = stripe.String(req.Email)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}

	c.log.Info("payment intent created", slog.String("intent_id", pi.ID))
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}

// ConfirmCard confirms a pending intent with a tokenized payment method.
// Processor card rejections come back as *CardError; anything else is an
// upstream failure.
func (c *Client) ConfirmCard(ctx context.Context, clientSecret, paymentMethodID string, billing BillingDetails) (*Intent, error) {
	if clientSecret == "" {
		return nil, errors.New("missing client secret")
	}

	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(paymentMethodID),
	}
	params.Context = ctx
	if billing.Email != "" {
		params.ReceiptEmail = stripe.String(billing.Email)
	}

	pi, err := paymentintent.Confirm(IntentIDFromSecret(clientSecret), params)
	if err != nil {
		return nil, asCardError(err)
	}

	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}
