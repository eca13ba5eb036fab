// Package checkout drives the client side of a card payment: collect the
// booking fields, obtain a payment-intent secret from the API, confirm the
// card against the processor, and fire a single best-effort notification on
// success. Card data itself never passes through this package or the server;
// the flow only ever handles an opaque payment-method token.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anyamrt/movement-based-training/internal/payments"
	"github.com/anyamrt/movement-based-training/internal/schedule"
	"github.com/anyamrt/movement-based-training/internal/validation"
)

const (
	StateCollectingFields = "collecting_fields"
	StateAwaitingSecret   = "awaiting_secret"
	StateCollectingCard   = "collecting_card"
	StateConfirming       = "confirming"
	StateSucceeded        = "succeeded"
	StateFailed           = "failed"
)

const (
	// The fixed one-off session sold from the payment modal: $95.00.
	SingleSessionAmount int64 = 9500
	SingleSessionName         = "Single Session (45 min)"

	PaymentSuccessDismiss = 3 * time.Second
	FormSuccessDismiss    = 2 * time.Second
)

var (
	ErrFieldValidation = errors.New("field validation failed")
	ErrBusy            = errors.New("a request is already in flight")
	ErrInvalidState    = errors.New("operation not valid in current state")
)

// cardErrorMessages maps processor card-error codes to the copy shown to the
// customer. Unknown codes fall back to a generic retry message.
var cardErrorMessages = map[string]string{
	"card_declined":      "Card declined. Please try another card.",
	"insufficient_funds": "Insufficient funds. Please use another card.",
	"expired_card":       "Card expired. Please check the expiration date.",
	"incorrect_cvc":      "Incorrect security code. Please try again.",
	"processing_error":   "Payment processing error. Please try again.",
}

const genericCardErrorMessage = "Payment failed. Please try again."

func CardErrorMessage(code string) string {
	if msg, ok := cardErrorMessages[code]; ok {
		return msg
	}
	return genericCardErrorMessage
}

// FormatAmount renders minor currency units as a decimal string: 9500 -> "95.00".
func FormatAmount(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}

type Fields struct {
	Name           string
	Phone          string
	Email          string
	PreferredTimes string
	Goals          string
	SessionDate    string
}

// Service is the offering the customer is paying for; Amount is the price
// the UI displayed, in minor units.
type Service struct {
	Name   string
	Type   string
	Amount int64
}

type IntentRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	SessionDate    string `json:"sessionDate,omitempty"`
	PreferredTimes string `json:"preferredTimes,omitempty"`
	Goals          string `json:"goals,omitempty"`
	Amount         int64  `json:"amount"`
	ServiceName    string `json:"serviceName,omitempty"`
	ServiceType    string `json:"serviceType,omitempty"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

type IntentResult struct {
	ClientSecret    string
	PaymentIntentID string
}

type IntentAPI interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*IntentResult, error)
}

type BookingNotification struct {
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	PreferredTimes  string `json:"preferredTimes"`
	Goals           string `json:"goals,omitempty"`
	ServiceName     string `json:"serviceName,omitempty"`
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
	AmountPaid      string `json:"amountPaid,omitempty"`
	Timestamp       string `json:"timestamp"`
}

type Notifier interface {
	SendBookingNotification(ctx context.Context, n BookingNotification) error
}

type Deps struct {
	Intents IntentAPI
	Cards   payments.CardConfirmer
	Notify  Notifier
	Log     *slog.Logger
	Loc     *time.Location
	Now     func() time.Time
}

type Flow struct {
	deps    Deps
	service Service

	requireContact        bool
	requirePreferredTimes bool
	requireSessionDate    bool
	dismissAfter          time.Duration

	state          string
	busy           bool
	fields         Fields
	fieldErrors    map[string]string
	errMsg         string
	idempotencyKey string
	clientSecret   string
	intentID       string
	notified       bool
}

func newFlow(deps Deps, svc Service) *Flow {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	if deps.Loc == nil {
		deps.Loc = time.Local
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Flow{
		deps:    deps,
		service: svc,
		state:   StateCollectingFields,
		// One key per form session: a double-click or retry re-sends the
		// same key, so the processor collapses duplicates to one charge.
		idempotencyKey: uuid.NewString(),
	}
}

// NewBookingFlow is the entry point for paid service bookings: full contact
// details and preferred training times are required, price comes from the
// selected service.
func NewBookingFlow(deps Deps, svc Service) *Flow {
	f := newFlow(deps, svc)
	f.requireContact = true
	f.requirePreferredTimes = true
	f.dismissAfter = FormSuccessDismiss
	return f
}

// NewSessionPaymentFlow is the entry point for the fixed single-session
// payment modal: a name and a future session date are required, phone and
// email are optional but needed for the studio to receive a booking email.
func NewSessionPaymentFlow(deps Deps) *Flow {
	f := newFlow(deps, Service{
		Name:   SingleSessionName,
		Type:   "single-session",
		Amount: SingleSessionAmount,
	})
	f.requireSessionDate = true
	f.dismissAfter = PaymentSuccessDismiss
	return f
}

func (f *Flow) State() string { return f.state }

func (f *Flow) FieldErrors() map[string]string { return f.fieldErrors }

func (f *Flow) ErrorMessage() string { return f.errMsg }

func (f *Flow) PaymentIntentID() string { return f.intentID }

func (f *Flow) IdempotencyKey() string { return f.idempotencyKey }

// AmountDisplay is the price shown next to the pay button, e.g. "95.00".
func (f *Flow) AmountDisplay() string { return FormatAmount(f.service.Amount) }

// DismissAfter is how long the success view stays up before auto-closing.
func (f *Flow) DismissAfter() time.Duration { return f.dismissAfter }

func (f *Flow) validateFields(fields Fields) map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(fields.Name) == "" {
		errs["name"] = "Name is required"
	}
	if f.requireContact {
		if strings.TrimSpace(fields.Phone) == "" {
			errs["phone"] = "Phone number is required"
		}
		if strings.TrimSpace(fields.Email) == "" {
			errs["email"] = "Email is required"
		} else if !validation.IsEmail(fields.Email) {
			errs["email"] = "Please enter a valid email address"
		}
	} else if fields.Email != "" && !validation.IsEmail(fields.Email) {
		errs["email"] = "Please enter a valid email address"
	}
	if f.requirePreferredTimes && strings.TrimSpace(fields.PreferredTimes) == "" {
		errs["preferredTimes"] = "Preferred training times are required"
	}
	if f.requireSessionDate && fields.SessionDate == "" {
		errs["sessionDate"] = "Session date is required"
	}
	if fields.SessionDate != "" {
		past, err := schedule.IsDatePast(fields.SessionDate, f.deps.Loc, f.deps.Now())
		if err != nil {
			errs["sessionDate"] = "Please select a valid date"
		} else if past {
			errs["sessionDate"] = "Please select a future date"
		}
	}

	return errs
}

// SubmitFields validates the collected fields and requests a payment intent.
// On success the flow holds the client secret and waits for card input; on
// failure the fields stay editable and the customer may resubmit.
func (f *Flow) SubmitFields(ctx context.Context, fields Fields) error {
	if f.busy {
		return ErrBusy
	}
	if f.state != StateCollectingFields && !(f.state == StateFailed && f.clientSecret == "") {
		return ErrInvalidState
	}

	f.fieldErrors = f.validateFields(fields)
	if len(f.fieldErrors) > 0 {
		f.state = StateCollectingFields
		return ErrFieldValidation
	}

	f.fields = fields
	f.errMsg = ""
	f.busy = true
	f.state = StateAwaitingSecret

	res, err := f.deps.Intents.CreateIntent(ctx, IntentRequest{
		Name:           fields.Name,
		Email:          fields.Email,
		Phone:          fields.Phone,
		SessionDate:    fields.SessionDate,
		PreferredTimes: fields.PreferredTimes,
		Goals:          fields.Goals,
		Amount:         f.service.Amount,
		ServiceName:    f.service.Name,
		ServiceType:    f.service.Type,
		IdempotencyKey: f.idempotencyKey,
	})
	f.busy = false
	if err != nil {
		f.state = StateFailed
		f.errMsg = err.Error()
		return err
	}

	f.clientSecret = res.ClientSecret
	f.intentID = res.PaymentIntentID
	f.state = StateCollectingCard
	return nil
}

// SubmitCard confirms the pending intent with a tokenized payment method.
// The card step is only reachable once a secret is held; after a card
// failure the customer retries with another card, personal fields intact.
func (f *Flow) SubmitCard(ctx context.Context, paymentMethodID string) error {
	if f.busy {
		return ErrBusy
	}
	if f.state == StateSucceeded {
		return ErrInvalidState
	}
	if f.state != StateCollectingCard && !(f.state == StateFailed && f.clientSecret != "") {
		return ErrInvalidState
	}

	f.errMsg = ""
	f.busy = true
	f.state = StateConfirming

	intent, err := f.deps.Cards.ConfirmCard(ctx, f.clientSecret, paymentMethodID, payments.BillingDetails{
		Name:  f.fields.Name,
		Email: f.fields.Email,
		Phone: f.fields.Phone,
	})
	f.busy = false
	if err != nil {
		f.state = StateFailed
		var cardErr *payments.CardError
		if errors.As(err, &cardErr) {
			f.errMsg = CardErrorMessage(cardErr.Code)
		} else {
			f.errMsg = "An unexpected error occurred. Please try again."
		}
		return err
	}

	if intent.Status != payments.StatusSucceeded {
		f.state = StateFailed
		f.errMsg = genericCardErrorMessage
		return fmt.Errorf("unexpected intent status %q", intent.Status)
	}

	if !f.notified {
		f.notified = true
		f.sendSuccessNotification(ctx)
	}
	f.state = StateSucceeded
	return nil
}

// sendSuccessNotification is best-effort: a failed send is logged and
// swallowed, never downgrading a successful payment. The notification
// endpoint requires a reply-to contact, so a payment submitted without
// phone and email is logged as skipped rather than sent to certain
// rejection.
func (f *Flow) sendSuccessNotification(ctx context.Context) {
	if f.deps.Notify == nil {
		return
	}
	if f.fields.Phone == "" || f.fields.Email == "" {
		f.deps.Log.Info("booking notification skipped, no contact details",
			slog.String("intent_id", f.intentID),
		)
		return
	}
	preferred := f.fields.PreferredTimes
	if preferred == "" && f.fields.SessionDate != "" {
		preferred = "Session on " + f.fields.SessionDate
	}
	n := BookingNotification{
		Name:            f.fields.Name,
		Phone:           f.fields.Phone,
		Email:           f.fields.Email,
		PreferredTimes:  preferred,
		Goals:           f.fields.Goals,
		ServiceName:     f.service.Name,
		PaymentIntentID: f.intentID,
		AmountPaid:      FormatAmount(f.service.Amount),
		Timestamp:       f.deps.Now().Format(time.RFC3339),
	}
	if err := f.deps.Notify.SendBookingNotification(ctx, n); err != nil {
		f.deps.Log.Warn("booking notification failed",
			slog.String("intent_id", f.intentID),
			slog.String("error", err.Error()),
		)
	}
}
