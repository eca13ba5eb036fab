package checkout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/anyamrt/movement-based-training/internal/payments"
)

type fakeIntentAPI struct {
	calls   int
	lastReq IntentRequest
	result  *IntentResult
	err     error
}

func (f *fakeIntentAPI) CreateIntent(ctx context.Context, req IntentRequest) (*IntentResult, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeConfirmer struct {
	calls      int
	lastSecret string
	lastMethod string
	intent     *payments.Intent
	err        error
}

func (f *fakeConfirmer) ConfirmCard(ctx context.Context, clientSecret, paymentMethodID string, billing payments.BillingDetails) (*payments.Intent, error) {
	f.calls++
	f.lastSecret = clientSecret
	f.lastMethod = paymentMethodID
	if f.err != nil {
		return nil, f.err
	}
	return f.intent, nil
}

type fakeNotifier struct {
	calls int
	last  BookingNotification
	err   error
}

func (f *fakeNotifier) SendBookingNotification(ctx context.Context, n BookingNotification) error {
	f.calls++
	f.last = n
	return f.err
}

func testDeps(t *testing.T, intents IntentAPI, cards payments.CardConfirmer, notify Notifier) Deps {
	t.Helper()
	loc, err := time.LoadLocation("Australia/Brisbane")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return Deps{
		Intents: intents,
		Cards:   cards,
		Notify:  notify,
		Log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Loc:     loc,
		Now: func() time.Time {
			return time.Date(2026, 3, 10, 10, 0, 0, 0, loc)
		},
	}
}

func TestBookingFlowFieldValidation(t *testing.T) {
	intents := &fakeIntentAPI{}
	f := NewBookingFlow(testDeps(t, intents, nil, nil), Service{Name: "8-Week Program", Type: "program", Amount: 60000})

	err := f.SubmitFields(context.Background(), Fields{})
	if !errors.Is(err, ErrFieldValidation) {
		t.Fatalf("expected field validation error, got %v", err)
	}
	if f.State() != StateCollectingFields {
		t.Fatalf("state must stay %s, got %s", StateCollectingFields, f.State())
	}

	want := map[string]string{
		"name":           "Name is required",
		"phone":          "Phone number is required",
		"email":          "Email is required",
		"preferredTimes": "Preferred training times are required",
	}
	for field, msg := range want {
		if got := f.FieldErrors()[field]; got != msg {
			t.Fatalf("field %s: got %q, want %q", field, got, msg)
		}
	}

	err = f.SubmitFields(context.Background(), Fields{
		Name:           "Jane Doe",
		Phone:          "0400000000",
		Email:          "jane@",
		PreferredTimes: "Weekends",
	})
	if !errors.Is(err, ErrFieldValidation) {
		t.Fatalf("expected field validation error, got %v", err)
	}
	if got := f.FieldErrors()["email"]; got != "Please enter a valid email address" {
		t.Fatalf("unexpected email error %q", got)
	}

	if intents.calls != 0 {
		t.Fatalf("intent API must not be called, got %d calls", intents.calls)
	}
}

func TestSessionFlowDateValidation(t *testing.T) {
	f := NewSessionPaymentFlow(testDeps(t, &fakeIntentAPI{}, nil, nil))

	err := f.SubmitFields(context.Background(), Fields{Name: "Jane Doe"})
	if !errors.Is(err, ErrFieldValidation) {
		t.Fatalf("expected field validation error, got %v", err)
	}
	if got := f.FieldErrors()["sessionDate"]; got != "Session date is required" {
		t.Fatalf("unexpected error %q", got)
	}

	_ = f.SubmitFields(context.Background(), Fields{Name: "Jane Doe", SessionDate: "not-a-date"})
	if got := f.FieldErrors()["sessionDate"]; got != "Please select a valid date" {
		t.Fatalf("unexpected error %q", got)
	}

	_ = f.SubmitFields(context.Background(), Fields{Name: "Jane Doe", SessionDate: "2026-03-09"})
	if got := f.FieldErrors()["sessionDate"]; got != "Please select a future date" {
		t.Fatalf("unexpected error %q", got)
	}
}

func TestSessionFlowHappyPath(t *testing.T) {
	intents := &fakeIntentAPI{result: &IntentResult{ClientSecret: "pi_1_secret_x", PaymentIntentID: "pi_1"}}
	cards := &fakeConfirmer{intent: &payments.Intent{ID: "pi_1", Status: payments.StatusSucceeded}}
	notify := &fakeNotifier{}
	f := NewSessionPaymentFlow(testDeps(t, intents, cards, notify))

	fields := Fields{Name: "Jane Doe", Phone: "0400000000", Email: "jane@example.com", SessionDate: "2026-03-11"}
	if err := f.SubmitFields(context.Background(), fields); err != nil {
		t.Fatalf("submit fields: %v", err)
	}
	if f.State() != StateCollectingCard {
		t.Fatalf("expected %s, got %s", StateCollectingCard, f.State())
	}
	if intents.lastReq.Amount != 9500 || intents.lastReq.ServiceName != SingleSessionName {
		t.Fatalf("unexpected intent request: %+v", intents.lastReq)
	}
	if intents.lastReq.IdempotencyKey == "" {
		t.Fatalf("intent request must carry an idempotency key")
	}

	if err := f.SubmitCard(context.Background(), "pm_visa"); err != nil {
		t.Fatalf("submit card: %v", err)
	}
	if f.State() != StateSucceeded {
		t.Fatalf("expected %s, got %s", StateSucceeded, f.State())
	}
	if cards.lastSecret != "pi_1_secret_x" || cards.lastMethod != "pm_visa" {
		t.Fatalf("confirm got secret %q method %q", cards.lastSecret, cards.lastMethod)
	}

	if notify.calls != 1 {
		t.Fatalf("expected exactly one notification, got %d", notify.calls)
	}
	n := notify.last
	if n.AmountPaid != "95.00" {
		t.Fatalf("amount paid %q, want 95.00", n.AmountPaid)
	}
	if n.PaymentIntentID != "pi_1" {
		t.Fatalf("unexpected intent id %q", n.PaymentIntentID)
	}
	if n.PreferredTimes != "Session on 2026-03-11" {
		t.Fatalf("unexpected preferred times %q", n.PreferredTimes)
	}
	if f.DismissAfter() != PaymentSuccessDismiss {
		t.Fatalf("unexpected dismiss %v", f.DismissAfter())
	}
}

func TestFlowCardDeclinedThenRetry(t *testing.T) {
	intents := &fakeIntentAPI{result: &IntentResult{ClientSecret: "pi_2_secret_y", PaymentIntentID: "pi_2"}}
	cards := &fakeConfirmer{err: &payments.CardError{Code: "card_declined", Message: "Your card was declined."}}
	notify := &fakeNotifier{}
	f := NewSessionPaymentFlow(testDeps(t, intents, cards, notify))

	if err := f.SubmitFields(context.Background(), Fields{Name: "Jane Doe", Phone: "0400000000", Email: "jane@example.com", SessionDate: "2026-03-11"}); err != nil {
		t.Fatalf("submit fields: %v", err)
	}

	if err := f.SubmitCard(context.Background(), "pm_declined"); err == nil {
		t.Fatalf("expected confirm error")
	}
	if f.State() != StateFailed {
		t.Fatalf("expected %s, got %s", StateFailed, f.State())
	}
	if f.ErrorMessage() != "Card declined. Please try another card." {
		t.Fatalf("unexpected message %q", f.ErrorMessage())
	}
	if notify.calls != 0 {
		t.Fatalf("no notification on failure, got %d", notify.calls)
	}

	// Retry with another card: fields intact, same intent, no new secret fetch.
	cards.err = nil
	cards.intent = &payments.Intent{ID: "pi_2", Status: payments.StatusSucceeded}
	if err := f.SubmitCard(context.Background(), "pm_ok"); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if f.State() != StateSucceeded {
		t.Fatalf("expected %s, got %s", StateSucceeded, f.State())
	}
	if intents.calls != 1 {
		t.Fatalf("retry must reuse the intent, got %d creates", intents.calls)
	}
	if notify.calls != 1 {
		t.Fatalf("expected one notification, got %d", notify.calls)
	}
}

func TestFlowSingleSuccess(t *testing.T) {
	intents := &fakeIntentAPI{result: &IntentResult{ClientSecret: "pi_3_secret_z", PaymentIntentID: "pi_3"}}
	cards := &fakeConfirmer{intent: &payments.Intent{ID: "pi_3", Status: payments.StatusSucceeded}}
	notify := &fakeNotifier{}
	f := NewSessionPaymentFlow(testDeps(t, intents, cards, notify))

	if err := f.SubmitFields(context.Background(), Fields{Name: "Jane Doe", Phone: "0400000000", Email: "jane@example.com", SessionDate: "2026-03-11"}); err != nil {
		t.Fatalf("submit fields: %v", err)
	}
	if err := f.SubmitCard(context.Background(), "pm_ok"); err != nil {
		t.Fatalf("submit card: %v", err)
	}

	if err := f.SubmitCard(context.Background(), "pm_ok"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second card submit must be rejected, got %v", err)
	}
	if notify.calls != 1 {
		t.Fatalf("success notification must fire once, got %d", notify.calls)
	}
}

func TestFlowCardBeforeSecret(t *testing.T) {
	f := NewSessionPaymentFlow(testDeps(t, &fakeIntentAPI{}, &fakeConfirmer{}, nil))
	if err := f.SubmitCard(context.Background(), "pm_early"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestFlowIntentFailureAllowsResubmit(t *testing.T) {
	intents := &fakeIntentAPI{err: errors.New("Failed to create payment intent")}
	f := NewSessionPaymentFlow(testDeps(t, intents, nil, nil))

	fields := Fields{Name: "Jane Doe", SessionDate: "2026-03-11"}
	if err := f.SubmitFields(context.Background(), fields); err == nil {
		t.Fatalf("expected intent error")
	}
	if f.State() != StateFailed {
		t.Fatalf("expected %s, got %s", StateFailed, f.State())
	}
	if f.ErrorMessage() != "Failed to create payment intent" {
		t.Fatalf("unexpected message %q", f.ErrorMessage())
	}
	firstKey := intents.lastReq.IdempotencyKey

	intents.err = nil
	intents.result = &IntentResult{ClientSecret: "pi_4_secret_w", PaymentIntentID: "pi_4"}
	if err := f.SubmitFields(context.Background(), fields); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if f.State() != StateCollectingCard {
		t.Fatalf("expected %s, got %s", StateCollectingCard, f.State())
	}
	if intents.lastReq.IdempotencyKey != firstKey {
		t.Fatalf("idempotency key must be stable across retries")
	}
}

func TestFlowNotificationFailureKeepsSuccess(t *testing.T) {
	intents := &fakeIntentAPI{result: &IntentResult{ClientSecret: "pi_5_secret_v", PaymentIntentID: "pi_5"}}
	cards := &fakeConfirmer{intent: &payments.Intent{ID: "pi_5", Status: payments.StatusSucceeded}}
	notify := &fakeNotifier{err: errors.New("mail provider down")}
	f := NewSessionPaymentFlow(testDeps(t, intents, cards, notify))

	if err := f.SubmitFields(context.Background(), Fields{Name: "Jane Doe", Phone: "0400000000", Email: "jane@example.com", SessionDate: "2026-03-11"}); err != nil {
		t.Fatalf("submit fields: %v", err)
	}
	if err := f.SubmitCard(context.Background(), "pm_ok"); err != nil {
		t.Fatalf("a failed notification must not fail the payment: %v", err)
	}
	if notify.calls != 1 {
		t.Fatalf("expected one notification attempt, got %d", notify.calls)
	}
	if f.State() != StateSucceeded {
		t.Fatalf("expected %s, got %s", StateSucceeded, f.State())
	}
}

func TestSessionFlowWithoutContactSkipsNotification(t *testing.T) {
	intents := &fakeIntentAPI{result: &IntentResult{ClientSecret: "pi_6_secret_u", PaymentIntentID: "pi_6"}}
	cards := &fakeConfirmer{intent: &payments.Intent{ID: "pi_6", Status: payments.StatusSucceeded}}
	notify := &fakeNotifier{}
	f := NewSessionPaymentFlow(testDeps(t, intents, cards, notify))

	if err := f.SubmitFields(context.Background(), Fields{Name: "Jane Doe", SessionDate: "2026-03-11"}); err != nil {
		t.Fatalf("submit fields: %v", err)
	}
	if err := f.SubmitCard(context.Background(), "pm_ok"); err != nil {
		t.Fatalf("submit card: %v", err)
	}
	if f.State() != StateSucceeded {
		t.Fatalf("expected %s, got %s", StateSucceeded, f.State())
	}
	// No reply-to contact to mail with: the send is skipped, not attempted
	// and rejected.
	if notify.calls != 0 {
		t.Fatalf("expected no notification without contact details, got %d", notify.calls)
	}
}

func TestCardErrorMessages(t *testing.T) {
	cases := map[string]string{
		"card_declined":      "Card declined. Please try another card.",
		"insufficient_funds": "Insufficient funds. Please use another card.",
		"expired_card":       "Card expired. Please check the expiration date.",
		"incorrect_cvc":      "Incorrect security code. Please try again.",
		"processing_error":   "Payment processing error. Please try again.",
		"something_else":     "Payment failed. Please try again.",
	}
	for code, want := range cases {
		if got := CardErrorMessage(code); got != want {
			t.Fatalf("code %s: got %q, want %q", code, got, want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[int64]string{
		9500:  "95.00",
		12345: "123.45",
		5:     "0.05",
		100:   "1.00",
	}
	for minor, want := range cases {
		if got := FormatAmount(minor); got != want {
			t.Fatalf("%d: got %q, want %q", minor, got, want)
		}
	}
}
