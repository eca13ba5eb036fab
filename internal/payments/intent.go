package payments

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Currency is fixed: the studio charges in Australian dollars, amounts in
// cents.
const Currency = "aud"

// Stripe caps metadata values at 500 characters; free-text fields are
// truncated before forwarding.
const metadataValueLimit = 500

// Intent status values as reported by the processor.
const (
	StatusRequiresPaymentMethod = "requires_payment_method"
	StatusRequiresConfirmation  = "requires_confirmation"
	StatusRequiresAction        = "requires_action"
	StatusProcessing            = "processing"
	StatusSucceeded             = "succeeded"
	StatusCanceled              = "canceled"
)

// IntentRequest carries the validated booking fields forwarded to the
// processor. Amount is in minor units and already checked positive.
type IntentRequest struct {
	Name           string
	Email          string
	Phone          string
	SessionDate    string
	PreferredTimes string
	Goals          string
	ServiceName    string
	ServiceType    string
	Amount         int64
	IdempotencyKey string
}

// Intent is the slice of the processor's record this system holds on to.
// The client secret is returned to the requesting session only and must
// never be logged.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
}

type IntentCreator interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
}

type BillingDetails struct {
	Name  string
	Email string
	Phone string
}

type CardConfirmer interface {
	ConfirmCard(ctx context.Context, clientSecret, paymentMethodID string, billing BillingDetails) (*Intent, error)
}

func buildMetadata(req IntentRequest) map[string]string {
	md := map[string]string{
		"customerName": req.Name,
	}
	if req.Email != "" {
		md["customerEmail"] = req.Email
	}
	if req.Phone != "" {
		md["customerPhone"] = req.Phone
	}
	if req.SessionDate != "" {
		md["sessionDate"] = req.SessionDate
	}
	if req.PreferredTimes != "" {
		md["preferredTimes"] = truncate(req.PreferredTimes, metadataValueLimit)
	}
	if req.Goals != "" {
		md["goals"] = truncate(req.Goals, metadataValueLimit)
	}
	if req.ServiceName != "" {
		md["serviceName"] = req.ServiceName
	}
	if req.ServiceType != "" {
		md["serviceType"] = req.ServiceType
	}
	return md
}

func buildDescription(req IntentRequest) string {
	if req.SessionDate != "" {
		return fmt.Sprintf("Training session for %s on %s", req.Name, req.SessionDate)
	}
	service := req.ServiceName
	if service == "" {
		service = "Training"
	}
	return fmt.Sprintf("%s booking for %s", service, req.Name)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

// IntentIDFromSecret recovers the intent id from a client secret of the
// form "pi_xxx_secret_yyy".
func IntentIDFromSecret(clientSecret string) string {
	if i := strings.Index(clientSecret, "_secret"); i > 0 {
		return clientSecret[:i]
	}
	return clientSecret
}
