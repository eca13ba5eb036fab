package payments

import (
	"errors"

	"github.com/stripe/stripe-go/v76"
)

// CardError is a structured card rejection from the processor. It is not an
// upstream failure: the flow maps its code to user-facing copy and lets the
// customer retry.
type CardError struct {
	Code    string
	Message string
}

func (e *CardError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func asCardError(err error) error {
	var sErr *stripe.Error
	if errors.As(err, &sErr) && sErr.Type == stripe.ErrorTypeCard {
		code := string(sErr.Code)
		if sErr.DeclineCode != "" {
			// The decline code is the specific reason (insufficient_funds,
			// expired_card); prefer it over the generic card_declined.
			code = string(sErr.DeclineCode)
		}
		return &CardError{Code: code, Message: sErr.Msg}
	}
	return err
}
