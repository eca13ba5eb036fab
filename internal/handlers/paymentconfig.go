package handlers

import (
	"net/http"

	"github.com/anyamrt/movement-based-training/internal/transport"
)

type PaymentConfigResponse struct {
	PublishableKey string `json:"publishableKey"`
}

// GetPaymentConfig hands the client the publishable key it needs to talk to
// the processor directly. The secret key never leaves the server.
func (s *Server) GetPaymentConfig(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, PaymentConfigResponse{
		PublishableKey: s.Cfg.StripePublishableKey,
	})
}
