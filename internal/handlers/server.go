package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/anyamrt/movement-based-training/internal/cache"
	"github.com/anyamrt/movement-based-training/internal/config"
	"github.com/anyamrt/movement-based-training/internal/middleware"
	"github.com/anyamrt/movement-based-training/internal/notifications"
	"github.com/anyamrt/movement-based-training/internal/payments"
	"github.com/anyamrt/movement-based-training/internal/transport"
	"github.com/anyamrt/movement-based-training/internal/validation"
)

// FormMailer delivers a form notification and returns the provider message id.
type FormMailer interface {
	Send(ctx context.Context, msg notifications.Message) (string, error)
}

type Server struct {
	Cfg     *config.Config
	Val     *validation.Validator
	Log     *slog.Logger
	Intents payments.IntentCreator
	Mailer  FormMailer
	Cache   cache.Cache
}

func (s *Server) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return s.Log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return s.Log.With(slog.String("request_id", id))
	}
	return s.Log
}

// errorDetails exposes the upstream cause only in development so processor
// and provider internals never reach production clients.
func (s *Server) errorDetails(err error) string {
	if err == nil || !s.Cfg.IsDevelopment() {
		return ""
	}
	return err.Error()
}

// MethodNotAllowed keeps the 405 envelope JSON like every other error.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	transport.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
}
