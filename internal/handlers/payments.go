package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/anyamrt/movement-based-training/internal/httpx"
	"github.com/anyamrt/movement-based-training/internal/payments"
	"github.com/anyamrt/movement-based-training/internal/schedule"
	"github.com/anyamrt/movement-based-training/internal/transport"
	"github.com/anyamrt/movement-based-training/internal/validation"
)

type CreatePaymentIntentRequest struct {
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Phone          string      `json:"phone"`
	SessionDate    string      `json:"sessionDate"`
	PreferredTimes string      `json:"preferredTimes"`
	Goals          string      `json:"goals"`
	Amount         json.Number `json:"amount"`
	ServiceName    string      `json:"serviceName"`
	ServiceType    string      `json:"serviceType"`
	IdempotencyKey string      `json:"idempotencyKey"`
}

type CreatePaymentIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

const idempotencyTTL = 24 * time.Hour

func (s *Server) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	var req CreatePaymentIntentRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("payment intent: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", "")
		return
	}

	// Zero mirrors absent: a zero-cent charge is as unusable as no amount.
	if req.Name == "" || req.Amount == "" || req.Amount == "0" {
		log.Warn("payment intent: missing required fields")
		transport.WriteError(w, http.StatusBadRequest, "Missing required fields: name, amount", "")
		return
	}

	amount, err := req.Amount.Int64()
	if err != nil || amount <= 0 {
		log.Warn("payment intent: invalid amount", slog.String("amount", req.Amount.String()))
		transport.WriteError(w, http.StatusBadRequest, "Invalid amount", "")
		return
	}

	if req.Email != "" && !validation.IsEmail(req.Email) {
		log.Warn("payment intent: invalid email format")
		transport.WriteError(w, http.StatusBadRequest, "Invalid email format", "")
		return
	}

	if req.SessionDate != "" {
		past, err := schedule.IsDatePast(req.SessionDate, s.Cfg.Timezone, time.Now())
		if err != nil {
			log.Warn("payment intent: invalid session date", slog.String("date", req.SessionDate))
			transport.WriteError(w, http.StatusBadRequest, "Invalid session date", "")
			return
		}
		if past {
			log.Warn("payment intent: session date in the past", slog.String("date", req.SessionDate))
			transport.WriteError(w, http.StatusBadRequest, "Session date must be in the future", "")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	cacheKey := ""
	if req.IdempotencyKey != "" && s.Cache != nil {
		cacheKey = "paymentintent:idem:" + req.IdempotencyKey
		if raw, ok, err := s.Cache.Get(ctx, cacheKey); err == nil && ok {
			var cached CreatePaymentIntentResponse
			if json.Unmarshal(raw, &cached) == nil && cached.ClientSecret != "" {
				log.Info("payment intent: replay collapsed", slog.String("intent_id", cached.PaymentIntentID))
				transport.WriteJSON(w, http.StatusOK, cached)
				return
			}
		}
	}

	intent, err := s.Intents.CreateIntent(ctx, payments.IntentRequest{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		SessionDate:    req.SessionDate,
		PreferredTimes: req.PreferredTimes,
		Goals:          req.Goals,
		ServiceName:    req.ServiceName,
		ServiceType:    req.ServiceType,
		Amount:         amount,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		log.Error("payment intent: processor error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to create payment intent", s.errorDetails(err))
		return
	}

	resp := CreatePaymentIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}

	if cacheKey != "" {
		if raw, err := json.Marshal(resp); err == nil {
			if err := s.Cache.Set(ctx, cacheKey, raw, idempotencyTTL); err != nil {
				log.Warn("payment intent: replay cache write failed", slog.String("error", err.Error()))
			}
		}
	}

	log.Info("payment intent: created", slog.String("intent_id", intent.ID))
	transport.WriteJSON(w, http.StatusOK, resp)
}
