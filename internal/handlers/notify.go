package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/anyamrt/movement-based-training/internal/httpx"
	"github.com/anyamrt/movement-based-training/internal/notifications"
	"github.com/anyamrt/movement-based-training/internal/transport"
)

const (
	FormTypeBooking = "booking"
	FormTypeContact = "contact"
)

type SendEmailRequest struct {
	Type            string `json:"type" validate:"required"`
	Name            string `json:"name" validate:"required"`
	Phone           string `json:"phone" validate:"required,phone"`
	Email           string `json:"email" validate:"required,simpleemail"`
	Timestamp       string `json:"timestamp"`
	PreferredTimes  string `json:"preferredTimes"`
	Goals           string `json:"goals"`
	Query           string `json:"query"`
	ServiceName     string `json:"serviceName"`
	PaymentIntentID string `json:"paymentIntentId"`
	AmountPaid      string `json:"amountPaid"`
}

type SendEmailResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
}

func (s *Server) SendEmail(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	var req SendEmailRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("send email: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", "")
		return
	}

	if err := s.Val.Struct(req); err != nil {
		errs := s.Val.ValidationErrors(err)
		for _, fe := range errs {
			if fe.Tag() == "required" {
				log.Warn("send email: missing required fields")
				transport.WriteError(w, http.StatusBadRequest, "Missing required fields", "")
				return
			}
		}
		for _, fe := range errs {
			if fe.Tag() == "phone" {
				log.Warn("send email: invalid phone format")
				transport.WriteError(w, http.StatusBadRequest, "Invalid phone format", "")
				return
			}
		}
		log.Warn("send email: invalid email format")
		transport.WriteError(w, http.StatusBadRequest, "Invalid email format", "")
		return
	}

	submittedAt := formatTimestamp(req.Timestamp, s.Cfg.Timezone)

	var subject, htmlBody string
	var err error
	switch req.Type {
	case FormTypeBooking:
		if req.PreferredTimes == "" {
			log.Warn("send email: booking without preferred times")
			transport.WriteError(w, http.StatusBadRequest, "Preferred times are required for booking", "")
			return
		}
		subject, htmlBody, err = notifications.BuildBookingEmail(notifications.BookingEmailData{
			Name:            req.Name,
			Phone:           req.Phone,
			Email:           req.Email,
			PreferredTimes:  req.PreferredTimes,
			Goals:           req.Goals,
			ServiceName:     req.ServiceName,
			PaymentIntentID: req.PaymentIntentID,
			AmountPaid:      req.AmountPaid,
			SubmittedAt:     submittedAt,
		})
	case FormTypeContact:
		if req.Query == "" {
			log.Warn("send email: contact without query")
			transport.WriteError(w, http.StatusBadRequest, "Query is required for contact form", "")
			return
		}
		subject, htmlBody, err = notifications.BuildContactEmail(notifications.ContactEmailData{
			Name:        req.Name,
			Phone:       req.Phone,
			Email:       req.Email,
			Query:       req.Query,
			SubmittedAt: submittedAt,
		})
	default:
		log.Warn("send email: invalid form type", slog.String("type", req.Type))
		transport.WriteError(w, http.StatusBadRequest, "Invalid form type", "")
		return
	}
	if err != nil {
		log.Error("send email: template error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to send email", s.errorDetails(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	messageID, err := s.Mailer.Send(ctx, notifications.Message{
		ToEmail:  s.Cfg.NotifyEmail,
		ToName:   s.Cfg.NotifyName,
		ReplyTo:  req.Email,
		Subject:  subject,
		HTMLBody: htmlBody,
	})
	if err != nil {
		log.Error("send email: provider error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to send email", s.errorDetails(err))
		return
	}

	log.Info("send email: sent", slog.String("type", req.Type), slog.String("message_id", messageID))
	transport.WriteJSON(w, http.StatusOK, SendEmailResponse{
		Success:   true,
		Message:   "Email sent successfully",
		MessageID: messageID,
	})
}

// formatTimestamp renders the client's RFC3339 timestamp in the studio
// timezone; anything unparseable is passed through as sent.
func formatTimestamp(ts string, loc *time.Location) string {
	if ts == "" {
		return ""
	}
	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return parsed.In(loc).Format("2/1/2006, 3:04:05 pm")
}
