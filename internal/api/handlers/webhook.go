package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/logoslabs/logos/internal/service"
)

// maxWebhookBody bounds webhook payload reads.
const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	svc *service.PaymentService
}

func NewWebhookHandler(svc *service.PaymentService) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

// HandlePayment is unauthenticated; the HMAC signature is the auth.
func (h *WebhookHandler) HandlePayment(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	sig := r.Header.Get("X-Payment-Signature")
	err = h.svc.HandleWebhook(r.Context(), sig, body)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "processed"})
	case errors.Is(err, service.ErrDuplicateEvent):
		// Acknowledge replays so the provider stops retrying.
		writeJSON(w, http.StatusOK, map[string]string{"status": "duplicate"})
	case errors.Is(err, service.ErrInvalidSignature), errors.Is(err, service.ErrSignatureExpired):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrMalformedEvent):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "webhook processing failed")
	}
}
