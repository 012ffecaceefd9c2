package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pingme/pingme/internal/middleware"
	"github.com/pingme/pingme/internal/service"
)

// PaymentHandler handles the simulated payment step.
type PaymentHandler struct {
	svc    *service.PaymentService
	logger *slog.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(svc *service.PaymentService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{svc: svc, logger: logger}
}

// Process handles POST /process-payment. A declined payment carries no
// state; the client may simply resubmit.
func (h *PaymentHandler) Process(w http.ResponseWriter, r *http.Request) {
	err := h.svc.ProcessPayment(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrPaymentDeclined) {
			writeError(w, http.StatusPaymentRequired, "Payment failed")
			return
		}
		h.logger.Error("payment processing error",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, "Payment failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Payment successful"})
}
