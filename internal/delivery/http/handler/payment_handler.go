package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleetlease/internal/config"
	"fleetlease/internal/logger"
	leaseUsecase "fleetlease/internal/usecase/lease"
	"fleetlease/pkg/utils"
)

// PaymentHandler receives the payment processor's webhook. The payload is
// authenticated with an HMAC-SHA256 signature over the raw body.
type PaymentHandler struct {
	leaseService *leaseUsecase.Service
	secret       string
}

func NewPaymentHandler(leaseService *leaseUsecase.Service, cfg *config.PaymentConfig) *PaymentHandler {
	return &PaymentHandler{leaseService: leaseService, secret: cfg.WebhookSecret}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/payments/webhook", h.Webhook)
}

type webhookEvent struct {
	Type     string            `json:"type"`
	Metadata map[string]string `json:"metadata"`
}

func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Could not read request body")
		return
	}

	if !h.verifySignature(body, c.GetHeader("X-Signature")) {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid webhook signature")
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid webhook payload")
		return
	}

	if event.Type != "checkout.session.completed" || event.Metadata["purpose"] != "match_fee" {
		// Unrelated events are acknowledged so the processor stops retrying.
		utils.SuccessResponse(c, http.StatusOK, "Event ignored", nil)
		return
	}

	agreementID, err := uuid.Parse(event.Metadata["agreement_id"])
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid agreement reference in webhook")
		return
	}

	result, err := h.leaseService.MarkFeePaid(c.Request.Context(), agreementID)
	if err != nil {
		logger.Warn("Match fee webhook not applied",
			zap.String("agreement_id", agreementID.String()),
			zap.Error(err),
		)
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Match fee recorded", result)
}

func (h *PaymentHandler) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
