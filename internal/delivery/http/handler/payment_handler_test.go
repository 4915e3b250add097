package handler

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"fleetlease/internal/config"
)

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func webhookRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPaymentHandler(nil, &config.PaymentConfig{WebhookSecret: "whsec_test"})
	router := gin.New()
	h.RegisterRoutes(router.Group(""))
	return router
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	router := webhookRouter()
	body := []byte(`{"type":"checkout.session.completed","metadata":{"purpose":"match_fee"}}`)

	tests := []struct {
		name      string
		signature string
	}{
		{"missing signature", ""},
		{"wrong signature", "deadbeef"},
		{"signed with wrong secret", signBody("other-secret", body)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(body))
			if tt.signature != "" {
				req.Header.Set("X-Signature", tt.signature)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestWebhookAcknowledgesUnrelatedEvents(t *testing.T) {
	router := webhookRouter()
	body := []byte(`{"type":"invoice.created","metadata":{}}`)

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(body))
	req.Header.Set("X-Signature", signBody("whsec_test", body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
}
