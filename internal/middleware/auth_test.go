package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fleetlease/internal/config"
	"fleetlease/internal/domain/account"
	"fleetlease/pkg/utils"
)

const testSecret = "test-secret"

func authRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret, ExpiryHours: 1}}

	router := gin.New()
	protected := router.Group("", AuthMiddleware(cfg))
	protected.GET("/whoami", func(c *gin.Context) {
		id, _ := UserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id.String(), "role": UserRole(c)})
	})
	protected.GET("/admin", AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	router := authRouter(t)

	fleetToken, err := utils.GenerateToken(uuid.New(), "ops@fleet.example.com", account.RoleFleet, testSecret, 1)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	adminToken, err := utils.GenerateToken(uuid.New(), "root@example.com", account.RoleAdmin, testSecret, 1)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	forgedToken, err := utils.GenerateToken(uuid.New(), "x@example.com", account.RoleAdmin, "other-secret", 1)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	tests := []struct {
		name       string
		path       string
		authHeader string
		wantStatus int
	}{
		{"missing header", "/whoami", "", http.StatusUnauthorized},
		{"malformed header", "/whoami", "Token abc", http.StatusUnauthorized},
		{"wrong secret", "/whoami", "Bearer " + forgedToken, http.StatusUnauthorized},
		{"valid token", "/whoami", "Bearer " + fleetToken, http.StatusOK},
		{"fleet hits admin route", "/admin", "Bearer " + fleetToken, http.StatusForbidden},
		{"admin hits admin route", "/admin", "Bearer " + adminToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body: %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}
