package utils

import (
	appErrors "fleetlease/pkg/errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, APIResponse{
		Success: false,
		Message: message,
	})
}

// statusByCode maps service error codes to transport status codes.
var statusByCode = map[string]int{
	appErrors.CodeUnauthenticated: http.StatusUnauthorized,
	appErrors.CodeForbidden:       http.StatusForbidden,
	appErrors.CodeValidation:      http.StatusBadRequest,
	appErrors.CodeWrongParty:      http.StatusForbidden,
	appErrors.CodeOutOfOrder:      http.StatusConflict,
	appErrors.CodeAlreadySigned:   http.StatusConflict,
	appErrors.CodePaymentRequired: http.StatusPaymentRequired,
	appErrors.CodeAlreadyTerminal: http.StatusConflict,
	appErrors.CodeConflict:        http.StatusConflict,
	appErrors.CodeNotFound:        http.StatusNotFound,
	appErrors.CodeExternal:        http.StatusBadGateway,
}

// FailureResponse renders a service error with its mapped status. Internal
// detail stays in the logs; the client sees the message and code only.
func FailureResponse(c *gin.Context, err error) {
	code := appErrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = "internal error"
	}

	c.JSON(status, APIResponse{
		Success: false,
		Message: message,
		Code:    code,
	})
}
