package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// TBank API error codes. The gateway always answers HTTP 200 with a
// structured body for the /v2 API; these codes carry the actual outcome.
const (
	codeOK                 = "0"
	codeNotFound           = "6"
	codeInvalidTerminalKey = "7"
	codeInvalidToken       = "9"
	codeInvalidStatus      = "15"
)

// apiError is the failure body shared by all /v2 endpoints.
type apiError struct {
	Success   bool   `json:"Success"`
	ErrorCode string `json:"ErrorCode"`
	Message   string `json:"Message"`
}

// respondAPIError sends a structured gateway failure.
func respondAPIError(c *gin.Context, code, message string) {
	c.JSON(http.StatusOK, apiError{Success: false, ErrorCode: code, Message: message})
}

// paymentIDFromParams extracts PaymentId from a request body. Clients send it
// either as a JSON string or as a number; both are accepted.
func paymentIDFromParams(params map[string]any) (int64, bool) {
	switch v := params["PaymentId"].(type) {
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		return id, err == nil
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// stringParam returns a string field from the request body, or "" when the
// field is absent or not a string.
func stringParam(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return s
}
