// Package response holds the JSON and file envelopes every handler replies with.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/dlp-generator/internal/platform/ctxutil"
)

// APIError is the body of every non-2xx JSON reply. RequestID lets a caller
// quote the failing request back to an operator.
type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	body := APIError{Message: "unknown error", Code: code}
	if err != nil {
		body.Message = err.Error()
	}
	if c.Request != nil {
		body.RequestID = ctxutil.RequestID(c.Request.Context())
	}
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: body})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
