package response

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/dlp-generator/internal/platform/apierr"
)

// RespondAPIError writes err using the status and code carried by an
// *apierr.Error, or 500 internal_error otherwise.
func RespondAPIError(c *gin.Context, err error) {
	status, code := apierr.From(err)
	RespondError(c, status, code, err)
}

// RespondAttachment sends data as a download named fileName.
func RespondAttachment(c *gin.Context, fileName, contentType string, data []byte) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))
	c.Data(http.StatusOK, contentType, data)
}
