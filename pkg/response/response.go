package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/student-complaints/pkg/errors"
)

// Envelope represents the JSON contract of the operational endpoints.
type Envelope struct {
	Data  interface{}      `json:"data,omitempty"`
	Error *appErrors.Error `json:"error,omitempty"`
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

// HTML renders a named page. Pages carry session-specific content so they are never cached.
func HTML(c *gin.Context, status int, page string, data interface{}) {
	noStore(c)
	c.HTML(status, page, data)
}

// Redirect sends the browser to location with 302 Found.
func Redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

// ErrorPage renders page with the error's status and sanitized message, then aborts the chain.
func ErrorPage(c *gin.Context, page string, err error, data func(message string) interface{}) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.HTML(appErr.Status, page, data(appErr.Message))
	c.Abort()
}

// Attachment streams payload as a download.
func Attachment(c *gin.Context, filename, contentType string, payload []byte) {
	noStore(c)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

// JSON sends a success envelope.
func JSON(c *gin.Context, status int, data interface{}) {
	noStore(c)
	c.JSON(status, Envelope{Data: data})
}

// Error sends an error envelope converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.JSON(appErr.Status, Envelope{Error: appErr})
}
