package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the body shape shared by every JSON endpoint.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// FieldError is one entry of a validation failure list.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func Data(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, Envelope{Success: true, Message: msg})
}

func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, Envelope{Success: false, Message: msg})
}

// Abort writes an error body and stops the middleware chain.
func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: msg})
}

func ValidationFailed(c *gin.Context, msg string, errs []FieldError) {
	c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: msg, Errors: errs})
}

// Internal reports an unexpected failure. When expose is true the raw error
// text is returned to the caller, otherwise a generic message.
func Internal(c *gin.Context, err error, expose bool) {
	msg := "Internal server error"
	if expose && err != nil && err.Error() != "" {
		msg = err.Error()
	}
	c.JSON(http.StatusInternalServerError, Envelope{Success: false, Message: msg})
}
