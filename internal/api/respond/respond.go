package respond

import "github.com/gin-gonic/gin"

// Envelope is the uniform JSON response body for the driver API.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Success writes a success envelope with the given payload
func Success(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Envelope{Status: "success", Message: message, Data: data})
}

// Error writes an error envelope
func Error(c *gin.Context, code int, message string, err error) {
	envelope := Envelope{Status: "error", Message: message}
	if err != nil {
		envelope.Error = err.Error()
	}
	c.JSON(code, envelope)
}
