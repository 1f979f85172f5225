// Package response is the JSON envelope every HTTP endpoint of the hub
// replies with, so join rejections, spectator snapshots, and lock
// toggles all share one shape a client can switch on.
package response

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Envelope wraps every HTTP reply. Error carries the caller-facing
// reason on failures; Data carries the endpoint payload on success.
// Exactly one of the two is set.
type Envelope struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// WithSuccess replies with a success envelope carrying data.
func WithSuccess(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// WithError replies with a failure envelope. errDetail is the
// caller-facing reason, message the short category label.
func WithError(c *gin.Context, statusCode int, message string, errDetail string) {
	c.JSON(statusCode, Envelope{
		Success:   false,
		Message:   message,
		Error:     errDetail,
		Timestamp: time.Now(),
	})
}
