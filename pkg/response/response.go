package response

import (
	"github.com/gin-gonic/gin"

	"github.com/Ramez-krichen/office-supplies-management-sub002/pkg/apperror"
)

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// FromError writes the error using the apperror taxonomy mapping. Internal
// errors collapse to a generic message; the cause stays server-side.
func FromError(c *gin.Context, err error) {
	status := apperror.Status(err)
	c.JSON(status, Error(status, apperror.Message(err)))
}
