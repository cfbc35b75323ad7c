package response

import (
	"net/http"

	"procurement/internal/apperror"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Response represents a standard API response format
type Response struct {
	Status     string                `json:"status"`      // "success" or "error"
	StatusCode int                   `json:"status_code"` // HTTP status code
	Data       interface{}           `json:"data,omitempty"`
	Code       string                `json:"code,omitempty"` // machine-stable error code
	Error      string                `json:"error,omitempty"`
	Details    []apperror.FieldError `json:"details,omitempty"`
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
func Error(statusCode int, code, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Code:       code,
		Error:      err,
	}
}

// FromAppError renders a business error, including field-level details
func FromAppError(err *apperror.Error) Response {
	return Response{
		Status:     "error",
		StatusCode: err.HTTPStatus(),
		Code:       err.Code,
		Error:      err.Message,
		Details:    err.Fields,
	}
}

// Abort writes err as the response and stops the handler chain. Business
// errors keep their status and code; anything else is logged and hidden
// behind a generic 500.
func Abort(c *gin.Context, err error) {
	appErr, ok := apperror.As(err)
	if !ok || appErr.Kind == apperror.KindInternal {
		log.WithError(err).WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			Error(http.StatusInternalServerError, apperror.CodeInternal, "Internal server error"))
		return
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus(), FromAppError(appErr))
}
