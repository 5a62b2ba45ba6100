package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rentalmarket/internal/logger"
	"rentalmarket/internal/pkg/apperr"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// Fail renders err in the error envelope. Classified errors keep their code and
// message; anything else is logged and hidden behind a 500.
func Fail(c *gin.Context, err error) {
	e, ok := apperr.As(err)
	if !ok || e.Kind == apperr.KindInternal {
		_ = c.Error(err)
		logger.ErrorContext(c.Request.Context(), "unhandled error",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}
	if e.Kind == apperr.KindDependencyFailure {
		_ = c.Error(err)
	}
	Error(c, StatusFor(e), e.Code, e.Message)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(e *apperr.Error) int {
	switch e.Kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusForbidden
	case apperr.KindInvalidState:
		return http.StatusConflict
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindResourceExhausted:
		if e.Code == apperr.CodeMaintenance {
			return http.StatusServiceUnavailable
		}
		return http.StatusTooManyRequests
	case apperr.KindDependencyFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
