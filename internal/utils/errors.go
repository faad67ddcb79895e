package utils

import (
	"errors"
	"net/http"

	"github.com/yantrahq/yantra/internal/api/dto/common"
	"github.com/yantrahq/yantra/internal/logging"
	"github.com/yantrahq/yantra/internal/service"

	"github.com/gin-gonic/gin"
)

// StatusForError maps a service failure kind to an HTTP status.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HandleServiceError writes the error envelope for a service failure. Tagged
// failures keep their code and message; anything else is logged and reported
// as an internal error without details in release mode.
func HandleServiceError(c *gin.Context, err error) {
	status := StatusForError(err)

	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		if status >= http.StatusInternalServerError {
			logging.GetGlobalLogger().LogHTTPError(c.Request.Method, c.Request.URL.Path, GetRealIP(c), status, svcErr.Message, err)
		}
		HandleError(c, status, common.ErrorCode(svcErr.Code), svcErr.Message, nil)
		return
	}

	HandleAPIError(c, err, status, common.ErrCodeInternalServer, "Internal server error")
}

// HandleAPIError is a utility function for consistent error handling across the API
// It ensures sensitive error details are only exposed in non-production environments
func HandleAPIError(c *gin.Context, err error, defaultStatus int, defaultCode common.ErrorCode, defaultMessage string) {
	logger := logging.GetGlobalLogger()
	logger.LogHTTPError(
		c.Request.Method,
		c.Request.URL.Path,
		GetRealIP(c),
		defaultStatus,
		defaultMessage,
		err,
	)

	// In production, don't expose error details
	var errorDetails interface{} = nil
	if gin.Mode() != gin.ReleaseMode && err != nil {
		errorDetails = err.Error()
	}

	HandleError(c, defaultStatus, defaultCode, defaultMessage, errorDetails)
}
