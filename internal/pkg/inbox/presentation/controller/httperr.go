package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "textback/pkg/errors"
)

// statusOf maps the error taxonomy onto HTTP status codes. Invalid state
// transitions come back as conflicts so clients can distinguish them from
// plain validation failures.
func statusOf(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeInvalidArgument:
		return http.StatusBadRequest
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeAlreadyExists:
		return http.StatusConflict
	case apperrors.CodeUnauthenticated:
		return http.StatusUnauthorized
	case apperrors.CodePermissionDenied:
		return http.StatusForbidden
	case apperrors.CodeFailedPrecondition:
		return http.StatusConflict
	case apperrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// replyError writes the taxonomy-mapped status with the error message.
func replyError(c *gin.Context, err error) {
	c.JSON(statusOf(err), gin.H{"error": err.Error()})
}
