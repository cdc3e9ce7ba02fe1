package handlers

import (
	"errors"
	"log"
	"net/http"

	"govhub/internal/apperr"

	"github.com/gin-gonic/gin"
)

// Fail converts an error into a JSON error response, mapping the apperr
// taxonomy onto HTTP statuses. Unknown errors become opaque 500s; the cause
// is logged server-side only.
func Fail(c *gin.Context, err error) {
	var appErr *apperr.AppError
	if !errors.As(err, &appErr) {
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case apperr.CodeInvalidInput:
		status = http.StatusBadRequest
	case apperr.CodeUnauthorized:
		status = http.StatusUnauthorized
	case apperr.CodeForbidden:
		status = http.StatusForbidden
	case apperr.CodeNotFound:
		status = http.StatusNotFound
	case apperr.CodeConflict:
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError && appErr.Cause != nil {
		log.Printf("internal error: %v", appErr)
	}
	c.JSON(status, gin.H{"error": appErr.Message})
}
