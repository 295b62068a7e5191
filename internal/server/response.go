package server

import (
	"net/http"

	apperrors "github.com/Taichi-iskw/pod-digest/internal/errors"
	"github.com/gin-gonic/gin"
)

// ok sends a 200 response
func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message})
}

// fail maps an application error code onto an HTTP status
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperrors.CodeOf(err) {
	case apperrors.CodeNotFound, apperrors.CodeDependency:
		status = http.StatusNotFound
	case apperrors.CodeInvalidArg:
		status = http.StatusBadRequest
	case apperrors.CodeConflict:
		status = http.StatusConflict
	}

	message := err.Error()
	if appErr, isApp := err.(*apperrors.AppError); isApp {
		message = appErr.Message
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
