package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/cylinder/internal/lifecycle"
	"example.com/backstage/services/cylinder/internal/repository"
	"example.com/backstage/services/cylinder/internal/service"
)

// ErrorResponse defines the structure of an error response
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// writeError maps business errors to HTTP responses.
func writeError(c *gin.Context, err error) {
	var (
		validationErr   *service.ValidationError
		preconditionErr *service.PreconditionError
		transitionErr   *lifecycle.TransitionError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: validationErr.Message, Code: "VALIDATION_ERROR"})
	case errors.Is(err, service.ErrDuplicateCode):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error(), Code: "DUPLICATE_CODE"})
	case errors.Is(err, service.ErrCylinderInUse):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error(), Code: "CYLINDER_IN_USE"})
	case errors.Is(err, service.ErrGasTypeInUse):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error(), Code: "GAS_TYPE_IN_USE"})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "resource not found", Code: "NOT_FOUND"})
	case errors.As(err, &preconditionErr):
		c.JSON(http.StatusConflict, ErrorResponse{Message: preconditionErr.Error(), Code: "PRECONDITION_FAILED"})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, ErrorResponse{Message: transitionErr.Error(), Code: "ILLEGAL_TRANSITION"})
	case errors.Is(err, repository.ErrDuplicateKey):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "resource already exists", Code: "CONFLICT"})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error", Code: "INTERNAL_ERROR"})
	}
}

// writeBindError reports a malformed request body or parameter.
func writeBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error(), Code: "VALIDATION_ERROR"})
}
