// Package handlers contains the gin HTTP handlers for the graph engine API.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/minhaarvore/arvore/pkg/errors"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// respondError maps an error to its HTTP status via the error-code taxonomy.
// Server-side causes are masked; the code and message are safe to expose.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	resp := ErrorResponse{
		Code:    code.String(),
		Message: errors.DefaultMessageForCode(code),
	}
	if appErr, ok := err.(*errors.AppError); ok {
		if appErr.Message != "" {
			resp.Message = appErr.Message
		}
		if errors.IsClientError(code) {
			resp.Detail = appErr.Detail
		}
	}
	c.AbortWithStatusJSON(status, resp)
}

func respondJSON(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// bindJSON decodes the request body and reports a structured 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, errors.InvalidParam("malformed request body").WithCause(err))
		return false
	}
	return true
}
