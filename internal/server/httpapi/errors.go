package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/gin-gonic/gin"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps err onto a status and a stable code and aborts the chain.
// Internal errors are logged here and reported without detail.
func (s *Server) writeError(c *gin.Context, err error) {
	status, code := classify(err)
	msg := err.Error()

	switch status {
	case http.StatusUnauthorized:
		c.Header("WWW-Authenticate", common.AuthScheme)
	case http.StatusInternalServerError:
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		msg = "internal error"
	}

	c.AbortWithStatusJSON(status, errorBody{Code: code, Message: msg})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "TOKEN_EXPIRED"
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, errCSRFMismatch):
		return http.StatusForbidden, "CSRF_INVALID"
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, "INVALID_INPUT"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
