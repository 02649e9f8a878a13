package httpapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextAccountKey holds the authenticated account ID on the gin context.
const ContextAccountKey = "auth.account_id"

var errCSRFMismatch = fmt.Errorf("%w: csrf token missing or mismatched", common.ErrorForbidden)

// sessionToken takes the token from "Authorization: JWT <token>" or, when
// that header is absent or uses another scheme, from the JWT cookie.
func sessionToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, common.AuthScheme) {
			return strings.TrimSpace(tok)
		}
	}
	if v, err := c.Cookie(common.SessionCookieName); err == nil {
		return v
	}
	return ""
}

func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := sessionToken(c)
		if tok == "" {
			s.writeError(c, common.ErrorUnauthorized)
			return
		}
		id, err := s.accounts.ResolveSession(tok)
		if err != nil {
			s.logger.Debug(c.Request.Context(), "session rejected", "error", err)
			s.writeError(c, err)
			return
		}
		c.Set(ContextAccountKey, id)
		c.Next()
	}
}

// verifyCSRF compares the HttpOnly s_csft cookie with the X-CSRF-TOKEN
// header. An expired pair is simply no longer sent by the browser.
func (s *Server) verifyCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		ambient, _ := c.Cookie(common.CSRFServerCookieName)
		if !s.accounts.CheckCSRF(ambient, c.GetHeader(common.CSRFHeaderName)) {
			s.writeError(c, errCSRFMismatch)
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// FullPath is the route pattern, which keeps verification tokens out of the log.
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

func accountID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextAccountKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
