package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/gin-gonic/gin"
)

// setSessionCookies writes the session token and both halves of the CSRF
// pair. Only x_csft is readable by scripts.
func (s *Server) setSessionCookies(c *gin.Context, sess *services.Session) {
	s.setCookie(c, common.SessionCookieName, sess.Token, sess.ExpiresAt, true)
	s.setCookie(c, common.CSRFServerCookieName, sess.CSRF.Server, sess.CSRF.ExpiresAt, true)
	s.setCookie(c, common.CSRFClientCookieName, sess.CSRF.Client, sess.CSRF.ExpiresAt, false)
}

func (s *Server) clearSessionCookies(c *gin.Context) {
	for _, name := range []string{common.SessionCookieName, common.CSRFServerCookieName, common.CSRFClientCookieName} {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			Secure:   s.secureCookies,
			HttpOnly: name != common.CSRFClientCookieName,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

func (s *Server) setCookie(c *gin.Context, name, value string, expires time.Time, httpOnly bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		Secure:   s.secureCookies,
		HttpOnly: httpOnly,
		SameSite: http.SameSiteStrictMode,
	})
}
