package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/gin-gonic/gin"
)

// maxRawBody bounds the plain-text bodies of the availability and
// password endpoints.
const maxRawBody = 4 << 10

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// login issues a session for valid credentials. A caller that already
// presents a valid session is redirected instead.
func (s *Server) login(c *gin.Context) {
	if tok := sessionToken(c); tok != "" {
		if _, err := s.accounts.ResolveSession(tok); err == nil {
			c.Redirect(http.StatusFound, "/users/me")
			return
		}
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: username and password are required", common.ErrorValidation))
		return
	}

	sess, err := s.accounts.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.setSessionCookies(c, sess)
	c.JSON(http.StatusOK, tokenResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt})
}

func (s *Server) renew(c *gin.Context) {
	id, _ := accountID(c)
	sess, err := s.accounts.RenewSession(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.setSessionCookies(c, sess)
	c.JSON(http.StatusOK, tokenResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt})
}

func (s *Server) logout(c *gin.Context) {
	s.clearSessionCookies(c)
	c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}

func (s *Server) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: username, email and password are required", common.ErrorValidation))
		return
	}

	view, err := s.accounts.Create(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (s *Server) me(c *gin.Context) {
	id, _ := accountID(c)
	view, err := s.accounts.Get(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) deleteUser(c *gin.Context) {
	id, _ := accountID(c)
	if err := s.accounts.Delete(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	s.clearSessionCookies(c)
	c.JSON(http.StatusOK, messageResponse{Message: "account deleted"})
}

// updatePassword takes the new password as the raw request body.
func (s *Server) updatePassword(c *gin.Context) {
	id, _ := accountID(c)
	body, err := readRaw(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.accounts.ChangePassword(c.Request.Context(), id, body); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "password updated"})
}

func (s *Server) usernameAvailable(c *gin.Context) {
	s.availability(c, s.accounts.CheckUsernameAvailable)
}

func (s *Server) emailAvailable(c *gin.Context) {
	s.availability(c, s.accounts.CheckEmailAvailable)
}

// availability answers 200 when the value is free and 409 when taken.
func (s *Server) availability(c *gin.Context, check func(ctx context.Context, v string) (bool, error)) {
	body, err := readRaw(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	free, err := check(c.Request.Context(), body)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !free {
		c.JSON(http.StatusConflict, gin.H{"available": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": true})
}

func (s *Server) verify(c *gin.Context) {
	err := s.accounts.Verify(c.Request.Context(), c.Param("username"), c.Param("token"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "account verified"})
}

func readRaw(c *gin.Context) (string, error) {
	b, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRawBody+1))
	if err != nil {
		return "", fmt.Errorf("%w: unreadable body", common.ErrorValidation)
	}
	if len(b) > maxRawBody {
		return "", fmt.Errorf("%w: body too large", common.ErrorValidation)
	}
	return string(b), nil
}
