package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) routes() {
	r := s.engine

	authGroup := r.Group("/auth")
	{
		authGroup.GET("/", s.status)
		authGroup.POST("/token/get", s.login)
		authGroup.POST("/token/renew", s.requireSession(), s.verifyCSRF(), s.renew)
		authGroup.GET("/logout", s.logout)
	}

	r.POST("/create-user", s.createUser)

	users := r.Group("/users")
	{
		users.POST("/available/username", s.usernameAvailable)
		users.POST("/available/email", s.emailAvailable)
		users.GET("/verify/:username/:token", s.verify)

		protected := users.Group("")
		protected.Use(s.requireSession(), s.verifyCSRF())
		{
			protected.GET("/me", s.me)
			protected.DELETE("/delete-user", s.deleteUser)
			protected.POST("/me/update-password", s.updatePassword)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody{Code: "NOT_FOUND", Message: "no such route"})
	})
}
