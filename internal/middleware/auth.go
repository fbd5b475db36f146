package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-complaints/internal/session"
	"github.com/noah-isme/student-complaints/pkg/response"
)

// RequireStudent redirects to /login unless a student is signed in. The admin flag does not count.
func RequireStudent(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := session.Load(c)
		if st.LoggedIn() {
			c.Next()
			return
		}
		st.AddFlash(session.FlashError, message)
		st.Commit()
		response.Redirect(c, "/login")
		c.Abort()
	}
}

// RequireAdmin redirects to /admin_login unless the admin flag is set. A student login does not count.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		st := session.Load(c)
		if st.AdminLoggedIn {
			c.Next()
			return
		}
		st.AddFlash(session.FlashError, "Please log in as admin.")
		st.Commit()
		response.Redirect(c, "/admin_login")
		c.Abort()
	}
}
