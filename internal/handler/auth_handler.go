package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/student-complaints/internal/models"
	"github.com/noah-isme/student-complaints/internal/session"
	"github.com/noah-isme/student-complaints/internal/web"
	appErrors "github.com/noah-isme/student-complaints/pkg/errors"
	"github.com/noah-isme/student-complaints/pkg/response"
)

type authService interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.User, error)
	AdminLogin(ctx context.Context, req models.AdminLoginRequest) (*models.Admin, error)
}

// AuthHandler serves the student and admin sign-in pages.
type AuthHandler struct {
	service authService
	logger  *zap.Logger
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{service: svc, logger: logger}
}

// Home greets a signed-in student or sends the browser to /login.
func (h *AuthHandler) Home(c *gin.Context, st *session.State) {
	if !st.LoggedIn() {
		response.Redirect(c, "/login")
		return
	}
	response.HTML(c, http.StatusOK, web.PageHome, web.NewView(st, nil))
}

// LoginForm renders the student login page.
func (h *AuthHandler) LoginForm(c *gin.Context, st *session.State) {
	response.HTML(c, http.StatusOK, web.PageLogin, web.NewView(st, nil))
}

// Login authenticates a student. Every failure redirects back with one generic message.
func (h *AuthHandler) Login(c *gin.Context, st *session.State) {
	var req models.LoginRequest
	_ = c.ShouldBind(&req)
	req.IP = c.ClientIP()

	user, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.redirectWithError(c, st, "/login", err)
		return
	}

	if err := st.SetUser(user.Username); err != nil {
		h.logger.Error("save session", zap.Error(err))
		h.redirectWithError(c, st, "/login", appErrors.ErrInternal)
		return
	}
	st.AddFlash(session.FlashSuccess, "Login successful!")
	h.save(st)
	response.Redirect(c, "/")
}

// SignupForm renders the signup page.
func (h *AuthHandler) SignupForm(c *gin.Context, st *session.State) {
	response.HTML(c, http.StatusOK, web.PageSignup, web.NewView(st, nil))
}

// Signup registers a student account. The session stays signed out.
func (h *AuthHandler) Signup(c *gin.Context, st *session.State) {
	var req models.SignupRequest
	_ = c.ShouldBind(&req)

	if _, err := h.service.Signup(c.Request.Context(), req); err != nil {
		h.redirectWithError(c, st, "/signup", err)
		return
	}

	st.AddFlash(session.FlashSuccess, "Signup successful! Please log in.")
	h.save(st)
	response.Redirect(c, "/login")
}

// Logout clears the student identity only.
func (h *AuthHandler) Logout(c *gin.Context, st *session.State) {
	if err := st.ClearUser(); err != nil {
		h.logger.Error("save session", zap.Error(err))
	}
	st.AddFlash(session.FlashSuccess, "You have been logged out.")
	h.save(st)
	response.Redirect(c, "/login")
}

// AdminLoginForm renders the admin login page.
func (h *AuthHandler) AdminLoginForm(c *gin.Context, st *session.State) {
	response.HTML(c, http.StatusOK, web.PageAdminLogin, web.NewView(st, nil))
}

// AdminLogin raises the admin flag on success and re-renders the form with the error otherwise.
func (h *AuthHandler) AdminLogin(c *gin.Context, st *session.State) {
	var req models.AdminLoginRequest
	_ = c.ShouldBind(&req)
	req.IP = c.ClientIP()

	if _, err := h.service.AdminLogin(c.Request.Context(), req); err != nil {
		appErr := appErrors.FromError(err)
		response.HTML(c, http.StatusOK, web.PageAdminLogin, web.NewView(st, nil).WithError(appErr.Message))
		return
	}

	if err := st.SetAdmin(); err != nil {
		h.logger.Error("save session", zap.Error(err))
		response.HTML(c, http.StatusOK, web.PageAdminLogin, web.NewView(st, nil).WithError("Error during login"))
		return
	}
	st.AddFlash(session.FlashSuccess, "Admin login successful!")
	h.save(st)
	response.Redirect(c, "/admin")
}

// AdminLogout clears the admin flag only.
func (h *AuthHandler) AdminLogout(c *gin.Context, st *session.State) {
	if err := st.ClearAdmin(); err != nil {
		h.logger.Error("save session", zap.Error(err))
	}
	st.AddFlash(session.FlashSuccess, "Admin logged out successfully.")
	h.save(st)
	response.Redirect(c, "/admin_login")
}

func (h *AuthHandler) redirectWithError(c *gin.Context, st *session.State, location string, err error) {
	st.AddFlash(session.FlashError, appErrors.FromError(err).Message)
	h.save(st)
	response.Redirect(c, location)
}

func (h *AuthHandler) save(st *session.State) {
	if err := st.Save(); err != nil {
		h.logger.Error("save session", zap.Error(err))
	}
}
