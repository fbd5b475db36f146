package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/student-complaints/internal/models"
	"github.com/noah-isme/student-complaints/internal/service"
	"github.com/noah-isme/student-complaints/internal/session"
	"github.com/noah-isme/student-complaints/internal/web"
	appErrors "github.com/noah-isme/student-complaints/pkg/errors"
	"github.com/noah-isme/student-complaints/pkg/response"
)

type complaintService interface {
	Submit(ctx context.Context, req service.SubmitComplaintRequest) (*models.Complaint, error)
	ListByEmail(ctx context.Context, email string) ([]models.Complaint, error)
	ListAll(ctx context.Context) ([]models.Complaint, error)
	UpdateStatus(ctx context.Context, req service.UpdateStatusRequest) error
}

type submitPage struct {
	Form service.SubmitComplaintRequest
}

type complaintListPage struct {
	Email      string
	Complaints []models.Complaint
	Searched   bool
}

// ComplaintHandler serves complaint submission and the self-service lookups.
type ComplaintHandler struct {
	service complaintService
	logger  *zap.Logger
}

// NewComplaintHandler creates a new handler.
func NewComplaintHandler(svc complaintService, logger *zap.Logger) *ComplaintHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplaintHandler{service: svc, logger: logger}
}

// SubmitForm renders an empty complaint form.
func (h *ComplaintHandler) SubmitForm(c *gin.Context, st *session.State) {
	response.HTML(c, http.StatusOK, web.PageSubmitComplaint, web.NewView(st, submitPage{}))
}

// Submit files a complaint and shows the submitter's list on success.
func (h *ComplaintHandler) Submit(c *gin.Context, st *session.State) {
	var req service.SubmitComplaintRequest
	_ = c.ShouldBind(&req)

	if _, err := h.service.Submit(c.Request.Context(), req); err != nil {
		appErr := appErrors.FromError(err)
		if errors.Is(err, service.ErrNotVerifiedStudent) || errors.Is(err, appErrors.ErrValidation) {
			response.HTML(c, http.StatusOK, web.PageSubmitComplaint, web.NewView(st, submitPage{Form: req}).WithError(appErr.Message))
			return
		}
		st.AddFlash(session.FlashError, appErr.Message)
		response.HTML(c, http.StatusOK, web.PageSubmitComplaint, web.NewView(st, submitPage{Form: req}))
		return
	}

	st.AddFlash(session.FlashSuccess, "Complaint submitted successfully.")
	if err := st.Save(); err != nil {
		h.logger.Error("save session", zap.Error(err))
	}
	response.Redirect(c, "/my_complaint?email="+url.QueryEscape(req.Email))
}

// MyComplaints lists complaints for the email in the query string. No session is required.
func (h *ComplaintHandler) MyComplaints(c *gin.Context, st *session.State) {
	email := c.Query("email")
	page := complaintListPage{Email: email, Searched: true}

	complaints, err := h.service.ListByEmail(c.Request.Context(), email)
	if err != nil {
		st.AddFlash(session.FlashError, appErrors.FromError(err).Message)
		complaints = []models.Complaint{}
	}
	page.Complaints = complaints
	response.HTML(c, http.StatusOK, web.PageMyComplaint, web.NewView(st, page))
}

// SearchForm renders the email search form.
func (h *ComplaintHandler) SearchForm(c *gin.Context, st *session.State) {
	response.HTML(c, http.StatusOK, web.PageSearchComplaint, web.NewView(st, complaintListPage{}))
}

// Search lists complaints for the submitted email. No session is required.
func (h *ComplaintHandler) Search(c *gin.Context, st *session.State) {
	email := c.PostForm("email")
	page := complaintListPage{Email: email, Searched: true}

	complaints, err := h.service.ListByEmail(c.Request.Context(), email)
	if err != nil {
		st.AddFlash(session.FlashError, appErrors.FromError(err).Message)
		complaints = []models.Complaint{}
	}
	page.Complaints = complaints
	response.HTML(c, http.StatusOK, web.PageSearchComplaint, web.NewView(st, page))
}
