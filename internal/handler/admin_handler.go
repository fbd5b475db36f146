package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/student-complaints/internal/models"
	"github.com/noah-isme/student-complaints/internal/service"
	"github.com/noah-isme/student-complaints/internal/session"
	"github.com/noah-isme/student-complaints/internal/web"
	appErrors "github.com/noah-isme/student-complaints/pkg/errors"
	"github.com/noah-isme/student-complaints/pkg/response"
)

type complaintExporter interface {
	Complaints(ctx context.Context, format service.ExportFormat) (*service.ExportResult, error)
}

type dashboardPage struct {
	Complaints []models.Complaint
	Statuses   []models.ComplaintStatus
}

// AdminHandler serves the triage dashboard. Routes are expected behind middleware.RequireAdmin.
type AdminHandler struct {
	complaints complaintService
	exporter   complaintExporter
	logger     *zap.Logger
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(complaints complaintService, exporter complaintExporter, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{complaints: complaints, exporter: exporter, logger: logger}
}

// Dashboard lists every complaint, newest first.
func (h *AdminHandler) Dashboard(c *gin.Context, st *session.State) {
	page := dashboardPage{Statuses: models.ComplaintStatuses}

	complaints, err := h.complaints.ListAll(c.Request.Context())
	if err != nil {
		st.AddFlash(session.FlashError, appErrors.FromError(err).Message)
		complaints = []models.Complaint{}
	}
	page.Complaints = complaints
	response.HTML(c, http.StatusOK, web.PageAdminDashboard, web.NewView(st, page))
}

// UpdateStatus applies one status change and always returns to the dashboard.
func (h *AdminHandler) UpdateStatus(c *gin.Context, st *session.State) {
	var req service.UpdateStatusRequest
	_ = c.ShouldBind(&req)

	if err := h.complaints.UpdateStatus(c.Request.Context(), req); err != nil {
		st.AddFlash(session.FlashError, appErrors.FromError(err).Message)
	} else {
		st.AddFlash(session.FlashSuccess, "Status updated successfully.")
	}
	if err := st.Save(); err != nil {
		h.logger.Error("save session", zap.Error(err))
	}
	response.Redirect(c, "/admin")
}

// Export streams all complaints as csv or pdf.
func (h *AdminHandler) Export(c *gin.Context, st *session.State) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err == nil {
		var result *service.ExportResult
		if result, err = h.exporter.Complaints(c.Request.Context(), format); err == nil {
			h.logger.Info("complaints exported", zap.String("format", string(format)), zap.Int("rows", result.Rows))
			response.Attachment(c, result.Filename, result.ContentType, result.Payload)
			return
		}
	}

	st.AddFlash(session.FlashError, appErrors.FromError(err).Message)
	if saveErr := st.Save(); saveErr != nil {
		h.logger.Error("save session", zap.Error(saveErr))
	}
	response.Redirect(c, "/admin")
}
