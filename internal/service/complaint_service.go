package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/student-complaints/internal/models"
	appErrors "github.com/noah-isme/student-complaints/pkg/errors"
)

type studentLookup interface {
	FindByIdentity(ctx context.Context, registerNumber, department, year string) (*models.Student, error)
}

type complaintRepository interface {
	Create(ctx context.Context, complaint *models.Complaint) error
	ListByEmail(ctx context.Context, email string) ([]models.Complaint, error)
	ListAll(ctx context.Context) ([]models.Complaint, error)
	Exists(ctx context.Context, id int64) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status models.ComplaintStatus) error
}

// Complaint errors surfaced to users.
var (
	ErrNotVerifiedStudent  = appErrors.WithCode(appErrors.ErrValidation, "NOT_VERIFIED_STUDENT", "You are not a verified student. Complaint not accepted.")
	ErrMissingStatusFields = appErrors.WithCode(appErrors.ErrValidation, "MISSING_FIELDS", "Missing complaint ID or status.")
	ErrInvalidStatus       = appErrors.WithCode(appErrors.ErrValidation, "INVALID_STATUS", "Invalid status selected.")
	ErrComplaintNotFound   = appErrors.WithCode(appErrors.ErrNotFound, "COMPLAINT_NOT_FOUND", "Complaint ID does not exist.")
)

// SubmitComplaintRequest holds the complaint form.
type SubmitComplaintRequest struct {
	Name           string `form:"name" validate:"required,max=100"`
	Email          string `form:"email" validate:"required,max=100"`
	RegisterNumber string `form:"register_number" validate:"required,max=20"`
	Department     string `form:"department" validate:"required,max=50"`
	Year           string `form:"year" validate:"required,max=10"`
	Category       string `form:"category" validate:"required,max=50"`
	Title          string `form:"title" validate:"required,max=100"`
	Description    string `form:"description" validate:"required"`
}

// UpdateStatusRequest holds the admin status form. Both fields arrive as raw form strings.
type UpdateStatusRequest struct {
	ComplaintID string `form:"complaint_id"`
	Status      string `form:"status"`
}

// ComplaintService implements complaint submission, lookup and triage.
type ComplaintService struct {
	students   studentLookup
	complaints complaintRepository
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewComplaintService constructs the complaint service.
func NewComplaintService(students studentLookup, complaints complaintRepository, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ComplaintService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplaintService{students: students, complaints: complaints, metrics: metrics, validator: validate, logger: logger}
}

// Submit files a complaint after verifying the student triple. Nothing is written on rejection.
func (s *ComplaintService) Submit(ctx context.Context, req SubmitComplaintRequest) (*models.Complaint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "All complaint fields are required.")
	}

	start := time.Now()
	student, err := s.students.FindByIdentity(ctx, req.RegisterNumber, req.Department, req.Year)
	s.metrics.ObserveDBQuery("students_find_by_identity", time.Since(start))
	if err != nil {
		s.logger.Error("student lookup failed", zap.String("register_number", req.RegisterNumber), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error submitting complaint.")
	}
	if student == nil {
		s.metrics.ComplaintRejected()
		return nil, ErrNotVerifiedStudent
	}

	complaint := &models.Complaint{
		StudentName:    req.Name,
		Email:          req.Email,
		RegisterNumber: student.RegisterNumber,
		Department:     student.Department,
		Year:           student.Year,
		Category:       req.Category,
		Title:          req.Title,
		Description:    req.Description,
	}

	start = time.Now()
	err = s.complaints.Create(ctx, complaint)
	s.metrics.ObserveDBQuery("complaints_create", time.Since(start))
	if err != nil {
		s.logger.Error("complaint insert failed", zap.String("email", req.Email), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error submitting complaint.")
	}

	s.metrics.ComplaintSubmitted()
	s.logger.Info("complaint submitted", zap.Int64("complaint_id", complaint.ID))
	return complaint, nil
}

// ListByEmail returns every complaint filed under email. A blank email yields an empty list.
func (s *ComplaintService) ListByEmail(ctx context.Context, email string) ([]models.Complaint, error) {
	if strings.TrimSpace(email) == "" {
		return []models.Complaint{}, nil
	}

	start := time.Now()
	complaints, err := s.complaints.ListByEmail(ctx, email)
	s.metrics.ObserveDBQuery("complaints_list_by_email", time.Since(start))
	if err != nil {
		s.logger.Error("complaint lookup failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error fetching complaints.")
	}
	return complaints, nil
}

// ListAll returns every complaint, newest first.
func (s *ComplaintService) ListAll(ctx context.Context) ([]models.Complaint, error) {
	start := time.Now()
	complaints, err := s.complaints.ListAll(ctx)
	s.metrics.ObserveDBQuery("complaints_list_all", time.Since(start))
	if err != nil {
		s.logger.Error("complaint listing failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error fetching complaints.")
	}
	return complaints, nil
}

// UpdateStatus validates the admin form and changes one complaint's status. Validation runs in
// order: presence, enum membership, existence. No write happens unless all pass.
func (s *ComplaintService) UpdateStatus(ctx context.Context, req UpdateStatusRequest) error {
	rawID := strings.TrimSpace(req.ComplaintID)
	if rawID == "" || req.Status == "" {
		return ErrMissingStatusFields
	}

	status := models.ComplaintStatus(req.Status)
	if !status.Valid() {
		return ErrInvalidStatus
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return ErrComplaintNotFound
	}

	exists, err := s.complaints.Exists(ctx, id)
	if err != nil {
		s.logger.Error("complaint existence check failed", zap.Int64("complaint_id", id), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error updating status.")
	}
	if !exists {
		return ErrComplaintNotFound
	}

	if err := s.complaints.UpdateStatus(ctx, id, status); err != nil {
		s.logger.Error("complaint status update failed", zap.Int64("complaint_id", id), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error updating status.")
	}

	s.metrics.StatusUpdated(string(status))
	s.logger.Info("complaint status updated", zap.Int64("complaint_id", id), zap.String("status", string(status)))
	return nil
}
