package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/student-complaints/internal/models"
)

const complaintColumns = `complaint_id, student_name, email, register_number, department, year, category, title, description, status, submitted_on`

// ComplaintRepository persists complaints.
type ComplaintRepository struct {
	db *sqlx.DB
}

// NewComplaintRepository constructs a ComplaintRepository.
func NewComplaintRepository(db *sqlx.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

// Create inserts the complaint with status Submitted in a single statement. The generated id,
// status and server timestamp are written back to complaint.
func (r *ComplaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	const query = `INSERT INTO complaints (student_name, email, register_number, department, year, category, title, description, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING complaint_id, submitted_on`
	complaint.Status = models.ComplaintStatusSubmitted
	row := r.db.QueryRowxContext(ctx, query,
		complaint.StudentName,
		complaint.Email,
		complaint.RegisterNumber,
		complaint.Department,
		complaint.Year,
		complaint.Category,
		complaint.Title,
		complaint.Description,
		complaint.Status,
	)
	if err := row.Scan(&complaint.ID, &complaint.SubmittedOn); err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

// ListByEmail returns every complaint filed under email in insertion order.
func (r *ComplaintRepository) ListByEmail(ctx context.Context, email string) ([]models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE email = $1 ORDER BY complaint_id`
	complaints := []models.Complaint{}
	if err := r.db.SelectContext(ctx, &complaints, query, email); err != nil {
		return nil, fmt.Errorf("list complaints by email: %w", err)
	}
	return complaints, nil
}

// ListAll returns every complaint, most recently submitted first.
func (r *ComplaintRepository) ListAll(ctx context.Context) ([]models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints ORDER BY submitted_on DESC, complaint_id DESC`
	complaints := []models.Complaint{}
	if err := r.db.SelectContext(ctx, &complaints, query); err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	return complaints, nil
}

// Exists reports whether a complaint with id is stored.
func (r *ComplaintRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM complaints WHERE complaint_id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check complaint: %w", err)
	}
	return true, nil
}

// UpdateStatus sets the status of complaint id.
func (r *ComplaintRepository) UpdateStatus(ctx context.Context, id int64, status models.ComplaintStatus) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE complaints SET status = $1 WHERE complaint_id = $2`, status, id); err != nil {
		return fmt.Errorf("update complaint status: %w", err)
	}
	return nil
}
