package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/student-complaints/internal/models"
)

// StudentRepository manages the verified student roster.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByIdentity looks up a student by exact register number, department and year.
// It returns (nil, nil) when no student matches.
func (r *StudentRepository) FindByIdentity(ctx context.Context, registerNumber, department, year string) (*models.Student, error) {
	const query = `SELECT id, register_number, department, year FROM students
        WHERE register_number = $1 AND department = $2 AND year = $3 LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, registerNumber, department, year); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find student by identity: %w", err)
	}
	return &student, nil
}

// Upsert inserts a roster entry or refreshes department and year for an existing register number.
func (r *StudentRepository) Upsert(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO students (register_number, department, year) VALUES (:register_number, :department, :year)
        ON CONFLICT (register_number) DO UPDATE SET department = EXCLUDED.department, year = EXCLUDED.year`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("upsert student: %w", err)
	}
	return nil
}
