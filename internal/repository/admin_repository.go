package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/student-complaints/internal/models"
)

// AdminRepository reads admin credentials. Admins are provisioned by complaintctl only.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository constructs an AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// FindByAdminID returns an admin by its login id. sql.ErrNoRows is returned unwrapped when absent.
func (r *AdminRepository) FindByAdminID(ctx context.Context, adminID string) (*models.Admin, error) {
	const query = `SELECT id, admin_id, password FROM admins WHERE admin_id = $1 LIMIT 1`
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, adminID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find admin by admin_id: %w", err)
	}
	return &admin, nil
}

// Upsert creates the admin or replaces the password hash of an existing one.
func (r *AdminRepository) Upsert(ctx context.Context, admin *models.Admin) error {
	const query = `INSERT INTO admins (admin_id, password) VALUES ($1, $2)
        ON CONFLICT (admin_id) DO UPDATE SET password = EXCLUDED.password
        RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, admin.AdminID, admin.PasswordHash).Scan(&admin.ID); err != nil {
		return fmt.Errorf("upsert admin: %w", err)
	}
	return nil
}
