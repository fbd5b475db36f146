package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schemaStatements creates the four application tables. Every statement is idempotent.
var schemaStatements = []struct {
	table string
	ddl   string
}{
	{"users", `CREATE TABLE IF NOT EXISTS users (
        id BIGSERIAL PRIMARY KEY,
        username VARCHAR(50) UNIQUE NOT NULL,
        password VARCHAR(255) NOT NULL
    )`},
	{"students", `CREATE TABLE IF NOT EXISTS students (
        id BIGSERIAL PRIMARY KEY,
        register_number VARCHAR(20) UNIQUE NOT NULL,
        department VARCHAR(50) NOT NULL,
        year VARCHAR(10) NOT NULL
    )`},
	{"complaints", `CREATE TABLE IF NOT EXISTS complaints (
        complaint_id BIGSERIAL PRIMARY KEY,
        student_name VARCHAR(100) NOT NULL,
        email VARCHAR(100) NOT NULL,
        register_number VARCHAR(20) NOT NULL,
        department VARCHAR(50) NOT NULL,
        year VARCHAR(10) NOT NULL,
        category VARCHAR(50) NOT NULL,
        title VARCHAR(100) NOT NULL,
        description TEXT NOT NULL,
        status VARCHAR(20) NOT NULL DEFAULT 'Submitted'
            CHECK (status IN ('Submitted', 'Pending', 'In Progress', 'Resolved')),
        submitted_on TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
    )`},
	{"admins", `CREATE TABLE IF NOT EXISTS admins (
        id BIGSERIAL PRIMARY KEY,
        admin_id VARCHAR(50) UNIQUE NOT NULL,
        password VARCHAR(255) NOT NULL
    )`},
}

// SchemaRepository owns the DDL for the application tables.
type SchemaRepository struct {
	db *sqlx.DB
}

// NewSchemaRepository constructs a SchemaRepository.
func NewSchemaRepository(db *sqlx.DB) *SchemaRepository {
	return &SchemaRepository{db: db}
}

// Ping verifies the database is reachable.
func (r *SchemaRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Apply pings the database and creates all tables in one transaction. Either every table
// statement commits or none does.
func (r *SchemaRepository) Apply(ctx context.Context) (err error) {
	if err := r.Ping(ctx); err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range schemaStatements {
		if _, err = tx.ExecContext(ctx, stmt.ddl); err != nil {
			return fmt.Errorf("create table %s: %w", stmt.table, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
