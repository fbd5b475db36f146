package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/noah-isme/student-complaints/internal/models"
)

type adminUpserter interface {
	Upsert(ctx context.Context, admin *models.Admin) error
}

type studentUpserter interface {
	Upsert(ctx context.Context, student *models.Student) error
}

type passwordHasher interface {
	HashPassword(password string) (string, error)
}

var rosterHeader = []string{"register_number", "department", "year"}

// ImportResult summarises a roster import.
type ImportResult struct {
	Imported int
	Skipped  []string
}

// ProvisioningService backs the out-of-band admin and roster commands.
type ProvisioningService struct {
	admins   adminUpserter
	students studentUpserter
	hasher   passwordHasher
	logger   *zap.Logger
}

// NewProvisioningService constructs a ProvisioningService.
func NewProvisioningService(admins adminUpserter, students studentUpserter, hasher passwordHasher, logger *zap.Logger) *ProvisioningService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProvisioningService{admins: admins, students: students, hasher: hasher, logger: logger}
}

// CreateAdmin hashes password and creates or updates the admin.
func (s *ProvisioningService) CreateAdmin(ctx context.Context, adminID, password string) (*models.Admin, error) {
	adminID = strings.TrimSpace(adminID)
	if adminID == "" || password == "" {
		return nil, errors.New("admin id and password are required")
	}
	if utf8.RuneCountInString(adminID) > 50 {
		return nil, errors.New("admin id must be at most 50 characters")
	}

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return nil, err
	}
	admin := &models.Admin{AdminID: adminID, PasswordHash: hash}
	if err := s.admins.Upsert(ctx, admin); err != nil {
		return nil, err
	}
	s.logger.Info("admin provisioned", zap.String("admin_id", adminID))
	return admin, nil
}

// ImportStudents upserts every roster line from a CSV with a register_number,department,year
// header. Blank or over-long lines are skipped and reported; store errors abort the import.
func (s *ProvisioningService) ImportStudents(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = len(rosterHeader)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read roster header: %w", err)
	}
	for i, want := range rosterHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return nil, fmt.Errorf("roster header must be %s", strings.Join(rosterHeader, ","))
		}
	}

	result := &ImportResult{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("read roster: %w", err)
		}

		line, _ := reader.FieldPos(0)
		student := models.Student{
			RegisterNumber: strings.TrimSpace(record[0]),
			Department:     strings.TrimSpace(record[1]),
			Year:           strings.TrimSpace(record[2]),
		}
		if reason := invalidStudent(student); reason != "" {
			result.Skipped = append(result.Skipped, fmt.Sprintf("line %d: %s", line, reason))
			continue
		}
		if err := s.students.Upsert(ctx, &student); err != nil {
			return result, fmt.Errorf("line %d: %w", line, err)
		}
		result.Imported++
	}

	s.logger.Info("roster imported", zap.Int("imported", result.Imported), zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

// invalidStudent measures in characters to match the VARCHAR column limits.
func invalidStudent(st models.Student) string {
	switch {
	case st.RegisterNumber == "" || st.Department == "" || st.Year == "":
		return "empty field"
	case utf8.RuneCountInString(st.RegisterNumber) > 20:
		return "register_number longer than 20"
	case utf8.RuneCountInString(st.Department) > 50:
		return "department longer than 50"
	case utf8.RuneCountInString(st.Year) > 10:
		return "year longer than 10"
	}
	return ""
}
