package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/student-complaints/internal/models"
)

type recordingUpserter struct {
	admins   []models.Admin
	students []models.Student
	err      error
}

func (r *recordingUpserter) upsertAdmin(admin *models.Admin) error {
	if r.err != nil {
		return r.err
	}
	r.admins = append(r.admins, *admin)
	return nil
}

type adminSink struct{ *recordingUpserter }

func (a adminSink) Upsert(ctx context.Context, admin *models.Admin) error {
	return a.upsertAdmin(admin)
}

type studentSink struct{ *recordingUpserter }

func (s studentSink) Upsert(ctx context.Context, student *models.Student) error {
	if s.err != nil {
		return s.err
	}
	s.students = append(s.students, *student)
	return nil
}

func newProvisioningForTest() (*ProvisioningService, *recordingUpserter) {
	rec := &recordingUpserter{}
	auth := newAuthServiceForTest(newMockAuthRepo(), nil)
	return NewProvisioningService(adminSink{rec}, studentSink{rec}, auth, nil), rec
}

func TestProvisioningCreateAdmin(t *testing.T) {
	svc, rec := newProvisioningForTest()

	admin, err := svc.CreateAdmin(context.Background(), " root ", "adminpw")
	require.NoError(t, err)
	assert.Equal(t, "root", admin.AdminID)
	require.Len(t, rec.admins, 1)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(rec.admins[0].PasswordHash), []byte("adminpw")))

	_, err = svc.CreateAdmin(context.Background(), "", "pw")
	assert.Error(t, err)
}

func TestProvisioningLimitsCountCharacters(t *testing.T) {
	svc, rec := newProvisioningForTest()

	// 50 characters, 100 bytes.
	admin, err := svc.CreateAdmin(context.Background(), strings.Repeat("é", 50), "adminpw")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 50), admin.AdminID)

	_, err = svc.CreateAdmin(context.Background(), strings.Repeat("é", 51), "adminpw")
	assert.Error(t, err)

	roster := strings.Join([]string{
		"register_number,department,year",
		strings.Repeat("ü", 20) + "," + strings.Repeat("é", 50) + ",3",
		strings.Repeat("ü", 21) + ",CSE,3",
	}, "\n")
	result, err := svc.ImportStudents(context.Background(), strings.NewReader(roster))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Skipped, 1)
	assert.Contains(t, result.Skipped[0], "register_number longer than 20")
	assert.Equal(t, strings.Repeat("é", 50), rec.students[0].Department)
}

func TestProvisioningImportStudents(t *testing.T) {
	svc, rec := newProvisioningForTest()
	roster := strings.Join([]string{
		"register_number,department,year",
		"R1, CSE, 3",
		"R2,ECE,2",
		",ECE,2",
		"R3,MECH,1",
	}, "\n")

	result, err := svc.ImportStudents(context.Background(), strings.NewReader(roster))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)
	require.Len(t, result.Skipped, 1)
	assert.Contains(t, result.Skipped[0], "line 4")
	assert.Equal(t, models.Student{RegisterNumber: "R1", Department: "CSE", Year: "3"}, rec.students[0])
}

func TestProvisioningImportStudentsRejectsBadInput(t *testing.T) {
	svc, _ := newProvisioningForTest()

	_, err := svc.ImportStudents(context.Background(), strings.NewReader("id,dept,yr\nR1,CSE,3\n"))
	assert.ErrorContains(t, err, "roster header")

	_, err = svc.ImportStudents(context.Background(), strings.NewReader("register_number,department,year\nR1,CSE\n"))
	assert.Error(t, err)
}

func TestProvisioningImportStudentsStoreError(t *testing.T) {
	svc, rec := newProvisioningForTest()
	rec.err = errors.New("db down")

	result, err := svc.ImportStudents(context.Background(), strings.NewReader("register_number,department,year\nR1,CSE,3\n"))
	require.Error(t, err)
	assert.Equal(t, 0, result.Imported)
}
