package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-complaints/internal/models"
)

const findStudentQuery = `SELECT id, register_number, department, year FROM students
        WHERE register_number = $1 AND department = $2 AND year = $3 LIMIT 1`

func TestFindByIdentityMatch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(findStudentQuery)).
		WithArgs("21CS001", "CSE", "3").
		WillReturnRows(sqlmock.NewRows([]string{"id", "register_number", "department", "year"}).AddRow(1, "21CS001", "CSE", "3"))

	student, err := repo.FindByIdentity(context.Background(), "21CS001", "CSE", "3")
	require.NoError(t, err)
	require.NotNil(t, student)
	assert.Equal(t, "CSE", student.Department)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIdentityNoMatch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(findStudentQuery)).
		WithArgs("21CS001", "ECE", "3").
		WillReturnRows(sqlmock.NewRows([]string{"id", "register_number", "department", "year"}))

	student, err := repo.FindByIdentity(context.Background(), "21CS001", "ECE", "3")
	require.NoError(t, err)
	assert.Nil(t, student)
}

func TestFindByIdentityStoreError(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("FROM students").WillReturnError(errors.New("timeout"))

	_, err := repo.FindByIdentity(context.Background(), "a", "b", "c")
	assert.Error(t, err)
}

func TestUpsertStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(`INSERT INTO students .* ON CONFLICT \(register_number\) DO UPDATE`).
		WithArgs("21CS001", "CSE", "3").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Upsert(context.Background(), &models.Student{RegisterNumber: "21CS001", Department: "CSE", Year: "3"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
