package models

import "time"

// ComplaintStatus enumerates the lifecycle states an admin can assign.
type ComplaintStatus string

const (
	ComplaintStatusSubmitted  ComplaintStatus = "Submitted"
	ComplaintStatusPending    ComplaintStatus = "Pending"
	ComplaintStatusInProgress ComplaintStatus = "In Progress"
	ComplaintStatusResolved   ComplaintStatus = "Resolved"
)

// ComplaintStatuses lists every valid status in display order.
var ComplaintStatuses = []ComplaintStatus{
	ComplaintStatusSubmitted,
	ComplaintStatusPending,
	ComplaintStatusInProgress,
	ComplaintStatusResolved,
}

// Valid reports whether s is one of the fixed statuses. Matching is exact.
func (s ComplaintStatus) Valid() bool {
	for _, status := range ComplaintStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Complaint is a grievance filed by a verified student. Only Status changes after creation.
type Complaint struct {
	ID             int64           `db:"complaint_id" json:"complaint_id"`
	StudentName    string          `db:"student_name" json:"student_name"`
	Email          string          `db:"email" json:"email"`
	RegisterNumber string          `db:"register_number" json:"register_number"`
	Department     string          `db:"department" json:"department"`
	Year           string          `db:"year" json:"year"`
	Category       string          `db:"category" json:"category"`
	Title          string          `db:"title" json:"title"`
	Description    string          `db:"description" json:"description"`
	Status         ComplaintStatus `db:"status" json:"status"`
	SubmittedOn    time.Time       `db:"submitted_on" json:"submitted_on"`
}
