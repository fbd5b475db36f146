package models

// Student is a verified roster entry. Complaints are accepted only for an exact
// (register_number, department, year) match.
type Student struct {
	ID             int64  `db:"id" json:"id"`
	RegisterNumber string `db:"register_number" json:"register_number"`
	Department     string `db:"department" json:"department"`
	Year           string `db:"year" json:"year"`
}
