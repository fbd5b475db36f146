package models

// User is a general (student) account stored in the users table.
type User struct {
	ID           int64  `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	PasswordHash string `db:"password" json:"-"`
}

// Admin is an administrator account provisioned out-of-band into the admins table.
type Admin struct {
	ID           int64  `db:"id" json:"id"`
	AdminID      string `db:"admin_id" json:"admin_id"`
	PasswordHash string `db:"password" json:"-"`
}
