package models

// SignupRequest holds the credentials for a new general account.
type SignupRequest struct {
	Username string `form:"username" validate:"required,max=50"`
	Password string `form:"password" validate:"required,max=72"`
}

// LoginRequest holds credentials for authenticating a general user.
type LoginRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	IP       string `form:"-"`
}

// AdminLoginRequest holds credentials for authenticating an admin.
type AdminLoginRequest struct {
	AdminID  string `form:"admin_id" validate:"required"`
	Password string `form:"password" validate:"required"`
	IP       string `form:"-"`
}
