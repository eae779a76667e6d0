package dto

// RegisterRequest carries a new account registration. MNumber is the
// institutional student number; it is required for students and ignored
// for teachers.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"type" validate:"required,oneof=teacher student"`
	MNumber  string `json:"M_number" validate:"required_if=Role student"`
}
