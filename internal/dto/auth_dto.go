package dto

// LoginRequest carries credentials for the login passthrough.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginResponse mirrors the identity issued by the grading service.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"type"`
	UserID      int    `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
}
