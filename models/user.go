package models

// User is the server's record of an account, field names as returned by the
// auth endpoints.
type User struct {
	UserID   int    `json:"UserID"`
	Username string `json:"Username"`
	Email    string `json:"Email,omitempty"`
}

// LoginRequest is the body for /auth/login/.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the body for /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the success payload of login and (optionally) register.
type AuthResponse struct {
	Status string `json:"status,omitempty"`
	Token  string `json:"token"`
	User   User   `json:"user"`
}
