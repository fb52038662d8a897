package domain

// RegisterRequest is the payload of a registration call.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the payload of a login call.
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

// FieldError attributes a failure to one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// MutationResponse is the uniform result envelope of every auth operation.
type MutationResponse struct {
	Code    int          `json:"code"`
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
	User    *User        `json:"user,omitempty"`
}
