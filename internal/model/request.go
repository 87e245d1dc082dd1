package model

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

type UpdateUserRequest struct {
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *Role   `json:"role,omitempty"`
}

type ListParams struct {
	Skip  int
	Limit int
}

type VerifyResponse struct {
	Valid bool     `json:"valid"`
	User  AuthUser `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
