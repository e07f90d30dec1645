package transport

// CredentialsRequest is the body of the sign-up and password grant endpoints.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TaskRequest is the insert body. A user_id in the body is ignored; the owner
// is always the authenticated user.
type TaskRequest struct {
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// TaskPatchRequest carries the fields to change; absent fields are left alone.
type TaskPatchRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}
