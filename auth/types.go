package auth

// Credentials are sent once to the token endpoint and never stored.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the sign-up form accepted by the backend.
type Registration struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password2"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
}

// tokenResponse is returned by both the login and the refresh endpoints. Refresh is only
// present when the backend rotates refresh tokens.
type tokenResponse struct {
	Access   string  `json:"access"`
	Refresh  *string `json:"refresh,omitempty"`
	Username *string `json:"username,omitempty"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}
