package schema

type (
	// TokenPair is the credential pair held by the token store.
	// An empty field means the corresponding token is absent.
	TokenPair struct {
		Access  string `json:"access" validate:"required"`
		Refresh string `json:"refresh,omitempty"`
	}

	// RefreshRequest is the token refresh endpoint payload.
	RefreshRequest struct {
		Access  string `json:"access,omitempty"`
		Refresh string `json:"refresh"`
	}

	// LoginRequest is the login endpoint payload.
	LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	// LoginResponse is returned by the login and registration endpoints.
	LoginResponse struct {
		Access  string `json:"access" validate:"required"`
		Refresh string `json:"refresh" validate:"required"`
		User    *User  `json:"user,omitempty"`
	}

	// Registration describes a new account; Avatar switches the request to multipart form data.
	Registration struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Password1 string `json:"password1"`
		Password2 string `json:"password2"`

		Avatar     []byte `json:"-"`
		AvatarName string `json:"-"`
	}

	// LogoutRequest blacklists the refresh token server side.
	LogoutRequest struct {
		Refresh string `json:"refresh,omitempty"`
	}
)

// Fields returns registration text fields for multipart encoding.
func (r *Registration) Fields() map[string]string {
	return map[string]string{
		"first_name": r.FirstName,
		"last_name":  r.LastName,
		"email":      r.Email,
		"password1":  r.Password1,
		"password2":  r.Password2,
	}
}
