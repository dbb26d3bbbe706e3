package auth

import (
	"strings"
	"time"

	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
)

// LoginRequest captures the credentials posted by the login form.
type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

// SignupRequest is the registration form. Passwords must match before the
// backend is called.
type SignupRequest struct {
	Name            string `json:"name" validate:"required,max=120"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	RememberMe      bool   `json:"remember_me"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// SessionView is what the gateway tells the browser about its sign-in state.
// The backend token itself never leaves the gateway.
type SessionView struct {
	Authenticated bool        `json:"authenticated"`
	User          *types.User `json:"user,omitempty"`
	ExpiresAt     *time.Time  `json:"expires_at,omitempty"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
