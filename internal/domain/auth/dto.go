package auth

import (
	"strings"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/user"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/validator"
)

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            string `json:"role"`
}

func (r *RegisterRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	} else if len(r.Name) > 100 {
		errs.Add("name", "name must not exceed 100 characters")
	}

	validateEmail(&errs, r.Email)
	validatePassword(&errs, r.Password)

	if validator.IsEmpty(r.ConfirmPassword) {
		errs.Add("confirmPassword", "confirmPassword is required")
	} else if r.ConfirmPassword != r.Password {
		errs.Add("confirmPassword", "password and confirmPassword do not match")
	}

	if r.Role != "" && !validator.IsInSlice(r.Role, user.Roles) {
		errs.Add("role", "role must be one of "+strings.Join(user.Roles, ", "))
	}

	return errs.Err()
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors
	validateEmail(&errs, r.Email)
	if validator.IsEmpty(r.Password) {
		errs.Add("password", "password is required")
	}
	return errs.Err()
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (r *RefreshTokenRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.RefreshToken) {
		errs.Add("refreshToken", "refreshToken is required")
	}
	return errs.Err()
}

type SessionTrackingRequest struct {
	UserAgent string
	IPAddress string
}

type TokenResponse struct {
	AccessToken           string            `json:"accessToken"`
	AccessTokenExpiresIn  int64             `json:"accessTokenExpiresIn"`
	RefreshToken          string            `json:"refreshToken"`
	RefreshTokenExpiresIn int64             `json:"refreshTokenExpiresIn"`
	User                  user.UserResponse `json:"user"`
}

type AccessTokenResponse struct {
	AccessToken          string `json:"accessToken"`
	AccessTokenExpiresIn int64  `json:"accessTokenExpiresIn"`
}

func validateEmail(errs *validator.ValidationErrors, email string) {
	if validator.IsEmpty(email) {
		errs.Add("email", "email is required")
	} else if len(email) > 254 || !validator.IsValidEmail(email) {
		errs.Add("email", "email must be a valid email address")
	}
}

func validatePassword(errs *validator.ValidationErrors, password string) {
	if validator.IsEmpty(password) {
		errs.Add("password", "password is required")
	} else if len(password) < 8 {
		errs.Add("password", "password must be at least 8 characters long")
	} else if len(password) > 72 {
		errs.Add("password", "password must not exceed 72 characters")
	}
}
