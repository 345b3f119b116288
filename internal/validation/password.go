package validation

import (
	"errors"
	"strings"
	"unicode"
)

const (
	minPasswordLength = 6
	// bcrypt silently truncates passwords longer than 72 bytes
	maxPasswordBytes = 72
)

// ValidatePassword checks a registration password: at least six
// characters with one uppercase letter and one digit.
func ValidatePassword(password string) error {
	if err := ValidateNewPassword(password); err != nil {
		return err
	}

	var hasUpper, hasDigit bool
	for _, r := range password {
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if unicode.IsDigit(r) {
			hasDigit = true
		}
	}
	if !hasUpper || !hasDigit {
		return errors.New("password must contain at least one uppercase letter and one number")
	}

	return nil
}

// ValidateNewPassword checks the length rules that apply to every password change.
func ValidateNewPassword(password string) error {
	if length(password) < minPasswordLength {
		return errors.New("password must be at least 6 characters")
	}
	if len(password) > maxPasswordBytes {
		return errors.New("password must not exceed 72 bytes")
	}
	return nil
}

// RegisterInput is the credential form for new accounts.
type RegisterInput struct {
	Name            string `json:"name"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ValidateRegister normalizes in and checks every field. The password is never trimmed.
func ValidateRegister(in RegisterInput) (RegisterInput, error) {
	e := &Error{}
	out := RegisterInput{Password: in.Password, ConfirmPassword: in.ConfirmPassword}

	out.Name = strings.TrimSpace(in.Name)
	if err := ValidateName(out.Name); err != nil {
		e.Add("name", err.Error())
	}

	out.Username = NormalizeUsername(in.Username)
	if err := ValidateUsername(out.Username); err != nil {
		e.Add("username", err.Error())
	}

	out.Email = checkEmail(e, "email", in.Email)

	if err := ValidatePassword(in.Password); err != nil {
		e.Add("password", err.Error())
	}
	if in.Password != in.ConfirmPassword {
		e.Add("confirmPassword", "passwords do not match")
	}

	return out, e.Err()
}

// LoginInput is the password sign-in form.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func ValidateLogin(in LoginInput) (LoginInput, error) {
	e := &Error{}
	out := LoginInput{Password: in.Password}

	out.Email = checkEmail(e, "email", in.Email)
	if in.Password == "" {
		e.Add("password", "password is required")
	}

	return out, e.Err()
}

// ChangePasswordInput is the self-service password change.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ValidateChangePassword checks the shape of the form. Verifying the current
// password against the stored hash is the caller's job.
func ValidateChangePassword(in ChangePasswordInput) error {
	e := &Error{}

	if in.CurrentPassword == "" {
		e.Add("currentPassword", "current password is required")
	}
	if err := ValidateNewPassword(in.NewPassword); err != nil {
		e.Add("newPassword", err.Error())
	}
	if in.NewPassword != in.ConfirmPassword {
		e.Add("confirmPassword", "passwords do not match")
	}

	return e.Err()
}
