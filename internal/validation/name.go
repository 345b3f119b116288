package validation

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

var usernameRegex = regexp.MustCompile(`^[a-z0-9_.-]+$`)

// ValidateName validates a display name
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)

	if length(trimmed) < 2 {
		return errors.New("name must be at least 2 characters")
	}

	if length(trimmed) > 100 {
		return errors.New("name is too long (max 100 characters)")
	}

	return nil
}

// NormalizeUsername case-folds a username so "Ada" and "ada" collide.
// Casers are stateful, so each call builds its own.
func NormalizeUsername(username string) string {
	return cases.Fold().String(strings.TrimSpace(username))
}

// ValidateUsername validates a normalized username
func ValidateUsername(username string) error {
	if length(username) < 2 {
		return errors.New("username must be at least 2 characters")
	}
	if length(username) > 50 {
		return errors.New("username is too long (max 50 characters)")
	}
	if !usernameRegex.MatchString(username) {
		return errors.New("username can only contain letters, numbers, dots, dashes and underscores")
	}
	return nil
}

// ProfileInput is the self-service profile update.
type ProfileInput struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

// ValidateProfile returns the trimmed name and normalized username.
func ValidateProfile(in ProfileInput) (name, username string, err error) {
	e := &Error{}

	name = strings.TrimSpace(in.Name)
	if err := ValidateName(name); err != nil {
		e.Add("name", err.Error())
	}

	username = NormalizeUsername(in.Username)
	if err := ValidateUsername(username); err != nil {
		e.Add("username", err.Error())
	}

	return name, username, e.Err()
}
