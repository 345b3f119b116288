package validation

import (
	"strings"

	"github.com/templui/folio/internal/model"
)

type MessageInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ValidateMessage checks a public hire request. Source and read state are set by the caller.
func ValidateMessage(in MessageInput) (*model.ContactMessage, error) {
	e := &Error{}
	out := &model.ContactMessage{}

	out.Name = minLen(e, "name", in.Name, 2, "name must be at least 2 characters")
	maxLen(e, "name", out.Name, 100, "name must be at most 100 characters")

	out.Email = checkEmail(e, "email", in.Email)

	if subject := strings.TrimSpace(in.Subject); subject != "" {
		maxLen(e, "subject", subject, 100, "subject must be at most 100 characters")
		out.Subject = &subject
	}

	out.Message = minLen(e, "message", in.Message, 10, "message must be at least 10 characters")
	maxLen(e, "message", out.Message, 2000, "message must be at most 2000 characters")

	return out, e.Err()
}
