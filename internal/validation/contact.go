package validation

import (
	"github.com/templui/folio/internal/model"
)

type ContactInput struct {
	Email            string  `json:"email"`
	Phone            string  `json:"phone"`
	Location         string  `json:"location"`
	GitHub           *string `json:"github"`
	LinkedIn         *string `json:"linkedin"`
	Twitter          *string `json:"twitter"`
	Website          *string `json:"website"`
	OpenToRelocation bool    `json:"openToRelocation"`
	AvailableForWork bool    `json:"availableForWork"`
}

// ValidateContact returns the normalized Contact fields. Social links missing
// a scheme get https:// before they are checked.
func ValidateContact(in ContactInput) (*model.Contact, error) {
	e := &Error{}
	out := &model.Contact{
		OpenToRelocation: in.OpenToRelocation,
		AvailableForWork: in.AvailableForWork,
	}

	out.Email = checkEmail(e, "email", in.Email)
	out.Phone = minLen(e, "phone", in.Phone, 5, "phone must be at least 5 characters")
	out.Location = minLen(e, "location", in.Location, 2, "location must be at least 2 characters")

	out.GitHub = optionalURLPtr(e, "github", in.GitHub)
	out.LinkedIn = optionalURLPtr(e, "linkedin", in.LinkedIn)
	out.Twitter = optionalURLPtr(e, "twitter", in.Twitter)
	out.Website = optionalURLPtr(e, "website", in.Website)

	return out, e.Err()
}
