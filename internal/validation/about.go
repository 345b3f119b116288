package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/templui/folio/internal/model"
)

type ExperienceInput struct {
	Year        string `json:"year"`
	Title       string `json:"title"`
	Context     string `json:"context"`
	Description string `json:"description"`
}

type AboutInput struct {
	FullName           string            `json:"fullName"`
	Headline           string            `json:"headline"`
	SubHeadline        string            `json:"subHeadline"`
	ShortBio           string            `json:"shortBio"`
	LongBio            string            `json:"longBio"`
	Experience         []ExperienceInput `json:"experience"`
	Skills             []model.Skill     `json:"skills"`
	ProfileImage       *model.Asset      `json:"profileImage"`
	HeroImage          *model.Asset      `json:"heroImage"`
	Resume             *model.Asset      `json:"resume"`
	PortfolioStartYear *int              `json:"portfolioStartYear"`
}

// ValidateAbout returns the normalized About fields. Identity and timestamps
// are left for the caller.
func ValidateAbout(in AboutInput) (*model.About, error) {
	e := &Error{}
	out := &model.About{
		Experience: model.Experiences{},
		Skills:     model.Skills{},
	}

	out.FullName = minLen(e, "fullName", in.FullName, 2, "full name must be at least 2 characters")
	out.Headline = minLen(e, "headline", in.Headline, 2, "headline must be at least 2 characters")
	out.SubHeadline = minLen(e, "subHeadline", in.SubHeadline, 2, "sub headline must be at least 2 characters")
	out.ShortBio = minLen(e, "shortBio", in.ShortBio, 5, "short bio must be at least 5 characters")
	out.LongBio = strings.TrimSpace(in.LongBio)

	for i, x := range in.Experience {
		prefix := fmt.Sprintf("experience[%d].", i)
		item := model.Experience{
			Year:        minLen(e, prefix+"year", x.Year, 2, "experience year must be at least 2 characters"),
			Title:       minLen(e, prefix+"title", x.Title, 2, "experience title must be at least 2 characters"),
			Context:     strings.TrimSpace(x.Context),
			Description: minLen(e, prefix+"description", x.Description, 10, "experience description must be at least 10 characters"),
		}
		out.Experience = append(out.Experience, item)
	}

	for i, s := range in.Skills {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			e.Add(fmt.Sprintf("skills[%d].name", i), "skill name is required")
			continue
		}
		out.Skills = append(out.Skills, model.Skill{Name: name})
	}

	out.ProfileImage = checkAsset(e, model.AboutFieldProfileImage, in.ProfileImage)
	out.HeroImage = checkAsset(e, model.AboutFieldHeroImage, in.HeroImage)
	out.Resume = checkAsset(e, model.AboutFieldResume, in.Resume)

	if y := in.PortfolioStartYear; y != nil {
		if *y < 1970 || *y > time.Now().Year() {
			e.Add("portfolioStartYear", fmt.Sprintf("portfolio start year must be between 1970 and %d", time.Now().Year()))
		}
		year := *y
		out.PortfolioStartYear = &year
	}

	return out, e.Err()
}

// checkAsset accepts nil, or a handle carrying both a URL and a key.
func checkAsset(e *Error, field string, a *model.Asset) *model.Asset {
	if a == nil {
		return nil
	}
	out := &model.Asset{
		URL:  strings.TrimSpace(a.URL),
		Key:  strings.TrimSpace(a.Key),
		Name: strings.TrimSpace(a.Name),
	}
	if out.URL == "" && out.Key == "" {
		return nil
	}
	if out.Key == "" {
		e.Add(field, field+" is missing its storage key")
	}
	if err := ValidateURL(out.URL); err != nil {
		e.Add(field, field+": "+err.Error())
	}
	return out
}

// ValidateAsset checks a single upload handle being attached to an entity.
func ValidateAsset(field string, a *model.Asset) (*model.Asset, error) {
	e := &Error{}
	out := checkAsset(e, field, a)
	if out == nil && !e.Has(field) {
		e.Add(field, field+" is required")
	}
	return out, e.Err()
}
