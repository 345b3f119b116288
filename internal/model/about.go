package model

import (
	"database/sql/driver"
	"time"
)

// Asset fields of About that can be attached and detached individually.
const (
	AboutFieldProfileImage = "profileImage"
	AboutFieldHeroImage    = "heroImage"
	AboutFieldResume       = "resume"
)

type About struct {
	ID                 string      `db:"id" json:"id"`
	CreatedByID        string      `db:"created_by_id" json:"createdById"`
	FullName           string      `db:"full_name" json:"fullName"`
	Headline           string      `db:"headline" json:"headline"`
	SubHeadline        string      `db:"sub_headline" json:"subHeadline"`
	ShortBio           string      `db:"short_bio" json:"shortBio"`
	LongBio            string      `db:"long_bio" json:"longBio"`
	Experience         Experiences `db:"experience" json:"experience"`
	Skills             Skills      `db:"skills" json:"skills"`
	ProfileImage       *Asset      `db:"profile_image" json:"profileImage"`
	HeroImage          *Asset      `db:"hero_image" json:"heroImage"`
	Resume             *Asset      `db:"resume" json:"resume"`
	PortfolioStartYear *int        `db:"portfolio_start_year" json:"portfolioStartYear"`
	CreatedAt          time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time   `db:"updated_at" json:"updatedAt"`
}

// AssetField returns the asset stored under one of the AboutField names.
func (a *About) AssetField(field string) (*Asset, bool) {
	switch field {
	case AboutFieldProfileImage:
		return a.ProfileImage, true
	case AboutFieldHeroImage:
		return a.HeroImage, true
	case AboutFieldResume:
		return a.Resume, true
	}
	return nil, false
}

// SetAssetField replaces the asset stored under field.
func (a *About) SetAssetField(field string, asset *Asset) bool {
	switch field {
	case AboutFieldProfileImage:
		a.ProfileImage = asset
	case AboutFieldHeroImage:
		a.HeroImage = asset
	case AboutFieldResume:
		a.Resume = asset
	default:
		return false
	}
	return true
}

// AssetKeys lists the storage keys of every attached asset.
func (a *About) AssetKeys() []string {
	var keys []string
	for _, asset := range []*Asset{a.ProfileImage, a.HeroImage, a.Resume} {
		if k := AssetKey(asset); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

type Experience struct {
	Year        string `json:"year"`
	Title       string `json:"title"`
	Context     string `json:"context,omitempty"`
	Description string `json:"description"`
}

type Skill struct {
	Name string `json:"name"`
}

type Experiences []Experience

func (e Experiences) Value() (driver.Value, error) {
	if e == nil {
		e = Experiences{}
	}
	return valueJSON([]Experience(e))
}

func (e *Experiences) Scan(src any) error {
	return scanJSON(src, (*[]Experience)(e))
}

type Skills []Skill

func (s Skills) Value() (driver.Value, error) {
	if s == nil {
		s = Skills{}
	}
	return valueJSON([]Skill(s))
}

func (s *Skills) Scan(src any) error {
	return scanJSON(src, (*[]Skill)(s))
}
