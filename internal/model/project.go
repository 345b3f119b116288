package model

import (
	"database/sql/driver"
	"time"
)

// MaxProjectImages caps the image set of a single project.
const MaxProjectImages = 5

type Project struct {
	ID          string         `db:"id" json:"id"`
	CreatedByID string         `db:"created_by_id" json:"createdById"`
	Name        string         `db:"name" json:"name"`
	Role        string         `db:"role" json:"role"`
	Summary     string         `db:"summary" json:"summary"`
	Description *string        `db:"description" json:"description"`
	KeyFeatures Strings        `db:"key_features" json:"keyFeatures"`
	TechStack   TechStack      `db:"tech_stack" json:"techStack"`
	LiveURL     string         `db:"live_url" json:"liveUrl"`
	RepoURL     string         `db:"repo_url" json:"repoUrl"`
	IsFlagship  bool           `db:"is_flagship" json:"isFlagship"`
	Featured    bool           `db:"featured" json:"featured"`
	Published   bool           `db:"published" json:"published"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
	Images      []ProjectImage `db:"-" json:"images"`
}

// ImageKeys lists the storage keys of every image of the project.
func (p *Project) ImageKeys() []string {
	keys := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		if img.Key != "" {
			keys = append(keys, img.Key)
		}
	}
	return keys
}

type ProjectImage struct {
	ID        string    `db:"id" json:"id"`
	ProjectID string    `db:"project_id" json:"projectId"`
	URL       string    `db:"url" json:"url"`
	Key       string    `db:"storage_key" json:"key"`
	Alt       string    `db:"alt" json:"alt"`
	Order     int       `db:"position" json:"order"`
	IsCover   bool      `db:"is_cover" json:"isCover"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type TechItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type TechStack []TechItem

func (t TechStack) Value() (driver.Value, error) {
	if t == nil {
		t = TechStack{}
	}
	return valueJSON([]TechItem(t))
}

func (t *TechStack) Scan(src any) error {
	return scanJSON(src, (*[]TechItem)(t))
}

// Strings is an ordered list of strings stored as a JSON array.
type Strings []string

func (s Strings) Value() (driver.Value, error) {
	if s == nil {
		s = Strings{}
	}
	return valueJSON([]string(s))
}

func (s *Strings) Scan(src any) error {
	return scanJSON(src, (*[]string)(s))
}

// NormalizeImages renumbers images to 0..N-1 in slice order and leaves
// exactly one cover: the first flagged image, or images[0] when none is.
func NormalizeImages(images []ProjectImage) {
	cover := -1
	for i := range images {
		images[i].Order = i
		if images[i].IsCover && cover < 0 {
			cover = i
		}
		images[i].IsCover = false
	}
	if len(images) == 0 {
		return
	}
	if cover < 0 {
		cover = 0
	}
	images[cover].IsCover = true
}
