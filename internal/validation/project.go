package validation

import (
	"fmt"
	"strings"

	"github.com/templui/folio/internal/model"
)

type ImageInput struct {
	ID      string `json:"id,omitempty"`
	URL     string `json:"url"`
	Key     string `json:"key"`
	Alt     string `json:"alt"`
	IsCover bool   `json:"isCover"`
}

type ProjectInput struct {
	Name        string           `json:"name"`
	Role        string           `json:"role"`
	Summary     string           `json:"summary"`
	Description *string          `json:"description"`
	KeyFeatures string           `json:"keyFeatures"` // one feature per line
	TechStack   []model.TechItem `json:"techStack"`
	Images      []ImageInput     `json:"images"`
	LiveURL     string           `json:"liveUrl"`
	RepoURL     string           `json:"repoUrl"`
	IsFlagship  bool             `json:"isFlagship"`
	Featured    bool             `json:"featured"`
	Published   bool             `json:"published"`
}

// SplitLines splits newline-delimited input into trimmed, non-empty lines.
func SplitLines(s string) []string {
	lines := []string{}
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// ValidateProject returns the normalized Project with its images ordered
// 0..N-1 as given. Exactly one image must be flagged as cover when any exist.
func ValidateProject(in ProjectInput) (*model.Project, error) {
	e := &Error{}
	out := &model.Project{
		Role:       strings.TrimSpace(in.Role),
		IsFlagship: in.IsFlagship,
		Featured:   in.Featured,
		Published:  in.Published,
		Images:     []model.ProjectImage{},
	}

	out.Name = minLen(e, "name", in.Name, 3, "project name is too short")
	out.Summary = minLen(e, "summary", in.Summary, 10, "summary is too short")

	if in.Description != nil {
		if d := strings.TrimSpace(*in.Description); d != "" {
			if length(d) < 10 {
				e.Add("description", "description is too short")
			}
			out.Description = &d
		}
	}

	out.KeyFeatures = model.Strings(SplitLines(in.KeyFeatures))
	if len(out.KeyFeatures) == 0 {
		e.Add("keyFeatures", "add at least one feature")
	}

	out.TechStack = model.TechStack{}
	for i, t := range in.TechStack {
		item := model.TechItem{Key: strings.TrimSpace(t.Key), Value: strings.TrimSpace(t.Value)}
		if item.Key == "" || item.Value == "" {
			e.Add(fmt.Sprintf("techStack[%d]", i), "technology label and value are required")
			continue
		}
		out.TechStack = append(out.TechStack, item)
	}
	if len(in.TechStack) == 0 {
		e.Add("techStack", "add at least one technology")
	}

	out.LiveURL = optionalURL(e, "liveUrl", in.LiveURL)
	out.RepoURL = optionalURL(e, "repoUrl", in.RepoURL)

	out.Images = validateImages(e, in.Images)

	return out, e.Err()
}

func validateImages(e *Error, in []ImageInput) []model.ProjectImage {
	images := make([]model.ProjectImage, 0, len(in))
	if len(in) > model.MaxProjectImages {
		e.Add("images", fmt.Sprintf("a project can have at most %d images", model.MaxProjectImages))
	}

	covers := 0
	seen := make(map[string]struct{}, len(in))
	for i, img := range in {
		field := fmt.Sprintf("images[%d]", i)
		url := strings.TrimSpace(img.URL)
		key := strings.TrimSpace(img.Key)
		if key == "" {
			e.Add(field, "image is missing its storage key")
		} else if _, dup := seen[key]; dup {
			e.Add(field, "image is already in the project")
		}
		seen[key] = struct{}{}
		if err := ValidateURL(url); err != nil {
			e.Add(field, "image: "+err.Error())
		}
		if img.IsCover {
			covers++
		}
		images = append(images, model.ProjectImage{
			ID:      strings.TrimSpace(img.ID),
			URL:     url,
			Key:     key,
			Alt:     strings.TrimSpace(img.Alt),
			Order:   i,
			IsCover: img.IsCover,
		})
	}

	if len(in) > 0 && covers != 1 {
		e.Add("images", "exactly one image must be marked as cover")
	}

	return images
}
