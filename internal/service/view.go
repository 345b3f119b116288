package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/templui/folio/internal/cache"
	"github.com/templui/folio/internal/markdown"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/repository"
)

// Public projections. They carry only what anonymous visitors may see: no
// storage keys, owner ids or publication flags.

type OwnerView struct {
	Name      string `json:"name"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type AboutView struct {
	FullName        string             `json:"fullName"`
	Headline        string             `json:"headline"`
	SubHeadline     string             `json:"subHeadline"`
	ShortBio        string             `json:"shortBio"`
	LongBioHTML     string             `json:"longBioHtml"`
	Experience      []model.Experience `json:"experience"`
	Skills          []string           `json:"skills"`
	ProfileImageURL string             `json:"profileImageUrl,omitempty"`
	HeroImageURL    string             `json:"heroImageUrl,omitempty"`
	HasResume       bool               `json:"hasResume"`
	YearsActive     string             `json:"yearsActive,omitempty"`
}

type ContactView struct {
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Location         string `json:"location"`
	GitHub           string `json:"github,omitempty"`
	LinkedIn         string `json:"linkedin,omitempty"`
	Twitter          string `json:"twitter,omitempty"`
	Website          string `json:"website,omitempty"`
	OpenToRelocation bool   `json:"openToRelocation"`
	AvailableForWork bool   `json:"availableForWork"`
}

type ImageView struct {
	URL     string `json:"url"`
	Alt     string `json:"alt"`
	Order   int    `json:"order"`
	IsCover bool   `json:"isCover"`
}

type ProjectView struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Role        string           `json:"role"`
	Summary     string           `json:"summary"`
	Description string           `json:"description,omitempty"`
	KeyFeatures []string         `json:"keyFeatures"`
	TechStack   []model.TechItem `json:"techStack"`
	Images      []ImageView      `json:"images"`
	CoverURL    string           `json:"coverUrl,omitempty"`
	LiveURL     string           `json:"liveUrl,omitempty"`
	RepoURL     string           `json:"repoUrl,omitempty"`
	IsFlagship  bool             `json:"isFlagship"`
	Featured    bool             `json:"featured"`
}

type PortfolioView struct {
	Owner    *OwnerView    `json:"owner"`
	About    *AboutView    `json:"about"`
	Contact  *ContactView  `json:"contact"`
	Projects []ProjectView `json:"projects"`
}

// ViewService assembles read views and caches them by path until the next
// revalidation.
type ViewService struct {
	userRepository    repository.UserRepository
	aboutRepository   repository.AboutRepository
	contactRepository repository.ContactRepository
	projectRepository repository.ProjectRepository
	aboutService      *AboutService
	contactService    *ContactService
	projectService    *ProjectService
	messageService    *MessageService
	analyticsService  *AnalyticsService
	cache             cache.Cache
	ttl               time.Duration
	parser            *markdown.Parser
	now               func() time.Time
}

type ViewDeps struct {
	UserRepository    repository.UserRepository
	AboutRepository   repository.AboutRepository
	ContactRepository repository.ContactRepository
	ProjectRepository repository.ProjectRepository
	AboutService      *AboutService
	ContactService    *ContactService
	ProjectService    *ProjectService
	MessageService    *MessageService
	AnalyticsService  *AnalyticsService
	Cache             cache.Cache
	TTL               time.Duration
	Parser            *markdown.Parser
}

func NewViewService(d ViewDeps) *ViewService {
	return &ViewService{
		userRepository:    d.UserRepository,
		aboutRepository:   d.AboutRepository,
		contactRepository: d.ContactRepository,
		projectRepository: d.ProjectRepository,
		aboutService:      d.AboutService,
		contactService:    d.ContactService,
		projectService:    d.ProjectService,
		messageService:    d.MessageService,
		analyticsService:  d.AnalyticsService,
		cache:             d.Cache,
		ttl:               d.TTL,
		parser:            d.Parser,
		now:               time.Now,
	}
}

// cached serves key from the cache or stores the result of load under it.
// Cache failures degrade to uncached reads.
func cached[T any](ctx context.Context, s *ViewService, key string, load func() (T, error)) (T, error) {
	v, err := cache.GetJSON[T](ctx, s.cache, key)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		slog.Warn("view cache read failed", "key", key, "error", err)
	}

	v, err = load()
	if err != nil {
		return v, err
	}

	if err := cache.SetJSON(ctx, s.cache, key, v, s.ttl); err != nil {
		slog.Warn("view cache write failed", "key", key, "error", err)
	}
	return v, nil
}

// owner is the canonical site owner, or nil before any admin exists.
func (s *ViewService) owner(ctx context.Context) (*model.User, error) {
	owner, err := s.userRepository.FirstAdmin(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}
		return nil, upstream("get site owner", err)
	}
	return owner, nil
}

func (s *ViewService) Portfolio(ctx context.Context) (*PortfolioView, error) {
	return cached(ctx, s, viewKey(PathHome, "public"), func() (*PortfolioView, error) {
		view := &PortfolioView{Projects: []ProjectView{}}

		owner, err := s.owner(ctx)
		if err != nil || owner == nil {
			return view, err
		}

		view.Owner = &OwnerView{Name: owner.Name, Username: owner.Username}
		if owner.Avatar != nil {
			view.Owner.AvatarURL = owner.Avatar.URL
		}

		if view.About, err = s.publicAbout(ctx, owner.ID); err != nil {
			return nil, err
		}
		if view.Contact, err = s.publicContact(ctx, owner.ID); err != nil {
			return nil, err
		}
		if view.Projects, err = s.publicProjects(ctx, owner.ID); err != nil {
			return nil, err
		}
		return view, nil
	})
}

func (s *ViewService) About(ctx context.Context) (*AboutView, error) {
	return cached(ctx, s, viewKey(PathAbout, "public"), func() (*AboutView, error) {
		owner, err := s.owner(ctx)
		if err != nil || owner == nil {
			return nil, err
		}
		return s.publicAbout(ctx, owner.ID)
	})
}

func (s *ViewService) Contact(ctx context.Context) (*ContactView, error) {
	return cached(ctx, s, viewKey(PathContact, "public"), func() (*ContactView, error) {
		owner, err := s.owner(ctx)
		if err != nil || owner == nil {
			return nil, err
		}
		return s.publicContact(ctx, owner.ID)
	})
}

func (s *ViewService) Projects(ctx context.Context) ([]ProjectView, error) {
	return cached(ctx, s, viewKey(PathProjects, "public"), func() ([]ProjectView, error) {
		owner, err := s.owner(ctx)
		if err != nil || owner == nil {
			return []ProjectView{}, err
		}
		return s.publicProjects(ctx, owner.ID)
	})
}

// ResumeURL returns the owner's resume link, or "" when none is attached.
func (s *ViewService) ResumeURL(ctx context.Context) (string, error) {
	owner, err := s.owner(ctx)
	if err != nil || owner == nil {
		return "", err
	}
	about, err := s.aboutRepository.ByOwner(ctx, owner.ID)
	if err != nil {
		if errors.Is(err, repository.ErrAboutNotFound) {
			return "", nil
		}
		return "", upstream("get about", err)
	}
	if about.Resume == nil {
		return "", nil
	}
	return about.Resume.URL, nil
}

func (s *ViewService) publicAbout(ctx context.Context, ownerID string) (*AboutView, error) {
	about, err := s.aboutRepository.ByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrAboutNotFound) {
			return nil, nil
		}
		return nil, upstream("get about", err)
	}

	longBio, err := s.parser.RenderString(about.LongBio)
	if err != nil {
		return nil, fmt.Errorf("render long bio: %w", err)
	}

	view := &AboutView{
		FullName:    about.FullName,
		Headline:    about.Headline,
		SubHeadline: about.SubHeadline,
		ShortBio:    about.ShortBio,
		LongBioHTML: longBio,
		Experience:  []model.Experience(about.Experience),
		Skills:      make([]string, 0, len(about.Skills)),
		HasResume:   about.Resume != nil,
		YearsActive: yearsActive(about.PortfolioStartYear, s.now().Year()),
	}
	if view.Experience == nil {
		view.Experience = []model.Experience{}
	}
	for _, skill := range about.Skills {
		view.Skills = append(view.Skills, skill.Name)
	}
	if about.ProfileImage != nil {
		view.ProfileImageURL = about.ProfileImage.URL
	}
	if about.HeroImage != nil {
		view.HeroImageURL = about.HeroImage.URL
	}
	return view, nil
}

// yearsActive renders "2019–2026", or just the current year when the start
// year is missing or not in the past.
func yearsActive(start *int, current int) string {
	if start == nil || *start >= current {
		return strconv.Itoa(current)
	}
	return fmt.Sprintf("%d–%d", *start, current)
}

func (s *ViewService) publicContact(ctx context.Context, ownerID string) (*ContactView, error) {
	contact, err := s.contactRepository.ByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return nil, nil
		}
		return nil, upstream("get contact", err)
	}

	return &ContactView{
		Email:            contact.Email,
		Phone:            contact.Phone,
		Location:         contact.Location,
		GitHub:           deref(contact.GitHub),
		LinkedIn:         deref(contact.LinkedIn),
		Twitter:          deref(contact.Twitter),
		Website:          deref(contact.Website),
		OpenToRelocation: contact.OpenToRelocation,
		AvailableForWork: contact.AvailableForWork,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *ViewService) publicProjects(ctx context.Context, ownerID string) ([]ProjectView, error) {
	projects, err := s.projectRepository.ListByOwner(ctx, ownerID, true)
	if err != nil {
		return nil, upstream("list projects", err)
	}

	views := make([]ProjectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, projectView(p))
	}
	return views, nil
}

func projectView(p *model.Project) ProjectView {
	view := ProjectView{
		ID:          p.ID,
		Name:        p.Name,
		Role:        p.Role,
		Summary:     p.Summary,
		Description: deref(p.Description),
		KeyFeatures: []string(p.KeyFeatures),
		TechStack:   []model.TechItem(p.TechStack),
		Images:      make([]ImageView, 0, len(p.Images)),
		LiveURL:     p.LiveURL,
		RepoURL:     p.RepoURL,
		IsFlagship:  p.IsFlagship,
		Featured:    p.Featured,
	}
	for _, img := range p.Images {
		view.Images = append(view.Images, ImageView{URL: img.URL, Alt: img.Alt, Order: img.Order, IsCover: img.IsCover})
		if img.IsCover {
			view.CoverURL = img.URL
		}
	}
	return view
}

// Admin views. Access is checked before the cache is consulted.

func (s *ViewService) AdminAbout(ctx context.Context, caller *model.User) (*model.About, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return cached(ctx, s, viewKey(PathDashboardAbout, caller.ID), func() (*model.About, error) {
		return s.aboutService.Get(ctx, caller)
	})
}

func (s *ViewService) AdminContact(ctx context.Context, caller *model.User) (*model.Contact, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return cached(ctx, s, viewKey(PathDashboardContact, caller.ID), func() (*model.Contact, error) {
		return s.contactService.Get(ctx, caller)
	})
}

func (s *ViewService) AdminProjects(ctx context.Context, caller *model.User) ([]*model.Project, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return cached(ctx, s, viewKey(PathDashboardProjects, caller.ID), func() ([]*model.Project, error) {
		return s.projectService.List(ctx, caller)
	})
}

func (s *ViewService) AdminMessages(ctx context.Context, caller *model.User, page, perPage int) (*MessagePage, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	key := viewKey(PathDashboardMessages, strconv.Itoa(page), strconv.Itoa(perPage))
	return cached(ctx, s, key, func() (*MessagePage, error) {
		return s.messageService.List(ctx, caller, page, perPage)
	})
}

func (s *ViewService) AdminAnalytics(ctx context.Context, caller *model.User, days int) (*AnalyticsSummary, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	// Keyed by day so the window moves at midnight.
	key := viewKey(PathDashboardStats, model.Day(s.now()).Format(model.DateLayout), strconv.Itoa(days))
	return cached(ctx, s, key, func() (*AnalyticsSummary, error) {
		return s.analyticsService.Summary(ctx, caller, days)
	})
}
