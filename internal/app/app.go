package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/templui/folio/internal/cache"
	"github.com/templui/folio/internal/config"
	"github.com/templui/folio/internal/db"
	"github.com/templui/folio/internal/jobs"
	"github.com/templui/folio/internal/markdown"
	"github.com/templui/folio/internal/repository"
	"github.com/templui/folio/internal/service"
	"github.com/templui/folio/internal/storage"
)

type App struct {
	Cfg     *config.Config
	DB      *sqlx.DB
	Cache   cache.Cache
	Storage storage.Storage

	UploadRepository repository.UploadRepository

	AuthService      *service.AuthService
	IdentityResolver *service.IdentityResolver
	UserService      *service.UserService
	EmailService     *service.EmailService
	AssetService     *service.AssetService
	AboutService     *service.AboutService
	ContactService   *service.ContactService
	ProjectService   *service.ProjectService
	MessageService   *service.MessageService
	AnalyticsService *service.AnalyticsService
	ViewService      *service.ViewService

	OrphanSweeper *jobs.OrphanSweeper
	scheduler     *jobs.Scheduler
}

// Options tweak startup for the operator CLI.
type Options struct {
	// SkipMigrations leaves the schema as is; `do migrate` manages it itself.
	SkipMigrations bool
}

func New(cfg *config.Config, opts Options) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if !opts.SkipMigrations {
		err = db.RunMigrations(database.DB, cfg.DBDriver)
		if err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	aboutRepository := repository.NewAboutRepository(database)
	contactRepository := repository.NewContactRepository(database)
	projectRepository := repository.NewProjectRepository(database)
	messageRepository := repository.NewMessageRepository(database)
	analyticsRepository := repository.NewAnalyticsRepository(database)
	uploadRepository := repository.NewUploadRepository(database)

	// Storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Cache
	viewCache, err := cache.New(cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.NotifyEmail,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	revalidator := service.NewRevalidator(viewCache)
	authService := service.NewAuthService(
		userRepository,
		revalidator,
		cfg.JWTSecret,
		cfg.JWTExpiry,
		cfg.IsProduction(),
	)
	identityResolver := service.NewIdentityResolver(authService, userRepository)
	sessionCache := service.NewSessionCache(viewCache, userRepository, cfg.CacheTTL)
	assetService := service.NewAssetService(fileStorage, uploadRepository, projectRepository)
	aboutService := service.NewAboutService(aboutRepository, assetService, revalidator)
	contactService := service.NewContactService(contactRepository, revalidator)
	projectService := service.NewProjectService(projectRepository, assetService, revalidator)
	analyticsService := service.NewAnalyticsService(analyticsRepository, revalidator)
	messageService := service.NewMessageService(messageRepository, analyticsService, emailService, revalidator)
	userService := service.NewUserService(
		userRepository,
		aboutRepository,
		projectRepository,
		authService,
		assetService,
		emailService,
		sessionCache,
		revalidator,
	)
	viewService := service.NewViewService(service.ViewDeps{
		UserRepository:    userRepository,
		AboutRepository:   aboutRepository,
		ContactRepository: contactRepository,
		ProjectRepository: projectRepository,
		AboutService:      aboutService,
		ContactService:    contactService,
		ProjectService:    projectService,
		MessageService:    messageService,
		AnalyticsService:  analyticsService,
		Cache:             viewCache,
		TTL:               cfg.CacheTTL,
		Parser:            markdown.NewParser(),
	})

	return &App{
		Cfg:              cfg,
		DB:               database,
		Cache:            viewCache,
		Storage:          fileStorage,
		UploadRepository: uploadRepository,
		AuthService:      authService,
		IdentityResolver: identityResolver,
		UserService:      userService,
		EmailService:     emailService,
		AssetService:     assetService,
		AboutService:     aboutService,
		ContactService:   contactService,
		ProjectService:   projectService,
		MessageService:   messageService,
		AnalyticsService: analyticsService,
		ViewService:      viewService,
		OrphanSweeper:    jobs.NewOrphanSweeper(uploadRepository, assetService, cfg.OrphanGracePeriod),
	}, nil
}

// StartJobs starts the background scheduler when a sweep schedule is set.
func (a *App) StartJobs() error {
	if !a.Cfg.OrphanSweepEnabled() {
		return nil
	}
	s, err := jobs.Start(a.Cfg.OrphanSweepSchedule, a.OrphanSweeper)
	if err != nil {
		return err
	}
	a.scheduler = s
	return nil
}

// Shutdown stops background jobs and releases the cache and database.
func (a *App) Shutdown(ctx context.Context) error {
	if a.scheduler != nil {
		a.scheduler.Stop(ctx)
	}

	var errs []error
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
