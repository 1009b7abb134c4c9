// Package bootstrap wires repositories, the review workflow and the HTTP
// surface into one application.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"content-review-cms/config"
	"content-review-cms/events"
	"content-review-cms/handlers"
	"content-review-cms/helper"
	"content-review-cms/middleware"
	"content-review-cms/models"
	"content-review-cms/repositories"
	"content-review-cms/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type App struct {
	Router *gin.Engine

	Bus          *events.Bus
	Allocator    *services.ReviewerAllocator
	AutoReviewer *services.AutoReviewer

	Auth         services.AuthService
	Articles     services.ArticleService
	Contents     services.ContentService
	Reviews      services.ReviewService
	ReviewStatus services.ReviewStatusService
	Staff        services.StaffService

	cancel context.CancelFunc
}

// Options tweak New per environment.
type Options struct {
	Clock          services.Clock
	RequestLogging bool
}

// New builds the application, rebuilds the reviewer ledger from db and
// starts the background consumers. Call Close to stop them.
func New(ctx context.Context, db *gorm.DB, cfg config.Config, logger *slog.Logger, opts Options) (*App, error) {
	clock := opts.Clock
	if clock == nil {
		clock = services.SystemClock()
	}
	workflow := cfg.Workflow

	userRepo := repositories.NewUserRepository(db)
	articleRepo := repositories.NewArticleRepository(db)
	metadataRepo := repositories.NewContentMetadataRepository(db)
	jobRepo := repositories.NewReviewJobRepository(db)
	staffRepo := repositories.NewStaffRepository(db)
	logRepo := repositories.NewContentStatusLogRepository(db)

	runCtx, cancel := context.WithCancel(ctx)
	app := &App{cancel: cancel}

	app.Bus = events.NewBus(workflow.EventQueueSize, logger)
	app.Allocator = services.NewReviewerAllocator(workflow.CanAutoReview, logger)
	if err := app.Allocator.Rebuild(ctx, jobRepo, staffRepo); err != nil {
		app.Close()
		return nil, fmt.Errorf("rebuild reviewer ledger: %w", err)
	}

	locks := services.NewContentLocks()
	app.ReviewStatus = services.NewReviewStatusService(jobRepo, app.Allocator, app.Bus, locks, workflow.ReReviewPolicy, clock, logger)
	app.AutoReviewer = services.NewAutoReviewer(
		workflow.AutoReviewWorkers,
		workflow.AutoReviewQueueSize,
		services.NewModerationPolicy(workflow.BannedTerms),
		app.ReviewStatus,
		logger,
	)
	app.Reviews = services.NewReviewService(jobRepo, app.Allocator, app.AutoReviewer, locks, clock, logger)

	permits := services.NewPermitChain(
		services.NewPasswordChecker(),
		services.NewUserChecker(),
		services.NewUserBlockChecker(userRepo, logger),
	)
	app.Contents = services.NewContentService(metadataRepo, logRepo, app.Reviews, app.ReviewStatus, permits, app.Bus, workflow, clock, logger)
	app.Staff = services.NewStaffService(staffRepo, userRepo, app.Allocator, logger)
	app.Auth = services.NewAuthService(userRepo, app.Staff, cfg.JWT, logger)
	app.Articles = services.NewArticleService(articleRepo, metadataRepo, app.Contents)
	app.AutoReviewer.RegisterProvider(models.ContentTypeArticle, app.Articles)

	synchronizer := services.NewContentStatusSynchronizer(metadataRepo, jobRepo, logRepo, app.Bus, logger)
	if err := synchronizer.Start(runCtx); err != nil {
		app.Close()
		return nil, fmt.Errorf("start synchronizer: %w", err)
	}
	app.AutoReviewer.Start(runCtx)
	if err := app.AutoReviewer.Resume(ctx, jobRepo); err != nil {
		logger.Warn("auto review resume incomplete",
			"event", "auto_review_resume_failed",
			"module", "bootstrap",
			"error", err.Error(),
		)
	}

	httpHelper := helper.NewHTTPHelper()
	authenticator := middleware.NewAuthenticator(cfg.JWT.Secret, httpHelper)
	app.Router = gin.New()
	app.Router.Use(gin.Recovery(), cors())
	if opts.RequestLogging {
		app.Router.Use(gin.Logger())
	}
	handlers.RegisterRoutes(app.Router, handlers.Handlers{
		Auth:    handlers.NewAuthHandler(app.Auth, httpHelper),
		Article: handlers.NewArticleHandler(app.Articles, httpHelper),
		Content: handlers.NewContentHandler(app.Contents, httpHelper),
		Review:  handlers.NewReviewHandler(app.Reviews, app.ReviewStatus, app.Allocator, httpHelper),
		Staff:   handlers.NewStaffHandler(app.Staff, httpHelper),
	}, authenticator)

	return app, nil
}

// Close stops the workers, lets the bus consumers finish every queued event,
// then stops them and the allocator.
func (a *App) Close() {
	if a.AutoReviewer != nil {
		a.AutoReviewer.Stop()
	}
	if a.Bus != nil {
		a.Bus.Drain()
	}
	a.cancel()
	if a.Bus != nil {
		a.Bus.Wait()
	}
	if a.Allocator != nil {
		a.Allocator.Close()
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Content-Password")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
