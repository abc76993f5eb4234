package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"shulsite/api/internal/calendar"
	"shulsite/api/internal/config"
	"shulsite/api/internal/middleware"
	"shulsite/api/internal/models"
	"shulsite/api/internal/repository"
	"shulsite/api/internal/service"
	"shulsite/api/internal/storage"
)

type HandlerSet struct {
	log        zerolog.Logger
	cfg        *config.AppConfig
	auth       *service.AuthService
	contentSvc *service.ContentService
	uploads    *service.UploadService
	calendar   *calendar.Client
	db         *pgxpool.Pool
	cache      *redis.Client
	store      *storage.ObjectStore
	users      *repository.UserRepository
	content    *repository.ContentRepository
	pages      *repository.PageRepository
	images     *repository.ImageRepository
	revisions  *repository.RevisionRepository
}

// NewHandlerSet wires repositories and services over the shared pool.
// db may be nil in development; store-backed endpoints then answer 503
// and the auth gate degrades as described in middleware.Session.
func NewHandlerSet(
	log zerolog.Logger,
	db *pgxpool.Pool,
	cache *redis.Client,
	store *storage.ObjectStore,
	cfg *config.AppConfig,
) HandlerSet {
	h := HandlerSet{
		log:      log,
		cfg:      cfg,
		db:       db,
		cache:    cache,
		store:    store,
		calendar: calendar.NewClient(cache, cfg.Calendar, log),
	}

	if db != nil {
		h.users = repository.NewUserRepository(db)
		h.content = repository.NewContentRepository(db)
		h.pages = repository.NewPageRepository(db)
		h.images = repository.NewImageRepository(db)
		h.revisions = repository.NewRevisionRepository(db)

		h.contentSvc = service.NewContentService(h.content, log)
		h.auth = service.NewAuthService(
			h.users,
			repository.NewSessionRepository(db),
			repository.NewLoginAttemptRepository(db),
			repository.NewCSRFTokenRepository(db),
			cfg,
			log,
		)
		if store != nil {
			h.uploads = service.NewUploadService(h.images, store, cfg, log)
		}
	}

	return h
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	// Interface values must stay nil when the service is absent so the
	// gate can recognize the degraded mode.
	var sessionValidator middleware.SessionValidator
	var csrfValidator middleware.CSRFValidator
	if h.auth != nil {
		sessionValidator = h.auth
		csrfValidator = h.auth
	}

	gate := middleware.Session(sessionValidator, h.log)
	csrf := middleware.CSRF(csrfValidator, h.log)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", gate, h.Me)

		cal := v1.Group("/calendar")
		cal.GET("/shabbat", h.Shabbat)
		cal.GET("/hebrew-date", h.HebrewDate)

		// Public reads for the rendered site.
		v1.GET("/content", h.ListContent)
		v1.GET("/content/:key", h.GetContent)
		v1.GET("/pages", h.ListPages)
		v1.GET("/pages/:slug", h.GetPage)
		v1.GET("/images/serve/*key", h.ServeImage)

		admin := v1.Group("/admin")
		admin.Use(gate, csrf)
		{
			admin.POST("/content", h.SaveContent)
			admin.PUT("/content/:key", h.UpdateContent)
			admin.DELETE("/content/:key", h.DeleteContent)

			admin.PUT("/pages/:slug", h.SavePage)
			admin.DELETE("/pages/:slug", h.DeletePage)

			admin.GET("/images", h.ListImages)
			admin.POST("/images", h.UploadImage)
			admin.GET("/images/:id", h.GetImage)
			admin.PUT("/images/:id", h.UpdateImageAlt)
			admin.DELETE("/images/:id", h.DeleteImage)

			admin.GET("/revisions", h.RecentRevisions)
			admin.GET("/revisions/:key", h.RevisionHistory)

			admin.GET("/stats", h.Stats)

			users := admin.Group("/users")
			users.Use(middleware.RequireRoles(models.UserRoleAdmin))
			users.GET("", h.ListUsers)
			users.POST("", h.CreateUser)
			users.PUT("/:id/pin", h.UpdateUserPIN)
			users.DELETE("/:id", h.DeleteUser)
		}
	}
}

// storeReady guards endpoints that cannot serve without the database.
// The dev-mode gate bypass lets requests through the middleware, but
// data endpoints still refuse rather than silently succeed.
func (h HandlerSet) storeReady(c *gin.Context) bool {
	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database_unavailable"})
		return false
	}
	return true
}
