package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Hardev1237/Valorant-Rank-Fetcher/internal/cache"
	"github.com/Hardev1237/Valorant-Rank-Fetcher/internal/models"
	"github.com/Hardev1237/Valorant-Rank-Fetcher/internal/tracker"
	"github.com/Hardev1237/Valorant-Rank-Fetcher/pkg/config"
	"github.com/Hardev1237/Valorant-Rank-Fetcher/pkg/logging"
)

// Store is the persistence surface the API layer depends on
type Store interface {
	ListAccounts(ctx context.Context) ([]models.Account, error)
	ListSections(ctx context.Context) ([]models.Section, error)
	GetAccount(ctx context.Context, username, hashtag, region string) (*models.Account, error)
	UpsertAccount(ctx context.Context, account *models.Account) error
	DeleteAccount(ctx context.Context, username, hashtag, region string) error
	CreateSection(ctx context.Context, name string) error
	DeleteSection(ctx context.Context, name string) error
	Health(ctx context.Context) error
}

// Fetcher performs on-demand rank lookups
type Fetcher interface {
	FetchRank(ctx context.Context, username, hashtag, region string) (tracker.RankResult, error)
}

// actionHandler handles one form-submitted action
type actionHandler func(c *gin.Context)

// Router sets up API routes
type Router struct {
	store     Store
	fetcher   Fetcher
	cache     *cache.Cache
	checkTTL  time.Duration
	staticDir string
	actions   map[string]actionHandler
	logger    *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(store Store, fetcher Fetcher, redisCache *cache.Cache, cfg *config.Config) *Router {
	router := &Router{
		store:     store,
		fetcher:   fetcher,
		cache:     redisCache,
		checkTTL:  cfg.Redis.CheckTTL,
		staticDir: cfg.Server.StaticDir,
		logger:    logging.WithComponent("api-router"),
	}

	router.actions = map[string]actionHandler{
		"check":          router.handleCheck,
		"save":           router.handleSave,
		"delete":         router.handleDelete,
		"create_section": router.handleCreateSection,
		"delete_section": router.handleDeleteSection,
	}

	return router
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	// Listing endpoints
	engine.GET("/get_accounts", r.getAccounts)
	engine.GET("/get_sections", r.getSections)

	// Form-encoded actions
	engine.POST("/", r.handleAction)

	// Everything else is the static UI
	engine.NoRoute(gin.WrapH(http.FileServer(http.Dir(r.staticDir))))
}

// handleAction dispatches a form-encoded POST on its "action" field
func (r *Router) handleAction(c *gin.Context) {
	action := c.PostForm("action")
	handler, ok := r.actions[action]
	if !ok {
		respondError(c, errUnknownAction)
		return
	}
	handler(c)
}

// healthHandler reports service, database and cache health
func (r *Router) healthHandler(c *gin.Context) {
	if err := r.store.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}

	cacheStatus := "disabled"
	if err := r.cache.Health(c.Request.Context()); err == nil {
		cacheStatus = "OK"
	} else if err != cache.ErrCacheDisabled {
		cacheStatus = "unavailable"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"service": "valorant-rank-fetcher",
		"cache":   cacheStatus,
	})
}
