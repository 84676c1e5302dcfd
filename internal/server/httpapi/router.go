// Package httpapi exposes the authority's JSON/HTTP surface: login, the
// asset tag registry, batch merge, search, and replace. Handlers translate
// between the wire contract and the services layer; all domain decisions
// live in the services.
package httpapi

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"assettrack/internal/logging"
	"assettrack/internal/server/models"
	"assettrack/internal/server/services"
	"assettrack/internal/wire"
)

// authenticator mints sessions for handheld operators.
type authenticator interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.Session, error)
}

// registry is the merge/search surface of the pairing registry.
type registry interface {
	MergeBatch(ctx context.Context, items []wire.BatchItem, assignedBy string) ([]wire.BatchItemResult, error)
	RegisterTag(ctx context.Context, tag string) error
	ListTagsSince(ctx context.Context, since time.Time) ([]models.AssetTag, error)
	Search(ctx context.Context, assetTag, serial string) (*wire.SearchResult, error)
	Replace(ctx context.Context, req wire.ReplaceRequest, assignedBy string) (*wire.ReplaceResponse, error)
}

// Handler wires the HTTP routes to the services layer.
type Handler struct {
	users     authenticator
	registry  registry
	secretKey []byte
	log       logging.Logger
}

func NewHandler(users authenticator, registry registry, secretKey []byte, log logging.Logger) *Handler {
	return &Handler{users: users, registry: registry, secretKey: secretKey, log: log}
}

// NewRouter builds the gin engine with all routes registered. Everything
// except the root listing, the health check, and login requires a bearer
// token.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(h.log))

	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.POST("/auth/register", h.Register)
	router.POST("/auth/login", h.Login)

	authenticated := router.Group("/")
	authenticated.Use(AuthMiddleware(h.secretKey))
	{
		authenticated.GET("/asset-tags", h.ListAssetTags)
		authenticated.POST("/asset-tags", h.RegisterAssetTag)
		authenticated.POST("/pairs/batch", h.MergeBatch)
		authenticated.GET("/pairs/search", h.Search)
		authenticated.PUT("/pairs/replace", h.Replace)
	}

	return router
}
