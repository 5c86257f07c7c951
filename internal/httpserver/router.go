package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vietfood/internal/cart"
	"vietfood/internal/catalog"
)

type SessionService interface {
	Issue(ctx context.Context) (token, sessionID string, err error)
	LookupByToken(ctx context.Context, token string) (string, error)
	TTLSeconds() int
}

type CartProvider interface {
	Get(ctx context.Context, sessionID string) *cart.Cart
}

type Deps struct {
	Catalog     catalog.Reader
	Sessions    SessionService
	Carts       CartProvider
	CORSOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db Pinger, deps Deps) (*gin.Engine, error) {
	if deps.Catalog == nil || deps.Sessions == nil || deps.Carts == nil {
		return nil, errors.New("httpserver: catalog, sessions and carts are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{logger: logger, deps: deps}

	api := router.Group("/api")
	api.GET("/products", h.listProducts)
	api.POST("/products", h.getProduct)
	api.POST("/cart/session", h.createSession)

	cartRoutes := api.Group("/cart", sessionMiddleware(deps.Sessions))
	cartRoutes.GET("", h.getCart)
	cartRoutes.DELETE("", h.clearCart)
	cartRoutes.GET("/stock", h.checkStock)
	cartRoutes.GET("/export", h.exportCart)
	cartRoutes.POST("/items", h.addItem)
	cartRoutes.POST("/items/bulk", h.addItems)
	cartRoutes.PATCH("/items/:id", h.updateItem)
	cartRoutes.DELETE("/items/:id", h.removeItem)

	return router, nil
}

type handlers struct {
	logger *zap.Logger
	deps   Deps
}
