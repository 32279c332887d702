package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/middleware"
)

type Server struct {
	config     *config.Config
	router     *gin.Engine
	handlers   *handlers.Handlers
	httpServer *http.Server
	logger     *zap.Logger
}

func New(h *handlers.Handlers, cfg *config.Config, logger *zap.Logger) *Server {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Metrics(),
		middleware.UserID(),
	)

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
		logger:   logger,
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.Health)
	s.router.GET("/ready", s.handlers.Ready)
	s.router.GET("/live", s.handlers.Live)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/categories", s.handlers.ListCategories)
		v1.GET("/categories/:slug/products", s.handlers.ListCategoryProducts)
		v1.GET("/search", s.handlers.Search)

		v1.GET("/cart", s.handlers.GetCart)
		v1.POST("/cart/items/:product_id", s.handlers.AddToCart)
		v1.DELETE("/cart/items/:product_id", s.handlers.RemoveFromCart)

		v1.GET("/checkout", s.handlers.GetCheckout)
		v1.POST("/checkout", s.handlers.PostCheckout)

		v1.GET("/profile", s.handlers.GetProfile)
		v1.PUT("/profile", s.handlers.UpdateProfile)
		v1.DELETE("/profile", s.handlers.DeleteProfile)
	}

	// Called by the auth gateway only.
	internal := s.router.Group("/internal/v1", middleware.InternalAuth(s.config.Internal.APIKey))
	{
		internal.POST("/users", s.handlers.RegisterUser)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
