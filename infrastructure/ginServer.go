package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	apperrors "invigil.io/application/appErrors"
	"invigil.io/application/middlewares"
	"invigil.io/infrastructure/auth"
	"invigil.io/infrastructure/env"
	"invigil.io/infrastructure/logger"
	middleware "invigil.io/infrastructure/middleware"
	ratelimit "invigil.io/infrastructure/ratelimit"
	webRoutev1 "invigil.io/infrastructure/routes/ginRouter/web/v1"
	server_response "invigil.io/infrastructure/serverResponse"
	startup "invigil.io/infrastructure/startUp"
)

const requestsPerSecond = 25

type ginServer struct {
	services *startup.Services
}

// NewRouter mounts every route on a fresh engine. controller.Services must be populated before
// requests arrive.
func NewRouter(cfg *env.Config, tokens *auth.SessionTokens, sessions middlewares.ActiveSessions) *gin.Engine {
	server := gin.New()
	server.Use(gin.Logger(), gin.Recovery())
	corsConfig := cors.Config{
		AllowOrigins:     cfg.Origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "User-Agent"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	server.Use(cors.New(corsConfig))
	server.Use(ratelimit.TokenBucketPerIP(requestsPerSecond))
	server.MaxMultipartMemory = 15 << 20

	api := server.Group("/api")
	api.Use(middleware.UserAgentMiddleware())

	routerV1 := api.Group("/v1")
	{
		webRoutev1.RegistrationRouter(routerV1)
		webRoutev1.MonitoringRouter(routerV1, tokens, sessions)
	}

	server.GET("/ping", func(ctx *gin.Context) {
		server_response.Responder.Respond(ctx, http.StatusOK, "pong!", nil, nil, nil)
	})

	server.NoRoute(func(ctx *gin.Context) {
		apperrors.NotFoundError(ctx, fmt.Sprintf("%s %s does not exist", ctx.Request.Method, ctx.Request.URL))
	})
	return server
}

// Start serves until ctx is cancelled and then drains in-flight requests.
func (s *ginServer) Start(ctx context.Context) error {
	cfg := s.services.Config
	if cfg.GinMode != gin.DebugMode && cfg.GinMode != gin.ReleaseMode {
		return fmt.Errorf("invalid gin mode used - %s", cfg.GinMode)
	}
	gin.SetMode(cfg.GinMode)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           NewRouter(cfg, s.services.Tokens, s.services.Sessions),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server starting on PORT %s", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
