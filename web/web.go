// Package web provides the HTTP server of the portal: routing, middleware,
// static uploads serving and background housekeeping.
package web

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/schoolhub/portal/caching"
	"github.com/schoolhub/portal/config"
	"github.com/schoolhub/portal/logger"
	"github.com/schoolhub/portal/storage"
	"github.com/schoolhub/portal/storage/model"
	"github.com/schoolhub/portal/util/common"
	"github.com/schoolhub/portal/web/controller"
	"github.com/schoolhub/portal/web/job"
	"github.com/schoolhub/portal/web/service"
)

// Server is the portal web server: one gin engine over the flat-file store,
// plus a cron scheduler for log housekeeping.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	settings config.Settings
	store    *storage.Store
	cache    *caching.Cache

	auth *service.AuthService

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a server over the given data folder.
func NewServer(settings config.Settings) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		settings: settings,
		store:    storage.NewStore(config.GetDataFolder()),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// initRouter initializes gin, registers middleware, static upload serving
// and all controllers, and returns the configured engine.
func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	// Uploaded assets are public by reference; entry-level visibility is
	// enforced on the index, not on the binaries.
	engine.StaticFS("/uploads", http.FS(os.DirFS(s.store.Assets().Dir())))

	s.cache = caching.NewCache()
	if err := s.cache.Init(); err != nil {
		return nil, err
	}

	s.auth = service.NewAuthService(s.store, s.settings.JWTSecret, s.settings.TokenTTL())
	users := service.NewUserAdminService(s.store)
	groups := service.NewGroupService(s.store)
	ranking := service.NewRankingService(s.store)

	root := engine.Group("")
	controller.NewRegistrationController(root, s.auth)
	controller.NewAdminToolsController(root, users, groups, s.auth)
	controller.NewRankingController(root, ranking, groups, s.auth)
	for _, kind := range model.Kinds() {
		svc := service.NewContentService(s.store, s.cache, kind)
		controller.NewContentController(root, svc, s.auth)
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return engine, nil
}

// startTask schedules background housekeeping.
func (s *Server) startTask() {
	s.cron.AddJob("@daily", job.NewRotateLogsJob())
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	s.cron = cron.New()
	s.cron.Start()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   s.settings.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	listenAddr := net.JoinHostPort(s.settings.Listen, strconv.Itoa(s.settings.Port))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	logger.Info("Web server running HTTP on", listener.Addr())

	s.listener = listener
	s.httpServer = &http.Server{Handler: corsHandler.Handler(engine)}

	go func() {
		_ = s.httpServer.Serve(listener)
	}()

	s.startTask()

	return nil
}

// Stop gracefully shuts down the web server and the cron scheduler.
func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.cache != nil {
		_ = s.cache.Flush()
	}
	var err1, err2 error
	if s.httpServer != nil {
		err1 = s.httpServer.Shutdown(s.ctx)
	}
	if s.listener != nil {
		err2 = s.listener.Close()
	}
	return common.Combine(err1, err2)
}

// GetCtx returns the server's context.
func (s *Server) GetCtx() context.Context { return s.ctx }

// GetCron returns the server's cron scheduler instance.
func (s *Server) GetCron() *cron.Cron { return s.cron }
