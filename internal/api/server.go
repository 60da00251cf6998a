package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/cylinder/config"
)

// Server is the HTTP server for the API
type Server struct {
	cfg        config.Config
	router     *gin.Engine
	httpServer *http.Server
	nrApp      *newrelic.Application

	cylinderHandler   *CylinderHandler
	assignmentHandler *AssignmentHandler
	supplyHandler     *SupplyHandler
	invoiceHandler    *InvoiceHandler
	gasTypeHandler    *GasTypeHandler
	reportHandler     *ReportHandler
}

// NewServer creates a new API server
func NewServer(
	cfg config.Config,
	nrApp *newrelic.Application,
	cylinderHandler *CylinderHandler,
	assignmentHandler *AssignmentHandler,
	supplyHandler *SupplyHandler,
	invoiceHandler *InvoiceHandler,
	gasTypeHandler *GasTypeHandler,
	reportHandler *ReportHandler,
) *Server {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &Server{
		cfg:               cfg,
		router:            gin.New(),
		nrApp:             nrApp,
		cylinderHandler:   cylinderHandler,
		assignmentHandler: assignmentHandler,
		supplyHandler:     supplyHandler,
		invoiceHandler:    invoiceHandler,
		gasTypeHandler:    gasTypeHandler,
		reportHandler:     reportHandler,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware adds middleware to the router
func (s *Server) setupMiddleware() {
	s.router.Use(RequestIDMiddleware())

	if s.cfg.CorsEnabled {
		s.router.Use(CORSMiddleware())
	}

	s.router.Use(gin.Recovery())
	s.router.Use(LoggingMiddleware())

	if s.nrApp != nil {
		s.router.Use(nrgin.Middleware(s.nrApp))
	}
}

// setupRoutes defines the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.router.Group("/api/v1")

	s.cylinderHandler.RegisterRoutes(v1)
	s.assignmentHandler.RegisterRoutes(v1)
	s.supplyHandler.RegisterRoutes(v1)
	s.invoiceHandler.RegisterRoutes(v1)
	s.gasTypeHandler.RegisterRoutes(v1)
	s.reportHandler.RegisterRoutes(v1)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.HTTPServerAddress,
		Handler:      s.router,
		ReadTimeout:  s.cfg.HTTPServerTimeout,
		WriteTimeout: s.cfg.HTTPServerTimeout,
	}

	log.Info().Msgf("HTTP server starting on %s", s.cfg.HTTPServerAddress)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
