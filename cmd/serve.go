package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"example.com/backstage/services/cylinder/internal/api"
	"example.com/backstage/services/cylinder/internal/cache"
	"example.com/backstage/services/cylinder/internal/db"
	"example.com/backstage/services/cylinder/internal/history"
	"example.com/backstage/services/cylinder/internal/messaging"
	"example.com/backstage/services/cylinder/internal/repository"
	"example.com/backstage/services/cylinder/internal/search"
	"example.com/backstage/services/cylinder/internal/service"
	"example.com/backstage/services/cylinder/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log.Info().Str("environment", cfg.Environment).Msg("Starting cylinder service")

	gdb, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	if cfg.EnableMigrations {
		if err := db.Migrate(gdb); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
	}

	manager := repository.NewManager(gdb)

	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without caching")
	}

	elasticClient, err := search.NewElasticClient(cfg.Elastic)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Elasticsearch client, continuing without search indexing")
	}

	publisher, err := messaging.NewPublisher(cfg.Azure)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Azure Service Bus publisher")
	}
	defer publisher.Close()

	nrApp, err := telemetry.InitNewRelic(cfg.NewRelic)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize New Relic, continuing without APM")
	}

	// Probe the history table once at startup; reporting falls back to
	// snapshot counts when it is unavailable.
	historyRepo := repository.NewHistoryRepository(gdb)
	capability := history.ResolveCapability(cmd.Context(), historyRepo)
	if !capability.TableAvailable {
		log.Warn().Msg("Status history table unavailable, reports will use snapshot counts")
	}

	historyLogger := history.NewLogger(historyRepo, elasticClient, publisher, capability)

	cylinderService := service.NewCylinderService(manager, historyLogger)
	assignmentService := service.NewAssignmentService(manager, historyLogger, redisCache)
	supplyService := service.NewSupplyService(manager, historyLogger)
	invoiceService := service.NewInvoiceService(manager)
	gasTypeService := service.NewGasTypeService(manager)
	reportService := service.NewReportService(manager, redisCache, capability)

	server := api.NewServer(
		cfg,
		nrApp,
		api.NewCylinderHandler(cylinderService),
		api.NewAssignmentHandler(assignmentService),
		api.NewSupplyHandler(supplyService),
		api.NewInvoiceHandler(invoiceService),
		api.NewGasTypeHandler(gasTypeService),
		api.NewReportHandler(reportService),
	)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Redis connection")
		}
	}

	log.Info().Msg("Server exited properly")
	return nil
}
