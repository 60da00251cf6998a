package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"example.com/backstage/services/cylinder/internal/cache"
	"example.com/backstage/services/cylinder/internal/db"
	"example.com/backstage/services/cylinder/internal/history"
	"example.com/backstage/services/cylinder/internal/repository"
	"example.com/backstage/services/cylinder/internal/search"
	"example.com/backstage/services/cylinder/internal/service"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the background worker",
	Long:  `Start the background worker that refreshes cached reports and backfills the search index`,
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	log.Info().Msg("Starting worker")

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	gdb, err := db.Connect(cfg.DB)
	if err != nil {
		return err
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

	historyRepo := repository.NewHistoryRepository(gdb)
	capability := history.ResolveCapability(ctx, historyRepo)

	reportService := service.NewReportService(manager, redisCache, capability)
	backfillService := service.NewIndexBackfillService(manager, elasticClient)

	// Report cache warmer
	g.Go(func() error {
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return err
		}

		_, err = scheduler.NewJob(
			gocron.DurationJob(cfg.Worker.ReportCacheInterval),
			gocron.NewTask(func() {
				if err := reportService.WarmCache(ctx); err != nil {
					log.Error().Err(err).Msg("Failed to warm report cache")
				}
			}),
		)
		if err != nil {
			return err
		}

		scheduler.Start()
		log.Info().Dur("interval", cfg.Worker.ReportCacheInterval).Msg("Started report cache warmer")

		<-ctx.Done()
		return scheduler.Shutdown()
	})

	// Search index backfill
	g.Go(func() error {
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return err
		}

		_, err = scheduler.NewJob(
			gocron.DurationJob(1*time.Minute),
			gocron.NewTask(func() {
				indexed, err := backfillService.Backfill(ctx, cfg.Worker.IndexBackfillBatch)
				if err != nil {
					log.Error().Err(err).Msg("Failed to backfill search index")
					return
				}
				if indexed > 0 {
					log.Info().Int("indexed", indexed).Msg("Backfilled status history into search index")
				}
			}),
		)
		if err != nil {
			return err
		}

		scheduler.Start()

		<-ctx.Done()
		return scheduler.Shutdown()
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker error")
		return err
	}

	log.Info().Msg("Worker shutting down gracefully")
	return nil
}
