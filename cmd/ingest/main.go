package main

import (
	"context"
	"os"

	"omni-feedback/internal/channels"
	"omni-feedback/internal/config"
	"omni-feedback/internal/database"
	"omni-feedback/internal/handlers"
	"omni-feedback/internal/ingestion"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg := config.Load()

	dbConfig := database.LoadConfig()
	if err := database.Connect(dbConfig); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}

	pipeline := ingestion.NewPipeline(database.DB)
	runs := buildChannelRuns(cfg)
	if len(runs) == 0 {
		logrus.Fatal("No channels configured; set at least one source's credentials")
	}

	if cfg.IngestSchedule == "" && cfg.Port == "" {
		// Default mode: one bounded batch cycle, then exit. Partial success
		// is the common case, so the exit code only reflects overall
		// completion.
		runPipeline(pipeline, runs)
		return
	}

	if cfg.IngestSchedule != "" {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(cfg.IngestSchedule, func() {
			runPipeline(pipeline, runs)
		}); err != nil {
			logrus.WithError(err).Fatal("Invalid INGEST_SCHEDULE expression")
		}
		scheduler.Start()
		defer scheduler.Stop()
		logrus.WithField("schedule", cfg.IngestSchedule).Info("Scheduled ingestion enabled")
	} else {
		runPipeline(pipeline, runs)
	}

	if cfg.Port != "" {
		serveStatus(cfg.Port)
	} else {
		select {}
	}
}

// buildChannelRuns wires every configured source to its normalizer. Sources
// without credentials are skipped, not failed.
func buildChannelRuns(cfg *config.Config) []ingestion.ChannelRun {
	var runs []ingestion.ChannelRun

	facebook := channels.NewFacebookSource(cfg.FacebookBaseURL, cfg.FacebookPageID,
		cfg.FacebookAccessToken, cfg.FacebookPostLimit)
	if facebook.Enabled() {
		runs = append(runs, ingestion.ChannelRun{
			Fetcher:    facebook,
			Normalizer: ingestion.FacebookNormalizer{},
		})
	} else {
		logrus.Info("Facebook source disabled - missing credentials")
	}

	google := channels.NewGooglePlacesSource(cfg.GoogleBaseURL, cfg.GoogleAPIKey, cfg.GooglePlaceID)
	if google.Enabled() {
		run := ingestion.ChannelRun{
			Fetcher:    google,
			Normalizer: ingestion.GoogleNormalizer{},
		}
		if cfg.TranslateEndpoint != "" {
			translator := channels.NewHTTPTranslator(cfg.TranslateEndpoint, cfg.TranslateTarget)
			run.Enricher = channels.NewTranslateEnricher(translator, "text")
		}
		runs = append(runs, run)
	} else {
		logrus.Info("Google Places source disabled - missing credentials")
	}

	traveloka := channels.NewTravelokaSource(cfg.TravelokaBaseURL, cfg.CrawlMaxPages)
	if traveloka.Enabled() {
		runs = append(runs, ingestion.ChannelRun{
			Fetcher:    traveloka,
			Normalizer: ingestion.TravelokaNormalizer{},
		})
	} else {
		logrus.Info("Traveloka source disabled - no crawl target")
	}

	tripadvisor := channels.NewTripadvisorSource(cfg.TripadvisorBaseURL, cfg.CrawlMaxPages)
	if tripadvisor.Enabled() {
		runs = append(runs, ingestion.ChannelRun{
			Fetcher:    tripadvisor,
			Normalizer: ingestion.TripadvisorNormalizer{},
		})
	} else {
		logrus.Info("Tripadvisor source disabled - no crawl target")
	}

	return runs
}

func runPipeline(pipeline *ingestion.Pipeline, runs []ingestion.ChannelRun) {
	results := pipeline.Run(context.Background(), runs)

	succeeded, failed := 0, 0
	for _, result := range results {
		if result.Err != nil {
			failed++
			continue
		}
		succeeded++
	}
	logrus.WithFields(logrus.Fields{
		"succeeded": succeeded,
		"failed":    failed,
	}).Info("Pipeline run summary")
}

func serveStatus(port string) {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	statusHandler := handlers.NewStatusHandler(database.DB)

	r.GET("/health", statusHandler.HealthCheck)
	r.GET("/channels", statusHandler.ListChannels)
	r.GET("/channels/:name/feedback", statusHandler.ChannelFeedback)

	logrus.WithField("port", port).Info("Status server listening")
	if err := r.Run(":" + port); err != nil {
		logrus.WithError(err).Fatal("Status server stopped")
	}
}
