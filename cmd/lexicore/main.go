package main

import (
	"math/rand"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lexicore/internal/config"
	"lexicore/internal/database"
	"lexicore/internal/distractor"
	"lexicore/internal/economy"
	"lexicore/internal/handlers"
	"lexicore/internal/logging"
	"lexicore/internal/metrics"
	"lexicore/internal/srs"
	"lexicore/internal/srs/assignment"
	"lexicore/internal/srs/fsrs"
	"lexicore/internal/srs/sm2"
	"lexicore/internal/survey"
	"lexicore/internal/vocab"
)

func main() {
	logger := logging.New(os.Getenv("LEXICORE_ENV") != "production")
	defer logger.Sync()

	cfg := config.Load()
	metrics.Register()

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect to database", "error", err)
	}
	defer db.Close()

	store, err := vocab.Load(cfg.VocabSnapshotPath)
	if err != nil {
		logger.Warn("vocab snapshot unavailable, falling back to in-memory fixture", "path", cfg.VocabSnapshotPath, "error", err)
		store = vocab.Fixture()
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	distractorSvc := distractor.New(store, cfg.DistractorSimilarityThreshold, rng)
	surveyEngine := survey.New(store, distractorSvc, survey.Config(cfg.Survey), rng)
	sessionStore := survey.NewPostgresSessionStore(db)

	sm2Algo := sm2.New(sm2.Config(cfg.SM2))
	fsrsAlgo, err := fsrs.New(fsrs.Config(cfg.FSRS))
	if err != nil {
		logger.Fatal("initialize fsrs scheduler", "error", err)
	}
	cardStore := srs.NewCardStore(db)
	assignmentSvc := assignment.New(db, assignment.Config{
		FSRSProbability:        cfg.AssignmentFSRSProbability,
		MinReviewsForMigration: cfg.AssignmentMinReviewsForMigration,
	}, rng)
	srsSvc := srs.NewService(cardStore, assignmentSvc, sm2Algo, fsrsAlgo)

	levelEnergy := economy.LevelEnergy{ByLevel: cfg.LevelEnergy, Default: cfg.DefaultLevelEnergy}
	economySvc := economy.New(db, levelEnergy)

	surveyHandler := handlers.NewSurveyHandler(surveyEngine, sessionStore)
	reviewHandler := handlers.NewReviewHandler(srsSvc)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentSvc)
	economyHandler := handlers.NewEconomyHandler(economySvc)

	app := fiber.New(fiber.Config{
		AppName: "lexicore",
	})
	app.Use(recover.New())
	app.Use(correlationID)

	app.Get("/health", handlers.Health)
	app.Get("/", handlers.Info)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Post("/survey/step", surveyHandler.Step)

	app.Post("/reviews", reviewHandler.SubmitReview)
	app.Post("/reviews/predict-retention", reviewHandler.PredictRetention)

	app.Get("/assignment", assignmentHandler.Get)
	app.Post("/assignment/migrate", assignmentHandler.Migrate)

	app.Get("/economy", economyHandler.GetProgress)
	app.Post("/economy/mcq-result", economyHandler.ReportMCQResult)

	port := cfg.Port
	logger.Info("lexicore listening", "port", port)
	if err := app.Listen("0.0.0.0:" + port); err != nil {
		logger.Fatal("server stopped", "error", err)
	}
}

// correlationID ensures every request carries an X-Correlation-ID, minting
// one when the caller didn't supply it, so downstream logs and the
// intelligence client's outbound calls can be traced end to end.
func correlationID(c *fiber.Ctx) error {
	id := c.Get("X-Correlation-ID")
	if id == "" {
		id = uuid.New().String()
	}
	c.Set("X-Correlation-ID", id)
	c.Locals("correlation_id", id)
	return c.Next()
}
