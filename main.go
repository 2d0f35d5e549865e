package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"quiz_app_backend/config"
	"quiz_app_backend/db"
	"quiz_app_backend/logger"
	"quiz_app_backend/metrics"
	"quiz_app_backend/middleware"
	"quiz_app_backend/quiz"
	"quiz_app_backend/repository"
	"quiz_app_backend/routes"
	"quiz_app_backend/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger is not configured yet.
		os.Stderr.WriteString("Error loading config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		os.Stderr.WriteString("Error creating logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	database, err := db.Initialize(ctx, db.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}, log)
	if err != nil {
		log.Fatal("Error connecting to the database", "error", err)
	}
	defer database.Close()

	// Initialize database schema
	if err := db.InitSchema(database); err != nil {
		log.Fatal("Error initializing database schema", "error", err)
	}

	if cfg.SeedDemoData {
		seedDemoData(ctx, database, cfg.DemoPassword, log)
	}

	bank, err := loadBank(cfg.QuestionBankPath)
	if err != nil {
		log.Fatal("Error loading question bank", "error", err)
	}
	log.Info("Question bank loaded", "questions", bank.Len(), "path", cfg.QuestionBankPath)

	if err := validation.Register(); err != nil {
		log.Fatal("Error registering validators", "error", err)
	}

	m := metrics.New()
	writer := quiz.NewAsyncWriter(cfg.PersistQueueSize, cfg.PersistTimeout, log.With("component", "persistence"), m)
	registry := quiz.NewRegistry(quiz.RegistryConfig{
		Bank:       bank,
		Store:      repository.NewProgressRepository(database),
		Dispatcher: writer,
		UnlockAll:  cfg.UnlockAllLevels,
		Options:    quiz.Options{QuestionTime: cfg.QuestionTime},
		Logger:     log,
		Metrics:    m,
	})

	// Initialize router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(log), m.Middleware(), middleware.CORS(cfg.CORSOrigins))

	routes.SetupRoutes(r, routes.Deps{
		DB:        database,
		JWTSecret: []byte(cfg.JWTSecret),
		Registry:  registry,
		Logger:    log,
		Metrics:   m,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// The writer outlives the server so queued results are flushed on shutdown.
	writerCtx, stopWriter := context.WithCancel(context.Background())
	var g errgroup.Group
	g.Go(func() error {
		return writer.Run(writerCtx)
	})
	g.Go(func() error {
		return registry.RunJanitor(writerCtx, time.Minute, cfg.SessionIdleTimeout)
	})
	g.Go(func() error {
		defer stopWriter()
		// Countdowns stop before the writer so no auto-submit lands in an undrained queue.
		defer registry.Shutdown()
		log.Info("Server starting", "port", cfg.ServerPort, "environment", cfg.Environment)
		errc := make(chan error, 1)
		go func() {
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", "error", err)
		return
	}
	log.Info("Server stopped")
}

func loadBank(path string) (*quiz.Bank, error) {
	if path == "" {
		return quiz.DefaultBank()
	}
	return quiz.LoadBankFile(path)
}

// seedDemoData failures are logged; the server still starts.
func seedDemoData(ctx context.Context, database *sql.DB, password string, log *logger.Logger) {
	hash, err := middleware.HashPassword(password)
	if err != nil {
		log.Error("Error hashing demo password", "error", err)
		return
	}
	n, err := db.SeedDemoData(ctx, database, hash)
	if err != nil {
		log.Error("Error seeding demo data", "error", err)
		return
	}
	log.Info("Demo data seeded", "students", n)
}
