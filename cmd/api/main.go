package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/anjiri1684/qura/configs"
	"github.com/anjiri1684/qura/database"
	"github.com/anjiri1684/qura/handlers"
	"github.com/anjiri1684/qura/llm"
	"github.com/anjiri1684/qura/logger"
	"github.com/anjiri1684/qura/middleware"
	"github.com/anjiri1684/qura/routes"
	"github.com/anjiri1684/qura/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("config: %v", err)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		stdlog.Fatalf("logger: %v", err)
	}
	defer log.Sync()

	if cfg.APIKeyGenerated {
		log.Warn("Generated a new access key", "env_file", cfg.EnvFile)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal("Database connection failed", "driver", cfg.Database.Driver, "error", err)
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migration failed", "error", err)
	}
	store := database.NewQuizStore(db)
	stored, err := store.Count(context.Background())
	if err != nil {
		log.Fatal("Database not readable", "error", err)
	}
	log.Info("Database ready", "driver", cfg.Database.Driver, "quizzes", stored)

	var generator services.Generator
	if cfg.OpenAI.Enabled() {
		client, err := llm.NewOpenAIClient(cfg.OpenAI)
		if err != nil {
			log.Fatal("OpenAI client setup failed", "error", err)
		}
		gen, err := services.NewQuizGenerator(client, services.GeneratorOptions{
			Timeout:          cfg.OpenAI.Timeout,
			Temperature:      cfg.OpenAI.Temperature,
			RetryTemperature: cfg.OpenAI.RetryTemperature,
		}, log)
		if err != nil {
			log.Fatal("Quiz generator setup failed", "error", err)
		}
		generator = gen
		log.Info("Quiz generation enabled", "model", client.Model())
	} else {
		log.Warn("OPENAI_API_KEY not set, quiz creation will fail until it is configured")
	}

	quizzes := services.NewQuizService(store, generator, log, services.QuizServiceOptions{
		ExposeAnswers: cfg.ExposeAnswers,
	})

	gate, err := middleware.NewKeyGate(cfg.Auth.APIKey)
	if err != nil {
		log.Fatal("Key gate setup failed", "error", err)
	}

	app := routes.NewApp(routes.AppConfig{
		AllowOrigins: cfg.AllowOrigins,
		WriteTimeout: 2*cfg.OpenAI.Timeout + 30*time.Second,
	}, log)
	routes.Register(app, gate, handlers.NewQuizHandler(quizzes, log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("Shutdown failed", "error", err)
		}
	}()

	log.Info("Server is running", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error("Server stopped", "error", err)
	}
}
