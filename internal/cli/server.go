package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quizmaster-service/internal/app"
	"quizmaster-service/internal/config"
	"quizmaster-service/internal/domain"
	"quizmaster-service/internal/infra/memory"
	pgstore "quizmaster-service/internal/infra/postgres"
	rediscache "quizmaster-service/internal/infra/redis"
	transport "quizmaster-service/internal/transport/http"
)

// NewServerCmd builds the CLI subcommand to start the server.
func NewServerCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var quizzes app.QuizStore
	var users app.UserStore
	if pool != nil {
		store := pgstore.NewStore(pool)
		quizzes = store
		users = store
	} else {
		log.Println("no postgres configured, using in-memory stores with sample data")
		quizStore := memory.NewQuizStore()
		seedSampleQuizzes(ctx, quizStore)
		quizzes = quizStore
		users = memory.NewUserStore()
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
		quizzes = rediscache.NewQuizCache(client, quizzes, quizTTL)
	}

	service := app.NewService(quizzes, users)
	auth := transport.NewAuthenticator(authSecret(cfg))
	handler := transport.NewHandler(service, auth)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("starting quizmaster service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func authSecret(cfg config.Config) string {
	if cfg.Auth.Secret != "" {
		return cfg.Auth.Secret
	}
	log.Println("warning: no auth secret configured, using the development default")
	return "quizmaster-dev-secret"
}

// seedSampleQuizzes gives the demo mode something to serve.
func seedSampleQuizzes(ctx context.Context, store *memory.QuizStore) {
	quiz := domain.Quiz{
		ID:          "7f8e0b66-4a57-4f5e-9a3d-1c2b8d9e0f11",
		Title:       "General Knowledge Warm-up",
		Description: "A short sample quiz served when no database is configured",
		Category:    "General",
		Difficulty:  domain.DifficultyEasy,
		TimeLimit:   10,
		IsActive:    true,
		CreatedBy:   "demo",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Questions: []domain.Question{
			{
				ID:      "q1",
				Type:    domain.TypeMCQ,
				Prompt:  "What is 2 + 2?",
				Options: []string{"3", "4", "5"},
				Key:     domain.ChoiceKey(1),
				Points:  1,
			},
			{
				ID:      "q2",
				Type:    domain.TypeTrueFalse,
				Prompt:  "The sky is green.",
				Options: []string{"True", "False"},
				Key:     domain.ChoiceKey(1),
				Points:  1,
			},
		},
	}
	if err := store.CreateQuiz(ctx, quiz); err != nil {
		log.Printf("failed to seed sample quiz: %v", err)
	}
}
