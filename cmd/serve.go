package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/joydeepsharma2006-hash/quiz-app/internal/config"
	"github.com/joydeepsharma2006-hash/quiz-app/internal/database/mongo"
	"github.com/joydeepsharma2006-hash/quiz-app/internal/database/redis"
	"github.com/joydeepsharma2006-hash/quiz-app/internal/event"
	"github.com/joydeepsharma2006-hash/quiz-app/internal/handlers"
	"github.com/joydeepsharma2006-hash/quiz-app/internal/middleware"
	"github.com/joydeepsharma2006-hash/quiz-app/internal/questionbank"
	"github.com/joydeepsharma2006-hash/quiz-app/internal/repository"
	"github.com/joydeepsharma2006-hash/quiz-app/internal/service"
	"github.com/joydeepsharma2006-hash/quiz-app/pkg/discovery"
)

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	if cfg.Env == envProd {
		gin.SetMode(gin.ReleaseMode)
	}

	secret := cfg.SecretKey
	if secret == "" {
		secret = randomSecret()
		log.Warn("SECRET_KEY not set, using a random key; sessions will not survive a restart")
	}

	ctx := cmd.Context()
	store, closeStore, err := openSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var publisher event.Publisher = event.NopPublisher{}
	if cfg.RabbitMQURI != "" {
		p, err := event.NewEventPublisher(cfg.RabbitMQURI, cfg.RabbitMQExchange)
		if err != nil {
			log.Warn("Failed to connect to RabbitMQ, events will not be published", "err", err)
		} else {
			publisher = p
		}
	} else {
		log.Info("RabbitMQ not configured, events will not be published")
	}
	defer publisher.Close()

	source := questionbank.NewClient(cfg.QuestionBankURL, cfg.QuestionBankTimeout)
	quizService := service.NewQuizService(source, store, publisher)

	router, err := handlers.NewRouter(handlers.RouterConfig{
		Quiz:         handlers.NewQuizHandler(quizService, cfg.DefaultQuestions, cfg.MaxQuestions),
		Sessions:     middleware.NewSessionManager(secret, cfg.SessionTTL, cfg.CookieSecure),
		AllowOrigins: cfg.AllowOrigins,
	})
	if err != nil {
		return err
	}

	var registry *discovery.ServiceRegistry
	if cfg.ConsulAddress != "" {
		registry, err = discovery.NewServiceRegistry(cfg)
		if err != nil {
			log.Warn("Service discovery unavailable", "err", err)
		} else if err := registry.Register(); err != nil {
			log.Warn("Failed to register with Consul", "err", err)
			registry = nil
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", "port", cfg.Port, "env", cfg.Env, "session_backend", cfg.SessionBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-shutdownChan:
		log.Info("Shutting down server...")
	}

	if registry != nil {
		if err := registry.Deregister(); err != nil {
			log.Warn("Error deregistering from service discovery", "err", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server shutdown complete")
	return nil
}

// openSessionStore connects the configured backend. The returned func releases it.
func openSessionStore(ctx context.Context, cfg *config.Config) (repository.SessionStore, func(), error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	switch cfg.SessionBackend {
	case config.BackendRedis:
		client, err := redis.Connect(connectCtx, redis.RedisConfig{
			Address:  cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				slog.Warn("Error closing Redis client", "err", err)
			}
		}
		return repository.NewRedisSessionRepo(client, cfg.SessionTTL), closeFn, nil

	case config.BackendMongo:
		client, db, err := mongo.Connect(connectCtx, mongo.MongoDBConfig{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
		})
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewMongoSessionRepo(db, cfg.SessionTTL)
		if err := repo.EnsureIndexes(connectCtx); err != nil {
			slog.Warn("Failed to create session indexes", "err", err)
		}
		return repo, func() { mongo.Disconnect(client) }, nil

	default:
		return repository.NewMemorySessionRepo(cfg.SessionMemorySize, cfg.SessionTTL), func() {}, nil
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
