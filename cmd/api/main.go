package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vijaypawar2007-git/liftingdiarycourse/internal/api"
	"github.com/vijaypawar2007-git/liftingdiarycourse/internal/auth"
	"github.com/vijaypawar2007-git/liftingdiarycourse/internal/cache"
	"github.com/vijaypawar2007-git/liftingdiarycourse/internal/config"
	"github.com/vijaypawar2007-git/liftingdiarycourse/internal/domain"
	"github.com/vijaypawar2007-git/liftingdiarycourse/internal/persistence/memory"
	persistence "github.com/vijaypawar2007-git/liftingdiarycourse/internal/persistence/postgres"
	httptransport "github.com/vijaypawar2007-git/liftingdiarycourse/internal/transport/http"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, cleanup := buildRepository(ctx, cfg)
	defer cleanup()

	invalidator, closeInvalidator := buildInvalidator(cfg)
	defer closeInvalidator()

	service := domain.NewService(repo, invalidator)

	handler := api.NewHandler(service)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	// Simple CORS middleware for local dev
	cors := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "http://localhost:5173")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	// Basic request logger
	logger := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("%s %s", r.Method, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}

	middleware := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer})

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, cors(logger(middleware.Wrap(mux))))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("lifting-diary api listening on %s", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-stop
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

func buildRepository(ctx context.Context, cfg config.Config) (domain.Repository, func()) {
	if cfg.PostgresURL == "" {
		log.Printf("POSTGRES_URL not set, using in-memory repository")
		return memory.NewRepository(), func() {}
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	return persistence.NewRepository(pool), pool.Close
}

func buildInvalidator(cfg config.Config) (cache.Invalidator, func()) {
	switch {
	case cfg.CacheInvalidationURL != "":
		log.Printf("cache invalidator enabled -> %s", cfg.CacheInvalidationURL)
		return cache.NewHTTPInvalidator(cfg.CacheInvalidationURL, cfg.CacheInvalidationToken, cfg.HTTPTimeout), func() {}
	case cfg.InvalidationTopic != "":
		log.Printf("kafka invalidator enabled -> topic %s", cfg.InvalidationTopic)
		k := cache.NewKafkaInvalidator(cfg.KafkaBrokers, cfg.InvalidationTopic)
		return k, func() {
			if err := k.Close(); err != nil {
				log.Printf("closing kafka invalidator: %v", err)
			}
		}
	default:
		return cache.NoopInvalidator{}, func() {}
	}
}
