package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"community-platform/backend/internal/audit"
	audithandler "community-platform/backend/internal/audit/handler"
	auditrepo "community-platform/backend/internal/audit/repository"
	authhandler "community-platform/backend/internal/auth/handler"
	authservice "community-platform/backend/internal/auth/service"
	"community-platform/backend/internal/config"
	"community-platform/backend/internal/db"
	"community-platform/backend/internal/events"
	grouprepo "community-platform/backend/internal/group/repository"
	"community-platform/backend/internal/idp"
	"community-platform/backend/internal/idp/clerk"
	devidp "community-platform/backend/internal/idp/dev"
	"community-platform/backend/internal/server"
	"community-platform/backend/internal/server/middleware"
	"community-platform/backend/internal/session"
	"community-platform/backend/internal/telemetry/otel"
	userrepo "community-platform/backend/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "community-platform-backend", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()

	sqlDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer sqlDB.Close()

	var store session.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer client.Close()
		store = session.NewRedisStore(client)
	} else {
		log.Println("REDIS_ADDR not set, tracking sessions in process")
		store = session.NewMemoryStore()
	}

	tokens := session.NewTokenProvider([]byte(cfg.SessionSigningKey), cfg.SessionIssuer, cfg.SessionAudience, cfg.SessionLifetime())
	sessions := session.NewManager(tokens, store)

	var provider idp.Provider
	var devProvider *devidp.Provider
	if cfg.DevIDPEnabled {
		log.Println("using in-process dev identity provider")
		devProvider = devidp.New(cfg.BcryptCost)
		provider = devProvider
	} else {
		provider = clerk.New(cfg.ClerkBaseURL, cfg.ClerkSecretKey)
	}

	emitters := []events.Emitter{events.NewOTelEmitter(providers.LoggerProvider)}
	if kafkaEmitter := events.NewKafkaEmitter(cfg.KafkaBrokerList(), cfg.KafkaEventsTopic); kafkaEmitter != nil {
		defer kafkaEmitter.Close()
		emitters = append(emitters, kafkaEmitter)
	}
	emitter := events.Multi(emitters...)

	auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(sqlDB), middleware.ClientIP, emitter)

	svc := authservice.New(
		provider,
		userrepo.NewPostgresRepository(sqlDB),
		grouprepo.NewPostgresRepository(sqlDB),
		sessions,
		auditLogger,
	)

	handler := authhandler.NewAuthHandler(
		svc,
		provider,
		authhandler.OAuthConfig{
			RedirectURL:       cfg.OAuthRedirectURL,
			SignInCompleteURL: cfg.OAuthSignInCompleteURL,
			SignUpCompleteURL: cfg.OAuthSignUpCompleteURL,
		},
		cfg.SessionLifetime(),
		cfg.Env == "production",
	)

	router := server.NewRouter(server.Deps{
		Auth:         handler,
		Sessions:     sessions,
		HealthPinger: sqlDB,
		DevProvider:  devProvider,
		Audit:        audithandler.New(auditLogger),
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Let in-flight async event emits finish before the exporters go away.
	time.Sleep(events.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
