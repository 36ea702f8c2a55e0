package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"suggestbox/internal/admin"
	"suggestbox/internal/config"
	"suggestbox/internal/database"
	httpapi "suggestbox/internal/http"
	"suggestbox/internal/i18n"
	"suggestbox/internal/identity"
	"suggestbox/internal/logger"
	"suggestbox/internal/repository"
	"suggestbox/internal/service"
	"suggestbox/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "suggestbox")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.Supabase.URL == "" || cfg.Supabase.AnonKey == "" {
		log.Fatal("SUPABASE_URL and SUPABASE_ANON_KEY are required")
	}
	if cfg.AdminPassword == "" {
		// 管理機能は fail closed で動き続ける。起動は止めない。
		log.Warn("ADMIN_PASSWORD is not set; all admin operations will deny")
	}

	bundle, err := i18n.NewBundle()
	if err != nil {
		log.Fatal("Failed to load message bundle", zap.Error(err))
	}

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	kv := store.NewRedisKV(redisClient)

	identityClient := identity.NewClient(cfg.Supabase.URL, cfg.Supabase.AnonKey, cfg.IsProduction(), log)
	adminSessions := admin.NewSessions(func() string { return os.Getenv("ADMIN_PASSWORD") }, cfg.IsProduction())

	suggestionsRepo := repository.NewPostgresSuggestionsRepository(db)
	memberGateway := repository.NewRestMemberGateway(cfg.Supabase.URL, cfg.Supabase.AnonKey, log)
	suggestionSvc := service.NewSuggestionService(suggestionsRepo, memberGateway, kv, log)

	router := httpapi.NewRouter(log)
	router.RegisterMemberRoutes(
		httpapi.NewSuggestionHandler(suggestionSvc, bundle, log),
		httpapi.NewAuthHandler(identityClient, bundle, log),
	)
	router.RegisterLegacyRoutes(httpapi.NewLegacyHandler(suggestionSvc, bundle, cfg.IsProduction(), log))
	router.RegisterAdminRoutes(httpapi.NewAdminHandler(suggestionSvc, adminSessions, bundle, log))

	guard := httpapi.NewGuard(identityClient, adminSessions, log)
	srv := service.NewServer(cfg.HTTP.Addr, guard.Middleware(router), log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("Shutdown signal received")
	case err := <-errCh:
		log.Error("HTTP server exited", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
	_ = database.Close(db)
}
