package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"lexrev/api/internal/app"
	"lexrev/api/internal/config"
	"lexrev/api/internal/directory"
	"lexrev/api/internal/email"
	"lexrev/api/internal/export"
	"lexrev/api/internal/search"
	"lexrev/api/internal/storage"
	"lexrev/api/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	dataStore := store.NewPostgresStore(db)

	pgfts := search.NewPgFTS(db)
	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliKey)
	}
	searchService := search.NewService(meiliClient, pgfts)
	if meiliClient != nil {
		defer meiliClient.Close()
	}

	var directoryService *directory.Service
	if strings.TrimSpace(cfg.DirectoryURL) != "" {
		var cache *redis.Client
		if strings.TrimSpace(cfg.RedisURL) != "" {
			opts, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				log.Fatalf("invalid REDIS_URL: %v", err)
			}
			cache = redis.NewClient(opts)
			defer cache.Close()
		}
		directoryService = directory.NewService(cfg.DirectoryURL, cache, cfg.DirectoryTTL)
		log.Printf("Directory lookups enabled via %s", cfg.DirectoryURL)
	} else {
		log.Printf("Directory not configured, sessions get unrestricted permissions")
	}

	mailer := email.NewService(email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
	})
	if !mailer.IsConfigured() {
		log.Printf("SMTP not configured, approval notifications disabled")
	}

	var objects *storage.Service
	if strings.TrimSpace(cfg.MinioEndpoint) != "" {
		objects, err = storage.NewService(ctx, storage.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			log.Fatalf("object storage init failed: %v", err)
		}
	} else {
		log.Printf("MinIO not configured, attachments disabled")
	}

	exportService := export.NewService(cfg.PandocPath)

	service := app.New(cfg, dataStore, directoryService, mailer, searchService, objects, exportService)

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Legal review API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
