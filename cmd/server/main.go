package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/hassan-khan07/Chat-App/internal/config"
	"github.com/hassan-khan07/Chat-App/internal/logger"
	"github.com/hassan-khan07/Chat-App/internal/repository"
	"github.com/hassan-khan07/Chat-App/internal/server"
	"github.com/hassan-khan07/Chat-App/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(logger.Config{Development: cfg.Server.Development})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx := context.Background()

	mongoClient, err := repository.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		zlog.Fatalw("mongo connect failed", "error", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		zlog.Fatalw("redis connect failed", "error", err)
	}

	store, err := storage.NewS3Store(ctx, cfg.S3.Region, cfg.S3.Bucket, cfg.S3.Endpoint, cfg.S3.PublicRead, cfg.PresignTTL)
	if err != nil {
		zlog.Fatalw("s3 init failed", "error", err)
	}

	srv, closeFn := server.New(cfg, zlog, mongoClient, redisClient, store)

	go func() {
		zlog.Infow("server starting", "port", cfg.Server.Port)
		if err := srv.Listen(":" + cfg.Server.Port); err != nil {
			zlog.Fatalw("server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down")
	if err := closeFn(ctx); err != nil {
		zlog.Errorw("shutdown error", "error", err)
	}
}
