// Package server assembles the fiber app: HTTP routes, the websocket
// endpoint and a graceful-shutdown hook.
package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/hassan-khan07/Chat-App/internal/auth"
	"github.com/hassan-khan07/Chat-App/internal/config"
	"github.com/hassan-khan07/Chat-App/internal/handlers"
	"github.com/hassan-khan07/Chat-App/internal/presence"
	"github.com/hassan-khan07/Chat-App/internal/repository"
	"github.com/hassan-khan07/Chat-App/internal/router"
	"github.com/hassan-khan07/Chat-App/internal/routes"
	"github.com/hassan-khan07/Chat-App/internal/service"
	"github.com/hassan-khan07/Chat-App/internal/storage"
	"github.com/hassan-khan07/Chat-App/internal/ws"
)

type AppServer struct {
	app *fiber.App
}

func (s *AppServer) Listen(addr string) error {
	return s.app.Listen(addr)
}

// New builds the full application. The returned closeFn shuts the HTTP
// server down and disconnects mongo and redis.
func New(
	cfg *config.Config,
	log *zap.SugaredLogger,
	mongoClient *mongo.Client,
	redisClient *redis.Client,
	store storage.ObjectStore,
) (*AppServer, func(ctx context.Context) error) {
	db := mongoClient.Database(cfg.Mongo.Database)

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	directRepo := repository.NewDirectMessageRepository(db)
	grpMsgRepo := repository.NewGroupMessageRepository(db)

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.AccessTTL, cfg.RefreshTTL)
	tokenStore := auth.NewRedisTokenStore(redisClient)

	hub := ws.NewHub()
	registry := presence.NewRegistry()
	msgRouter := router.New(registry, hub, log)
	wsServer := ws.NewServer(hub, registry, jwtManager, msgRouter.AnnouncePresence, log, 20)

	userSvc := service.NewUserService(userRepo, store, jwtManager, tokenStore, log)
	groupSvc := service.NewGroupService(groupRepo, store, log)
	messageSvc := service.NewMessageService(directRepo, grpMsgRepo, groupRepo, store, msgRouter, log)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	app.Get("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return websocket.New(wsServer.Handle())(c)
		}
		return fiber.ErrUpgradeRequired
	})

	routes.Register(app,
		jwtManager,
		handlers.NewUserHandler(userSvc),
		handlers.NewGroupHandler(groupSvc),
		handlers.NewMessageHandler(messageSvc),
	)

	srv := &AppServer{app: app}

	closeFn := func(ctx context.Context) error {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		err := srv.app.ShutdownWithContext(shutdownCtx)
		_ = mongoClient.Disconnect(ctx)
		_ = redisClient.Close()
		return err
	}
	return srv, closeFn
}
