package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/MrFantastico007/DeadDrop/internal/api"
	"github.com/MrFantastico007/DeadDrop/internal/config"
	"github.com/MrFantastico007/DeadDrop/internal/logger"
	"github.com/MrFantastico007/DeadDrop/internal/repository"
	"github.com/MrFantastico007/DeadDrop/internal/service"
	"github.com/MrFantastico007/DeadDrop/internal/storage"
	"github.com/MrFantastico007/DeadDrop/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Server.Development)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	// Mongo
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatalw("mongo connect failed", "error", err)
	}
	if err := mc.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatalw("mongo ping failed", "error", err)
	}
	log.Info("database connected")
	coll := mc.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
	store := repository.NewMongoStore(coll)

	// Object store
	objects, err := storage.NewS3Store(context.Background(), storage.S3Options{
		Region:     cfg.S3.Region,
		Bucket:     cfg.S3.Bucket,
		Endpoint:   cfg.S3.Endpoint,
		KeyPrefix:  cfg.S3.KeyPrefix,
		PublicRead: cfg.S3.PublicRead,
	})
	if err != nil {
		log.Fatalw("s3 init failed", "error", err)
	}

	hub := ws.NewHub(log)
	svc := service.NewMessageService(store, objects, hub, log)
	reaper := service.NewReaper(store, objects, cfg.InactivityWindow, log)

	var stopReaper context.CancelFunc = func() {}
	if cfg.Cleanup.Enabled {
		stopReaper, err = reaper.Start(context.Background(), cfg.Cleanup.Cron)
		if err != nil {
			log.Fatalw("cleanup scheduler failed", "error", err)
		}
	}

	app := api.NewServer(cfg, svc, reaper, hub, log)
	go func() {
		addr := ":" + cfg.Server.Port
		log.Infow("server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalw("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutdown requested")

	stopReaper()
	_ = app.Shutdown()
	shutdownCtx, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel2()
	_ = mc.Disconnect(shutdownCtx)
	log.Info("shutdown complete")
}
