package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"jobradar/internal/cache"
	"jobradar/internal/config"
	"jobradar/internal/core/aggregate"
	"jobradar/internal/core/fetch"
	"jobradar/internal/core/source"
	"jobradar/internal/logger"
	rds "jobradar/internal/platform/redis"
	tasks "jobradar/internal/platform/tasks"
	"jobradar/internal/scheduler"
	"jobradar/internal/server"
	"jobradar/internal/worker"
)

func main() {
	cfg := config.Load()
	log.Printf("[jobradar] starting at %s (env=%s)\n", cfg.HTTPAddr, cfg.AppEnv)

	logr := logger.New("main")

	// Redis client
	redisSvc, err := rds.New(rds.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer redisSvc.Close()

	// Per-source configuration
	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		log.Fatalf("load sources: %v", err)
	}

	// Asynq client and server
	taskClient := tasks.New(redisSvc)
	asynqServer := asynq.NewServer(redisSvc.AsynqRedisOpt(), asynq.Config{
		Concurrency: 1,
		Queues:      map[string]int{"default": 1},
	})

	// Core services
	registry := source.NewRegistry()
	fetchSvc := fetch.NewService()
	monitor := aggregate.NewMonitor()
	aggSvc := aggregate.NewService(cfg, sources, registry, fetchSvc, monitor)

	// Listings cache with warm restore
	store := cache.New(redisSvc)
	if err := store.Load(context.Background()); err != nil {
		logr.LogWarnf("cache restore failed: %v", err)
	}

	// Scheduler: periodic cycles plus the startup run
	sched := scheduler.New(aggSvc, store, time.Duration(cfg.RefreshInterval)*time.Minute)
	schedCtx, schedCancel := context.WithCancel(context.Background())
	if err := sched.Start(schedCtx); err != nil {
		log.Fatalf("scheduler: %v", err)
	}

	// Worker mux for queued manual refreshes
	mux := worker.NewMux()
	mux.HandleFunc(tasks.TaskTypeRefresh, sched.HandleRefreshTask)

	go func() {
		if err := asynqServer.Start(mux.Mux()); err != nil {
			log.Printf("[worker] stopped: %v\n", err)
		}
	}()

	// HTTP server
	app := fiber.New(fiber.Config{
		AppName: "JobRadar",
		JSONEncoder: func(v interface{}) ([]byte, error) {
			var buf bytes.Buffer
			encoder := json.NewEncoder(&buf)
			encoder.SetEscapeHTML(false)
			if err := encoder.Encode(v); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
	})

	deps := server.Dependencies{
		Store:          store,
		Aggregate:      aggSvc,
		Scheduler:      sched,
		Tasks:          taskClient,
		Redis:          redisSvc,
		TaskMaxRetries: cfg.TaskMaxRetries,
	}
	healthHandler := server.RegisterRoutes(app, deps)

	// Mark application as ready after all services are initialized
	go func() {
		time.Sleep(5 * time.Second)
		healthHandler.SetReady()
	}()

	// Graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		logr.LogInfo("Shutting down...")
		schedCancel()
		sched.Stop()
		asynqServer.Shutdown()
		_ = app.ShutdownWithTimeout(5 * time.Second)
	}()

	if err := app.Listen(cfg.HTTPAddr); err != nil {
		log.Fatalf("server listen: %v", err)
	}
}
