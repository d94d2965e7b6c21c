package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"manifestconv/internal/manifest/handler"
	"manifestconv/internal/manifest/service"
	"manifestconv/internal/manifest/store"
	"manifestconv/internal/platform/config"
	"manifestconv/internal/platform/httpserver"
	"manifestconv/internal/platform/logger"
	"manifestconv/internal/platform/metrics"
	"manifestconv/internal/platform/redis"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err.Error())
		os.Exit(1)
	}

	var resultStore store.Store
	if redisClient != nil {
		resultStore = store.NewRedis(redisClient.Client)
		log.Info("result cache backed by redis")
	} else {
		resultStore = store.NewMemory()
		log.Info("result cache in memory")
	}

	m := metrics.New()
	converter := service.New(resultStore, log, m, cfg.CacheTTL)
	h := handler.New(converter, log, cfg.PreviewRows)

	router := chi.NewRouter()
	h.Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "cache unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting manifestconv", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
