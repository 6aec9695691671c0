package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"procurement/config"
	"procurement/db"
	"procurement/db/migrations"
	"procurement/internal/broker"
	"procurement/internal/cache"
	"procurement/internal/handlers"
	"procurement/internal/util"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()
	logger := util.GetLogger()

	tp, err := util.InitTracer("procurement-api", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Error shutting down tracer", zap.Error(err))
		}
	}()

	dbConn, err := db.Connect(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Cannot connect to DB: %v", err)
	}
	defer dbConn.Close()

	if err := migrations.Run(dbConn.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	supplierCache, err := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
		time.Duration(cfg.Redis.TTLSecs)*time.Second)
	if err != nil {
		// The cache is an optimization; the service stays up without it.
		logger.Warn("Redis unavailable, running without supplier cache", zap.Error(err))
		supplierCache = nil
	} else {
		defer supplierCache.Close()
	}

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer producer.Close()
	events := broker.NewEventPublisher(producer)

	store := db.NewStorage(dbConn)
	h := handlers.NewHandler(store, events, supplierCache)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(handlers.MetricsMiddleware)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)
		// biddings
		r.Get("/biddings", h.ListBiddingsHandler)
		r.Post("/biddings/new", h.CreateBiddingHandler)
		r.Put("/biddings/{biddingId}/status", h.UpdateBiddingStatusHandler)
		r.Patch("/biddings/{biddingId}/edit", h.EditBiddingHandler)
		r.Put("/biddings/{biddingId}/archive", h.ArchiveBiddingHandler)
		r.Put("/biddings/{biddingId}/unarchive", h.UnarchiveBiddingHandler)
		// purchase requests
		r.Get("/purchase-requests/{prId}/bids", h.GetBidsByPrIDHandler)
		r.Post("/purchase-requests/{prId}/award/{bidId}", h.AwardBidHandler)
		r.Put("/purchase-requests/{prId}/archive", h.ArchivePurchaseRequestHandler)
		r.Put("/purchase-requests/{prId}/unarchive", h.UnarchivePurchaseRequestHandler)
		// bids
		r.Post("/bids/new", h.CreateBidHandler)
		r.Put("/bids/{bidId}/decline", h.DeclineBidHandler)
		r.Post("/bids/{bidId}/receive", h.MarkAsReceivedHandler)
		r.Post("/bids/{bidId}/rate", h.RateSupplierHandler)
		// suppliers
		r.Get("/suppliers/{supplierId}", h.GetSupplierHandler)
		r.Put("/suppliers/{supplierId}/status", h.UpdateSupplierStatusHandler)
	})

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Starting server", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
