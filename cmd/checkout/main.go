package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/checkout-saga/internal/api"
	"github.com/example/checkout-saga/internal/buyer"
	"github.com/example/checkout-saga/internal/checkout"
	"github.com/example/checkout-saga/internal/config"
	"github.com/example/checkout-saga/internal/infrastructure/kafka"
	"github.com/example/checkout-saga/internal/infrastructure/store"
	"github.com/example/checkout-saga/internal/inventory"
	"github.com/example/checkout-saga/internal/retry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.LoadCheckout()

	log.Println("[Checkout] ========================================")
	log.Println("[Checkout] Checkout Service")
	log.Println("[Checkout] ========================================")
	log.Printf("[Checkout] Kafka: %v", cfg.KafkaBrokers)
	log.Printf("[Checkout] Payment topic: %s", cfg.PaymentTopic)
	log.Printf("[Checkout] Buyer directory: %s", cfg.BuyerServiceURL)

	supervisor := retry.New(cfg.Connect.MaxAttempts, cfg.Connect.RetryDelay)

	// Startup order with the database and the broker is not guaranteed;
	// retry attachment and exit rather than run half-initialized.
	var db *sql.DB
	if err := supervisor.Connect(ctx, "PostgreSQL", func() error {
		var err error
		db, err = store.ConnectPostgres(cfg.DatabaseURL)
		return err
	}); err != nil {
		log.Fatalf("[Checkout] %v", err)
	}
	defer db.Close()

	if err := supervisor.Connect(ctx, "Kafka", func() error {
		return kafka.Ping(ctx, cfg.KafkaBrokers[0])
	}); err != nil {
		log.Fatalf("[Checkout] %v", err)
	}

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.PaymentTopic)
	defer producer.Close()

	ledger := inventory.NewLedger(db)
	buyers := buyer.NewClient(cfg.BuyerServiceURL)
	coordinator := checkout.NewService(ledger, buyers, producer)

	handlers := api.NewHandlers(coordinator, ledger)
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.NewRouter(handlers),
	}

	go func() {
		log.Printf("[Checkout] Server started on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[Checkout] Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Checkout] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
}
