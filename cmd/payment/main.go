package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/example/checkout-saga/internal/config"
	"github.com/example/checkout-saga/internal/infrastructure/kafka"
	"github.com/example/checkout-saga/internal/infrastructure/store"
	"github.com/example/checkout-saga/internal/payment"
	"github.com/example/checkout-saga/internal/retry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.LoadPayment()

	log.Println("[Payment] ========================================")
	log.Println("[Payment] Payment Service")
	log.Println("[Payment] ========================================")
	log.Printf("[Payment] Kafka: %v", cfg.KafkaBrokers)
	log.Printf("[Payment] Consuming: %s (group %s)", cfg.PaymentTopic, cfg.ConsumerGroup)
	log.Printf("[Payment] Publishing: %s", cfg.NotificationTopic)

	supervisor := retry.New(cfg.Connect.MaxAttempts, cfg.Connect.RetryDelay)

	var db *sql.DB
	if err := supervisor.Connect(ctx, "PostgreSQL", func() error {
		var err error
		db, err = store.ConnectPostgres(cfg.DatabaseURL)
		return err
	}); err != nil {
		log.Fatalf("[Payment] %v", err)
	}
	defer db.Close()

	if err := supervisor.Connect(ctx, "Kafka", func() error {
		return kafka.Ping(ctx, cfg.KafkaBrokers[0])
	}); err != nil {
		log.Fatalf("[Payment] %v", err)
	}

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.NotificationTopic)
	defer producer.Close()

	paymentStore := payment.NewStore(db)
	handler := payment.NewHandler(paymentStore, producer)

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.PaymentTopic, cfg.ConsumerGroup)
	defer consumer.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("[Payment] Waiting for messages in %s", cfg.PaymentTopic)
		if err := consumer.Consume(ctx, handler.HandleMessage); err != nil {
			if ctx.Err() == nil {
				log.Printf("[Payment] Consumer error: %v", err)
			}
		}
	}()

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: payment.NewRouter(paymentStore),
	}

	go func() {
		log.Printf("[Payment] Server started on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[Payment] Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Payment] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	wg.Wait()
}
