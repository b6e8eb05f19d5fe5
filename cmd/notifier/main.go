package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/example/checkout-saga/internal/config"
	"github.com/example/checkout-saga/internal/infrastructure/kafka"
	"github.com/example/checkout-saga/internal/notifier"
	"github.com/example/checkout-saga/internal/retry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.LoadNotifier()

	log.Println("[Notifier] ========================================")
	log.Println("[Notifier] Notification Service")
	log.Println("[Notifier] ========================================")
	log.Printf("[Notifier] Kafka: %v", cfg.KafkaBrokers)
	log.Printf("[Notifier] Consuming: %s (group %s)", cfg.NotificationTopic, cfg.ConsumerGroup)

	supervisor := retry.New(cfg.Connect.MaxAttempts, cfg.Connect.RetryDelay)
	if err := supervisor.Connect(ctx, "Kafka", func() error {
		return kafka.Ping(ctx, cfg.KafkaBrokers[0])
	}); err != nil {
		log.Fatalf("[Notifier] %v", err)
	}

	hub := notifier.NewHub()
	handler := notifier.NewHandler(hub)

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.NotificationTopic, cfg.ConsumerGroup)
	defer consumer.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("[Notifier] Waiting for messages in %s", cfg.NotificationTopic)
		if err := consumer.Consume(ctx, handler.HandleMessage); err != nil {
			if ctx.Err() == nil {
				log.Printf("[Notifier] Consumer error: %v", err)
			}
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		log.Printf("[Notifier] Server started on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[Notifier] Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Notifier] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	wg.Wait()
}
