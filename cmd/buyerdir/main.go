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

	"github.com/example/checkout-saga/internal/buyer"
	"github.com/example/checkout-saga/internal/config"
	"github.com/example/checkout-saga/internal/infrastructure/store"
	"github.com/example/checkout-saga/internal/retry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.LoadBuyerDirectory()

	log.Println("[BuyerDir] ========================================")
	log.Println("[BuyerDir] Buyer Directory Service")
	log.Println("[BuyerDir] ========================================")

	supervisor := retry.New(cfg.Connect.MaxAttempts, cfg.Connect.RetryDelay)

	var db *sql.DB
	if err := supervisor.Connect(ctx, "PostgreSQL", func() error {
		var err error
		db, err = store.ConnectPostgres(cfg.DatabaseURL)
		return err
	}); err != nil {
		log.Fatalf("[BuyerDir] %v", err)
	}
	defer db.Close()

	directory := buyer.NewDirectory(db)
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: buyer.NewRouter(buyer.NewHandlers(directory)),
	}

	go func() {
		log.Printf("[BuyerDir] Server started on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[BuyerDir] Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[BuyerDir] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
}
