package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RoyceAzure/lab/telecom_shop/internal/appcontext"
	"github.com/RoyceAzure/lab/telecom_shop/internal/config"
)

func main() {
	app, err := appcontext.NewApplicationContext(config.GetConfig())
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.StartNotificationWorker(ctx); err != nil {
		log.Fatal(err)
	}

	// 背景清票: 過期未用的 WiFi 票每天掃一次
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := app.WifiService.PurgeExpiredTickets(ctx); err != nil {
					log.Printf("purge expired tickets error: %v", err)
				} else if n > 0 {
					log.Printf("purged %d expired wifi tickets", n)
				}
			}
		}
	}()

	// 等退出訊號
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		log.Printf("Application shutdown error: %v", err)
	}
}
