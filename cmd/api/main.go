package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"nextfunnel-checkout/internal/cache"
	"nextfunnel-checkout/internal/client"
	"nextfunnel-checkout/internal/config"
	"nextfunnel-checkout/internal/currency"
	"nextfunnel-checkout/internal/repository"
	"nextfunnel-checkout/internal/server"
	"nextfunnel-checkout/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	db := client.InitSqliteClient(cfg.DatabasePath)
	paypalClient := client.NewPaypalClient(&cfg.Paypal)
	razorpayClient := client.NewRazorpayClient(&cfg.Razorpay)
	rates := currency.NewResolver(cfg.ExchangeRate.APIURL, cache.NewMemory())

	orderRepo := repository.NewOrderRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	checkoutService := service.NewCheckoutService(paypalClient, razorpayClient, rates, orderRepo, cfg)
	captureService := service.NewCaptureService(paypalClient, orderRepo)
	razorpayService := service.NewRazorpayService(razorpayClient, orderRepo, webhookEventRepo)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(checkoutService, captureService, razorpayService)

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
