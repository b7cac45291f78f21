// waitpay watches a checkout order until it settles, fails, or times out.
//
//	waitpay -order ORDER_ID [-api http://localhost:8080] [-interval 3s] [-attempts 100]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nextfunnel-checkout/internal/poller"
)

func main() {
	var (
		orderID  = flag.String("order", "", "provider order id to watch (required)")
		apiBase  = flag.String("api", "http://localhost:8080", "checkout API base URL")
		interval = flag.Duration("interval", poller.DefaultInterval, "delay between status checks")
		attempts = flag.Int("attempts", poller.DefaultMaxAttempts, "max status checks before giving up")
	)
	flag.Parse()

	if *orderID == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	p := poller.New(
		poller.NewClient(*apiBase),
		*orderID,
		poller.WithInterval(*interval),
		poller.WithMaxAttempts(*attempts),
		poller.WithTransitionFunc(func(s poller.State) {
			log.Printf("order %s: %s", *orderID, s)
		}),
	)

	start := time.Now()
	state, err := p.Run(ctx)
	elapsed := time.Since(start).Round(time.Second)

	switch state {
	case poller.StateCompleted:
		fmt.Printf("Payment confirmed after %s\n", elapsed)
	case poller.StateFailed:
		fmt.Printf("Payment check failed: %v\n", err)
		os.Exit(1)
	case poller.StateTimedOut:
		fmt.Printf("Gave up after %s, order still pending\n", elapsed)
		os.Exit(3)
	default:
		if err != nil {
			fmt.Printf("Stopped while %s: %v\n", state, err)
			os.Exit(1)
		}
	}
}
