package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/keeperlabs/market-keeper/internal/adapter/cache"
	"github.com/keeperlabs/market-keeper/internal/adapter/paper"
	"github.com/keeperlabs/market-keeper/internal/adapter/pg"
	"github.com/keeperlabs/market-keeper/internal/adapter/webhook"
	api "github.com/keeperlabs/market-keeper/internal/api/http"
	"github.com/keeperlabs/market-keeper/internal/core"
	"github.com/keeperlabs/market-keeper/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func main() {
	var (
		refreshFrequency = flag.Duration("refresh-frequency", 3*time.Second, "order book refresh frequency")
		statusAddr       = flag.String("status-addr", ":8080", "address of the read-only status API")

		redisAddr = flag.String("redis-addr", "", "redis address for snapshot publishing (disabled when empty)")
		redisKey  = flag.String("redis-key", "keeper:snapshot", "redis key holding the latest snapshot")

		historyDSN = flag.String("history-dsn", os.Getenv("KEEPER_HISTORY_DSN"), "Postgres DSN for order history rows (disabled when empty)")
		historyURL = flag.String("order-history", "", "endpoint to report active orders to (disabled when empty)")

		// oracle sources, mutually exclusive
		feedAPIKey = flag.String("fast-feed-api-key", os.Getenv("KEEPER_FEED_API_KEY"), "primary price feed API key")
		altFeedA   = flag.Bool("alt-feed-a", false, "use alternate price feed A")
		altFeedB   = flag.Bool("alt-feed-b", false, "use alternate price feed B")
		fixedPrice = flag.Int64("fixed-feed-price", 0, "fixed price in native units instead of an external feed")

		debug = flag.Bool("debug", false, "enable debug output")
	)
	flag.Parse()

	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	log := logrus.WithField("component", "keeper")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Simulation venue. Real venue adapters plug in through port.Exchange.
	exchange := paper.New(map[string]decimal.Decimal{
		"KEEP": decimal.NewFromInt(100),
		"USD":  decimal.NewFromInt(10000),
	})

	manager := core.NewManager(exchange, *refreshFrequency)

	if *redisAddr != "" {
		publisher := cache.NewRedisPublisher(*redisAddr, "", 0, *redisKey, 5*time.Minute)
		defer publisher.Close()
		manager.EnableSnapshotPublishing(publisher)
	}
	switch {
	case *historyDSN != "":
		reporter, err := pg.NewHistoryReporter(ctx, *historyDSN)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to Postgres")
		}
		defer reporter.Close()
		manager.EnableHistoryReporting(reporter, nil, nil)
	case *historyURL != "":
		manager.EnableHistoryReporting(webhook.NewReporter(*historyURL), nil, nil)
	}

	source, err := pricing.NewSource(ctx, pricing.SourceConfig{
		PrimaryAPIKey: *feedAPIKey,
		UseAltA:       *altFeedA,
		UseAltB:       *altFeedB,
		FixedPrice:    *fixedPrice,
	})
	if err != nil {
		log.WithError(err).Fatal("invalid price feed configuration")
	}
	escalator := pricing.NewEscalator(source)

	manager.Start(ctx)

	server := api.NewStatusServer(manager, escalator)
	go func() {
		log.WithField("addr", *statusAddr).Info("starting status API")
		if err := server.Run(*statusAddr); err != nil {
			log.WithError(err).Error("status API stopped")
			stop()
		}
	}()

	<-ctx.Done()

	// best effort: pull every resting order before exiting
	log.Info("shutting down, cancelling all orders")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := manager.CancelAllOrders(shutdownCtx); err != nil {
		log.WithError(err).Warn("could not cancel all orders before exit")
	}
}
