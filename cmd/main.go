package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/app"
	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/config"
	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/entities"
	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/events"
	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/gateway"
	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/handler"
	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/postgres"
	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/repo"
	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/service"
	"github.com/Mazen-Mokhtar/logen-store-sub001/pkg/cache"
	"github.com/Mazen-Mokhtar/logen-store-sub001/pkg/trm"

	_ "github.com/Mazen-Mokhtar/logen-store-sub001/docs"
	"github.com/joho/godotenv"
)

// @title           Logen Store Checkout API
// @version         1.0
// @description     Checkout, payment webhooks and order status
func main() {
	conf := config.New()
	logger := newLogger(conf.Env)
	panicIfErr("invalid config", conf.Validate())

	db, err := postgres.New(conf.Postgres)
	panicIfErr("failed to connect to db", err)
	defer db.Close()
	logger.Info("postgres connected")

	ordersRepo := repo.NewOrdersRepo(db)
	usersRepo := repo.NewUsersRepo(db)
	txManager := trm.NewManager(db)
	snapshots := cache.NewLRUCache(cache.Options{
		Capacity: conf.Cache.Capacity,
		TTL:      conf.Cache.TTL,
	})

	gateways := map[entities.PaymentGateway]gateway.Gateway{
		entities.GatewayStripe: gateway.NewStripe(conf.Stripe),
		entities.GatewayPaymob: gateway.NewPaymob(conf.Paymob),
	}

	publisher := events.NewKafkaPublisher(logger, conf.Kafka)

	checkoutService := service.NewCheckoutService(
		logger, txManager, ordersRepo, usersRepo, gateways, publisher, snapshots)

	httpHandler := handler.NewHTTPHandler(logger, checkoutService)

	app := app.New(logger, conf)

	app.SetHTTPHandlers(httpHandler)
	app.SetHealthCheck(db.PingContext)
	app.SetClosers(publisher)
	app.SetStarters(snapshots, cacheWarmUpAdapter{svc: checkoutService, count: conf.Cache.Capacity})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	panicIfErr("failed to start app", app.Start(ctx))
	<-ctx.Done()
	panicIfErr("failed to stop app", app.Stop())
}

func init() {
	godotenv.Load()
}

func newLogger(env string) *slog.Logger {
	switch env {
	case "production":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func panicIfErr(prefix string, err error) {
	if err != nil {
		panic(prefix + ": " + err.Error())
	}
}

type warmUpper interface {
	WarmUpCache(ctx context.Context, count int) error
}

type cacheWarmUpAdapter struct {
	svc   warmUpper
	count int
}

func (a cacheWarmUpAdapter) Start(ctx context.Context) error {
	return a.svc.WarmUpCache(ctx, a.count)
}
