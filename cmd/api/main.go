package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/db"
	"storefront/internal/infra/events"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/logging"
	"storefront/internal/metrics"
	"storefront/internal/server"
	"storefront/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now().UTC()
}

type orderPublisher interface {
	usecase.OrderEventPublisher
	Close() error
}

func main() {
	//.envは無くてもよい（本番は環境変数だけ）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New("storefront-api", cfg.LogLevel, nil)

	//金額はJSONで数値として返す
	decimal.MarshalJSONWithoutQuotes = true

	//DB接続 + マイグレーション
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatalj(logging.Fields{Step: "db_connect", Status: "failed", Err: err}.JSON())
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatalj(logging.Fields{Step: "db_migrate", Status: "failed", Err: err}.JSON())
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//イベント送信（KAFKA_BROKERSが無ければ捨てる）
	var publisher orderPublisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
	}
	defer publisher.Close()

	//メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewServerMetrics(reg)

	clock := &realClock{}

	//Usecase生成
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo, logger)
	orderUC := usecase.NewOrderUsecase(txm, orderRepo, userRepo, publisher, serverMetrics, clock, logger)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, orderRepo, userRepo, publisher, clock, logger)

	//Server起動
	e := server.New(server.Deps{
		Config:   cfg,
		Logger:   logger,
		Metrics:  serverMetrics,
		Gatherer: reg,
		Users:    userRepo,
		Handlers: server.Handlers{
			Cart:       handler.NewCartHandler(cartUC),
			Order:      handler.NewOrderHandler(orderUC),
			AdminOrder: handler.NewAdminOrderHandler(adminOrderUC),
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx, e, cfg.Addr(), logger); err != nil {
		logger.Fatalj(logging.Fields{Step: "server", Status: "failed", Err: err}.JSON())
	}
}
