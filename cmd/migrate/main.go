package main

import (
	"storefront/internal/config"
	"storefront/internal/infra/db"
	"storefront/internal/logging"

	"github.com/joho/godotenv"
)

// スキーマだけを最新にする（APIを起動せずに流したいとき用）
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := logging.New("storefront-migrate", cfg.LogLevel, nil)

	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatalj(logging.Fields{Step: "db_connect", Status: "failed", Err: err}.JSON())
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatalj(logging.Fields{Step: "db_migrate", Status: "failed", Err: err}.JSON())
	}
	logging.Info(logger, logging.Fields{Step: "db_migrate", Status: "ok"})
}
