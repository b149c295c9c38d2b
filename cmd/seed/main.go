package main

import (
	"context"
	"fmt"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/logging"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type demoUser struct {
	name     string
	email    string
	password string
	role     model.Role
}

var demoUsers = []demoUser{
	{name: "Admin User", email: "admin@shop.com", password: "admin123", role: model.RoleAdmin},
	{name: "John Doe", email: "john@example.com", password: "password123", role: model.RoleUser},
}

// 既存データを消してデモデータを入れ直す
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := logging.New("storefront-seed", cfg.LogLevel, nil)

	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatalj(logging.Fields{Step: "db_connect", Status: "failed", Err: err}.JSON())
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatalj(logging.Fields{Step: "db_migrate", Status: "failed", Err: err}.JSON())
	}

	ctx := context.Background()
	if err := gormDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearAll(tx); err != nil {
			return err
		}
		return seed(ctx, tx)
	}); err != nil {
		logger.Fatalj(logging.Fields{Step: "seed", Status: "failed", Err: err}.JSON())
	}

	logging.Info(logger, logging.Fields{Step: "seed", Status: "ok", Message: fmt.Sprintf("%d products, %d users", len(demoCatalog), len(demoUsers))})
}

// 子テーブルから順に消す
func clearAll(tx *gorm.DB) error {
	for _, table := range []string{"order_lines", "orders", "cart_lines", "carts", "audit_logs", "products", "users"} {
		if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func seed(ctx context.Context, tx *gorm.DB) error {
	users := infraRepo.NewUserGormRepository(tx)
	products := infraRepo.NewProductGormRepository(tx)

	for _, du := range demoUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(du.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		if err := users.Create(ctx, &model.User{
			Name:         du.name,
			Email:        du.email,
			PasswordHash: string(hash),
			Role:         du.role,
			IsActive:     true,
		}); err != nil {
			return fmt.Errorf("create user %s: %w", du.email, err)
		}
	}

	for _, p := range demoCatalog {
		if _, err := products.Create(ctx, p); err != nil {
			return fmt.Errorf("create product %s: %w", p.Name, err)
		}
	}
	return nil
}
