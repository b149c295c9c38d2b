package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type OrderRepository interface {
	// 明細込みで作成し、IDなどが埋まった注文を返す
	Create(ctx context.Context, order model.Order) (model.Order, error)
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	// 新しい順
	ListByUserID(ctx context.Context, userID int64) ([]model.Order, error)
	// 全件、新しい順
	ListAll(ctx context.Context) ([]model.Order, error)
	// order_status / delivered_at / updated_at だけを更新
	UpdateStatus(ctx context.Context, order model.Order) error
}
