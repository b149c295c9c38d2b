package usecase

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

type Clock interface {
	Now() time.Time
}

// 注文イベントの送信先（Kafkaなど）。失敗しても注文は成功扱い
type OrderEventPublisher interface {
	Publish(ctx context.Context, ev model.OrderEvent) error
}

// チェックアウト結果の計測
type CheckoutObserver interface {
	ObserveCheckout(result string)
}

// Requester は操作する人（JWTから取り出したID/ロール）。
type Requester struct {
	UserID int64
	Role   model.Role
}

func (r Requester) IsAdmin() bool {
	return r.Role == model.RoleAdmin
}
