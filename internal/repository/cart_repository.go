package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// ユーザーごとのカート（明細込み）を1ドキュメントとして扱う。
type CartRepository interface {
	// 明細込みで取得。無ければErrNotFound
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)
	// カートと明細を丸ごと保存（無ければ作る）。後勝ち
	Save(ctx context.Context, cart model.Cart) (model.Cart, error)
	// 明細を全削除してtotalを0に。カートが無ければ何もしない
	ClearByUserID(ctx context.Context, userID int64) error
}
