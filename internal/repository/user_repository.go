package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	// 見つからなければ (nil, nil)
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	// 見つかった分だけをid→ユーザーで返す
	FindByIDs(ctx context.Context, ids []int64) (map[int64]model.User, error)
}
