package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// ユーザーのカートを明細込みで取得
func (r *CartGormRepository) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	var cart model.Cart

	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		Where("user_id = ?", userID).
		First(&cart).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}
	if cart.Lines == nil {
		cart.Lines = []model.CartLine{}
	}
	return cart, nil
}

// カートを保存。無ければ作り、明細は丸ごと入れ替える
func (r *CartGormRepository) Save(ctx context.Context, cart model.Cart) (model.Cart, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//user_idで1件に寄せる（同時作成はDO NOTHINGで吸収）
		row := model.Cart{UserID: cart.UserID, TotalPrice: decimal.Zero}
		if err := tx.
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
			Omit(clause.Associations).
			Create(&row).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", cart.UserID).First(&row).Error; err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&model.Cart{}).
			Where("id = ?", row.ID).
			Updates(map[string]interface{}{
				"total_price": cart.TotalPrice,
				"updated_at":  now,
			}).Error; err != nil {
			return err
		}

		//明細は入れ替え
		if err := tx.Where("cart_id = ?", row.ID).Delete(&model.CartLine{}).Error; err != nil {
			return err
		}

		lines := make([]model.CartLine, 0, len(cart.Lines))
		for _, l := range cart.Lines {
			lines = append(lines, model.CartLine{
				CartID:    row.ID,
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				Price:     l.Price,
			})
		}
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
		}

		cart.ID = row.ID
		cart.CreatedAt = row.CreatedAt
		cart.UpdatedAt = now
		cart.Lines = lines
		return nil
	})

	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

// 明細を全削除してtotalを0に
func (r *CartGormRepository) ClearByUserID(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart model.Cart
		err := tx.Where("user_id = ?", userID).First(&cart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			//カートが無ければ空と同じ
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&model.CartLine{}).Error; err != nil {
			return err
		}

		return tx.Model(&model.Cart{}).
			Where("id = ?", cart.ID).
			Updates(map[string]interface{}{
				"total_price": decimal.Zero,
				"updated_at":  time.Now(),
			}).Error
	})
}
