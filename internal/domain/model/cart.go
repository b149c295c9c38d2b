package model

import (
	"time"

	"storefront/internal/domain/pricing"

	"github.com/shopspring/decimal"
)

// 1ユーザーにつきカートは1つ。空にはなるが削除はしない。
type Cart struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64           `gorm:"not null;uniqueIndex" json:"user_id"`
	Lines      []CartLine      `gorm:"foreignKey:CartID" json:"lines"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total_price"`
	CreatedAt  time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// カートの明細。priceは追加時点の単価。
type CartLine struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64           `gorm:"not null;uniqueIndex:idx_cart_lines_cart_product" json:"cart_id"`
	ProductID int64           `gorm:"not null;uniqueIndex:idx_cart_lines_cart_product" json:"product_id"`
	Quantity  int64           `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
}

func NewCart(userID int64) Cart {
	return Cart{UserID: userID, Lines: []CartLine{}, TotalPrice: decimal.Zero}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Line は商品IDに対応する明細を返す。
func (c *Cart) Line(productID int64) (*CartLine, bool) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i], true
		}
	}
	return nil, false
}

// AddLine は明細を追加する。既存明細があれば数量を足して在庫数で頭打ちにする。
func (c *Cart) AddLine(productID int64, qty int64, price decimal.Decimal, stock int64) {
	if line, ok := c.Line(productID); ok {
		line.Quantity = min(line.Quantity+qty, stock)
	} else {
		c.Lines = append(c.Lines, CartLine{
			CartID:    c.ID,
			ProductID: productID,
			Quantity:  qty,
			Price:     price,
		})
	}
	c.Recalculate()
}

// SetQuantity は数量をそのまま設定する（在庫の再チェックはしない）。
// 0以下なら明細を消す。明細が無ければfalse。
func (c *Cart) SetQuantity(productID int64, qty int64) bool {
	line, ok := c.Line(productID)
	if !ok {
		return false
	}
	if qty <= 0 {
		c.RemoveLine(productID)
		return true
	}
	line.Quantity = qty
	c.Recalculate()
	return true
}

// RemoveLine は該当明細を除く。無ければ何もしない。
func (c *Cart) RemoveLine(productID int64) {
	kept := make([]CartLine, 0, len(c.Lines))
	for _, l := range c.Lines {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	c.Lines = kept
	c.Recalculate()
}

func (c *Cart) Clear() {
	c.Lines = []CartLine{}
	c.Recalculate()
}

// Recalculate は合計を明細から計算し直す。
func (c *Cart) Recalculate() {
	lines := make([]pricing.Line, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, pricing.Line{Price: l.Price, Quantity: l.Quantity})
	}
	c.TotalPrice = pricing.ItemsPrice(lines)
}
