package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// 決済はモック。どの方法でも即時paidになる。
type PaymentMethod string

const (
	PaymentMethodCreditCard     PaymentMethod = "Credit Card"
	PaymentMethodPayPal         PaymentMethod = "PayPal"
	PaymentMethodCashOnDelivery PaymentMethod = "Cash on Delivery"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodPayPal, PaymentMethodCashOnDelivery:
		return true
	}
	return false
}

type PaymentStatus string

const PaymentStatusPaid PaymentStatus = "paid"

type ShippingAddress struct {
	Address    string `gorm:"type:varchar(255);not null" json:"address"`
	City       string `gorm:"type:varchar(255);not null" json:"city"`
	PostalCode string `gorm:"type:varchar(20);not null" json:"postalCode"`
	Country    string `gorm:"type:varchar(100);not null" json:"country"`
}

// 注文。明細と金額は作成時に確定し、以後はorder_statusだけが変わる。
type Order struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64           `gorm:"not null;index" json:"user_id"`
	Lines           []OrderLine     `gorm:"foreignKey:OrderID" json:"lines"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(30);not null" json:"payment_method"`
	ItemsPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"items_price"`
	ShippingPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shipping_price"`
	TaxPrice        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax_price"`
	TotalPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);not null" json:"payment_status"`
	PaidAt          time.Time       `gorm:"not null" json:"paid_at"`
	OrderStatus     OrderStatus     `gorm:"type:varchar(20);not null;index" json:"order_status"`
	DeliveredAt     *time.Time      `json:"delivered_at"`
	CreatedAt       time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`
}

// 注文明細のスナップショット。商品が後で変わってもここは変わらない。
type OrderLine struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64           `gorm:"not null;index" json:"order_id"`
	ProductID int64           `gorm:"not null;index" json:"product_id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Image     string          `gorm:"type:text" json:"image"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Quantity  int64           `gorm:"not null" json:"quantity"`
}

// ApplyStatus はステータスを変える。deliveredのときだけdelivered_atを入れる。
func (o *Order) ApplyStatus(status OrderStatus, now time.Time) {
	o.OrderStatus = status
	if status == OrderStatusDelivered {
		t := now
		o.DeliveredAt = &t
	}
	o.UpdatedAt = now
}

func (o Order) IsOwnedBy(userID int64) bool {
	return o.UserID == userID
}
