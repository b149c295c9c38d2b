package model

import "time"

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// 注文まわりのイベント（下流向け）。
type OrderEvent struct {
	EventID     string      `json:"event_id"`
	Type        string      `json:"type"`
	OrderID     int64       `json:"order_id"`
	UserID      int64       `json:"user_id"`
	OrderStatus OrderStatus `json:"order_status"`
	TotalPrice  string      `json:"total_price,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}
