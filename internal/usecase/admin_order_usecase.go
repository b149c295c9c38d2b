package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/logging"
	repo "storefront/internal/repository"

	"github.com/labstack/gommon/log"
)

type AdminOrderUsecase struct {
	tx     repo.TransactionManager
	orders repo.OrderRepository
	users  repo.UserRepository
	events OrderEventPublisher
	clock  Clock
	log    *log.Logger
}

func NewAdminOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	users repo.UserRepository,
	events OrderEventPublisher,
	clock Clock,
	logger *log.Logger,
) *AdminOrderUsecase {
	return &AdminOrderUsecase{
		tx:     tx,
		orders: orders,
		users:  users,
		events: events,
		clock:  clock,
		log:    logger,
	}
}

type AdminUpdateOrderStatusInput struct {
	OrderStatus string
}

// 監査ログに残す差分
type orderStatusSnapshot struct {
	OrderStatus model.OrderStatus `json:"order_status"`
	DeliveredAt *string           `json:"delivered_at"`
}

// List は全注文（新しい順）。注文者の名前とメールを付ける。
func (u *AdminOrderUsecase) List(ctx context.Context, requester Requester) ([]OrderOutput, error) {
	if requester.UserID <= 0 {
		return []OrderOutput{}, errUnauthorized()
	}
	if !requester.IsAdmin() {
		return []OrderOutput{}, errForbidden("forbidden")
	}

	orders, err := u.orders.ListAll(ctx)
	if err != nil {
		logging.Error(u.log, logging.Fields{UserID: requester.UserID, Step: "list_orders", Status: "db_error", Err: err})
		return []OrderOutput{}, errDB(err)
	}

	ids := make([]int64, 0, len(orders))
	seen := make(map[int64]struct{}, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.UserID]; ok {
			continue
		}
		seen[o.UserID] = struct{}{}
		ids = append(ids, o.UserID)
	}

	owners, err := u.users.FindByIDs(ctx, ids)
	if err != nil {
		logging.Error(u.log, logging.Fields{UserID: requester.UserID, Step: "list_orders_owners", Status: "db_error", Err: err})
		return []OrderOutput{}, errDB(err)
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		var owner *model.User
		if usr, ok := owners[o.UserID]; ok {
			owner = &usr
		}
		outs = append(outs, toOrderOutput(o, owner))
	}
	return outs, nil
}

// UpdateStatus は注文ステータスを変える。どの状態からでも4種類のどれにでも変えられる。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, requester Requester, orderID int64, in AdminUpdateOrderStatusInput) (OrderOutput, error) {
	if requester.UserID <= 0 {
		return OrderOutput{}, errUnauthorized()
	}
	if !requester.IsAdmin() {
		return OrderOutput{}, errForbidden("forbidden")
	}
	if orderID <= 0 {
		return OrderOutput{}, errInvalid("invalid id")
	}

	newStatus := model.OrderStatus(strings.TrimSpace(in.OrderStatus))
	if !newStatus.Valid() {
		return OrderOutput{}, errInvalid("invalid orderStatus")
	}

	var updated model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 注文取得
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("Order not found")
		}
		if err != nil {
			return errDB(err)
		}

		before := snapshotStatus(o)
		now := u.clock.Now()
		o.ApplyStatus(newStatus, now)

		if err := r.Orders().UpdateStatus(ctx, o); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return errNotFound("Order not found")
			}
			return errDB(err)
		}

		// 監査ログ（UPDATE_ORDER_STATUS）
		beforeJSON, err := json.Marshal(before)
		if err != nil {
			return errDB(err)
		}
		afterJSON, err := json.Marshal(snapshotStatus(o))
		if err != nil {
			return errDB(err)
		}
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  requester.UserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   string(beforeJSON),
			AfterJSON:    string(afterJSON),
			CreatedAt:    now,
		}); err != nil {
			return errDB(err)
		}

		updated = o
		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); !ok {
			err = errDB(err)
		}
		if errors.Is(err, ErrInternal) {
			logging.Error(u.log, logging.Fields{UserID: requester.UserID, OrderID: orderID, Step: "update_order_status", Status: "db_error", Err: err})
		}
		return OrderOutput{}, err
	}

	logging.Info(u.log, logging.Fields{UserID: requester.UserID, OrderID: orderID, Step: "update_order_status", Status: string(newStatus)})
	publishOrderEvent(ctx, u.events, u.log, model.EventOrderStatusChanged, updated)

	return toOrderOutput(updated, nil), nil
}

func snapshotStatus(o model.Order) orderStatusSnapshot {
	s := orderStatusSnapshot{OrderStatus: o.OrderStatus}
	if o.DeliveredAt != nil {
		v := o.DeliveredAt.UTC().Format("2006-01-02T15:04:05.000Z07:00")
		s.DeliveredAt = &v
	}
	return s
}
