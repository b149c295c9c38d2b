package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/domain/pricing"
	"storefront/internal/logging"
	repo "storefront/internal/repository"

	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
)

// チェックアウト結果（メトリクスのラベル）
const (
	CheckoutSuccess           = "success"
	CheckoutInvalid           = "invalid"
	CheckoutEmptyCart         = "empty_cart"
	CheckoutInsufficientStock = "insufficient_stock"
	CheckoutError             = "error"
)

type OrderUsecase struct {
	tx       repo.TransactionManager
	orders   repo.OrderRepository
	users    repo.UserRepository
	events   OrderEventPublisher
	observer CheckoutObserver
	clock    Clock
	log      *log.Logger
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	users repo.UserRepository,
	events OrderEventPublisher,
	observer CheckoutObserver,
	clock Clock,
	logger *log.Logger,
) *OrderUsecase {
	return &OrderUsecase{
		tx:       tx,
		orders:   orders,
		users:    users,
		events:   events,
		observer: observer,
		clock:    clock,
		log:      logger,
	}
}

type PlaceOrderInput struct {
	ShippingAddress model.ShippingAddress
	PaymentMethod   string
}

type OrderLineOutput struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
}

// 注文者の表示用情報（管理者一覧と詳細で付ける）
type OrderUserOutput struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type OrderOutput struct {
	ID              int64                 `json:"id"`
	UserID          int64                 `json:"userId"`
	User            *OrderUserOutput      `json:"user,omitempty"`
	Lines           []OrderLineOutput     `json:"lines"`
	ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod"`
	ItemsPrice      decimal.Decimal       `json:"itemsPrice"`
	ShippingPrice   decimal.Decimal       `json:"shippingPrice"`
	TaxPrice        decimal.Decimal       `json:"taxPrice"`
	TotalPrice      decimal.Decimal       `json:"totalPrice"`
	PaymentStatus   string                `json:"paymentStatus"`
	PaidAt          time.Time             `json:"paidAt"`
	OrderStatus     string                `json:"orderStatus"`
	DeliveredAt     *time.Time            `json:"deliveredAt"`
	CreatedAt       time.Time             `json:"createdAt"`
}

// PlaceOrder はカートから注文を作る。
// 検証 → 金額計算 → 注文作成 → 在庫減算 → カートを空に、を1トランザクションで行う。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, errUnauthorized()
	}

	addr, method, err := validatePlaceOrderInput(in)
	if err != nil {
		u.observer.ObserveCheckout(CheckoutInvalid)
		return OrderOutput{}, err
	}

	start := u.clock.Now()
	var created model.Order
	//在庫不足になった商品（ログ用）
	var shortProductID int64

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//カート取得
		cart, err := r.Carts().FindByUserID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return errEmptyCart()
		}
		if err != nil {
			return errDB(err)
		}
		if cart.IsEmpty() {
			return errEmptyCart()
		}

		//商品を引き直して在庫を再チェック（消えた商品の明細は飛ばす）
		ids := make([]int64, 0, len(cart.Lines))
		for _, cl := range cart.Lines {
			ids = append(ids, cl.ProductID)
		}
		products, err := r.Products().FindByIDs(ctx, ids)
		if err != nil {
			return errDB(err)
		}

		lines := make([]model.OrderLine, 0, len(cart.Lines))
		for _, cl := range cart.Lines {
			p, ok := products[cl.ProductID]
			if !ok {
				continue
			}
			if p.Stock < cl.Quantity {
				shortProductID = p.ID
				return errInsufficientStock(p.Name)
			}
			//スナップショットは今の商品情報から
			lines = append(lines, model.OrderLine{
				ProductID: p.ID,
				Name:      p.Name,
				Image:     p.Image,
				Price:     p.Price,
				Quantity:  cl.Quantity,
			})
		}
		if len(lines) == 0 {
			return errEmptyCart()
		}

		//小計はカートの合計をそのまま使う
		quote := pricing.Quote(cart.TotalPrice)
		now := u.clock.Now()

		order, err := r.Orders().Create(ctx, model.Order{
			UserID:          userID,
			Lines:           lines,
			ShippingAddress: addr,
			PaymentMethod:   method,
			ItemsPrice:      quote.ItemsPrice,
			ShippingPrice:   quote.ShippingPrice,
			TaxPrice:        quote.TaxPrice,
			TotalPrice:      quote.TotalPrice,
			PaymentStatus:   model.PaymentStatusPaid,
			PaidAt:          now,
			OrderStatus:     model.OrderStatusProcessing,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			return errDB(err)
		}

		//在庫減算（間に減っていたらロールバック）
		for _, l := range lines {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, l.ProductID, l.Quantity)
			if err != nil {
				return errDB(err)
			}
			if !ok {
				shortProductID = l.ProductID
				return errInsufficientStock(l.Name)
			}
		}

		if err := r.Carts().ClearByUserID(ctx, userID); err != nil {
			return errDB(err)
		}

		created = order
		return nil
	})

	duration := u.clock.Now().Sub(start).Milliseconds()
	if err != nil {
		result := checkoutResult(err)
		u.observer.ObserveCheckout(result)
		fields := logging.Fields{UserID: userID, ProductID: shortProductID, Step: "checkout", Status: result, DurationMS: duration, Err: err}
		if result == CheckoutError {
			logging.Error(u.log, fields)
		} else {
			logging.Info(u.log, fields)
		}
		if _, ok := AsHTTPError(err); !ok {
			return OrderOutput{}, errDB(err)
		}
		return OrderOutput{}, err
	}

	u.observer.ObserveCheckout(CheckoutSuccess)
	logging.Info(u.log, logging.Fields{UserID: userID, OrderID: created.ID, Step: "checkout", Status: CheckoutSuccess, DurationMS: duration})
	u.publish(ctx, model.EventOrderCreated, created)

	return toOrderOutput(created, nil), nil
}

// ListMyOrders は自分の注文一覧（新しい順）。
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, errUnauthorized()
	}

	orders, err := u.orders.ListByUserID(ctx, userID)
	if err != nil {
		logging.Error(u.log, logging.Fields{UserID: userID, Step: "list_my_orders", Status: "db_error", Err: err})
		return []OrderOutput{}, errDB(err)
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o, nil))
	}
	return outs, nil
}

// GetOrder は注文詳細。本人か管理者だけが見られる。
func (u *OrderUsecase) GetOrder(ctx context.Context, requester Requester, orderID int64) (OrderOutput, error) {
	if requester.UserID <= 0 {
		return OrderOutput{}, errUnauthorized()
	}
	if orderID <= 0 {
		return OrderOutput{}, errInvalid("invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, errNotFound("Order not found")
	}
	if err != nil {
		logging.Error(u.log, logging.Fields{UserID: requester.UserID, OrderID: orderID, Step: "get_order", Status: "db_error", Err: err})
		return OrderOutput{}, errDB(err)
	}

	if !o.IsOwnedBy(requester.UserID) && !requester.IsAdmin() {
		return OrderOutput{}, errForbidden("Not authorized to view this order")
	}

	owner, err := u.users.FindByID(ctx, o.UserID)
	if err != nil {
		logging.Error(u.log, logging.Fields{UserID: requester.UserID, OrderID: orderID, Step: "get_order_owner", Status: "db_error", Err: err})
		return OrderOutput{}, errDB(err)
	}

	return toOrderOutput(o, owner), nil
}

func (u *OrderUsecase) publish(ctx context.Context, eventType string, o model.Order) {
	publishOrderEvent(ctx, u.events, u.log, eventType, o)
}

// 送信失敗はログだけ（注文自体は確定済み）
func publishOrderEvent(ctx context.Context, events OrderEventPublisher, logger *log.Logger, eventType string, o model.Order) {
	ev := model.OrderEvent{
		Type:        eventType,
		OrderID:     o.ID,
		UserID:      o.UserID,
		OrderStatus: o.OrderStatus,
		TotalPrice:  o.TotalPrice.StringFixed(2),
		CreatedAt:   o.UpdatedAt,
	}
	if err := events.Publish(ctx, ev); err != nil {
		logging.Warn(logger, logging.Fields{OrderID: o.ID, Step: "publish_" + eventType, Status: "failed", Err: err})
	}
}

func validatePlaceOrderInput(in PlaceOrderInput) (model.ShippingAddress, model.PaymentMethod, error) {
	addr := model.ShippingAddress{
		Address:    strings.TrimSpace(in.ShippingAddress.Address),
		City:       strings.TrimSpace(in.ShippingAddress.City),
		PostalCode: strings.TrimSpace(in.ShippingAddress.PostalCode),
		Country:    strings.TrimSpace(in.ShippingAddress.Country),
	}
	if addr.Address == "" || addr.City == "" || addr.PostalCode == "" || addr.Country == "" {
		return model.ShippingAddress{}, "", errInvalid("invalid shippingAddress")
	}

	method := model.PaymentMethod(strings.TrimSpace(in.PaymentMethod))
	if !method.Valid() {
		return model.ShippingAddress{}, "", errInvalid("invalid paymentMethod")
	}
	return addr, method, nil
}

func checkoutResult(err error) string {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return CheckoutEmptyCart
	case errors.Is(err, ErrInsufficientStock):
		return CheckoutInsufficientStock
	case errors.Is(err, ErrInvalidInput):
		return CheckoutInvalid
	default:
		return CheckoutError
	}
}

func toOrderOutput(o model.Order, owner *model.User) OrderOutput {
	lines := make([]OrderLineOutput, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, OrderLineOutput{
			ProductID: l.ProductID,
			Name:      l.Name,
			Image:     l.Image,
			Price:     l.Price,
			Quantity:  l.Quantity,
		})
	}

	out := OrderOutput{
		ID:              o.ID,
		UserID:          o.UserID,
		Lines:           lines,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   string(o.PaymentMethod),
		ItemsPrice:      o.ItemsPrice,
		ShippingPrice:   o.ShippingPrice,
		TaxPrice:        o.TaxPrice,
		TotalPrice:      o.TotalPrice,
		PaymentStatus:   string(o.PaymentStatus),
		PaidAt:          o.PaidAt,
		OrderStatus:     string(o.OrderStatus),
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
	}
	if owner != nil {
		out.User = &OrderUserOutput{ID: owner.ID, Name: owner.Name, Email: owner.Email}
	}
	return out
}
