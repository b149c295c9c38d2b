package usecase

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	"storefront/internal/logging"
	repo "storefront/internal/repository"

	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
)

// CartUsecase は /api/cart の業務ロジックです。
// カートは明細込みで読み、集約のメソッドで変更して丸ごと保存します。
type CartUsecase struct {
	carts    repo.CartRepository
	products repo.ProductRepository
	log      *log.Logger
}

func NewCartUsecase(carts repo.CartRepository, products repo.ProductRepository, logger *log.Logger) *CartUsecase {
	return &CartUsecase{
		carts:    carts,
		products: products,
		log:      logger,
	}
}

// ProductSummary は明細に付ける表示用の商品情報（その時点の値）。
type ProductSummary struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Image string          `json:"image"`
	Price decimal.Decimal `json:"price"`
	Stock int64           `json:"stock"`
}

// CartLineView の price は追加時点の単価。商品が消えていれば product は null。
type CartLineView struct {
	ProductID int64           `json:"productId"`
	Product   *ProductSummary `json:"product"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// CartView は返却用の形。保存はしない。
type CartView struct {
	Lines      []CartLineView  `json:"lines"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

func emptyCartView() CartView {
	return CartView{Lines: []CartLineView{}, TotalPrice: decimal.Zero}
}

type AddItemInput struct {
	ProductID int64
	Quantity  int64
}

// GetCart はカート取得（無ければ空を返す。作らない）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartView, error) {
	if userID <= 0 {
		return CartView{}, errUnauthorized()
	}

	cart, err := u.carts.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return emptyCartView(), nil
	}
	if err != nil {
		return CartView{}, u.dbError(userID, "get_cart", err)
	}

	return u.buildCartView(ctx, cart)
}

// AddItem はカートに追加。同じ商品は数量を足して在庫数で頭打ち。
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, in AddItemInput) (CartView, error) {
	if userID <= 0 {
		return CartView{}, errUnauthorized()
	}
	if in.ProductID <= 0 {
		return CartView{}, errInvalid("invalid productId")
	}
	if in.Quantity < 1 {
		return CartView{}, errInvalid("invalid quantity")
	}

	p, err := u.products.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartView{}, errNotFound("Product not found")
	}
	if err != nil {
		return CartView{}, u.dbError(userID, "add_item", err)
	}

	//追加数だけを今の在庫と比べる（カート内の数量は見ない）
	if in.Quantity > p.Stock {
		return CartView{}, errInsufficientStock(p.Name)
	}

	cart, err := u.carts.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		cart = model.NewCart(userID)
	} else if err != nil {
		return CartView{}, u.dbError(userID, "add_item", err)
	}

	cart.AddLine(p.ID, in.Quantity, p.Price, p.Stock)

	saved, err := u.carts.Save(ctx, cart)
	if err != nil {
		return CartView{}, u.dbError(userID, "add_item", err)
	}

	return u.buildCartView(ctx, saved)
}

// SetItemQuantity は数量変更。0以下は削除。在庫はここでは見ない（確定時に見る）。
func (u *CartUsecase) SetItemQuantity(ctx context.Context, userID int64, productID int64, quantity int64) (CartView, error) {
	if userID <= 0 {
		return CartView{}, errUnauthorized()
	}

	cart, err := u.carts.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartView{}, errNotFound("Cart not found")
	}
	if err != nil {
		return CartView{}, u.dbError(userID, "set_quantity", err)
	}

	if !cart.SetQuantity(productID, quantity) {
		return CartView{}, errNotFound("Item not in cart")
	}

	saved, err := u.carts.Save(ctx, cart)
	if err != nil {
		return CartView{}, u.dbError(userID, "set_quantity", err)
	}

	return u.buildCartView(ctx, saved)
}

// RemoveItem は明細削除。カートに無い商品なら何もしない。
func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, productID int64) (CartView, error) {
	if userID <= 0 {
		return CartView{}, errUnauthorized()
	}

	cart, err := u.carts.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartView{}, errNotFound("Cart not found")
	}
	if err != nil {
		return CartView{}, u.dbError(userID, "remove_item", err)
	}

	cart.RemoveLine(productID)

	saved, err := u.carts.Save(ctx, cart)
	if err != nil {
		return CartView{}, u.dbError(userID, "remove_item", err)
	}

	return u.buildCartView(ctx, saved)
}

// Clear は明細を全部消す。カートが無くても成功。
func (u *CartUsecase) Clear(ctx context.Context, userID int64) (CartView, error) {
	if userID <= 0 {
		return CartView{}, errUnauthorized()
	}

	if err := u.carts.ClearByUserID(ctx, userID); err != nil {
		return CartView{}, u.dbError(userID, "clear", err)
	}
	return emptyCartView(), nil
}

// 明細に今の商品情報をくっつける。
func (u *CartUsecase) buildCartView(ctx context.Context, cart model.Cart) (CartView, error) {
	ids := make([]int64, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		ids = append(ids, l.ProductID)
	}

	products, err := u.products.FindByIDs(ctx, ids)
	if err != nil {
		return CartView{}, u.dbError(cart.UserID, "build_view", err)
	}

	lines := make([]CartLineView, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		v := CartLineView{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.Price,
		}
		if p, ok := products[l.ProductID]; ok {
			v.Product = &ProductSummary{
				ID:    p.ID,
				Name:  p.Name,
				Image: p.Image,
				Price: p.Price,
				Stock: p.Stock,
			}
		}
		lines = append(lines, v)
	}

	return CartView{Lines: lines, TotalPrice: cart.TotalPrice}, nil
}

func (u *CartUsecase) dbError(userID int64, step string, err error) error {
	logging.Error(u.log, logging.Fields{UserID: userID, Step: step, Status: "db_error", Err: err})
	return errDB(err)
}
