package server_test

import (
	"context"
	"sort"
	"sync"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// メモリ上のストア。ルーティング〜usecaseまで通しで確認する用
type memStore struct {
	mu       sync.Mutex
	users    map[int64]model.User
	products map[int64]model.Product
	carts    map[int64]model.Cart
	orders   []model.Order
	audits   []model.AuditLog
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[int64]model.User{},
		products: map[int64]model.Product{},
		carts:    map[int64]model.Cart{},
	}
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[u.ID] = *u
	return nil
}

func (r memUsers) FindByID(_ context.Context, id int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memUsers) FindByIDs(_ context.Context, ids []int64) (map[int64]model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[int64]model.User{}
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

type memProducts struct{ s *memStore }

func (r memProducts) FindByID(_ context.Context, id int64) (model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r memProducts) FindByIDs(_ context.Context, ids []int64) (map[int64]model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[int64]model.Product{}
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r memProducts) Create(_ context.Context, p model.Product) (model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[p.ID] = p
	return p, nil
}

type memInventory struct{ s *memStore }

func (r memInventory) DecreaseStockIfEnough(_ context.Context, productID int64, qty int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[productID]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	r.s.products[productID] = p
	return true, nil
}

type memCarts struct{ s *memStore }

func (r memCarts) FindByUserID(_ context.Context, userID int64) (model.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.carts[userID]
	if !ok {
		return model.Cart{}, repo.ErrNotFound
	}
	c.Lines = append([]model.CartLine(nil), c.Lines...)
	return c, nil
}

func (r memCarts) Save(_ context.Context, c model.Cart) (model.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ID == 0 {
		c.ID = c.UserID
	}
	c.Lines = append([]model.CartLine(nil), c.Lines...)
	r.s.carts[c.UserID] = c
	return c, nil
}

func (r memCarts) ClearByUserID(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.carts[userID]
	if !ok {
		return nil
	}
	c.Clear()
	r.s.carts[userID] = c
	return nil
}

type memOrders struct{ s *memStore }

func (r memOrders) Create(_ context.Context, o model.Order) (model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o.ID = int64(len(r.s.orders) + 1)
	r.s.orders = append(r.s.orders, o)
	return o, nil
}

func (r memOrders) FindByID(_ context.Context, id int64) (model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return model.Order{}, repo.ErrNotFound
}

func (r memOrders) ListByUserID(_ context.Context, userID int64) ([]model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Order{}
	for _, o := range r.s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memOrders) ListAll(_ context.Context) ([]model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := append([]model.Order{}, r.s.orders...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memOrders) UpdateStatus(_ context.Context, o model.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.orders {
		if r.s.orders[i].ID == o.ID {
			r.s.orders[i].OrderStatus = o.OrderStatus
			r.s.orders[i].DeliveredAt = o.DeliveredAt
			r.s.orders[i].UpdatedAt = o.UpdatedAt
			return nil
		}
	}
	return repo.ErrNotFound
}

type memAudits struct{ s *memStore }

func (r memAudits) Create(_ context.Context, l model.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audits = append(r.s.audits, l)
	return nil
}

type memTxRepos struct{ s *memStore }

func (r memTxRepos) Orders() repo.OrderRepository        { return memOrders(r) }
func (r memTxRepos) Carts() repo.CartRepository          { return memCarts(r) }
func (r memTxRepos) Inventory() repo.InventoryRepository { return memInventory(r) }
func (r memTxRepos) Products() repo.ProductRepository    { return memProducts(r) }
func (r memTxRepos) AuditLogs() repo.AuditLogRepository  { return memAudits(r) }

// ロールバックはしない（失敗系はusecaseのテストで見る）
type memTx struct{ s *memStore }

func (t memTx) WithinTx(_ context.Context, fn func(r repo.TxRepos) error) error {
	return fn(memTxRepos(t))
}
