package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/handler"
	"storefront/internal/infra/events"
	"storefront/internal/logging"
	"storefront/internal/metrics"
	"storefront/internal/server"
	"storefront/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }

type testApp struct {
	e     *echo.Echo
	store *memStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	store := newMemStore()
	store.users[1] = model.User{ID: 1, Name: "John Doe", Email: "john@example.com", Role: model.RoleUser, IsActive: true}
	store.users[2] = model.User{ID: 2, Name: "Jane Roe", Email: "jane@example.com", Role: model.RoleUser, IsActive: true}
	store.users[9] = model.User{ID: 9, Name: "Admin User", Email: "admin@shop.com", Role: model.RoleAdmin, IsActive: true}
	store.products[10] = model.Product{ID: 10, Name: "Mechanical Gaming Keyboard", Image: "/kb.jpg", Price: decimal.RequireFromString("25.00"), Stock: 5}

	logger := logging.Discard()
	reg := prometheus.NewRegistry()
	m := metrics.NewServerMetrics(reg)

	users := memUsers{s: store}
	orders := memOrders{s: store}
	tx := memTx{s: store}

	cartUC := usecase.NewCartUsecase(memCarts{s: store}, memProducts{s: store}, logger)
	orderUC := usecase.NewOrderUsecase(tx, orders, users, events.NopPublisher{}, m, fixedClock{}, logger)
	adminUC := usecase.NewAdminOrderUsecase(tx, orders, users, events.NopPublisher{}, fixedClock{}, logger)

	e := server.New(server.Deps{
		Config:   config.Config{JWTSecret: testSecret},
		Logger:   logger,
		Metrics:  m,
		Gatherer: reg,
		Users:    users,
		Handlers: server.Handlers{
			Cart:       handler.NewCartHandler(cartUC),
			Order:      handler.NewOrderHandler(orderUC),
			AdminOrder: handler.NewAdminOrderHandler(adminUC),
		},
	})
	return &testApp{e: e, store: store}
}

func tokenFor(t *testing.T, userID int64, role model.Role) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"tv":   0,
		"exp":  9999999999,
	})
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

var checkoutBody = map[string]any{
	"shippingAddress": map[string]string{
		"address":    "1-2-3 Shibuya",
		"city":       "Tokyo",
		"postalCode": "150-0002",
		"country":    "Japan",
	},
	"paymentMethod": "PayPal",
}

func TestServer_CartToOrderFlow(t *testing.T) {
	app := newTestApp(t)
	john := tokenFor(t, 1, model.RoleUser)

	// 認証なし
	rec := app.do(t, http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// 追加（quantity省略は1）
	rec = app.do(t, http.MethodPost, "/api/cart", john, map[string]any{"productId": 10, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = app.do(t, http.MethodPost, "/api/cart", john, map[string]any{"productId": 10})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cart := decode[usecase.CartView](t, rec)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, int64(3), cart.Lines[0].Quantity)
	require.NotNil(t, cart.Lines[0].Product)
	assert.True(t, cart.TotalPrice.Equal(decimal.NewFromInt(75)))

	// 数量変更
	rec = app.do(t, http.MethodPut, "/api/cart/10", john, map[string]any{"quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// 注文
	rec = app.do(t, http.MethodPost, "/api/orders", john, checkoutBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[usecase.OrderOutput](t, rec)
	assert.Equal(t, "processing", order.OrderStatus)
	assert.Equal(t, "paid", order.PaymentStatus)
	assert.True(t, order.ItemsPrice.Equal(decimal.NewFromInt(50)))
	assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(64)))

	assert.Equal(t, int64(3), app.store.products[10].Stock)
	assert.Empty(t, app.store.carts[1].Lines)

	// 空カートでもう一度
	rec = app.do(t, http.MethodPost, "/api/orders", john, checkoutBody)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Your cart is empty", decode[handler.ErrorResponse](t, rec).Error)

	// 自分の注文
	rec = app.do(t, http.MethodGet, "/api/orders/myorders", john, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[[]usecase.OrderOutput](t, rec)
	require.Len(t, mine, 1)
	assert.Equal(t, order.ID, mine[0].ID)
}

func TestServer_AddItemErrors(t *testing.T) {
	app := newTestApp(t)
	john := tokenFor(t, 1, model.RoleUser)

	rec := app.do(t, http.MethodPost, "/api/cart", john, map[string]any{"productId": 10, "quantity": 6})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Insufficient stock for Mechanical Gaming Keyboard", decode[handler.ErrorResponse](t, rec).Error)

	rec = app.do(t, http.MethodPost, "/api/cart", john, map[string]any{"productId": 77, "quantity": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", decode[handler.ErrorResponse](t, rec).Error)

	rec = app.do(t, http.MethodPut, "/api/cart/abc", john, map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_UpdateItemRequiresQuantity(t *testing.T) {
	app := newTestApp(t)
	john := tokenFor(t, 1, model.RoleUser)

	rec := app.do(t, http.MethodPost, "/api/cart", john, map[string]any{"productId": 10, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	tests := []struct {
		name string
		body any
	}{
		{name: "空のbody", body: map[string]any{}},
		{name: "キー名違い", body: map[string]any{"qty": 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, http.MethodPut, "/api/cart/10", john, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "invalid quantity", decode[handler.ErrorResponse](t, rec).Error)

			// 明細は残っている
			require.Len(t, app.store.carts[1].Lines, 1)
			assert.Equal(t, int64(2), app.store.carts[1].Lines[0].Quantity)
		})
	}

	// 明示的な0は削除
	rec = app.do(t, http.MethodPut, "/api/cart/10", john, map[string]any{"quantity": 0})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, app.store.carts[1].Lines)
}

func TestServer_ClearCart(t *testing.T) {
	app := newTestApp(t)
	john := tokenFor(t, 1, model.RoleUser)

	rec := app.do(t, http.MethodDelete, "/api/cart", john, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	type clearBody struct {
		Message    string          `json:"message"`
		Lines      []any           `json:"lines"`
		TotalPrice decimal.Decimal `json:"totalPrice"`
	}
	body := decode[clearBody](t, rec)
	assert.Equal(t, "Cart cleared", body.Message)
	assert.NotNil(t, body.Lines)
	assert.Empty(t, body.Lines)
	assert.True(t, body.TotalPrice.IsZero())
}

func TestServer_AdminOrderRoutes(t *testing.T) {
	app := newTestApp(t)
	john := tokenFor(t, 1, model.RoleUser)
	jane := tokenFor(t, 2, model.RoleUser)
	admin := tokenFor(t, 9, model.RoleAdmin)

	rec := app.do(t, http.MethodPost, "/api/cart", john, map[string]any{"productId": 10, "quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = app.do(t, http.MethodPost, "/api/orders", john, checkoutBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	// 一覧は管理者だけ
	rec = app.do(t, http.MethodGet, "/api/orders", john, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/orders", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]usecase.OrderOutput](t, rec)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].User)
	assert.Equal(t, "John Doe", all[0].User.Name)

	// 詳細は本人か管理者
	rec = app.do(t, http.MethodGet, "/api/orders/1", jane, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Not authorized to view this order", decode[handler.ErrorResponse](t, rec).Error)

	rec = app.do(t, http.MethodGet, "/api/orders/1", john, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/orders/404", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// ステータス更新
	rec = app.do(t, http.MethodPut, "/api/orders/1/status", john, map[string]string{"orderStatus": "shipped"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodPut, "/api/orders/1/status", admin, map[string]string{"orderStatus": "returned"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPut, "/api/orders/1/status", admin, map[string]string{"orderStatus": "delivered"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[usecase.OrderOutput](t, rec)
	assert.Equal(t, "delivered", updated.OrderStatus)
	assert.NotNil(t, updated.DeliveredAt)
	require.Len(t, app.store.audits, 1)
	assert.Equal(t, int64(9), app.store.audits[0].ActorUserID)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	john := tokenFor(t, 1, model.RoleUser)
	app.do(t, http.MethodPost, "/api/orders", john, checkoutBody)

	rec = app.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `storefront_checkout_attempts_total{result="empty_cart"} 1`), body)
	assert.Contains(t, body, "storefront_http_requests_total")
}

func TestServer_StartStopsOnContextCancel(t *testing.T) {
	app := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- server.Start(ctx, app.e, "127.0.0.1:0", logging.Discard()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
