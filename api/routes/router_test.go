package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	internalorders "github.com/freshkart/orders-backend/internal/orders"
	"github.com/freshkart/orders-backend/internal/payments"
	pkgauth "github.com/freshkart/orders-backend/pkg/auth"
	"github.com/freshkart/orders-backend/pkg/config"
	"github.com/freshkart/orders-backend/pkg/db/models"
	"github.com/freshkart/orders-backend/pkg/enums"
	"github.com/freshkart/orders-backend/pkg/logger"
	"github.com/freshkart/orders-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubOrdersService struct{}

func (stubOrdersService) CreateOrder(ctx context.Context, input internalorders.CreateOrderInput) (*models.Order, error) {
	return &models.Order{ID: uuid.New(), Status: enums.OrderStatusPending}, nil
}

func (stubOrdersService) GetOrder(ctx context.Context, orderID uuid.UUID, actor pkgauth.Identity) (*models.Order, error) {
	return &models.Order{ID: orderID}, nil
}

func (stubOrdersService) ListForBuyer(ctx context.Context, actor pkgauth.Identity, params pagination.Params, filters internalorders.Filters) (*internalorders.OrderList, error) {
	return &internalorders.OrderList{}, nil
}

func (stubOrdersService) ListAll(ctx context.Context, actor pkgauth.Identity, params pagination.Params, filters internalorders.Filters) (*internalorders.OrderList, error) {
	return &internalorders.OrderList{}, nil
}

func (stubOrdersService) TransitionStatus(ctx context.Context, input internalorders.TransitionInput) (*models.Order, error) {
	return &models.Order{ID: input.OrderID, Status: input.Target}, nil
}

type stubPaymentsService struct{}

func (stubPaymentsService) CreateGatewayOrder(ctx context.Context, input payments.CreateGatewayOrderInput) (*payments.GatewayOrder, error) {
	return &payments.GatewayOrder{OrderID: "order_test", Currency: enums.CurrencyINR}, nil
}

func (stubPaymentsService) VerifyAndSettle(ctx context.Context, input payments.VerifyInput) (*models.Order, error) {
	return &models.Order{ID: uuid.New()}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		Pingers{DB: stubPinger{}, Redis: stubPinger{}, PubSub: stubPinger{}},
		nil, // idempotency store
		stubOrdersService{},
		stubPaymentsService{},
		nil, // metrics gatherer
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.MemberRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.Identity{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestHealthReadyPingsDependencies(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestOrdersGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestOrdersGroupAcceptsCustomer(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAdminOrdersRequiresOperatorCapability(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	customer := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	operator := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	operator.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleOperator))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, operator)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for operator got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestOperatorCannotPlaceOrders(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	body := `{"payment_mode":"cash_on_delivery","items":[{"product_id":"` + uuid.NewString() + `","quantity":1}],"delivery_address":{"line1":"14 MG Road","city":"Bengaluru","state":"Karnataka","postal_code":"560001"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleOperator))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for operator checkout got %d", resp.Code)
	}
}

func TestPaymentRoutesRequireAuth(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/payment/verify-payment", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	authed := httptest.NewRequest(http.MethodPost, "/payment/create-order", strings.NewReader(`{"amount": 100}`))
	authed.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleCustomer))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for authed create-order got %d: %s", resp.Code, resp.Body.String())
	}
}
