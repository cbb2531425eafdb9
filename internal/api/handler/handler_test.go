package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/pdv-api/internal/api/handler/router"
	"github.com/vfg2006/pdv-api/internal/domain"
	"github.com/vfg2006/pdv-api/internal/scheduler"
	"github.com/vfg2006/pdv-api/internal/usecases/authenticating"
	"github.com/vfg2006/pdv-api/internal/usecases/checkout"
	"github.com/vfg2006/pdv-api/internal/usecases/inventory"
	"github.com/vfg2006/pdv-api/pkg/apiErrors"
	"github.com/vfg2006/pdv-api/pkg/middleware"
)

const (
	operatorToken = "token-operador"
	adminToken    = "token-admin"
)

type fakeAuth struct {
	authenticating.Authenticator
}

func (fakeAuth) ValidateToken(token string) (*domain.Session, error) {
	switch token {
	case operatorToken:
		return &domain.Session{OperatorID: "op-1", OperatorName: "Caixa 1"}, nil
	case adminToken:
		return &domain.Session{OperatorID: "adm", OperatorName: "Admin", IsAdmin: true}, nil
	}
	return nil, authenticating.ErrInvalidToken
}

type fakeVerifier struct {
	result *domain.AccessResult
}

func (f fakeVerifier) VerifyAccess(context.Context, string) *domain.AccessResult { return f.result }
func (f fakeVerifier) LastKnown(string) (*domain.AccessResult, error) { return nil, nil }

type fakeInventory struct {
	Inventory
	called string
	owner  string
}

func (f *fakeInventory) ListProducts(ownerID string) ([]*domain.Product, error) {
	f.called, f.owner = "todos", ownerID
	return []*domain.Product{}, nil
}

func (f *fakeInventory) SearchByName(ownerID, prefix string) ([]*domain.Product, error) {
	f.called, f.owner = "busca:"+prefix, ownerID
	return []*domain.Product{}, nil
}

func (f *fakeInventory) LowStock(ownerID string) ([]*domain.Product, error) {
	f.called, f.owner = "estoque_baixo", ownerID
	return []*domain.Product{}, nil
}

func (f *fakeInventory) GetByBarcode(ownerID, barcode string) (*domain.Product, error) {
	f.called, f.owner = "codigo:"+barcode, ownerID
	return &domain.Product{ID: "p-1", UserID: ownerID, Barcode: barcode}, nil
}

func (f *fakeInventory) GetProduct(ownerID, id string) (*domain.Product, error) {
	f.owner = ownerID
	return nil, inventory.NewInventoryError(inventory.ErrProductNotFound, apiErrors.ErrNotFound, id, "")
}

type fakeCheckout struct {
	Cashier
	sales   map[string]*domain.Sale
	session *domain.Session
}

func (f *fakeCheckout) GetSale(id string) (*domain.Sale, error) {
	sale, ok := f.sales[id]
	if !ok {
		return nil, checkout.NewSaleErrorWithID(checkout.ErrSaleNotFound, apiErrors.ErrNotFound, id, "")
	}
	return sale, nil
}

func (f *fakeCheckout) NextSaleNumber(operatorID string) (int, error) {
	f.session = &domain.Session{OperatorID: operatorID}
	return 3, nil
}

func (f *fakeCheckout) Checkout(_ context.Context, session *domain.Session, req *domain.CheckoutRequest) (*domain.Sale, error) {
	f.session = session
	return &domain.Sale{ID: "s-novo", Number: 7, OperatorID: session.OperatorID, Status: domain.SaleStatusCompleted}, nil
}

type fakeCompany struct {
	Company
}

func (fakeCompany) GetCompany(_ context.Context, operatorID string) (*domain.Company, error) {
	return &domain.Company{OperatorID: operatorID, Name: "Mercado Central"}, nil
}

func (fakeCompany) GetFiscalConfig(_ context.Context, operatorID string) (*domain.FiscalConfig, error) {
	return &domain.FiscalConfig{OperatorID: operatorID, Series: 1}, nil
}

type fakeBilling struct {
	Billing
}

func (fakeBilling) Plans() []domain.Plan {
	return []domain.Plan{{Method: domain.PlanPix, Price: 59.9, Days: 60}}
}

func (fakeBilling) ListPayments(context.Context, string) ([]*domain.Payment, error) {
	return []*domain.Payment{}, nil
}

type fakeAdmin struct {
	Admin
}

func (fakeAdmin) ListOperators(context.Context) ([]*domain.Operator, error) {
	return []*domain.Operator{}, nil
}

type fakeSyncer struct {
	err error
}

func (f fakeSyncer) TriggerManualSync() error { return f.err }
func (f fakeSyncer) GetStatus() map[string]any { return map[string]any{"sync_running": false} }

type fixture struct {
	handler   http.Handler
	inventory *fakeInventory
	checkout  *fakeCheckout
}

func newFixture(t *testing.T, access *domain.AccessResult, syncErr error) *fixture {
	t.Helper()

	inv := &fakeInventory{}
	sales := &fakeCheckout{sales: map[string]*domain.Sale{
		"s-1": {
			ID:         "s-1",
			Number:     1,
			OperatorID: "op-1",
			Items:      []domain.SaleItem{{ProductID: "p-1", Name: "Arroz", Quantity: 2, UnitPrice: 10, Subtotal: 20}},
			Total:      20,
			Status:     domain.SaleStatusCompleted,
			CreatedAt:  time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		},
		"s-2": {ID: "s-2", Number: 2, OperatorID: "op-2", Status: domain.SaleStatusCompleted},
	}}

	services := Services{
		Auth:      fakeAuth{},
		Inventory: inv,
		Checkout:  sales,
		Company:   fakeCompany{},
		Billing:   fakeBilling{},
		Admin:     fakeAdmin{},
		Sync:      fakeSyncer{err: syncErr},
	}
	if access != nil {
		services.Access = fakeVerifier{result: access}
	}

	rt := router.New(Routes(services)...)
	return &fixture{
		handler:   middleware.AuthMiddleware(services.Auth)(rt),
		inventory: inv,
		checkout:  sales,
	}
}

func (f *fixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body apiErrors.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func TestRoutes_Public(t *testing.T) {
	f := newFixture(t, nil, nil)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/healthcheck", "", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/metrics", "", "").Code)

	rec := f.do(http.MethodGet, "/v1/plans", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"formaPagamento":"pix"`)

	rec = f.do(http.MethodGet, "/v1/products", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListProducts_Filters(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{name: "sem filtro", query: "", want: "todos"},
		{name: "por código de barras", query: "?codigo=789", want: "codigo:789"},
		{name: "por nome", query: "?busca=arr", want: "busca:arr"},
		{name: "estoque baixo", query: "?estoque_baixo=true", want: "estoque_baixo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, nil)
			rec := f.do(http.MethodGet, "/v1/products"+tt.query, operatorToken, "")

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, f.inventory.called)
			assert.Equal(t, "op-1", f.inventory.owner)
		})
	}
}

func TestListProducts_Scope(t *testing.T) {
	tests := []struct {
		name  string
		query string
		token string
		want  string
	}{
		{name: "operador vê só o próprio catálogo", query: "", token: operatorToken, want: "op-1"},
		{name: "operador não escolhe outro dono", query: "?operador=op-2", token: operatorToken, want: "op-1"},
		{name: "administrador vê todos", query: "", token: adminToken, want: ""},
		{name: "administrador filtra por operador", query: "?operador=op-2", token: adminToken, want: "op-2"},
		{name: "código de barras do administrador", query: "?codigo=789", token: adminToken, want: "adm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, nil)
			rec := f.do(http.MethodGet, "/v1/products"+tt.query, tt.token, "")

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, f.inventory.owner)
		})
	}
}

func TestNextSaleNumber_PerOperator(t *testing.T) {
	f := newFixture(t, nil, nil)

	rec := f.do(http.MethodGet, "/v1/next-sale-number", operatorToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "op-1", f.checkout.session.OperatorID)

	rec = f.do(http.MethodGet, "/v1/next-sale-number?operador=op-2", adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "op-2", f.checkout.session.OperatorID)
}

func TestGetProduct_NotFound(t *testing.T) {
	f := newFixture(t, nil, nil)
	rec := f.do(http.MethodGet, "/v1/products/nao-existe", operatorToken, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apiErrors.ErrNotFound, errorCode(t, rec))
	assert.Equal(t, "op-1", f.inventory.owner)
}

func TestCreateSale(t *testing.T) {
	f := newFixture(t, nil, nil)

	t.Run("corpo inválido", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/v1/sales", operatorToken, "{")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apiErrors.ErrInvalidRequest, errorCode(t, rec))
	})

	t.Run("venda criada com a sessão do operador", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/v1/sales", operatorToken, `{"itens":[{"produtoId":"p-1","quantidade":1}]}`)
		assert.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, f.checkout.session)
		assert.Equal(t, "op-1", f.checkout.session.OperatorID)
	})
}

func TestGetSale_Ownership(t *testing.T) {
	f := newFixture(t, nil, nil)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/v1/sales/s-1", operatorToken, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/v1/sales/s-2", operatorToken, "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/v1/sales/s-2", adminToken, "").Code)
}

func TestPrintSale(t *testing.T) {
	f := newFixture(t, nil, nil)

	t.Run("recibo", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/v1/sales/s-1/print/recibo", operatorToken, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), "Mercado Central")
	})

	t.Run("nfce sem valor fiscal", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/v1/sales/s-1/print/nfce", operatorToken, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "SEM VALOR FISCAL")
	})

	t.Run("tipo desconhecido", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/v1/sales/s-1/print/boleto", operatorToken, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestShareSale(t *testing.T) {
	f := newFixture(t, nil, nil)
	rec := f.do(http.MethodGet, "/v1/sales/s-1/whatsapp?telefone=11987654321", operatorToken, "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp whatsAppResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Link, "https://wa.me/5511987654321?text="))
	assert.NotEmpty(t, resp.Text)
}

func TestRequireAccess_Routes(t *testing.T) {
	blocked := &domain.AccessResult{CanUse: false, Status: domain.AccessSuspended, Message: "Assinatura suspensa"}
	f := newFixture(t, blocked, nil)

	rec := f.do(http.MethodGet, "/v1/products", operatorToken, "")
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, apiErrors.ErrAccessBlocked, errorCode(t, rec))

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/v1/payments", operatorToken, "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/v1/products", adminToken, "").Code)
}

func TestAdminRoutes(t *testing.T) {
	f := newFixture(t, nil, nil)

	rec := f.do(http.MethodGet, "/v1/admin/operators", operatorToken, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, apiErrors.ErrInsufficientPrivilege, errorCode(t, rec))

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/v1/admin/operators", adminToken, "").Code)
}

func TestRunSync(t *testing.T) {
	t.Run("iniciada", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		assert.Equal(t, http.StatusAccepted, f.do(http.MethodPost, "/v1/sync/run", operatorToken, "").Code)
	})

	t.Run("já em andamento", func(t *testing.T) {
		f := newFixture(t, nil, scheduler.ErrSyncInProgress)
		rec := f.do(http.MethodPost, "/v1/sync/run", operatorToken, "")
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, apiErrors.ErrSyncInProgress, errorCode(t, rec))
	})
}

func TestMyAccess_LocalMode(t *testing.T) {
	f := newFixture(t, nil, nil)
	rec := f.do(http.MethodGet, "/v1/me/access", operatorToken, "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp meResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Access.CanUse)
	assert.Equal(t, domain.NoExpiryDays, resp.Access.DaysRemaining)
	assert.Equal(t, "op-1", resp.Session.OperatorID)
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t, nil, nil)
	rec := f.do(http.MethodGet, "/v1/nada", operatorToken, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
