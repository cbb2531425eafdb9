package checkout

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/pdv-api/infrastructure/localstore"
	"github.com/vfg2006/pdv-api/infrastructure/repository"
	"github.com/vfg2006/pdv-api/internal/domain"
	"github.com/vfg2006/pdv-api/pkg/apiErrors"
)

type pusherStub struct {
	mu       sync.Mutex
	sales    []*domain.Sale
	products []*domain.Product
	err      error
}

func (p *pusherStub) SyncProducts(_ context.Context, products []*domain.Product) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return 0, p.err
	}
	p.products = append(p.products, products...)
	return len(products), nil
}

func (p *pusherStub) SyncSales(_ context.Context, sales []*domain.Sale) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return 0, p.err
	}
	p.sales = append(p.sales, sales...)
	return len(sales), nil
}

type fixture struct {
	service *Service
	store   *localstore.Store
	pusher  *pusherStub
	session *domain.Session
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := localstore.Open(filepath.Join(t.TempDir(), "pdv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	f := &fixture{
		store:   store,
		pusher:  &pusherStub{},
		session: &domain.Session{OperatorID: "op-1", OperatorName: "Caixa 1"},
		now:     time.Date(2026, 6, 10, 15, 0, 0, 0, time.UTC),
	}
	f.service = NewService(store, f.pusher).WithClock(func() time.Time { return f.now })

	require.NoError(t, store.SaveProducts([]*domain.Product{
		{ID: "arroz", UserID: "op-1", Name: "Arroz", Barcode: "111", Price: 9.99, Stock: 10},
		{ID: "feijao", UserID: "op-1", Name: "Feijão", Barcode: "222", Price: 7.5, Stock: 2},
	}))
	return f
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := f.store.GetProduct(id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func TestService_Checkout(t *testing.T) {
	f := newFixture(t)
	pix := "pix"

	sale, err := f.service.Checkout(context.Background(), f.session, &domain.CheckoutRequest{
		Items: []domain.CheckoutItem{
			{ProductID: "arroz", Quantity: 2},
			{Barcode: "222", Quantity: 1},
			{Barcode: "111", Quantity: 1},
		},
		PaymentMethod: &pix,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, sale.Number)
	assert.Equal(t, domain.SaleStatusCompleted, sale.Status)
	assert.Equal(t, "Caixa 1", sale.OperatorName)
	require.Len(t, sale.Items, 2, "linhas do mesmo produto são somadas")
	assert.Equal(t, 3, sale.Items[0].Quantity)
	assert.Equal(t, 29.97, sale.Items[0].Subtotal)
	assert.Equal(t, 37.47, sale.Total)

	assert.Equal(t, 7, f.stock(t, "arroz"))
	assert.Equal(t, 1, f.stock(t, "feijao"))

	require.Len(t, f.pusher.sales, 1)
	assert.Len(t, f.pusher.products, 2)

	next, err := f.service.NextSaleNumber("op-1")
	require.NoError(t, err)
	assert.Equal(t, 2, next)

	next, err = f.service.NextSaleNumber("op-2")
	require.NoError(t, err)
	assert.Equal(t, 1, next, "cada operador tem a própria sequência")

	served, err := f.store.ServedOperators()
	require.NoError(t, err)
	assert.Equal(t, []string{"op-1"}, served)
}

func TestService_Checkout_OtherOperatorProduct(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SaveProduct(&domain.Product{
		ID: "b-prod", UserID: "op-b", Name: "Biscoito", Barcode: "789", Price: 3, Stock: 5,
	}))
	session := &domain.Session{OperatorID: "op-a", OperatorName: "Caixa A"}

	tests := []struct {
		name string
		item domain.CheckoutItem
	}{
		{name: "Pelo código de barras", item: domain.CheckoutItem{Barcode: "789", Quantity: 1}},
		{name: "Pelo ID", item: domain.CheckoutItem{ProductID: "b-prod", Quantity: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sale, err := f.service.Checkout(context.Background(), session, &domain.CheckoutRequest{
				Items: []domain.CheckoutItem{tt.item},
			})

			assert.Nil(t, sale)
			assert.ErrorIs(t, err, ErrProductNotFound)
			assert.Equal(t, apiErrors.ErrNotFound, apiErrors.CodeOf(err))
			assert.Equal(t, 5, f.stock(t, "b-prod"))
		})
	}

	t.Run("Administrador também vende só do próprio catálogo", func(t *testing.T) {
		admin := &domain.Session{OperatorID: "admin", IsAdmin: true}
		_, err := f.service.Checkout(context.Background(), admin, &domain.CheckoutRequest{
			Items: []domain.CheckoutItem{{Barcode: "789", Quantity: 1}},
		})
		assert.ErrorIs(t, err, ErrProductNotFound)
		assert.Equal(t, 5, f.stock(t, "b-prod"))
	})

	t.Run("Dono vende normalmente", func(t *testing.T) {
		owner := &domain.Session{OperatorID: "op-b", OperatorName: "Caixa B"}
		sale, err := f.service.Checkout(context.Background(), owner, &domain.CheckoutRequest{
			Items: []domain.CheckoutItem{{Barcode: "789", Quantity: 2}},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, sale.Number)
		assert.Equal(t, 3, f.stock(t, "b-prod"))
	})
}

func TestService_Checkout_Errors(t *testing.T) {
	tests := []struct {
		name     string
		req      *domain.CheckoutRequest
		wantErr  error
		wantCode string
	}{
		{
			name:     "Carrinho vazio",
			req:      &domain.CheckoutRequest{},
			wantErr:  ErrEmptyCart,
			wantCode: apiErrors.ErrEmptyCart,
		},
		{
			name:     "Produto inexistente",
			req:      &domain.CheckoutRequest{Items: []domain.CheckoutItem{{Barcode: "999", Quantity: 1}}},
			wantErr:  ErrProductNotFound,
			wantCode: apiErrors.ErrNotFound,
		},
		{
			name:     "Quantidade zero",
			req:      &domain.CheckoutRequest{Items: []domain.CheckoutItem{{ProductID: "arroz", Quantity: 0}}},
			wantErr:  ErrInvalidQuantity,
			wantCode: apiErrors.ErrInvalidFormat,
		},
		{
			name: "Estoque insuficiente somando linhas",
			req: &domain.CheckoutRequest{Items: []domain.CheckoutItem{
				{ProductID: "feijao", Quantity: 2},
				{Barcode: "222", Quantity: 1},
			}},
			wantErr:  ErrInsufficientStock,
			wantCode: apiErrors.ErrInsufficientStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			sale, err := f.service.Checkout(context.Background(), f.session, tt.req)

			assert.Nil(t, sale)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantCode, apiErrors.CodeOf(err))

			sales, err := f.service.ListSales("")
			require.NoError(t, err)
			assert.Empty(t, sales)
			assert.Equal(t, 2, f.stock(t, "feijao"))
		})
	}
}

func TestService_Checkout_ConcurrentNumbers(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SaveProduct(&domain.Product{ID: "agua", UserID: "op-1", Name: "Água", Price: 2, Stock: 100}))

	const total = 20
	numbers := make(chan int, total)
	var wg sync.WaitGroup
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sale, err := f.service.Checkout(context.Background(), f.session, &domain.CheckoutRequest{
				Items: []domain.CheckoutItem{{ProductID: "agua", Quantity: 1}},
			})
			if assert.NoError(t, err) {
				numbers <- sale.Number
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[int]bool, total)
	for n := range numbers {
		assert.False(t, seen[n], "número %d repetido", n)
		seen[n] = true
	}
	assert.Len(t, seen, total)
	assert.Equal(t, 100-total, f.stock(t, "agua"))
}

func TestService_Checkout_RemoteFailureKeepsSale(t *testing.T) {
	f := newFixture(t)
	f.pusher.err = repository.ErrRemoteUnavailable

	sale, err := f.service.Checkout(context.Background(), f.session, &domain.CheckoutRequest{
		Items: []domain.CheckoutItem{{ProductID: "arroz", Quantity: 1}},
	})
	require.NoError(t, err)

	stored, err := f.service.GetSale(sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sale.Number, stored.Number)
}

func TestService_CancelSale(t *testing.T) {
	tests := []struct {
		name       string
		reason     string
		wantStocks int
	}{
		{name: "Cancelamento devolve ao estoque", reason: "Cliente desistiu", wantStocks: 10},
		{name: "Produto com defeito não devolve", reason: domain.DefectiveProductReason, wantStocks: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			sale, err := f.service.Checkout(ctx, f.session, &domain.CheckoutRequest{
				Items: []domain.CheckoutItem{{ProductID: "arroz", Quantity: 3}},
			})
			require.NoError(t, err)

			f.now = f.now.Add(10 * time.Minute)
			cancelled, err := f.service.CancelSale(ctx, f.session, sale.ID, tt.reason)
			require.NoError(t, err)

			assert.Equal(t, sale.ID, cancelled.ID)
			assert.Equal(t, sale.Number, cancelled.Number)
			assert.True(t, cancelled.IsCancelled())
			assert.Equal(t, tt.reason, *cancelled.CancelReason)
			assert.Equal(t, f.now, *cancelled.CancelledAt)
			assert.Equal(t, tt.wantStocks, f.stock(t, "arroz"))

			byNumber, err := f.store.GetSaleByNumber("op-1", sale.Number)
			require.NoError(t, err)
			assert.Equal(t, sale.ID, byNumber.ID)

			sales, err := f.service.ListSales("op-1")
			require.NoError(t, err)
			assert.Len(t, sales, 1)

			_, err = f.service.CancelSale(ctx, f.session, sale.ID, tt.reason)
			assert.ErrorIs(t, err, ErrSaleNotCompleted)
			assert.Equal(t, tt.wantStocks, f.stock(t, "arroz"), "segundo cancelamento não mexe no estoque")
		})
	}
}

func TestService_CancelSale_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.CancelSale(ctx, f.session, "qualquer", "  ")
	assert.ErrorIs(t, err, ErrReasonRequired)

	_, err = f.service.CancelSale(ctx, f.session, "nao-existe", "Cliente desistiu")
	assert.ErrorIs(t, err, ErrSaleNotFound)
	assert.Equal(t, apiErrors.ErrNotFound, apiErrors.CodeOf(err))
}
