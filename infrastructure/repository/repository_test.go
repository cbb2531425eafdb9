package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/pdv-api/infrastructure/repository/mocks"
	"github.com/vfg2006/pdv-api/internal/domain"
	"go.uber.org/mock/gomock"
)

func TestSuspendIfExpiredQuery(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	query, args, err := suspendIfExpiredQuery("op-1", today).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "UPDATE operadores SET ativo = $1, suspenso = $2, updated_at = NOW()")
	assert.Contains(t, query, "id = $3")
	assert.Contains(t, query, "data_proximo_vencimento < $4")
	assert.Contains(t, query, "(ativo = $5 OR suspenso = $6)")
	assert.Equal(t, []any{false, true, "op-1", today, true, false}, args)
}

func TestListProductsQuery(t *testing.T) {
	tests := []struct {
		name      string
		userID    string
		wantWhere bool
	}{
		{name: "Sem dono lista todos", userID: "", wantWhere: false},
		{name: "Com dono filtra por user_id", userID: "op-1", wantWhere: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := listProductsQuery(tt.userID).ToSql()
			require.NoError(t, err)

			assert.Contains(t, query, "FROM produtos")
			assert.Contains(t, query, "ORDER BY nome ASC")
			if tt.wantWhere {
				assert.Contains(t, query, "WHERE user_id = $1")
				assert.Equal(t, []any{"op-1"}, args)
			} else {
				assert.NotContains(t, query, "WHERE")
				assert.Empty(t, args)
			}
		})
	}
}

func TestUpsertProductQuery(t *testing.T) {
	p := &domain.Product{ID: "p-1", Name: "Arroz", Barcode: "789", Price: 10.5, Stock: 3}

	query, args, err := upsertProductQuery(p).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO produtos")
	assert.Contains(t, query, "ON CONFLICT (id) DO UPDATE SET")
	assert.Contains(t, query, "estoque = EXCLUDED.estoque")
	assert.Len(t, args, len(productColumns))
	assert.Equal(t, "p-1", args[0])
}

func TestUpsertSaleQuery(t *testing.T) {
	sale := &domain.Sale{
		ID:     "s-1",
		Number: 7,
		Status: domain.SaleStatusCompleted,
		Items: []domain.SaleItem{
			{ProductID: "p-1", Name: "Arroz", Quantity: 2, UnitPrice: 5, Subtotal: 10},
		},
		Total: 10,
	}

	builder, err := upsertSaleQuery(sale)
	require.NoError(t, err)

	query, args, err := builder.ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO vendas")
	assert.Contains(t, query, "status = EXCLUDED.status")
	require.Len(t, args, len(saleColumns))

	items, ok := args[4].(string)
	require.True(t, ok, "itens devem ser enviados como texto para o JSONB")
	assert.JSONEq(t, `[{"produtoId":"p-1","nome":"Arroz","quantidade":2,"precoUnitario":5,"subtotal":10}]`, items)
	assert.Equal(t, "concluida", args[7])
}

func TestUpsertSaleQuery_SemItens(t *testing.T) {
	builder, err := upsertSaleQuery(&domain.Sale{ID: "s-2"})
	require.NoError(t, err)

	_, args, err := builder.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "[]", args[4])
}

func TestMarkReadQuery(t *testing.T) {
	query, args, err := markReadQuery("op-1", domain.SenderAdmin).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "UPDATE mensagens_chat SET lida = $1")
	assert.Contains(t, query, "remetente <> $4")
	assert.Equal(t, []any{true, false, "op-1", domain.SenderAdmin}, args)
}

func TestUnavailableGateway(t *testing.T) {
	gw := NewUnavailableGateway()
	ctx := context.Background()

	assert.False(t, gw.Available())

	ops, err := gw.Operators.List(ctx)
	assert.Nil(t, ops)
	assert.ErrorIs(t, err, ErrRemoteUnavailable)

	flipped, err := gw.Operators.SuspendIfExpired(ctx, "op-1", time.Now())
	assert.False(t, flipped)
	assert.ErrorIs(t, err, ErrRemoteUnavailable)

	products, err := gw.Products.List(ctx, "")
	assert.Nil(t, products)
	assert.ErrorIs(t, err, ErrRemoteUnavailable)

	assert.ErrorIs(t, gw.Sales.Upsert(ctx, &domain.Sale{}), ErrRemoteUnavailable)
	assert.ErrorIs(t, gw.Messages.Create(ctx, &domain.ChatMessage{}), ErrRemoteUnavailable)
	assert.ErrorIs(t, gw.Earnings.Create(ctx, &domain.Earning{}), ErrRemoteUnavailable)
	assert.ErrorIs(t, gw.Companies.Upsert(ctx, &domain.Company{}), ErrRemoteUnavailable)
	assert.ErrorIs(t, gw.FiscalConfigs.Upsert(ctx, &domain.FiscalConfig{}), ErrRemoteUnavailable)
	assert.ErrorIs(t, gw.Payments.Update(ctx, &domain.Payment{}), ErrRemoteUnavailable)
}

func TestWatcher_dispatch(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		payload string
		setup   func(products *mocks.MockProductRepository, sales *mocks.MockSaleRepository)
		want    []Change
	}{
		{
			name:    "Atualização de produto busca apenas a linha alterada",
			payload: `{"table":"produtos","op":"UPDATE","id":"p-1"}`,
			setup: func(products *mocks.MockProductRepository, _ *mocks.MockSaleRepository) {
				products.EXPECT().GetByID(gomock.Any(), "p-1").Return(&domain.Product{ID: "p-1", Stock: 4}, nil)
			},
			want: []Change{{Table: TableProducts, Op: OpUpdate, ID: "p-1", Row: &domain.Product{ID: "p-1", Stock: 4}}},
		},
		{
			name:    "Remoção não consulta o banco",
			payload: `{"table":"produtos","op":"DELETE","id":"p-2"}`,
			setup:   func(*mocks.MockProductRepository, *mocks.MockSaleRepository) {},
			want:    []Change{{Table: TableProducts, Op: OpDelete, ID: "p-2"}},
		},
		{
			name:    "Linha removida antes da leitura vira remoção",
			payload: `{"table":"vendas","op":"INSERT","id":"s-1"}`,
			setup: func(_ *mocks.MockProductRepository, sales *mocks.MockSaleRepository) {
				sales.EXPECT().GetByID(gomock.Any(), "s-1").Return(nil, nil)
			},
			want: []Change{{Table: TableSales, Op: OpDelete, ID: "s-1"}},
		},
		{
			name:    "Erro na leitura não chama o handler",
			payload: `{"table":"vendas","op":"UPDATE","id":"s-2"}`,
			setup: func(_ *mocks.MockProductRepository, sales *mocks.MockSaleRepository) {
				sales.EXPECT().GetByID(gomock.Any(), "s-2").Return(nil, errors.New("timeout"))
			},
			want: nil,
		},
		{
			name:    "Payload inválido é ignorado",
			payload: `not-json`,
			setup:   func(*mocks.MockProductRepository, *mocks.MockSaleRepository) {},
			want:    nil,
		},
		{
			name:    "Tabela sem handler é ignorada",
			payload: `{"table":"mensagens_chat","op":"INSERT","id":"m-1"}`,
			setup:   func(*mocks.MockProductRepository, *mocks.MockSaleRepository) {},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			products := mocks.NewMockProductRepository(ctrl)
			sales := mocks.NewMockSaleRepository(ctrl)
			tt.setup(products, sales)

			w := NewWatcher("", &Gateway{Products: products, Sales: sales}, 0, 0, 0)

			var got []Change
			collect := func(_ context.Context, c Change) { got = append(got, c) }
			w.Watch(TableProducts, collect)
			w.Watch(TableSales, collect)

			w.dispatch(ctx, tt.payload)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWatcher_OnReconnect(t *testing.T) {
	w := NewWatcher("", NewUnavailableGateway(), time.Second, time.Minute, time.Minute)

	calls := 0
	w.OnReconnect(func() { calls++ })
	w.OnReconnect(func() { calls++ })

	w.handleEvent(pq.ListenerEventConnected, nil)
	assert.Equal(t, 0, calls)

	w.handleEvent(pq.ListenerEventReconnected, nil)
	assert.Equal(t, 2, calls)
}
