package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/pdv-api/infrastructure/repository"
	"github.com/vfg2006/pdv-api/internal/config"
	"github.com/vfg2006/pdv-api/internal/domain"
)

func TestSyncOrchestrator_SyncAll(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	f.products.rows["remoto"] = domain.Product{ID: "remoto", UserID: servedOperator, Name: "Feijão", Barcode: "111", Price: 8, Stock: 5, UpdatedAt: base}
	f.sales.rows["venda-remota"] = domain.Sale{ID: "venda-remota", Number: 10, OperatorID: servedOperator, Status: domain.SaleStatusCompleted, CreatedAt: base}

	require.NoError(t, f.store.SaveProduct(&domain.Product{ID: "local", UserID: servedOperator, Name: "Arroz", Barcode: "222", Price: 20, Stock: 3, UpdatedAt: base}))
	require.NoError(t, f.store.SaveSale(&domain.Sale{ID: "venda-local", Number: 1, OperatorID: servedOperator, Status: domain.SaleStatusCompleted, CreatedAt: base}))

	report, err := f.orchestrator.SyncAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.ProductsPulled)
	assert.Equal(t, 1, report.SalesPulled)
	assert.Equal(t, 1, report.ProductsPushed)
	assert.Equal(t, 1, report.SalesPushed)
	assert.Zero(t, report.Errors)

	local, err := f.store.GetProduct("remoto")
	require.NoError(t, err)
	require.NotNil(t, local)
	assert.Equal(t, "Feijão", local.Name)

	_, ok := f.products.rows["local"]
	assert.True(t, ok)
	_, ok = f.sales.rows["venda-local"]
	assert.True(t, ok)
}

func TestSyncOrchestrator_SyncAll_Idempotent(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.SaveProduct(&domain.Product{ID: "p-1", UserID: servedOperator, Name: "Arroz", UpdatedAt: time.Now()}))
	require.NoError(t, f.store.SaveSale(&domain.Sale{ID: "s-1", Number: 1, OperatorID: servedOperator, Status: domain.SaleStatusCompleted}))

	_, err := f.orchestrator.SyncAll(ctx)
	require.NoError(t, err)
	productUpserts, saleUpserts := f.products.upserts, f.sales.upserts

	report, err := f.orchestrator.SyncAll(ctx)
	require.NoError(t, err)

	assert.Zero(t, report.Pushed())
	assert.Equal(t, productUpserts, f.products.upserts)
	assert.Equal(t, saleUpserts, f.sales.upserts)
}

func TestSyncOrchestrator_RoundTrip(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	product := &domain.Product{
		ID:        "p-1",
		UserID:    servedOperator,
		Name:      "Café 500g",
		Barcode:   "7891234567890",
		Price:     18.75,
		Stock:     12,
		MinStock:  2,
		UpdatedAt: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.store.SaveProduct(product))

	_, err := f.orchestrator.SyncAll(ctx)
	require.NoError(t, err)

	require.NoError(t, f.store.DeleteProduct("p-1"))

	report, err := f.orchestrator.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ProductsPulled)

	reloaded, err := f.store.GetProduct("p-1")
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, product.Name, reloaded.Name)
	assert.Equal(t, product.Barcode, reloaded.Barcode)
	assert.Equal(t, product.Price, reloaded.Price)
	assert.Equal(t, product.Stock, reloaded.Stock)
}

func TestSyncOrchestrator_LocalChangesWin(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	f.products.rows["p-1"] = domain.Product{ID: "p-1", UserID: servedOperator, Name: "Arroz", Stock: 10, UpdatedAt: old}
	require.NoError(t, f.store.SaveProduct(&domain.Product{ID: "p-1", UserID: servedOperator, Name: "Arroz", Stock: 7, UpdatedAt: old.Add(time.Hour)}))

	reason := "Cliente desistiu"
	f.sales.rows["s-1"] = domain.Sale{ID: "s-1", Number: 1, OperatorID: servedOperator, Status: domain.SaleStatusCompleted}
	require.NoError(t, f.store.SaveSale(&domain.Sale{ID: "s-1", Number: 1, OperatorID: servedOperator, Status: domain.SaleStatusCancelled, CancelReason: &reason}))

	report, err := f.orchestrator.SyncAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.ProductsPushed)
	assert.Equal(t, 1, report.SalesPushed)
	assert.Equal(t, 7, f.products.rows["p-1"].Stock)
	assert.Equal(t, domain.SaleStatusCancelled, f.sales.rows["s-1"].Status)

	local, err := f.store.GetSale("s-1")
	require.NoError(t, err)
	assert.True(t, local.IsCancelled())
}

func TestSyncOrchestrator_Errors(t *testing.T) {
	t.Run("Falha ao listar produtos remotos interrompe a execução", func(t *testing.T) {
		f := newSyncFixture(t)
		f.products.listErr = errors.New("timeout")

		_, err := f.orchestrator.SyncAll(context.Background())
		assert.Error(t, err)

		// a trava é liberada mesmo com erro
		f.products.listErr = nil
		_, err = f.orchestrator.SyncAll(context.Background())
		assert.NoError(t, err)
		assert.NotEmpty(t, f.orchestrator.GetStatus()["last_report"])
	})

	t.Run("Falha por registro é contada sem abortar", func(t *testing.T) {
		f := newSyncFixture(t)
		f.products.failIDs["ruim"] = errors.New("violação")

		require.NoError(t, f.store.SaveProduct(&domain.Product{ID: "ruim", UserID: servedOperator, Name: "A"}))
		require.NoError(t, f.store.SaveProduct(&domain.Product{ID: "bom", UserID: servedOperator, Name: "B"}))

		report, err := f.orchestrator.SyncAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, report.ProductsPushed)
		assert.Equal(t, 1, report.Errors)
	})

	t.Run("Sincronização em andamento é ignorada", func(t *testing.T) {
		f := newSyncFixture(t)
		require.True(t, f.orchestrator.begin())

		_, err := f.orchestrator.SyncAll(context.Background())
		assert.ErrorIs(t, err, ErrSyncInProgress)
		assert.ErrorIs(t, f.orchestrator.TriggerManualSync(), ErrSyncInProgress)
		assert.Equal(t, true, f.orchestrator.GetStatus()["sync_running"])
	})

	t.Run("Sem banco remoto falha fechado", func(t *testing.T) {
		f := newSyncFixture(t)
		orchestrator := NewSyncOrchestrator(f.store, repository.NewUnavailableGateway(), nil, &config.Config{})

		_, err := orchestrator.SyncAll(context.Background())
		assert.ErrorIs(t, err, repository.ErrRemoteUnavailable)

		_, err = orchestrator.SyncProducts(context.Background(), []*domain.Product{{ID: "x"}})
		assert.ErrorIs(t, err, repository.ErrRemoteUnavailable)

		require.NoError(t, orchestrator.Start(context.Background()))
		select {
		case <-orchestrator.Stopped():
		default:
			t.Fatal("orquestrador sem banco remoto não deveria ficar ativo")
		}
	})
}

func TestSyncOrchestrator_SyncProductsAndSales(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	pushed, err := f.orchestrator.SyncProducts(ctx, []*domain.Product{{ID: "a"}, {ID: "b"}})
	require.NoError(t, err)
	assert.Equal(t, 2, pushed)

	f.products.failIDs["c"] = errors.New("falha")
	pushed, err = f.orchestrator.SyncProducts(ctx, []*domain.Product{{ID: "c"}})
	assert.Error(t, err)
	assert.Zero(t, pushed)

	pushed, err = f.orchestrator.SyncSales(ctx, []*domain.Sale{{ID: "s"}})
	require.NoError(t, err)
	assert.Equal(t, 1, pushed)
}

func TestSyncOrchestrator_StartAndShutdown(t *testing.T) {
	f := newSyncFixture(t)
	require.NoError(t, f.store.SaveProduct(&domain.Product{ID: "p-1", UserID: servedOperator, Name: "Arroz"}))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, f.orchestrator.Start(ctx))

	require.Eventually(t, func() bool {
		if f.orchestrator.GetStatus()["last_report"] == (*domain.SyncReport)(nil) {
			return false
		}
		return f.orchestrator.GetStatus()["sync_running"] == false
	}, 2*time.Second, 10*time.Millisecond, "a sincronização inicial deveria enviar o produto")

	require.NoError(t, f.store.SaveProduct(&domain.Product{ID: "p-2", UserID: servedOperator, Name: "Feijão"}))
	cancel()

	select {
	case <-f.orchestrator.Stopped():
	case <-time.After(5 * time.Second):
		t.Fatal("sincronização de encerramento não terminou")
	}

	f.products.mu.Lock()
	defer f.products.mu.Unlock()
	assert.Contains(t, f.products.rows, "p-1")
	assert.Contains(t, f.products.rows, "p-2", "a sincronização de encerramento deveria enviar o produto novo")
}

func TestSyncOrchestrator_WatchHandlers(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	f.orchestrator.applyProductChange(ctx, repository.Change{
		Table: repository.TableProducts, Op: repository.OpInsert, ID: "p-1",
		Row: &domain.Product{ID: "p-1", UserID: servedOperator, Name: "Leite", Barcode: "333"},
	})
	p, err := f.store.GetProductByBarcode(servedOperator, "333")
	require.NoError(t, err)
	require.NotNil(t, p)

	f.orchestrator.applyProductChange(ctx, repository.Change{Table: repository.TableProducts, Op: repository.OpDelete, ID: "p-1"})
	p, err = f.store.GetProduct("p-1")
	require.NoError(t, err)
	assert.Nil(t, p)

	require.NoError(t, f.store.SaveSale(&domain.Sale{ID: "local", Number: 5, OperatorID: servedOperator}))
	f.orchestrator.applySaleChange(ctx, repository.Change{
		Table: repository.TableSales, Op: repository.OpInsert, ID: "remota",
		Row: &domain.Sale{ID: "remota", Number: 5, OperatorID: servedOperator},
	})
	kept, err := f.store.GetSaleByNumber(servedOperator, 5)
	require.NoError(t, err)
	assert.Equal(t, "local", kept.ID)

	f.orchestrator.applyOperatorChange(ctx, repository.Change{
		Table: repository.TableOperators, Op: repository.OpUpdate, ID: "op-1",
		Row: &domain.Operator{ID: "op-1", Email: "a@b.com"},
	})
	op, err := f.store.GetOperator("op-1")
	require.NoError(t, err)
	require.NotNil(t, op)

	f.orchestrator.applyMessageChange(ctx, repository.Change{
		Table: repository.TableMessages, Op: repository.OpInsert, ID: "m-1",
		Row: &domain.ChatMessage{ID: "m-1", OperatorID: "op-1", Text: "oi", Pending: true},
	})
	msg, err := f.store.GetMessage("m-1")
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.False(t, msg.Pending)
}

func TestSyncOrchestrator_SyncAll_TenantIsolation(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	f.products.rows["a-prod"] = domain.Product{ID: "a-prod", UserID: servedOperator, Name: "Arroz", Barcode: "789", Stock: 5}
	f.products.rows["b-prod"] = domain.Product{ID: "b-prod", UserID: "op-b", Name: "Arroz", Barcode: "789", Stock: 5}
	f.sales.rows["a-venda"] = domain.Sale{ID: "a-venda", Number: 1, OperatorID: servedOperator, Status: domain.SaleStatusCompleted}
	f.sales.rows["b-venda"] = domain.Sale{ID: "b-venda", Number: 1, OperatorID: "op-b", Status: domain.SaleStatusCompleted}

	report, err := f.orchestrator.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ProductsPulled)
	assert.Equal(t, 1, report.SalesPulled)
	assert.Zero(t, report.Errors)

	other, err := f.store.GetProduct("b-prod")
	require.NoError(t, err)
	assert.Nil(t, other, "produto de outro operador não deveria vir para este dispositivo")

	otherSale, err := f.store.GetSale("b-venda")
	require.NoError(t, err)
	assert.Nil(t, otherSale)

	own, err := f.store.GetProductByBarcode(servedOperator, "789")
	require.NoError(t, err)
	require.NotNil(t, own)
	assert.Equal(t, "a-prod", own.ID)

	t.Run("Operador configurado é sincronizado sem login", func(t *testing.T) {
		cfg := &config.Config{Sync: config.Sync{Enabled: true, Operators: []string{"op-b"}}}
		orchestrator := NewSyncOrchestrator(f.store, f.orchestrator.gateway, nil, cfg)

		report, err := orchestrator.SyncAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, report.ProductsPulled)

		fromB, err := f.store.GetProductByBarcode("op-b", "789")
		require.NoError(t, err)
		require.NotNil(t, fromB)
		assert.Equal(t, "b-prod", fromB.ID)
	})
}

func TestSyncOrchestrator_SaleNumberConflict(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	// outro caixa do mesmo operador numerou a venda 1 enquanto este estava offline
	f.sales.rows["outro-caixa"] = domain.Sale{ID: "outro-caixa", Number: 1, OperatorID: servedOperator, Status: domain.SaleStatusCompleted}
	require.NoError(t, f.store.SaveSale(&domain.Sale{ID: "venda-local", Number: 1, OperatorID: servedOperator, Status: domain.SaleStatusCompleted}))

	for run := 0; run < 3; run++ {
		report, err := f.orchestrator.SyncAll(ctx)
		require.NoError(t, err)
		assert.Zero(t, report.Errors, "conflito de número não conta como erro")
		assert.Equal(t, 1, report.Conflicts)
	}

	assert.Equal(t, 1, f.orchestrator.GetStatus()["sale_number_conflicts"])

	kept, err := f.store.GetSaleByNumber(servedOperator, 1)
	require.NoError(t, err)
	assert.Equal(t, "venda-local", kept.ID)

	_, pushed := f.sales.rows["venda-local"]
	assert.True(t, pushed)
}

func TestSyncOrchestrator_WatchHandlers_Scope(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Alteração de operador não atendido é ignorada", func(t *testing.T) {
		f.orchestrator.applyProductChange(ctx, repository.Change{
			Table: repository.TableProducts, Op: repository.OpInsert, ID: "b-prod",
			Row: &domain.Product{ID: "b-prod", UserID: "op-b", Name: "Arroz"},
		})
		p, err := f.store.GetProduct("b-prod")
		require.NoError(t, err)
		assert.Nil(t, p)

		f.orchestrator.applySaleChange(ctx, repository.Change{
			Table: repository.TableSales, Op: repository.OpInsert, ID: "b-venda",
			Row: &domain.Sale{ID: "b-venda", Number: 1, OperatorID: "op-b"},
		})
		sale, err := f.store.GetSale("b-venda")
		require.NoError(t, err)
		assert.Nil(t, sale)
	})

	t.Run("Baixa de estoque local ainda não enviada é mantida", func(t *testing.T) {
		require.NoError(t, f.store.SaveProduct(&domain.Product{ID: "p-1", UserID: servedOperator, Name: "Arroz", Stock: 3, UpdatedAt: base.Add(time.Minute)}))

		f.orchestrator.applyProductChange(ctx, repository.Change{
			Table: repository.TableProducts, Op: repository.OpUpdate, ID: "p-1",
			Row: &domain.Product{ID: "p-1", UserID: servedOperator, Name: "Arroz", Stock: 5, UpdatedAt: base},
		})
		p, err := f.store.GetProduct("p-1")
		require.NoError(t, err)
		assert.Equal(t, 3, p.Stock)

		f.orchestrator.applyProductChange(ctx, repository.Change{
			Table: repository.TableProducts, Op: repository.OpUpdate, ID: "p-1",
			Row: &domain.Product{ID: "p-1", UserID: servedOperator, Name: "Arroz", Stock: 9, UpdatedAt: base.Add(time.Hour)},
		})
		p, err = f.store.GetProduct("p-1")
		require.NoError(t, err)
		assert.Equal(t, 9, p.Stock)
	})
}
