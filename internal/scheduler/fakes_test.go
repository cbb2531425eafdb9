package scheduler

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vfg2006/pdv-api/infrastructure/localstore"
	"github.com/vfg2006/pdv-api/infrastructure/repository"
	"github.com/vfg2006/pdv-api/internal/config"
	"github.com/vfg2006/pdv-api/internal/domain"
)

// servedOperator é o operador que fez login no dispositivo dos testes
const servedOperator = "op-1"

// remoteProducts simula a tabela produtos do banco remoto
type remoteProducts struct {
	mu      sync.Mutex
	rows    map[string]domain.Product
	upserts int
	listErr error
	failIDs map[string]error
}

func newRemoteProducts() *remoteProducts {
	return &remoteProducts{rows: map[string]domain.Product{}, failIDs: map[string]error{}}
}

func (r *remoteProducts) List(_ context.Context, userID string) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*domain.Product, 0, len(r.rows))
	for _, p := range r.rows {
		if userID != "" && p.UserID != userID {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *remoteProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *remoteProducts) Upsert(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failIDs[p.ID]; err != nil {
		return err
	}
	r.upserts++
	r.rows[p.ID] = *p
	return nil
}

func (r *remoteProducts) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

// remoteSales simula a tabela vendas do banco remoto
type remoteSales struct {
	mu      sync.Mutex
	rows    map[string]domain.Sale
	upserts int
}

func newRemoteSales() *remoteSales {
	return &remoteSales{rows: map[string]domain.Sale{}}
}

func (r *remoteSales) List(_ context.Context, operatorID string) ([]*domain.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Sale, 0, len(r.rows))
	for _, s := range r.rows {
		if operatorID != "" && s.OperatorID != operatorID {
			continue
		}
		s := s
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *remoteSales) GetByID(_ context.Context, id string) (*domain.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *remoteSales) Upsert(_ context.Context, s *domain.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	r.rows[s.ID] = *s
	return nil
}

type syncFixture struct {
	orchestrator *SyncOrchestrator
	store        *localstore.Store
	products     *remoteProducts
	sales        *remoteSales
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()

	store, err := localstore.Open(filepath.Join(t.TempDir(), "pdv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.AddServedOperator(servedOperator))

	products := newRemoteProducts()
	sales := newRemoteSales()
	gateway := repository.NewGatewayFrom(repository.Gateway{
		Products: products,
		Sales:    sales,
	})

	cfg := &config.Config{Sync: config.Sync{Enabled: true, IntervalSeconds: 30}}

	return &syncFixture{
		orchestrator: NewSyncOrchestrator(store, gateway, nil, cfg),
		store:        store,
		products:     products,
		sales:        sales,
	}
}
