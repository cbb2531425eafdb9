// Package scheduler contém a sincronização entre o armazenamento local e o banco remoto
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/pdv-api/infrastructure/localstore"
	"github.com/vfg2006/pdv-api/infrastructure/repository"
	"github.com/vfg2006/pdv-api/internal/config"
	"github.com/vfg2006/pdv-api/internal/domain"
)

// ErrSyncInProgress é devolvido quando outra sincronização ainda está rodando
var ErrSyncInProgress = errors.New("sincronização já em andamento")

const (
	entityProducts = "produtos"
	entitySales    = "vendas"
)

type SyncConfig struct {
	Enabled         bool
	Interval        time.Duration
	ShutdownTimeout time.Duration
	Operators       []string
}

type SyncOrchestrator struct {
	scheduler           *gocron.Scheduler
	config              SyncConfig
	store               *localstore.Store
	gateway             *repository.Gateway
	watcher             *repository.Watcher
	baseCtx             context.Context
	stopped             chan struct{}
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastReport          *domain.SyncReport
	lastError           string
	conflicts           map[string]bool
}

func NewSyncOrchestrator(
	store *localstore.Store,
	gateway *repository.Gateway,
	watcher *repository.Watcher,
	cfg *config.Config,
) *SyncOrchestrator {
	syncConfig := SyncConfig{
		Enabled:         cfg.Sync.Enabled,
		Interval:        cfg.Sync.Interval(),
		ShutdownTimeout: cfg.Sync.ShutdownTimeout,
		Operators:       cfg.Sync.Operators,
	}
	if syncConfig.ShutdownTimeout <= 0 {
		syncConfig.ShutdownTimeout = 10 * time.Second
	}

	logrus.WithFields(logrus.Fields{
		"sync_interval": syncConfig.Interval.String(),
		"sync_enabled":  syncConfig.Enabled,
		"remote":        gateway.Available(),
		"watch":         watcher != nil,
	}).Info("Configuração da sincronização carregada")

	return &SyncOrchestrator{
		scheduler: gocron.NewScheduler(time.Local),
		config:    syncConfig,
		store:     store,
		gateway:   gateway,
		watcher:   watcher,
		baseCtx:   context.Background(),
		stopped:   make(chan struct{}),
		conflicts: make(map[string]bool),
	}
}

// Start executa a sincronização inicial, agenda as seguintes pelo intervalo configurado,
// liga o gancho de reconexão do watcher e faz uma última sincronização quando ctx termina.
func (s *SyncOrchestrator) Start(ctx context.Context) error {
	if !s.config.Enabled || !s.gateway.Available() {
		logrus.WithField("remote", s.gateway.Available()).Info("Sincronização desabilitada, operando apenas localmente")
		close(s.stopped)
		return nil
	}

	s.baseCtx = ctx

	// gocron executa o job assim que o agendador inicia; essa é a sincronização de abertura
	_, err := s.scheduler.Every(s.config.Interval).Do(func() {
		s.run(ctx, "agendada")
	})
	if err != nil {
		close(s.stopped)
		return fmt.Errorf("erro ao agendar sincronização: %w", err)
	}

	if s.watcher != nil {
		s.registerWatchHandlers()
		if err := s.watcher.Start(ctx); err != nil {
			logrus.WithError(err).Warn("Não foi possível escutar alterações remotas, seguindo só com o intervalo")
		}
	}

	s.scheduler.StartAsync()

	go func() {
		defer close(s.stopped)
		<-ctx.Done()
		logrus.Info("Parando agendador de sincronização")
		s.scheduler.Stop()

		finalCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		s.run(finalCtx, "encerramento")
	}()

	return nil
}

// Stopped é fechado depois da sincronização de encerramento
func (s *SyncOrchestrator) Stopped() <-chan struct{} {
	return s.stopped
}

func (s *SyncOrchestrator) run(ctx context.Context, trigger string) {
	report, err := s.SyncAll(ctx)
	if err != nil {
		if errors.Is(err, ErrSyncInProgress) {
			logrus.WithField("trigger", trigger).Info("Sincronização já em andamento, ignorando")
			return
		}
		logrus.WithError(err).WithField("trigger", trigger).Error("Erro na sincronização")
		return
	}

	logrus.WithFields(logrus.Fields{
		"trigger":       trigger,
		"produtos_pull": report.ProductsPulled,
		"vendas_pull":   report.SalesPulled,
		"produtos_push": report.ProductsPushed,
		"vendas_push":   report.SalesPushed,
		"erros":         report.Errors,
		"conflitos":     report.Conflicts,
		"duration":      report.FinishedAt.Sub(report.StartedAt).String(),
	}).Info("Sincronização concluída")
}

func (s *SyncOrchestrator) begin() bool {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()
	if s.syncRunning {
		return false
	}
	s.syncRunning = true
	s.lastSyncStartedAt = time.Now()
	return true
}

func (s *SyncOrchestrator) finish(report *domain.SyncReport, err error) {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()
	s.syncRunning = false
	if err != nil {
		s.lastError = err.Error()
		return
	}
	s.lastError = ""
	s.lastReport = report
	s.lastSyncCompletedAt = report.FinishedAt
}

// SyncAll traz do banco remoto os produtos e vendas dos operadores atendidos por este
// dispositivo e envia os registros que existem apenas localmente. Produtos alterados localmente depois da versão remota
// e vendas canceladas localmente também são enviados.
// Falhas por registro são contadas e não interrompem a execução.
func (s *SyncOrchestrator) SyncAll(ctx context.Context) (report *domain.SyncReport, err error) {
	if !s.begin() {
		SyncRunsTotal.WithLabelValues("skipped").Inc()
		return nil, ErrSyncInProgress
	}

	report = &domain.SyncReport{StartedAt: time.Now()}

	defer func() {
		report.FinishedAt = time.Now()
		SyncDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
		switch {
		case err != nil:
			SyncRunsTotal.WithLabelValues("error").Inc()
		case report.Errors > 0:
			SyncRunsTotal.WithLabelValues("partial").Inc()
		default:
			SyncRunsTotal.WithLabelValues("success").Inc()
		}
		s.finish(report, err)
	}()

	if !s.gateway.Available() {
		return report, repository.ErrRemoteUnavailable
	}

	tenants, err := s.tenants()
	if err != nil {
		return report, err
	}

	remoteProducts, err := s.loadProducts(ctx, tenants, report)
	if err != nil {
		return report, err
	}

	remoteSales, err := s.loadSales(ctx, tenants, report)
	if err != nil {
		return report, err
	}

	localProducts, err := s.store.ListProducts()
	if err != nil {
		return report, err
	}

	localSales, err := s.store.ListSales()
	if err != nil {
		return report, err
	}

	// só registros dos operadores atendidos; cópias de outros operadores não são reenviadas
	pending := make([]*domain.Product, 0)
	for _, p := range localProducts {
		if !remoteProducts[p.ID] && slices.Contains(tenants, p.UserID) {
			pending = append(pending, p)
		}
	}

	pendingSales := make([]*domain.Sale, 0)
	for _, sale := range localSales {
		if !remoteSales[sale.ID] && slices.Contains(tenants, sale.OperatorID) {
			pendingSales = append(pendingSales, sale)
		}
	}

	pushed, failed := s.pushProducts(ctx, pending)
	report.ProductsPushed = pushed
	report.Errors += failed

	pushed, failed = s.pushSales(ctx, pendingSales)
	report.SalesPushed = pushed
	report.Errors += failed

	return report, nil
}

// tenants devolve os operadores cujos dados este dispositivo mantém:
// os configurados em SYNC_OPERATORS e os que já fizeram login aqui.
func (s *SyncOrchestrator) tenants() ([]string, error) {
	served, err := s.store.ServedOperators()
	if err != nil {
		return nil, fmt.Errorf("erro ao ler operadores atendidos: %w", err)
	}

	ids := make([]string, 0, len(served)+len(s.config.Operators))
	for _, id := range append(slices.Clone(s.config.Operators), served...) {
		id = strings.TrimSpace(id)
		if id != "" && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *SyncOrchestrator) serves(operatorID string) bool {
	tenants, err := s.tenants()
	if err != nil {
		logrus.WithError(err).Warn("Não foi possível ler os operadores atendidos")
		return false
	}
	return slices.Contains(tenants, operatorID)
}

// localProductIsNewer informa se a cópia local tem alteração mais nova que a remota e ainda não enviada
func (s *SyncOrchestrator) localProductIsNewer(remote *domain.Product) bool {
	local, err := s.store.GetProduct(remote.ID)
	return err == nil && local != nil && local.UpdatedAt.Truncate(time.Microsecond).After(remote.UpdatedAt)
}

// loadProducts grava localmente os produtos remotos dos operadores atendidos e devolve o conjunto de IDs remotos
func (s *SyncOrchestrator) loadProducts(ctx context.Context, tenants []string, report *domain.SyncReport) (map[string]bool, error) {
	ids := make(map[string]bool)
	for _, tenant := range tenants {
		products, err := s.gateway.Products.List(ctx, tenant)
		if err != nil {
			return nil, fmt.Errorf("erro ao carregar produtos remotos do operador %s: %w", tenant, err)
		}

		for _, p := range products {
			if s.localProductIsNewer(p) {
				// alteração local ainda não enviada; vai no envio
				continue
			}

			ids[p.ID] = true
			if err := s.store.SaveProduct(p); err != nil {
				report.Errors++
				SyncErrorsTotal.WithLabelValues(entityProducts).Inc()
				logrus.WithError(err).WithField("produto_id", p.ID).Warn("Erro ao gravar produto remoto localmente")
				continue
			}
			report.ProductsPulled++
		}
	}

	SyncRecordsPulledTotal.WithLabelValues(entityProducts).Add(float64(report.ProductsPulled))
	return ids, nil
}

func (s *SyncOrchestrator) loadSales(ctx context.Context, tenants []string, report *domain.SyncReport) (map[string]bool, error) {
	ids := make(map[string]bool)
	for _, tenant := range tenants {
		sales, err := s.gateway.Sales.List(ctx, tenant)
		if err != nil {
			return nil, fmt.Errorf("erro ao carregar vendas remotas do operador %s: %w", tenant, err)
		}

		for _, sale := range sales {
			local, err := s.store.GetSale(sale.ID)
			if err == nil && local != nil && local.IsCancelled() && !sale.IsCancelled() {
				// cancelamento local ainda não enviado; o cancelamento é definitivo
				continue
			}

			ids[sale.ID] = true
			err = s.store.SaveSale(sale)
			switch {
			case err == nil:
				report.SalesPulled++
			case errors.Is(err, localstore.ErrDuplicateSaleNumber):
				report.Conflicts++
				s.reportConflict(sale)
			default:
				report.Errors++
				SyncErrorsTotal.WithLabelValues(entitySales).Inc()
				logrus.WithError(err).WithFields(logrus.Fields{
					"venda_id":     sale.ID,
					"venda_numero": sale.Number,
				}).Warn("Erro ao gravar venda remota localmente")
			}
		}
	}

	SyncRecordsPulledTotal.WithLabelValues(entitySales).Add(float64(report.SalesPulled))
	return ids, nil
}

// reportConflict registra uma única vez a venda remota que repete o número de uma venda local
// do mesmo operador (dois caixas numerando offline). A venda local é mantida.
func (s *SyncOrchestrator) reportConflict(sale *domain.Sale) {
	s.syncMutex.Lock()
	known := s.conflicts[sale.ID]
	s.conflicts[sale.ID] = true
	s.syncMutex.Unlock()
	if known {
		return
	}
	SaleNumberConflicts.Inc()

	logrus.WithFields(logrus.Fields{
		"venda_id":     sale.ID,
		"venda_numero": sale.Number,
		"operador_id":  sale.OperatorID,
	}).Warn("Venda remota com número já usado localmente pelo mesmo operador, mantendo a local")
}

func (s *SyncOrchestrator) pushProducts(ctx context.Context, products []*domain.Product) (pushed, failed int) {
	for _, p := range products {
		if err := s.gateway.Products.Upsert(ctx, p); err != nil {
			failed++
			SyncErrorsTotal.WithLabelValues(entityProducts).Inc()
			logrus.WithError(err).WithField("produto_id", p.ID).Error("Erro ao enviar produto")
			continue
		}
		pushed++
	}
	SyncRecordsPushedTotal.WithLabelValues(entityProducts).Add(float64(pushed))
	return pushed, failed
}

func (s *SyncOrchestrator) pushSales(ctx context.Context, sales []*domain.Sale) (pushed, failed int) {
	for _, sale := range sales {
		if err := s.gateway.Sales.Upsert(ctx, sale); err != nil {
			failed++
			SyncErrorsTotal.WithLabelValues(entitySales).Inc()
			logrus.WithError(err).WithField("venda_id", sale.ID).Error("Erro ao enviar venda")
			continue
		}
		pushed++
	}
	SyncRecordsPushedTotal.WithLabelValues(entitySales).Add(float64(pushed))
	return pushed, failed
}

// SyncProducts envia os produtos informados ao banco remoto; usado na gravação imediata do estoque
func (s *SyncOrchestrator) SyncProducts(ctx context.Context, products []*domain.Product) (int, error) {
	if !s.gateway.Available() {
		return 0, repository.ErrRemoteUnavailable
	}
	pushed, failed := s.pushProducts(ctx, products)
	if failed > 0 {
		return pushed, fmt.Errorf("%d produto(s) não enviados", failed)
	}
	return pushed, nil
}

// SyncSales envia as vendas informadas ao banco remoto
func (s *SyncOrchestrator) SyncSales(ctx context.Context, sales []*domain.Sale) (int, error) {
	if !s.gateway.Available() {
		return 0, repository.ErrRemoteUnavailable
	}
	pushed, failed := s.pushSales(ctx, sales)
	if failed > 0 {
		return pushed, fmt.Errorf("%d venda(s) não enviadas", failed)
	}
	return pushed, nil
}

// TriggerManualSync inicia uma sincronização em segundo plano
func (s *SyncOrchestrator) TriggerManualSync() error {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização já em andamento, ignorando solicitação manual")
		return ErrSyncInProgress
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando sincronização manual")
	go s.run(s.baseCtx, "manual")
	return nil
}

func (s *SyncOrchestrator) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":           s.config.Enabled,
		"sync_interval":          s.config.Interval.String(),
		"remote_available":       s.gateway.Available(),
		"watch_enabled":          s.watcher != nil,
		"sync_running":           s.syncRunning,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_report":            s.lastReport,
		"last_error":             s.lastError,
		"sale_number_conflicts":  len(s.conflicts),
	}
}
