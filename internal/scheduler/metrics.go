package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SyncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pdv_sync_runs_total",
		Help: "Total de execuções da sincronização por resultado",
	}, []string{"result"})

	SyncRecordsPushedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pdv_sync_records_pushed_total",
		Help: "Registros locais enviados ao banco remoto",
	}, []string{"entity"})

	SyncRecordsPulledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pdv_sync_records_pulled_total",
		Help: "Registros remotos gravados no armazenamento local",
	}, []string{"entity"})

	SyncErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pdv_sync_errors_total",
		Help: "Falhas por registro durante a sincronização",
	}, []string{"entity"})

	SaleNumberConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pdv_sync_sale_number_conflicts_total",
		Help: "Vendas remotas distintas com número já usado localmente pelo mesmo operador",
	})

	SyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pdv_sync_duration_seconds",
		Help:    "Duração de cada sincronização completa",
		Buckets: prometheus.DefBuckets,
	})

	RemoteChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pdv_remote_changes_total",
		Help: "Alterações remotas aplicadas ao armazenamento local",
	}, []string{"table", "op"})
)
