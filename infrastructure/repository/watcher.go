package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// ChangesChannel é o canal usado pelo gatilho pdv_notify_change
const ChangesChannel = "pdv_changes"

const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// Change descreve uma alteração em uma linha remota. Row traz apenas a linha alterada
// (*domain.Operator, *domain.Product, *domain.Sale ou *domain.ChatMessage) e é nil em DELETE.
type Change struct {
	Table string `json:"table"`
	Op    string `json:"op"`
	ID    string `json:"id"`
	Row   any    `json:"-"`
}

type ChangeHandler func(ctx context.Context, change Change)

type Watcher struct {
	dsn         string
	gateway     *Gateway
	minBackoff  time.Duration
	maxBackoff  time.Duration
	pingTimeout time.Duration

	mu          sync.RWMutex
	handlers    map[string][]ChangeHandler
	onReconnect []func()
}

func NewWatcher(dsn string, gateway *Gateway, minBackoff, maxBackoff, pingTimeout time.Duration) *Watcher {
	if minBackoff <= 0 {
		minBackoff = 10 * time.Second
	}
	if maxBackoff < minBackoff {
		maxBackoff = minBackoff
	}
	if pingTimeout <= 0 {
		pingTimeout = 90 * time.Second
	}

	return &Watcher{
		dsn:         dsn,
		gateway:     gateway,
		minBackoff:  minBackoff,
		maxBackoff:  maxBackoff,
		pingTimeout: pingTimeout,
		handlers:    make(map[string][]ChangeHandler),
	}
}

// Watch registra fn para as alterações da tabela informada
func (w *Watcher) Watch(table string, fn ChangeHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[table] = append(w.handlers[table], fn)
}

// OnReconnect registra fn para ser chamada sempre que o listener restabelece a conexão
func (w *Watcher) OnReconnect(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReconnect = append(w.onReconnect, fn)
}

// Start abre o listener e processa notificações até o contexto ser cancelado
func (w *Watcher) Start(ctx context.Context) error {
	listener := pq.NewListener(w.dsn, w.minBackoff, w.maxBackoff, w.handleEvent)

	if err := listener.Listen(ChangesChannel); err != nil {
		_ = listener.Close()
		return fmt.Errorf("erro ao escutar canal %s: %w", ChangesChannel, err)
	}

	logrus.WithField("channel", ChangesChannel).Info("Escutando alterações do banco remoto")

	go w.loop(ctx, listener)

	return nil
}

func (w *Watcher) loop(ctx context.Context, listener *pq.Listener) {
	defer func() {
		if err := listener.Close(); err != nil {
			logrus.WithError(err).Warn("Erro ao fechar listener do banco remoto")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Parando escuta de alterações do banco remoto")
			return

		case n := <-listener.Notify:
			// o pq envia nil depois de uma reconexão; o gancho de reconexão já cobre esse caso
			if n == nil {
				continue
			}
			w.dispatch(ctx, n.Extra)

		case <-time.After(w.pingTimeout):
			go func() {
				if err := listener.Ping(); err != nil {
					logrus.WithError(err).Warn("Ping do listener falhou")
				}
			}()
		}
	}
}

func (w *Watcher) handleEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnected:
		logrus.Info("Listener conectado ao banco remoto")
	case pq.ListenerEventDisconnected:
		logrus.WithError(err).Warn("Listener desconectado do banco remoto")
	case pq.ListenerEventConnectionAttemptFailed:
		logrus.WithError(err).Warn("Falha ao reconectar listener")
	case pq.ListenerEventReconnected:
		logrus.Info("Listener reconectado ao banco remoto")
		w.mu.RLock()
		hooks := append([]func(){}, w.onReconnect...)
		w.mu.RUnlock()
		for _, fn := range hooks {
			fn()
		}
	}
}

// dispatch decodifica a notificação, busca somente a linha alterada e repassa aos handlers da tabela
func (w *Watcher) dispatch(ctx context.Context, payload string) {
	var change Change
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		logrus.WithError(err).WithField("payload", payload).Warn("Notificação inválida do banco remoto")
		return
	}

	w.mu.RLock()
	handlers := append([]ChangeHandler(nil), w.handlers[change.Table]...)
	w.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	if change.Op != OpDelete {
		row, err := w.fetch(ctx, change)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"table": change.Table,
				"id":    change.ID,
			}).WithError(err).Error("Erro ao buscar linha alterada")
			return
		}
		if row == nil {
			// removida entre a notificação e a leitura
			change.Op = OpDelete
		}
		change.Row = row
	}

	for _, fn := range handlers {
		fn(ctx, change)
	}
}

func (w *Watcher) fetch(ctx context.Context, change Change) (any, error) {
	switch change.Table {
	case TableOperators:
		op, err := w.gateway.Operators.GetByID(ctx, change.ID)
		if op == nil || err != nil {
			return nil, err
		}
		return op, nil
	case TableProducts:
		p, err := w.gateway.Products.GetByID(ctx, change.ID)
		if p == nil || err != nil {
			return nil, err
		}
		return p, nil
	case TableSales:
		s, err := w.gateway.Sales.GetByID(ctx, change.ID)
		if s == nil || err != nil {
			return nil, err
		}
		return s, nil
	case TableMessages:
		m, err := w.gateway.Messages.GetByID(ctx, change.ID)
		if m == nil || err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("tabela não observada: %s", change.Table)
	}
}
