package scheduler

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/pdv-api/infrastructure/localstore"
	"github.com/vfg2006/pdv-api/infrastructure/repository"
	"github.com/vfg2006/pdv-api/internal/domain"
)

func (s *SyncOrchestrator) registerWatchHandlers() {
	s.watcher.Watch(repository.TableProducts, s.applyProductChange)
	s.watcher.Watch(repository.TableSales, s.applySaleChange)
	s.watcher.Watch(repository.TableOperators, s.applyOperatorChange)
	s.watcher.Watch(repository.TableMessages, s.applyMessageChange)

	// reconexão do listener equivale ao evento "online"
	s.watcher.OnReconnect(func() {
		_ = s.TriggerManualSync()
	})
}

func logChange(change repository.Change, err error) {
	fields := logrus.Fields{
		"table": change.Table,
		"op":    change.Op,
		"id":    change.ID,
	}
	if err != nil {
		logrus.WithFields(fields).WithError(err).Warn("Erro ao aplicar alteração remota")
		return
	}
	RemoteChangesTotal.WithLabelValues(change.Table, change.Op).Inc()
	logrus.WithFields(fields).Debug("Alteração remota aplicada")
}

// applyProductChange segue as mesmas regras da sincronização completa: só operadores atendidos
// e a cópia local mais nova ainda não enviada é preservada.
func (s *SyncOrchestrator) applyProductChange(_ context.Context, change repository.Change) {
	var err error
	if change.Op == repository.OpDelete {
		err = s.store.DeleteProduct(change.ID)
	} else if p, ok := change.Row.(*domain.Product); ok {
		if !s.serves(p.UserID) || s.localProductIsNewer(p) {
			return
		}
		err = s.store.SaveProduct(p)
	}
	logChange(change, err)
}

func (s *SyncOrchestrator) applySaleChange(_ context.Context, change repository.Change) {
	var err error
	if change.Op == repository.OpDelete {
		err = s.store.DeleteSale(change.ID)
	} else if sale, ok := change.Row.(*domain.Sale); ok {
		if !s.serves(sale.OperatorID) {
			return
		}
		local, getErr := s.store.GetSale(sale.ID)
		if getErr == nil && local != nil && local.IsCancelled() && !sale.IsCancelled() {
			return
		}

		err = s.store.SaveSale(sale)
		if errors.Is(err, localstore.ErrDuplicateSaleNumber) {
			s.reportConflict(sale)
			err = nil
		}
	}
	logChange(change, err)
}

func (s *SyncOrchestrator) applyOperatorChange(_ context.Context, change repository.Change) {
	var err error
	if change.Op == repository.OpDelete {
		err = s.store.DeleteOperator(change.ID)
	} else if op, ok := change.Row.(*domain.Operator); ok {
		err = s.store.SaveOperator(op)
	}
	logChange(change, err)
}

func (s *SyncOrchestrator) applyMessageChange(_ context.Context, change repository.Change) {
	var err error
	if change.Op != repository.OpDelete {
		if msg, ok := change.Row.(*domain.ChatMessage); ok {
			msg.Pending = false
			err = s.store.SaveMessage(msg)
		}
	}
	logChange(change, err)
}
