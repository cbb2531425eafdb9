package messaging

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/pdv-api/infrastructure/localstore"
	"github.com/vfg2006/pdv-api/infrastructure/repository"
	"github.com/vfg2006/pdv-api/internal/domain"
	"github.com/vfg2006/pdv-api/pkg/apiErrors"
	"github.com/vfg2006/pdv-api/pkg/utils"
)

type MessagingService interface {
	Send(ctx context.Context, session *domain.Session, operatorID, text string) (*domain.ChatMessage, error)
	History(ctx context.Context, session *domain.Session, operatorID string) ([]*domain.ChatMessage, error)
	MarkRead(ctx context.Context, session *domain.Session, operatorID string) error
}

type Service struct {
	store       *localstore.Store
	messageRepo repository.MessageRepository
	now         func() time.Time

	// serializa o envio das pendentes
	flushMu sync.Mutex
}

func NewService(store *localstore.Store, messageRepo repository.MessageRepository) *Service {
	return &Service{
		store:       store,
		messageRepo: messageRepo,
		now:         time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func senderOf(session *domain.Session) string {
	if session.IsAdmin {
		return domain.SenderAdmin
	}
	return domain.SenderOperator
}

// authorize garante que operadores comuns só acessem a própria conversa
func authorize(session *domain.Session, operatorID string) error {
	if operatorID == "" {
		return NewMessageError(ErrOperatorRequired, apiErrors.ErrMissingRequiredData, "")
	}
	if !session.IsAdmin && session.OperatorID != operatorID {
		return NewMessageError(ErrForbiddenThread, apiErrors.ErrInsufficientPrivilege, "")
	}
	return nil
}

// Send grava a mensagem primeiro no banco remoto. Se ele falhar, a mensagem fica
// local como pendente e segue na próxima chamada bem-sucedida.
func (s *Service) Send(ctx context.Context, session *domain.Session, operatorID, text string) (*domain.ChatMessage, error) {
	if err := authorize(session, operatorID); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, NewMessageError(ErrEmptyMessage, apiErrors.ErrMissingRequiredData, "")
	}

	msg := &domain.ChatMessage{
		ID:         utils.NewID(),
		OperatorID: operatorID,
		Sender:     senderOf(session),
		Text:       text,
		CreatedAt:  s.now(),
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		msg.Pending = true
		if !errors.Is(err, repository.ErrRemoteUnavailable) {
			logrus.WithError(err).WithField("mensagem_id", msg.ID).Warn("Mensagem mantida localmente para reenvio")
		}
	}

	if err := s.store.SaveMessage(msg); err != nil {
		return nil, NewMessageError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, err.Error())
	}

	if !msg.Pending {
		s.FlushPending(ctx)
	}

	return msg, nil
}

// FlushPending reenvia as mensagens que ficaram apenas no armazenamento local.
// Para na primeira falha; a ordem cronológica é mantida.
func (s *Service) FlushPending(ctx context.Context) int {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	pending, err := s.store.ListPendingMessages()
	if err != nil {
		logrus.WithError(err).Warn("Erro ao listar mensagens pendentes")
		return 0
	}

	sent := 0
	for _, msg := range pending {
		if err := s.messageRepo.Create(ctx, msg); err != nil {
			logrus.WithError(err).WithField("pendentes", len(pending)-sent).Debug("Mensagens pendentes continuam aguardando")
			break
		}

		msg.Pending = false
		if err := s.store.SaveMessage(msg); err != nil {
			logrus.WithError(err).WithField("mensagem_id", msg.ID).Warn("Erro ao atualizar mensagem enviada")
			break
		}
		sent++
	}

	if sent > 0 {
		logrus.WithField("quantidade", sent).Info("Mensagens pendentes enviadas")
	}
	return sent
}

// History devolve a conversa em ordem cronológica, incluindo mensagens ainda pendentes
func (s *Service) History(ctx context.Context, session *domain.Session, operatorID string) ([]*domain.ChatMessage, error) {
	if err := authorize(session, operatorID); err != nil {
		return nil, err
	}

	remote, err := s.messageRepo.ListByOperator(ctx, operatorID)
	switch {
	case err == nil:
		if err := s.store.SaveMessages(remote); err != nil {
			logrus.WithError(err).WithField("operador_id", operatorID).Warn("Erro ao espelhar conversa localmente")
		}
		s.FlushPending(ctx)
	case errors.Is(err, repository.ErrRemoteUnavailable):
	default:
		logrus.WithError(err).WithField("operador_id", operatorID).Warn("Erro ao buscar conversa remota, usando cópia local")
	}

	msgs, err := s.store.ListMessagesByOperator(operatorID)
	if err != nil {
		return nil, NewMessageError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, err.Error())
	}
	return msgs, nil
}

// MarkRead marca como lidas as mensagens recebidas por quem está lendo a conversa
func (s *Service) MarkRead(ctx context.Context, session *domain.Session, operatorID string) error {
	if err := authorize(session, operatorID); err != nil {
		return err
	}

	reader := senderOf(session)

	err := s.messageRepo.MarkRead(ctx, operatorID, reader)
	if err != nil && !errors.Is(err, repository.ErrRemoteUnavailable) {
		logrus.WithError(err).WithField("operador_id", operatorID).Warn("Erro ao marcar mensagens como lidas no banco remoto")
	}

	msgs, err := s.store.ListMessagesByOperator(operatorID)
	if err != nil {
		return NewMessageError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, err.Error())
	}

	changed := make([]*domain.ChatMessage, 0)
	for _, msg := range msgs {
		if !msg.Read && msg.Sender != reader {
			msg.Read = true
			changed = append(changed, msg)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	if err := s.store.SaveMessages(changed); err != nil {
		return NewMessageError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, err.Error())
	}
	return nil
}
