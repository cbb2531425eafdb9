package localstore

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/vfg2006/pdv-api/internal/domain"
	bolt "go.etcd.io/bbolt"
)

func (s *Store) SaveMessage(msg *domain.ChatMessage) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return saveMessage(tx, msg)
	})
}

func (s *Store) SaveMessages(msgs []*domain.ChatMessage) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, msg := range msgs {
			if err := saveMessage(tx, msg); err != nil {
				return err
			}
		}
		return nil
	})
}

func saveMessage(tx *bolt.Tx, msg *domain.ChatMessage) error {
	if err := putIndex(tx, indexMessageOperator, msg.OperatorID, msg.ID); err != nil {
		return err
	}
	return errors.Wrapf(putJSON(tx.Bucket(bucketMessages), msg.ID, msg), "erro ao gravar mensagem %s", msg.ID)
}

func (s *Store) GetMessage(id string) (*domain.ChatMessage, error) {
	var msg *domain.ChatMessage
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		msg, err = getJSON[domain.ChatMessage](tx.Bucket(bucketMessages), id)
		return err
	})
	return msg, err
}

// ListMessagesByOperator devolve a conversa em ordem cronológica
func (s *Store) ListMessagesByOperator(operatorID string) ([]*domain.ChatMessage, error) {
	msgs := make([]*domain.ChatMessage, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMessages)
		for _, id := range lookupIndex(tx, indexMessageOperator, operatorID) {
			msg, err := getJSON[domain.ChatMessage](b, id)
			if err != nil {
				return err
			}
			if msg != nil {
				msgs = append(msgs, msg)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	return msgs, nil
}

// ListPendingMessages devolve as mensagens que ainda não chegaram ao banco remoto
func (s *Store) ListPendingMessages() ([]*domain.ChatMessage, error) {
	var all []*domain.ChatMessage
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		all, err = listJSON[domain.ChatMessage](tx.Bucket(bucketMessages))
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "erro ao listar mensagens pendentes")
	}

	pending := make([]*domain.ChatMessage, 0)
	for _, msg := range all {
		if msg.Pending {
			pending = append(pending, msg)
		}
	}

	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	return pending, nil
}
