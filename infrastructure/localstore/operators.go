package localstore

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/vfg2006/pdv-api/internal/domain"
	bolt "go.etcd.io/bbolt"
)

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SaveOperator grava o operador; o email é único entre operadores
func (s *Store) SaveOperator(operator *domain.Operator) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return saveOperator(tx, operator)
	})
}

// ReplaceOperators espelha a lista remota de operadores no armazenamento local
func (s *Store) ReplaceOperators(operators []*domain.Operator) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		keep := make(map[string]bool, len(operators))
		for _, op := range operators {
			keep[op.ID] = true
		}

		existing, err := listJSON[domain.Operator](tx.Bucket(bucketOperators))
		if err != nil {
			return err
		}
		for _, op := range existing {
			if !keep[op.ID] {
				if err := deleteOperator(tx, op.ID); err != nil {
					return err
				}
			}
		}

		for _, op := range operators {
			if err := saveOperator(tx, op); err != nil {
				return err
			}
		}
		return nil
	})
}

func saveOperator(tx *bolt.Tx, operator *domain.Operator) error {
	b := tx.Bucket(bucketOperators)
	email := emailKey(operator.Email)

	if uniqueConflict(tx, indexOperatorEmail, email, operator.ID) {
		return errors.Wrapf(ErrDuplicateEmail, "%s", email)
	}

	previous, err := getJSON[domain.Operator](b, operator.ID)
	if err != nil {
		return err
	}
	if previous != nil {
		if err := deleteIndex(tx, indexOperatorEmail, emailKey(previous.Email), previous.ID); err != nil {
			return err
		}
	}

	if err := putIndex(tx, indexOperatorEmail, email, operator.ID); err != nil {
		return err
	}

	return errors.Wrapf(putJSON(b, operator.ID, operator), "erro ao gravar operador %s", operator.ID)
}

func (s *Store) GetOperator(id string) (*domain.Operator, error) {
	var operator *domain.Operator
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		operator, err = getJSON[domain.Operator](tx.Bucket(bucketOperators), id)
		return err
	})
	return operator, err
}

func (s *Store) GetOperatorByEmail(email string) (*domain.Operator, error) {
	var operator *domain.Operator
	err := s.db.View(func(tx *bolt.Tx) error {
		ids := lookupIndex(tx, indexOperatorEmail, emailKey(email))
		if len(ids) == 0 {
			return nil
		}
		var err error
		operator, err = getJSON[domain.Operator](tx.Bucket(bucketOperators), ids[0])
		return err
	})
	return operator, err
}

func (s *Store) ListOperators() ([]*domain.Operator, error) {
	var operators []*domain.Operator
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		operators, err = listJSON[domain.Operator](tx.Bucket(bucketOperators))
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "erro ao listar operadores")
	}

	sort.SliceStable(operators, func(i, j int) bool {
		return operators[i].Name < operators[j].Name
	})
	return operators, nil
}

func (s *Store) DeleteOperator(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return deleteOperator(tx, id)
	})
}

func deleteOperator(tx *bolt.Tx, id string) error {
	b := tx.Bucket(bucketOperators)
	operator, err := getJSON[domain.Operator](b, id)
	if err != nil || operator == nil {
		return err
	}
	if err := deleteIndex(tx, indexOperatorEmail, emailKey(operator.Email), id); err != nil {
		return err
	}
	return b.Delete([]byte(id))
}
