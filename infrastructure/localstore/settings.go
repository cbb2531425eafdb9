package localstore

import (
	"slices"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// SetSetting grava um valor livre (serializado em JSON) no bucket de configurações
func (s *Store) SetSetting(key string, value any) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return errors.Wrapf(putJSON(tx.Bucket(bucketSettings), key, value), "erro ao gravar configuração %s", key)
	})
}

// GetSetting lê a configuração em out; devolve false quando a chave não existe
func (s *Store) GetSetting(key string, out any) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketSettings).Get([]byte(key))
		if data == nil {
			return nil
		}
		found = true
		return errors.Wrapf(json.Unmarshal(data, out), "erro ao ler configuração %s", key)
	})
	return found, err
}

func (s *Store) DeleteSetting(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSettings).Delete([]byte(key))
	})
}

const servedOperatorsKey = "sincronizacao:operadores"

// AddServedOperator registra o operador cujos dados este dispositivo mantém em cache
func (s *Store) AddServedOperator(operatorID string) error {
	if operatorID == "" {
		return nil
	}

	served, err := s.ServedOperators()
	if err != nil {
		return err
	}
	if slices.Contains(served, operatorID) {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSettings)
		served, err := getJSON[[]string](b, servedOperatorsKey)
		if err != nil {
			return err
		}

		ids := make([]string, 0)
		if served != nil {
			ids = *served
		}
		if slices.Contains(ids, operatorID) {
			return nil
		}

		ids = append(ids, operatorID)
		slices.Sort(ids)
		return errors.Wrap(putJSON(b, servedOperatorsKey, ids), "erro ao gravar operadores atendidos")
	})
}

// ServedOperators lista os operadores atendidos por este dispositivo
func (s *Store) ServedOperators() ([]string, error) {
	ids := make([]string, 0)
	if _, err := s.GetSetting(servedOperatorsKey, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
