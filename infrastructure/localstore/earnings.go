package localstore

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/vfg2006/pdv-api/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// AppendEarning acrescenta um lançamento ao livro de ganhos; lançamentos nunca são alterados
func (s *Store) AppendEarning(earning *domain.Earning) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEarnings)
		if b.Get([]byte(earning.ID)) != nil {
			return nil
		}
		return errors.Wrapf(putJSON(b, earning.ID, earning), "erro ao gravar ganho %s", earning.ID)
	})
}

// ListEarnings devolve os lançamentos do mais recente para o mais antigo
func (s *Store) ListEarnings() ([]*domain.Earning, error) {
	var earnings []*domain.Earning
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		earnings, err = listJSON[domain.Earning](tx.Bucket(bucketEarnings))
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "erro ao listar ganhos")
	}

	sort.SliceStable(earnings, func(i, j int) bool {
		return earnings[i].CreatedAt.After(earnings[j].CreatedAt)
	})
	return earnings, nil
}
