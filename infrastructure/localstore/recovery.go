package localstore

import (
	"github.com/pkg/errors"
	"github.com/vfg2006/pdv-api/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// SaveRecoveryCode guarda o código do email, substituindo o anterior
func (s *Store) SaveRecoveryCode(code *domain.RecoveryCode) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		err := putJSON(tx.Bucket(bucketRecoveryCodes), emailKey(code.Email), code)
		return errors.Wrap(err, "erro ao gravar código de recuperação")
	})
}

func (s *Store) GetRecoveryCode(email string) (*domain.RecoveryCode, error) {
	var code *domain.RecoveryCode
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		code, err = getJSON[domain.RecoveryCode](tx.Bucket(bucketRecoveryCodes), emailKey(email))
		return err
	})
	return code, err
}

func (s *Store) DeleteRecoveryCode(email string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRecoveryCodes).Delete([]byte(emailKey(email)))
	})
}
