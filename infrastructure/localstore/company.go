package localstore

import (
	"github.com/pkg/errors"
	"github.com/vfg2006/pdv-api/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const fiscalConfigPrefix = "nfce:"

func (s *Store) SaveCompany(company *domain.Company) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		err := putJSON(tx.Bucket(bucketCompanies), company.OperatorID, company)
		return errors.Wrap(err, "erro ao gravar empresa")
	})
}

func (s *Store) GetCompany(operatorID string) (*domain.Company, error) {
	var company *domain.Company
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		company, err = getJSON[domain.Company](tx.Bucket(bucketCompanies), operatorID)
		return err
	})
	return company, err
}

// A configuração de NFC-e fica no bucket de configurações, uma chave por empresa
func (s *Store) SaveFiscalConfig(cfg *domain.FiscalConfig) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		err := putJSON(tx.Bucket(bucketSettings), fiscalConfigPrefix+cfg.OperatorID, cfg)
		return errors.Wrap(err, "erro ao gravar configuração fiscal")
	})
}

func (s *Store) GetFiscalConfig(operatorID string) (*domain.FiscalConfig, error) {
	var cfg *domain.FiscalConfig
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		cfg, err = getJSON[domain.FiscalConfig](tx.Bucket(bucketSettings), fiscalConfigPrefix+operatorID)
		return err
	})
	return cfg, err
}
