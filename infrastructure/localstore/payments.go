package localstore

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/vfg2006/pdv-api/internal/domain"
	bolt "go.etcd.io/bbolt"
)

func (s *Store) SavePayment(payment *domain.Payment) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPayments)

		previous, err := getJSON[domain.Payment](b, payment.ID)
		if err != nil {
			return err
		}
		if previous != nil {
			if err := deleteIndex(tx, indexPaymentOperator, previous.OperatorID, previous.ID); err != nil {
				return err
			}
			if err := deleteIndex(tx, indexPaymentStatus, string(previous.Status), previous.ID); err != nil {
				return err
			}
		}

		if err := putIndex(tx, indexPaymentOperator, payment.OperatorID, payment.ID); err != nil {
			return err
		}
		if err := putIndex(tx, indexPaymentStatus, string(payment.Status), payment.ID); err != nil {
			return err
		}

		return errors.Wrapf(putJSON(b, payment.ID, payment), "erro ao gravar pagamento %s", payment.ID)
	})
}

func (s *Store) GetPayment(id string) (*domain.Payment, error) {
	var payment *domain.Payment
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		payment, err = getJSON[domain.Payment](tx.Bucket(bucketPayments), id)
		return err
	})
	return payment, err
}

func (s *Store) ListPayments() ([]*domain.Payment, error) {
	var payments []*domain.Payment
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		payments, err = listJSON[domain.Payment](tx.Bucket(bucketPayments))
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "erro ao listar pagamentos")
	}

	sortPayments(payments)
	return payments, nil
}

func (s *Store) ListPaymentsByOperator(operatorID string) ([]*domain.Payment, error) {
	return s.paymentsByIndex(indexPaymentOperator, operatorID)
}

func (s *Store) ListPaymentsByStatus(status domain.PaymentStatus) ([]*domain.Payment, error) {
	return s.paymentsByIndex(indexPaymentStatus, string(status))
}

func (s *Store) paymentsByIndex(index []byte, value string) ([]*domain.Payment, error) {
	payments := make([]*domain.Payment, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPayments)
		for _, id := range lookupIndex(tx, index, value) {
			payment, err := getJSON[domain.Payment](b, id)
			if err != nil {
				return err
			}
			if payment != nil {
				payments = append(payments, payment)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortPayments(payments)
	return payments, nil
}

func (s *Store) DeletePayment(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPayments)
		payment, err := getJSON[domain.Payment](b, id)
		if err != nil || payment == nil {
			return err
		}
		if err := deleteIndex(tx, indexPaymentOperator, payment.OperatorID, id); err != nil {
			return err
		}
		if err := deleteIndex(tx, indexPaymentStatus, string(payment.Status), id); err != nil {
			return err
		}
		return b.Delete([]byte(id))
	})
}

func sortPayments(payments []*domain.Payment) {
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].DueDate.After(payments[j].DueDate)
	})
}
