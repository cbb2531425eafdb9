package localstore

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/vfg2006/pdv-api/internal/domain"
	bolt "go.etcd.io/bbolt"
)

func numberKey(number int) string {
	return fmt.Sprintf("%012d", number)
}

// saleNumberKey indexa o número por operador; cada operador tem a própria numeração
func saleNumberKey(operatorID string, number int) string {
	return operatorID + scopeSeparator + numberKey(number)
}

// SaveSale grava a venda respeitando a unicidade do número dentro do operador
func (s *Store) SaveSale(sale *domain.Sale) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return saveSale(tx, sale)
	})
}

func saveSale(tx *bolt.Tx, sale *domain.Sale) error {
	b := tx.Bucket(bucketSales)

	if uniqueConflict(tx, indexSaleNumber, saleNumberKey(sale.OperatorID, sale.Number), sale.ID) {
		return errors.Wrapf(ErrDuplicateSaleNumber, "venda nº %d", sale.Number)
	}

	previous, err := getJSON[domain.Sale](b, sale.ID)
	if err != nil {
		return err
	}
	if previous != nil {
		if err := deleteIndex(tx, indexSaleNumber, saleNumberKey(previous.OperatorID, previous.Number), previous.ID); err != nil {
			return err
		}
		if err := deleteIndex(tx, indexSaleOperator, previous.OperatorID, previous.ID); err != nil {
			return err
		}
	}

	if err := putIndex(tx, indexSaleNumber, saleNumberKey(sale.OperatorID, sale.Number), sale.ID); err != nil {
		return err
	}
	if err := putIndex(tx, indexSaleOperator, sale.OperatorID, sale.ID); err != nil {
		return err
	}

	return errors.Wrapf(putJSON(b, sale.ID, sale), "erro ao gravar venda %s", sale.ID)
}

// NextSaleNumber devolve o maior número de venda do operador + 1 (1 quando ele não tem vendas)
func (s *Store) NextSaleNumber(operatorID string) (int, error) {
	var next int
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		next, err = nextSaleNumber(tx, operatorID)
		return err
	})
	return next, err
}

func nextSaleNumber(tx *bolt.Tx, operatorID string) (int, error) {
	prefix := []byte(operatorID + scopeSeparator)

	var last []byte
	c := tx.Bucket(indexSaleNumber).Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		last = k
	}
	if last == nil {
		return 1, nil
	}

	raw, _, _ := strings.Cut(string(last[len(prefix):]), indexSeparator)
	highest, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "índice de número de venda corrompido: %q", raw)
	}
	return highest + 1, nil
}

// CreateSale numera a venda na sequência do operador, baixa o estoque dos itens e grava
// tudo na mesma transação. Dois checkouts simultâneos neste processo nunca recebem o mesmo número.
func (s *Store) CreateSale(sale *domain.Sale) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		number, err := nextSaleNumber(tx, sale.OperatorID)
		if err != nil {
			return err
		}
		sale.Number = number

		for _, item := range sale.Items {
			if _, err := adjustStock(tx, item.ProductID, -item.Quantity); err != nil {
				return err
			}
		}

		return saveSale(tx, sale)
	})
}

// CommitCancellation substitui a venda concluída pelo valor cancelado e,
// se restock for verdadeiro, devolve as quantidades ao estoque.
// Produtos que não existem mais localmente são ignorados na devolução.
func (s *Store) CommitCancellation(cancelled *domain.Sale, restock bool) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		current, err := getJSON[domain.Sale](tx.Bucket(bucketSales), cancelled.ID)
		if err != nil {
			return err
		}
		if current == nil {
			return errors.Wrapf(ErrNotFound, "venda %s", cancelled.ID)
		}
		if current.Status != domain.SaleStatusCompleted {
			return errors.Wrapf(ErrSaleNotCompleted, "venda nº %d", current.Number)
		}

		if restock {
			for _, item := range current.Items {
				_, err := adjustStock(tx, item.ProductID, item.Quantity)
				if err != nil && !errors.Is(err, ErrNotFound) {
					return err
				}
			}
		}

		return saveSale(tx, cancelled)
	})
}

func (s *Store) GetSale(id string) (*domain.Sale, error) {
	var sale *domain.Sale
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		sale, err = getJSON[domain.Sale](tx.Bucket(bucketSales), id)
		return err
	})
	return sale, err
}

func (s *Store) GetSaleByNumber(operatorID string, number int) (*domain.Sale, error) {
	var sale *domain.Sale
	err := s.db.View(func(tx *bolt.Tx) error {
		ids := lookupIndex(tx, indexSaleNumber, saleNumberKey(operatorID, number))
		if len(ids) == 0 {
			return nil
		}
		var err error
		sale, err = getJSON[domain.Sale](tx.Bucket(bucketSales), ids[0])
		return err
	})
	return sale, err
}

// ListSales devolve as vendas da mais recente para a mais antiga
func (s *Store) ListSales() ([]*domain.Sale, error) {
	var sales []*domain.Sale
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		sales, err = listJSON[domain.Sale](tx.Bucket(bucketSales))
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "erro ao listar vendas")
	}

	sortSales(sales)
	return sales, nil
}

func (s *Store) ListSalesByOperator(operatorID string) ([]*domain.Sale, error) {
	sales := make([]*domain.Sale, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSales)
		for _, id := range lookupIndex(tx, indexSaleOperator, operatorID) {
			sale, err := getJSON[domain.Sale](b, id)
			if err != nil {
				return err
			}
			if sale != nil {
				sales = append(sales, sale)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortSales(sales)
	return sales, nil
}

func (s *Store) DeleteSale(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSales)
		sale, err := getJSON[domain.Sale](b, id)
		if err != nil || sale == nil {
			return err
		}
		if err := deleteIndex(tx, indexSaleNumber, saleNumberKey(sale.OperatorID, sale.Number), id); err != nil {
			return err
		}
		if err := deleteIndex(tx, indexSaleOperator, sale.OperatorID, id); err != nil {
			return err
		}
		return b.Delete([]byte(id))
	})
}

func sortSales(sales []*domain.Sale) {
	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].Number > sales[j].Number
	})
}
