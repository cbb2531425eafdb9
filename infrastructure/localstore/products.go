package localstore

import (
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/vfg2006/pdv-api/internal/domain"
	bolt "go.etcd.io/bbolt"
)

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// barcodeKey indexa o código de barras por dono; operadores diferentes podem repetir códigos
func barcodeKey(ownerID, barcode string) string {
	if barcode == "" {
		return ""
	}
	return ownerID + scopeSeparator + barcode
}

// SaveProduct grava o produto substituindo as entradas de índice anteriores
func (s *Store) SaveProduct(product *domain.Product) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return saveProduct(tx, product)
	})
}

// SaveProducts grava vários produtos numa única transação
func (s *Store) SaveProducts(products []*domain.Product) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, p := range products {
			if err := saveProduct(tx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

func saveProduct(tx *bolt.Tx, product *domain.Product) error {
	b := tx.Bucket(bucketProducts)

	previous, err := getJSON[domain.Product](b, product.ID)
	if err != nil {
		return err
	}
	if previous != nil {
		if err := deleteIndex(tx, indexProductBarcode, barcodeKey(previous.UserID, previous.Barcode), previous.ID); err != nil {
			return err
		}
		if err := deleteIndex(tx, indexProductName, nameKey(previous.Name), previous.ID); err != nil {
			return err
		}
	}

	if err := putIndex(tx, indexProductBarcode, barcodeKey(product.UserID, product.Barcode), product.ID); err != nil {
		return err
	}
	if err := putIndex(tx, indexProductName, nameKey(product.Name), product.ID); err != nil {
		return err
	}

	return errors.Wrapf(putJSON(b, product.ID, product), "erro ao gravar produto %s", product.ID)
}

func (s *Store) GetProduct(id string) (*domain.Product, error) {
	var product *domain.Product
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		product, err = getJSON[domain.Product](tx.Bucket(bucketProducts), id)
		return err
	})
	return product, err
}

func (s *Store) ListProducts() ([]*domain.Product, error) {
	var products []*domain.Product
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		products, err = listJSON[domain.Product](tx.Bucket(bucketProducts))
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "erro ao listar produtos")
	}

	sort.SliceStable(products, func(i, j int) bool {
		return nameKey(products[i].Name) < nameKey(products[j].Name)
	})
	return products, nil
}

func (s *Store) DeleteProduct(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketProducts)
		product, err := getJSON[domain.Product](b, id)
		if err != nil || product == nil {
			return err
		}
		if err := deleteIndex(tx, indexProductBarcode, barcodeKey(product.UserID, product.Barcode), id); err != nil {
			return err
		}
		if err := deleteIndex(tx, indexProductName, nameKey(product.Name), id); err != nil {
			return err
		}
		return b.Delete([]byte(id))
	})
}

// GetProductByBarcode devolve o produto do dono com o código de barras informado
func (s *Store) GetProductByBarcode(ownerID, barcode string) (*domain.Product, error) {
	var product *domain.Product
	err := s.db.View(func(tx *bolt.Tx) error {
		ids := lookupIndex(tx, indexProductBarcode, barcodeKey(ownerID, barcode))
		if len(ids) == 0 {
			return nil
		}
		var err error
		product, err = getJSON[domain.Product](tx.Bucket(bucketProducts), ids[0])
		return err
	})
	return product, err
}

// SearchProductsByName busca por prefixo do nome, sem diferenciar maiúsculas.
// Com ownerID vazio considera produtos de todos os donos.
func (s *Store) SearchProductsByName(ownerID, prefix string) ([]*domain.Product, error) {
	products := make([]*domain.Product, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketProducts)
		for _, id := range scanPrefix(tx, indexProductName, []byte(nameKey(prefix))) {
			product, err := getJSON[domain.Product](b, id)
			if err != nil {
				return err
			}
			if product != nil && (ownerID == "" || product.UserID == ownerID) {
				products = append(products, product)
			}
		}
		return nil
	})
	return products, err
}

func (s *Store) DecrementStock(productID string, quantity int) (*domain.Product, error) {
	var product *domain.Product
	err := s.db.Update(func(tx *bolt.Tx) error {
		var err error
		product, err = adjustStock(tx, productID, -quantity)
		return err
	})
	return product, err
}

func (s *Store) IncrementStock(productID string, quantity int) (*domain.Product, error) {
	var product *domain.Product
	err := s.db.Update(func(tx *bolt.Tx) error {
		var err error
		product, err = adjustStock(tx, productID, quantity)
		return err
	})
	return product, err
}

func adjustStock(tx *bolt.Tx, productID string, delta int) (*domain.Product, error) {
	b := tx.Bucket(bucketProducts)
	product, err := getJSON[domain.Product](b, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.Wrapf(ErrNotFound, "produto %s", productID)
	}
	if product.Stock+delta < 0 {
		return nil, errors.Wrapf(ErrInsufficientStock, "produto %s (disponível %d)", product.Name, product.Stock)
	}

	product.Stock += delta
	product.UpdatedAt = time.Now()
	if err := putJSON(b, product.ID, product); err != nil {
		return nil, err
	}
	return product, nil
}
