package localstore

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/vfg2006/pdv-api/internal/domain"
	bolt "go.etcd.io/bbolt"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrNotFound            = errors.New("registro não encontrado no armazenamento local")
	ErrDuplicateEmail      = errors.New("email já cadastrado")
	ErrDuplicateSaleNumber = errors.New("número de venda já utilizado")
	ErrInsufficientStock   = errors.New("estoque insuficiente")
	ErrSaleNotCompleted    = errors.New("venda não está concluída")
)

// Buckets de dados
var (
	bucketCompanies     = []byte("empresas")
	bucketProducts      = []byte("produtos")
	bucketSales         = []byte("vendas")
	bucketOperators     = []byte("operadores")
	bucketRecoveryCodes = []byte("codigosRecuperacao")
	bucketPayments      = []byte("pagamentos")
	bucketSettings      = []byte("configuracoes")
	bucketEarnings      = []byte("ganhosAdmin")
	bucketMessages      = []byte("mensagens")
)

// Buckets de índice: chave "valor\x00id" -> id
var (
	indexProductBarcode  = []byte("idx_produtos_codigoBarras")
	indexProductName     = []byte("idx_produtos_nome")
	indexSaleNumber      = []byte("idx_vendas_numero")
	indexSaleOperator    = []byte("idx_vendas_operadorId")
	indexOperatorEmail   = []byte("idx_operadores_email")
	indexPaymentOperator = []byte("idx_pagamentos_usuarioId")
	indexPaymentStatus   = []byte("idx_pagamentos_status")
	indexMessageOperator = []byte("idx_mensagens_operadorId")
)

var allBuckets = [][]byte{
	bucketCompanies, bucketProducts, bucketSales, bucketOperators, bucketRecoveryCodes,
	bucketPayments, bucketSettings, bucketEarnings, bucketMessages,
	indexProductBarcode, indexProductName, indexSaleNumber, indexSaleOperator,
	indexOperatorEmail, indexPaymentOperator, indexPaymentStatus, indexMessageOperator,
}

const (
	indexSeparator = "\x00"
	// separa o dono do valor em índices com escopo de operador
	scopeSeparator = "\x01"
)

// Store é o cache local embarcado que mantém a loja funcionando sem conexão
type Store struct {
	db   *bolt.DB
	path string
}

type openHandle struct {
	once  sync.Once
	store *Store
	err   error
}

var (
	registryMu sync.Mutex
	registry   = map[string]*openHandle{}
)

// Open abre (ou reaproveita) o banco local do caminho informado.
// Chamadas concorrentes para o mesmo arquivo compartilham a mesma abertura.
func Open(path string) (*Store, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao resolver caminho do banco local")
	}

	registryMu.Lock()
	h, ok := registry[abs]
	if !ok {
		h = &openHandle{}
		registry[abs] = h
	}
	registryMu.Unlock()

	h.once.Do(func() {
		h.store, h.err = open(abs)
	})

	if h.err != nil {
		registryMu.Lock()
		if registry[abs] == h {
			delete(registry, abs)
		}
		registryMu.Unlock()
	}

	return h.store, h.err
}

func open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "erro ao criar diretório do banco local")
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "erro ao abrir banco local %s", path)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return errors.Wrapf(err, "erro ao criar bucket %s", name)
			}
		}
		return migrateIndexes(tx)
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

const (
	indexVersionKey = "versaoIndices"
	indexVersion    = 2
)

// migrateIndexes refaz os índices de código de barras e de número de venda no formato por operador.
// Bancos criados antes da versão 2 tinham esses índices únicos no arquivo inteiro.
func migrateIndexes(tx *bolt.Tx) error {
	settings := tx.Bucket(bucketSettings)
	version, err := getJSON[int](settings, indexVersionKey)
	if err != nil {
		return err
	}
	if version != nil && *version >= indexVersion {
		return nil
	}

	for _, name := range [][]byte{indexProductBarcode, indexSaleNumber} {
		if err := tx.DeleteBucket(name); err != nil {
			return errors.Wrapf(err, "erro ao limpar índice %s", name)
		}
		if _, err := tx.CreateBucket(name); err != nil {
			return errors.Wrapf(err, "erro ao recriar índice %s", name)
		}
	}

	products, err := listJSON[domain.Product](tx.Bucket(bucketProducts))
	if err != nil {
		return err
	}
	for _, p := range products {
		if err := putIndex(tx, indexProductBarcode, barcodeKey(p.UserID, p.Barcode), p.ID); err != nil {
			return err
		}
	}

	sales, err := listJSON[domain.Sale](tx.Bucket(bucketSales))
	if err != nil {
		return err
	}
	for _, sale := range sales {
		if err := putIndex(tx, indexSaleNumber, saleNumberKey(sale.OperatorID, sale.Number), sale.ID); err != nil {
			return err
		}
	}

	return putJSON(settings, indexVersionKey, indexVersion)
}

func (s *Store) Path() string {
	return s.path
}

// Close fecha o arquivo e libera o caminho para uma nova abertura
func (s *Store) Close() error {
	registryMu.Lock()
	if h, ok := registry[s.path]; ok && h.store == s {
		delete(registry, s.path)
	}
	registryMu.Unlock()

	return s.db.Close()
}

func putJSON(b *bolt.Bucket, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "erro ao serializar registro")
	}
	return b.Put([]byte(key), data)
}

func getJSON[T any](b *bolt.Bucket, key string) (*T, error) {
	data := b.Get([]byte(key))
	if data == nil {
		return nil, nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errors.Wrapf(err, "erro ao ler registro %s", key)
	}
	return &v, nil
}

func listJSON[T any](b *bolt.Bucket) ([]*T, error) {
	out := make([]*T, 0)
	err := b.ForEach(func(k, data []byte) error {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return errors.Wrapf(err, "erro ao ler registro %s", k)
		}
		out = append(out, &v)
		return nil
	})
	return out, err
}

func indexKey(value, id string) []byte {
	return []byte(value + indexSeparator + id)
}

func putIndex(tx *bolt.Tx, bucket []byte, value, id string) error {
	if value == "" {
		return nil
	}
	return tx.Bucket(bucket).Put(indexKey(value, id), []byte(id))
}

func deleteIndex(tx *bolt.Tx, bucket []byte, value, id string) error {
	if value == "" {
		return nil
	}
	return tx.Bucket(bucket).Delete(indexKey(value, id))
}

// lookupIndex devolve os ids cujo valor indexado é exatamente value
func lookupIndex(tx *bolt.Tx, bucket []byte, value string) []string {
	return scanPrefix(tx, bucket, []byte(value+indexSeparator))
}

func scanPrefix(tx *bolt.Tx, bucket, prefix []byte) []string {
	ids := make([]string, 0)
	c := tx.Bucket(bucket).Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		ids = append(ids, string(v))
	}
	return ids
}

// uniqueConflict informa se value já está indexado para outro id
func uniqueConflict(tx *bolt.Tx, bucket []byte, value, id string) bool {
	for _, existing := range lookupIndex(tx, bucket, value) {
		if existing != id {
			return true
		}
	}
	return false
}
