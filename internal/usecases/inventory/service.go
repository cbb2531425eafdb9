package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/pdv-api/infrastructure/localstore"
	"github.com/vfg2006/pdv-api/infrastructure/repository"
	"github.com/vfg2006/pdv-api/internal/domain"
	"github.com/vfg2006/pdv-api/pkg/apiErrors"
	"github.com/vfg2006/pdv-api/pkg/utils"
)

// ProductPusher envia produtos alterados ao banco remoto
type ProductPusher interface {
	SyncProducts(ctx context.Context, products []*domain.Product) (int, error)
}

// InventoryService opera o catálogo de um operador. ownerID vazio (administrador) enxerga todos.
type InventoryService interface {
	CreateProduct(ctx context.Context, session *domain.Session, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, session *domain.Session, product *domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, session *domain.Session, id string) error
	ListProducts(ownerID string) ([]*domain.Product, error)
	GetProduct(ownerID, id string) (*domain.Product, error)
	GetByBarcode(ownerID, barcode string) (*domain.Product, error)
	SearchByName(ownerID, prefix string) ([]*domain.Product, error)
	LowStock(ownerID string) ([]*domain.Product, error)
}

type Service struct {
	store       *localstore.Store
	productRepo repository.ProductRepository
	pusher      ProductPusher
	now         func() time.Time
}

func NewService(store *localstore.Store, productRepo repository.ProductRepository, pusher ProductPusher) *Service {
	return &Service{
		store:       store,
		productRepo: productRepo,
		pusher:      pusher,
		now:         time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func validate(p *domain.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Barcode = strings.TrimSpace(p.Barcode)

	switch {
	case p.Name == "":
		return NewInventoryError(ErrNameRequired, apiErrors.ErrMissingRequiredData, p.ID, "")
	case p.Price < 0:
		return NewInventoryError(ErrInvalidPrice, apiErrors.ErrInvalidFormat, p.ID, "")
	case p.Stock < 0 || p.MinStock < 0:
		return NewInventoryError(ErrInvalidStock, apiErrors.ErrInvalidFormat, p.ID, "")
	}

	p.Price = utils.RoundWithTwoDecimalPlace(p.Price)
	return nil
}

// ScopeOf devolve o dono cujos produtos a sessão pode alterar; administradores alteram qualquer um
func ScopeOf(session *domain.Session) string {
	if session == nil || session.IsAdmin {
		return ""
	}
	return session.OperatorID
}

// checkBarcode garante o código de barras único dentro do catálogo do dono
func (s *Service) checkBarcode(p *domain.Product) error {
	if p.Barcode == "" {
		return nil
	}

	existing, err := s.store.GetProductByBarcode(p.UserID, p.Barcode)
	if err != nil {
		return NewInventoryError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, p.ID, err.Error())
	}
	if existing != nil && existing.ID != p.ID {
		return NewInventoryError(ErrDuplicateBarcode, apiErrors.ErrConflict, p.ID, "usado por "+existing.Name)
	}
	return nil
}

// push envia o produto sem bloquear a operação local; falhas ficam para a próxima sincronização
func (s *Service) push(ctx context.Context, products ...*domain.Product) {
	if s.pusher == nil || len(products) == 0 {
		return
	}

	if _, err := s.pusher.SyncProducts(ctx, products); err != nil {
		logrus.WithError(err).WithField("quantidade", len(products)).
			Warn("Produtos gravados localmente; envio ao banco remoto fica para a próxima sincronização")
	}
}

// CreateProduct cadastra o produto no catálogo do operador logado.
// Só administradores escolhem outro dono pelo campo usuarioId.
func (s *Service) CreateProduct(ctx context.Context, session *domain.Session, product *domain.Product) (*domain.Product, error) {
	if err := validate(product); err != nil {
		return nil, err
	}

	if session != nil && (!session.IsAdmin || product.UserID == "") {
		product.UserID = session.OperatorID
	}
	if err := s.checkBarcode(product); err != nil {
		return nil, err
	}

	now := s.now()
	product.ID = utils.NewID()
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := s.store.SaveProduct(product); err != nil {
		return nil, NewInventoryError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, product.ID, err.Error())
	}
	if err := s.store.AddServedOperator(product.UserID); err != nil {
		logrus.WithError(err).WithField("operador_id", product.UserID).Warn("Erro ao registrar operador atendido")
	}

	logrus.WithFields(logrus.Fields{
		"produto_id": product.ID,
		"nome":       product.Name,
		"dono":       product.UserID,
	}).Info("Produto cadastrado")

	s.push(ctx, product)
	return product, nil
}

// UpdateProduct substitui os campos editáveis mantendo criação e dono
func (s *Service) UpdateProduct(ctx context.Context, session *domain.Session, product *domain.Product) (*domain.Product, error) {
	current, err := s.GetProduct(ScopeOf(session), product.ID)
	if err != nil {
		return nil, err
	}

	if err := validate(product); err != nil {
		return nil, err
	}

	product.UserID = current.UserID
	if err := s.checkBarcode(product); err != nil {
		return nil, err
	}

	product.CreatedAt = current.CreatedAt
	product.UpdatedAt = s.now()

	if err := s.store.SaveProduct(product); err != nil {
		return nil, NewInventoryError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, product.ID, err.Error())
	}

	s.push(ctx, product)
	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, session *domain.Session, id string) error {
	if _, err := s.GetProduct(ScopeOf(session), id); err != nil {
		return err
	}

	if err := s.store.DeleteProduct(id); err != nil {
		return NewInventoryError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, id, err.Error())
	}

	if s.productRepo != nil {
		err := s.productRepo.Delete(ctx, id)
		if err != nil && !errors.Is(err, repository.ErrRemoteUnavailable) {
			logrus.WithError(err).WithField("produto_id", id).Warn("Erro ao remover produto do banco remoto")
		}
	}

	return nil
}

// GetProduct devolve o produto; de outro dono responde como não encontrado
func (s *Service) GetProduct(ownerID, id string) (*domain.Product, error) {
	product, err := s.store.GetProduct(id)
	if err != nil {
		return nil, NewInventoryError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, id, err.Error())
	}
	if product == nil || !ownedBy(product, ownerID) {
		return nil, NewInventoryError(ErrProductNotFound, apiErrors.ErrNotFound, id, "")
	}
	return product, nil
}

func ownedBy(product *domain.Product, ownerID string) bool {
	return ownerID == "" || product.UserID == ownerID
}

func (s *Service) ListProducts(ownerID string) ([]*domain.Product, error) {
	products, err := s.store.ListProducts()
	if err != nil {
		return nil, NewInventoryError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, "", err.Error())
	}

	owned := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		if ownedBy(p, ownerID) {
			owned = append(owned, p)
		}
	}
	return owned, nil
}

func (s *Service) GetByBarcode(ownerID, barcode string) (*domain.Product, error) {
	product, err := s.store.GetProductByBarcode(ownerID, strings.TrimSpace(barcode))
	if err != nil {
		return nil, NewInventoryError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, "", err.Error())
	}
	if product == nil {
		return nil, NewInventoryError(ErrProductNotFound, apiErrors.ErrNotFound, "", "código "+barcode)
	}
	return product, nil
}

func (s *Service) SearchByName(ownerID, prefix string) ([]*domain.Product, error) {
	if strings.TrimSpace(prefix) == "" {
		return s.ListProducts(ownerID)
	}

	products, err := s.store.SearchProductsByName(ownerID, prefix)
	if err != nil {
		return nil, NewInventoryError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, "", err.Error())
	}
	return products, nil
}

// LowStock devolve os produtos com estoque igual ou abaixo do mínimo
func (s *Service) LowStock(ownerID string) ([]*domain.Product, error) {
	products, err := s.ListProducts(ownerID)
	if err != nil {
		return nil, err
	}

	low := make([]*domain.Product, 0)
	for _, p := range products {
		if p.IsLowStock() {
			low = append(low, p)
		}
	}
	return low, nil
}
