package checkout

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/pdv-api/infrastructure/localstore"
	"github.com/vfg2006/pdv-api/internal/domain"
	"github.com/vfg2006/pdv-api/pkg/apiErrors"
	"github.com/vfg2006/pdv-api/pkg/utils"
)

// Pusher envia vendas e produtos ao banco remoto logo após a gravação local
type Pusher interface {
	SyncProducts(ctx context.Context, products []*domain.Product) (int, error)
	SyncSales(ctx context.Context, sales []*domain.Sale) (int, error)
}

type CheckoutService interface {
	Checkout(ctx context.Context, session *domain.Session, req *domain.CheckoutRequest) (*domain.Sale, error)
	CancelSale(ctx context.Context, session *domain.Session, saleID, reason string) (*domain.Sale, error)
	ListSales(operatorID string) ([]*domain.Sale, error)
	GetSale(id string) (*domain.Sale, error)
	NextSaleNumber(operatorID string) (int, error)
}

type Service struct {
	store  *localstore.Store
	pusher Pusher
	now    func() time.Time
}

func NewService(store *localstore.Store, pusher Pusher) *Service {
	return &Service{
		store:  store,
		pusher: pusher,
		now:    time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// findProduct procura só no catálogo do operador que está vendendo
func (s *Service) findProduct(operatorID string, item domain.CheckoutItem) (*domain.Product, error) {
	var (
		product *domain.Product
		err     error
	)
	if item.ProductID != "" {
		product, err = s.store.GetProduct(item.ProductID)
	} else {
		product, err = s.store.GetProductByBarcode(operatorID, strings.TrimSpace(item.Barcode))
	}
	if err != nil {
		return nil, NewSaleError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, err.Error())
	}
	if product == nil || product.UserID != operatorID {
		ref := item.ProductID
		if ref == "" {
			ref = "código " + item.Barcode
		}
		return nil, NewSaleError(ErrProductNotFound, apiErrors.ErrNotFound, ref)
	}
	return product, nil
}

// buildItems resolve os produtos do carrinho, somando linhas repetidas do mesmo produto
func (s *Service) buildItems(operatorID string, req *domain.CheckoutRequest) ([]domain.SaleItem, error) {
	items := make([]domain.SaleItem, 0, len(req.Items))
	position := make(map[string]int, len(req.Items))
	available := make(map[string]int, len(req.Items))

	for _, cartItem := range req.Items {
		if cartItem.Quantity <= 0 {
			return nil, NewSaleError(ErrInvalidQuantity, apiErrors.ErrInvalidFormat, "")
		}

		product, err := s.findProduct(operatorID, cartItem)
		if err != nil {
			return nil, err
		}

		if i, ok := position[product.ID]; ok {
			items[i].Quantity += cartItem.Quantity
		} else {
			position[product.ID] = len(items)
			available[product.ID] = product.Stock
			items = append(items, domain.SaleItem{
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  cartItem.Quantity,
				UnitPrice: product.Price,
			})
		}
	}

	for i := range items {
		if items[i].Quantity > available[items[i].ProductID] {
			return nil, NewSaleError(ErrInsufficientStock, apiErrors.ErrInsufficientStock, items[i].Name)
		}
		items[i].Subtotal = utils.LineTotal(items[i].UnitPrice, items[i].Quantity)
	}

	return items, nil
}

// Checkout fecha a venda: numera, baixa o estoque e grava numa única transação local
func (s *Service) Checkout(ctx context.Context, session *domain.Session, req *domain.CheckoutRequest) (*domain.Sale, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, NewSaleError(ErrEmptyCart, apiErrors.ErrEmptyCart, "")
	}

	items, err := s.buildItems(session.OperatorID, req)
	if err != nil {
		return nil, err
	}

	subtotals := make([]float64, 0, len(items))
	for _, item := range items {
		subtotals = append(subtotals, item.Subtotal)
	}

	sale := &domain.Sale{
		ID:            utils.NewID(),
		OperatorID:    session.OperatorID,
		OperatorName:  session.OperatorName,
		Items:         items,
		Total:         utils.SumMoney(subtotals...),
		PaymentMethod: req.PaymentMethod,
		Status:        domain.SaleStatusCompleted,
		CreatedAt:     s.now(),
	}

	if err := s.store.CreateSale(sale); err != nil {
		return nil, storeError(err, sale.ID)
	}
	if err := s.store.AddServedOperator(sale.OperatorID); err != nil {
		logrus.WithError(err).WithField("operador_id", sale.OperatorID).Warn("Erro ao registrar operador atendido")
	}

	logrus.WithFields(logrus.Fields{
		"venda_id":     sale.ID,
		"venda_numero": sale.Number,
		"operador_id":  sale.OperatorID,
		"total":        sale.Total,
	}).Info("Venda concluída")

	s.push(ctx, sale)
	return sale, nil
}

// CancelSale grava uma nova versão cancelada da venda, com o mesmo ID e número.
// Os itens voltam ao estoque, exceto quando o motivo é produto com defeito.
func (s *Service) CancelSale(ctx context.Context, session *domain.Session, saleID, reason string) (*domain.Sale, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, NewSaleErrorWithID(ErrReasonRequired, apiErrors.ErrMissingRequiredData, saleID, "")
	}

	current, err := s.GetSale(saleID)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.SaleStatusCompleted {
		return nil, NewSaleErrorWithID(ErrSaleNotCompleted, apiErrors.ErrSaleNotCompleted, saleID, "")
	}

	cancelledAt := s.now()
	cancelled := *current
	cancelled.Items = append([]domain.SaleItem(nil), current.Items...)
	cancelled.Status = domain.SaleStatusCancelled
	cancelled.CancelReason = &reason
	cancelled.CancelledAt = &cancelledAt

	restock := domain.RestocksOnCancel(reason)
	if err := s.store.CommitCancellation(&cancelled, restock); err != nil {
		return nil, storeError(err, saleID)
	}

	fields := logrus.Fields{
		"venda_id":     cancelled.ID,
		"venda_numero": cancelled.Number,
		"motivo":       reason,
		"estorno":      restock,
	}
	if session != nil {
		fields["operador_id"] = session.OperatorID
	}
	logrus.WithFields(fields).Info("Venda cancelada")

	s.push(ctx, &cancelled)
	return &cancelled, nil
}

func (s *Service) push(ctx context.Context, sale *domain.Sale) {
	if s.pusher == nil {
		return
	}

	if _, err := s.pusher.SyncSales(ctx, []*domain.Sale{sale}); err != nil {
		logrus.WithError(err).WithField("venda_id", sale.ID).Warn("Venda gravada localmente; envio fica para a próxima sincronização")
	}

	products := make([]*domain.Product, 0, len(sale.Items))
	for _, item := range sale.Items {
		product, err := s.store.GetProduct(item.ProductID)
		if err != nil || product == nil {
			continue
		}
		products = append(products, product)
	}
	if len(products) == 0 {
		return
	}

	if _, err := s.pusher.SyncProducts(ctx, products); err != nil {
		logrus.WithError(err).WithField("venda_id", sale.ID).Warn("Estoque gravado localmente; envio fica para a próxima sincronização")
	}
}

func storeError(err error, saleID string) error {
	switch {
	case errors.Is(err, localstore.ErrInsufficientStock):
		return NewSaleErrorWithID(ErrInsufficientStock, apiErrors.ErrInsufficientStock, saleID, err.Error())
	case errors.Is(err, localstore.ErrSaleNotCompleted):
		return NewSaleErrorWithID(ErrSaleNotCompleted, apiErrors.ErrSaleNotCompleted, saleID, "")
	case errors.Is(err, localstore.ErrNotFound):
		return NewSaleErrorWithID(ErrProductNotFound, apiErrors.ErrNotFound, saleID, err.Error())
	default:
		return NewSaleErrorWithID(ErrStoreOperation, apiErrors.ErrDatabaseOperation, saleID, err.Error())
	}
}

// ListSales devolve as vendas do operador; vazio lista todas
func (s *Service) ListSales(operatorID string) ([]*domain.Sale, error) {
	var (
		sales []*domain.Sale
		err   error
	)
	if operatorID == "" {
		sales, err = s.store.ListSales()
	} else {
		sales, err = s.store.ListSalesByOperator(operatorID)
	}
	if err != nil {
		return nil, NewSaleError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, err.Error())
	}
	return sales, nil
}

func (s *Service) GetSale(id string) (*domain.Sale, error) {
	sale, err := s.store.GetSale(id)
	if err != nil {
		return nil, NewSaleErrorWithID(ErrStoreOperation, apiErrors.ErrDatabaseOperation, id, err.Error())
	}
	if sale == nil {
		return nil, NewSaleErrorWithID(ErrSaleNotFound, apiErrors.ErrNotFound, id, "")
	}
	return sale, nil
}

// NextSaleNumber devolve o próximo número da sequência do operador
func (s *Service) NextSaleNumber(operatorID string) (int, error) {
	next, err := s.store.NextSaleNumber(operatorID)
	if err != nil {
		return 0, NewSaleError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, err.Error())
	}
	return next, nil
}
