package handler

import (
	"context"

	"github.com/vfg2006/pdv-api/internal/domain"
	"github.com/vfg2006/pdv-api/internal/usecases/accessing"
	"github.com/vfg2006/pdv-api/internal/usecases/authenticating"
)

type Inventory interface {
	CreateProduct(ctx context.Context, session *domain.Session, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, session *domain.Session, product *domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, session *domain.Session, id string) error
	GetProduct(ownerID, id string) (*domain.Product, error)
	ListProducts(ownerID string) ([]*domain.Product, error)
	GetByBarcode(ownerID, barcode string) (*domain.Product, error)
	SearchByName(ownerID, prefix string) ([]*domain.Product, error)
	LowStock(ownerID string) ([]*domain.Product, error)
}

type Cashier interface {
	Checkout(ctx context.Context, session *domain.Session, req *domain.CheckoutRequest) (*domain.Sale, error)
	CancelSale(ctx context.Context, session *domain.Session, saleID, reason string) (*domain.Sale, error)
	ListSales(operatorID string) ([]*domain.Sale, error)
	GetSale(id string) (*domain.Sale, error)
	NextSaleNumber(operatorID string) (int, error)
}

type Company interface {
	GetCompany(ctx context.Context, operatorID string) (*domain.Company, error)
	SaveCompany(operatorID string, company *domain.Company) (*domain.Company, error)
	GetFiscalConfig(ctx context.Context, operatorID string) (*domain.FiscalConfig, error)
	SaveFiscalConfig(operatorID string, cfg *domain.FiscalConfig) (*domain.FiscalConfig, error)
}

type Billing interface {
	Plans() []domain.Plan
	ListPayments(ctx context.Context, operatorID string) ([]*domain.Payment, error)
	CreatePayment(ctx context.Context, req *domain.CreatePaymentRequest) (*domain.Payment, error)
	ConfirmPayment(ctx context.Context, paymentID string) (*domain.Payment, error)
	DaysPurchasedTotal(operatorID string) (int, error)
}

type Admin interface {
	CreateOperator(ctx context.Context, req *domain.CreateOperatorRequest) (*domain.Operator, error)
	ListOperators(ctx context.Context) ([]*domain.Operator, error)
	GetOperator(ctx context.Context, id string) (*domain.Operator, error)
	UpdateOperator(ctx context.Context, req *domain.UpdateOperatorRequest) (*domain.Operator, error)
	SuspendOperator(ctx context.Context, id string) (*domain.Operator, error)
	ActivateOperator(ctx context.Context, id string, days int) (*domain.Operator, error)
	DeleteOperator(ctx context.Context, session *domain.Session, id string) error
	ListEarnings(ctx context.Context) ([]*domain.Earning, error)
	EarningsSummary(ctx context.Context) (*domain.EarningsSummary, error)
}

type Messaging interface {
	Send(ctx context.Context, session *domain.Session, operatorID, text string) (*domain.ChatMessage, error)
	History(ctx context.Context, session *domain.Session, operatorID string) ([]*domain.ChatMessage, error)
	MarkRead(ctx context.Context, session *domain.Session, operatorID string) error
}

type Syncer interface {
	TriggerManualSync() error
	GetStatus() map[string]any
}

// Services reúne os casos de uso expostos pela API.
// Access fica nil quando a aplicação roda sem banco remoto.
type Services struct {
	Auth      authenticating.Authenticator
	Access    accessing.AccessVerifier
	Inventory Inventory
	Checkout  Cashier
	Company   Company
	Billing   Billing
	Admin     Admin
	Messaging Messaging
	Sync      Syncer
}
