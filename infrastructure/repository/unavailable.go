package repository

import (
	"context"
	"time"

	"github.com/vfg2006/pdv-api/internal/domain"
)

// NewUnavailableGateway monta um gateway cujos métodos falham sempre com ErrRemoteUnavailable.
// Usado quando o banco remoto não está configurado; a aplicação segue apenas com o armazenamento local.
func NewUnavailableGateway() *Gateway {
	return &Gateway{
		Operators:     unavailableOperators{},
		Products:      unavailableProducts{},
		Sales:         unavailableSales{},
		Messages:      unavailableMessages{},
		Earnings:      unavailableEarnings{},
		Companies:     unavailableCompanies{},
		FiscalConfigs: unavailableFiscalConfigs{},
		Payments:      unavailablePayments{},
		available:     false,
	}
}

type unavailableOperators struct{}

func (unavailableOperators) List(context.Context) ([]*domain.Operator, error) {
	return nil, ErrRemoteUnavailable
}

func (unavailableOperators) GetByID(context.Context, string) (*domain.Operator, error) {
	return nil, ErrRemoteUnavailable
}

func (unavailableOperators) GetByEmail(context.Context, string) (*domain.Operator, error) {
	return nil, ErrRemoteUnavailable
}

func (unavailableOperators) Create(context.Context, *domain.Operator) error {
	return ErrRemoteUnavailable
}

func (unavailableOperators) Update(context.Context, *domain.Operator) error {
	return ErrRemoteUnavailable
}

func (unavailableOperators) Delete(context.Context, string) error {
	return ErrRemoteUnavailable
}

func (unavailableOperators) SuspendIfExpired(context.Context, string, time.Time) (bool, error) {
	return false, ErrRemoteUnavailable
}

type unavailableProducts struct{}

func (unavailableProducts) List(context.Context, string) ([]*domain.Product, error) {
	return nil, ErrRemoteUnavailable
}

func (unavailableProducts) GetByID(context.Context, string) (*domain.Product, error) {
	return nil, ErrRemoteUnavailable
}

func (unavailableProducts) Upsert(context.Context, *domain.Product) error {
	return ErrRemoteUnavailable
}

func (unavailableProducts) Delete(context.Context, string) error {
	return ErrRemoteUnavailable
}

type unavailableSales struct{}

func (unavailableSales) List(context.Context, string) ([]*domain.Sale, error) {
	return nil, ErrRemoteUnavailable
}

func (unavailableSales) GetByID(context.Context, string) (*domain.Sale, error) {
	return nil, ErrRemoteUnavailable
}

func (unavailableSales) Upsert(context.Context, *domain.Sale) error {
	return ErrRemoteUnavailable
}

type unavailableMessages struct{}

func (unavailableMessages) ListByOperator(context.Context, string) ([]*domain.ChatMessage, error) {
	return nil, ErrRemoteUnavailable
}

func (unavailableMessages) GetByID(context.Context, string) (*domain.ChatMessage, error) {
	return nil, ErrRemoteUnavailable
}

func (unavailableMessages) Create(context.Context, *domain.ChatMessage) error {
	return ErrRemoteUnavailable
}

func (unavailableMessages) MarkRead(context.Context, string, string) error {
	return ErrRemoteUnavailable
}

type unavailableEarnings struct{}

func (unavailableEarnings) List(context.Context) ([]*domain.Earning, error) {
	return nil, ErrRemoteUnavailable
}

func (unavailableEarnings) Create(context.Context, *domain.Earning) error {
	return ErrRemoteUnavailable
}

type unavailableCompanies struct{}

func (unavailableCompanies) Get(context.Context, string) (*domain.Company, error) {
	return nil, ErrRemoteUnavailable
}

func (unavailableCompanies) Upsert(context.Context, *domain.Company) error {
	return ErrRemoteUnavailable
}

type unavailableFiscalConfigs struct{}

func (unavailableFiscalConfigs) Get(context.Context, string) (*domain.FiscalConfig, error) {
	return nil, ErrRemoteUnavailable
}

func (unavailableFiscalConfigs) Upsert(context.Context, *domain.FiscalConfig) error {
	return ErrRemoteUnavailable
}

type unavailablePayments struct{}

func (unavailablePayments) ListByOperator(context.Context, string) ([]*domain.Payment, error) {
	return nil, ErrRemoteUnavailable
}

func (unavailablePayments) GetByID(context.Context, string) (*domain.Payment, error) {
	return nil, ErrRemoteUnavailable
}

func (unavailablePayments) Create(context.Context, *domain.Payment) error {
	return ErrRemoteUnavailable
}

func (unavailablePayments) Update(context.Context, *domain.Payment) error {
	return ErrRemoteUnavailable
}
