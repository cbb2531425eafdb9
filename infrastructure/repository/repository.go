package repository

import (
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/pdv-api/infrastructure/database/postgres"
)

const (
	operatorsTable = "operadores"
	productsTable  = "produtos"
	salesTable     = "vendas"
	messagesTable  = "mensagens_chat"
	earningsTable  = "ganhos_admin"
	companiesTable = "empresas"
	fiscalTable    = "config_nfce"
	paymentsTable  = "historico_pagamentos"
)

// Tabelas observadas pelo Watcher
const (
	TableOperators = operatorsTable
	TableProducts  = productsTable
	TableSales     = salesTable
	TableMessages  = messagesTable
)

var (
	// ErrRemoteUnavailable indica que o banco remoto não está configurado ou acessível
	ErrRemoteUnavailable = errors.New("banco remoto indisponível")
	// ErrConflict indica violação de unicidade no banco remoto
	ErrConflict = errors.New("registro já existe no banco remoto")
)

const uniqueViolation = "23505"

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// Gateway agrupa os repositórios do banco remoto compartilhado
type Gateway struct {
	Operators     OperatorRepository
	Products      ProductRepository
	Sales         SaleRepository
	Messages      MessageRepository
	Earnings      EarningRepository
	Companies     CompanyRepository
	FiscalConfigs FiscalConfigRepository
	Payments      PaymentRepository
	available     bool
}

func NewGateway(conn *postgres.Connection) *Gateway {
	return &Gateway{
		Operators:     NewOperatorRepository(conn),
		Products:      NewProductRepository(conn),
		Sales:         NewSaleRepository(conn),
		Messages:      NewMessageRepository(conn),
		Earnings:      NewEarningRepository(conn),
		Companies:     NewCompanyRepository(conn),
		FiscalConfigs: NewFiscalConfigRepository(conn),
		Payments:      NewPaymentRepository(conn),
		available:     true,
	}
}

// NewGatewayFrom monta um gateway disponível a partir de repositórios já construídos
func NewGatewayFrom(repos Gateway) *Gateway {
	repos.available = true
	return &repos
}

// Available informa se o gateway fala com um banco real
func (g *Gateway) Available() bool {
	return g.available
}
