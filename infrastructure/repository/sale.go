package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/pdv-api/infrastructure/database/postgres"
	"github.com/vfg2006/pdv-api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var saleColumns = []string{
	"id", "numero", "operador_id", "operador_nome", "itens", "total", "forma_pagamento",
	"status", "motivo_cancelamento", "cancelada_em", "created_at",
}

type SaleRepository interface {
	List(ctx context.Context, operatorID string) ([]*domain.Sale, error)
	GetByID(ctx context.Context, id string) (*domain.Sale, error)
	Upsert(ctx context.Context, sale *domain.Sale) error
}

type saleRepository struct {
	conn *postgres.Connection
}

func NewSaleRepository(conn *postgres.Connection) SaleRepository {
	return &saleRepository{
		conn: conn,
	}
}

func scanSale(row interface{ Scan(...any) error }) (*domain.Sale, error) {
	var (
		s     domain.Sale
		items []byte
	)
	err := row.Scan(
		&s.ID,
		&s.Number,
		&s.OperatorID,
		&s.OperatorName,
		&items,
		&s.Total,
		&s.PaymentMethod,
		&s.Status,
		&s.CancelReason,
		&s.CancelledAt,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(items) > 0 {
		if err := json.Unmarshal(items, &s.Items); err != nil {
			return nil, fmt.Errorf("itens da venda %s inválidos: %w", s.ID, err)
		}
	}

	return &s, nil
}

func listSalesQuery(operatorID string) squirrel.SelectBuilder {
	query := psql.Select(saleColumns...).From(salesTable).OrderBy("created_at DESC")
	if operatorID != "" {
		query = query.Where(squirrel.Eq{"operador_id": operatorID})
	}
	return query
}

// List devolve as vendas do operador informado; vazio lista todas
func (r *saleRepository) List(ctx context.Context, operatorID string) ([]*domain.Sale, error) {
	query, args, err := listSalesQuery(operatorID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir consulta: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar vendas: %w", err)
	}
	defer rows.Close()

	sales := make([]*domain.Sale, 0)
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao processar venda: %w", err)
		}
		sales = append(sales, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante iteração: %w", err)
	}

	return sales, nil
}

func (r *saleRepository) GetByID(ctx context.Context, id string) (*domain.Sale, error) {
	query, args, err := psql.Select(saleColumns...).From(salesTable).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir consulta: %w", err)
	}

	s, err := scanSale(r.conn.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar venda: %w", err)
	}

	return s, nil
}

func upsertSaleQuery(s *domain.Sale) (squirrel.InsertBuilder, error) {
	items := s.Items
	if items == nil {
		items = []domain.SaleItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return squirrel.InsertBuilder{}, fmt.Errorf("erro ao serializar itens: %w", err)
	}

	return psql.
		Insert(salesTable).
		Columns(saleColumns...).
		Values(
			s.ID, s.Number, s.OperatorID, s.OperatorName, string(payload), s.Total, s.PaymentMethod,
			string(s.Status), s.CancelReason, s.CancelledAt, s.CreatedAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			itens = EXCLUDED.itens,
			total = EXCLUDED.total,
			forma_pagamento = EXCLUDED.forma_pagamento,
			status = EXCLUDED.status,
			motivo_cancelamento = EXCLUDED.motivo_cancelamento,
			cancelada_em = EXCLUDED.cancelada_em`), nil
}

// Upsert grava a venda com os itens numa única instrução
func (r *saleRepository) Upsert(ctx context.Context, s *domain.Sale) error {
	builder, err := upsertSaleQuery(s)
	if err != nil {
		return err
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir consulta: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("erro ao gravar venda %s: %w", s.ID, err)
	}

	return nil
}
