package repository

import (
	"context"
	"fmt"

	"github.com/vfg2006/pdv-api/infrastructure/database/postgres"
	"github.com/vfg2006/pdv-api/internal/domain"
)

var earningColumns = []string{
	"id", "tipo", "operador_id", "operador_nome", "valor", "forma_pagamento", "descricao", "created_at",
}

type EarningRepository interface {
	List(ctx context.Context) ([]*domain.Earning, error)
	Create(ctx context.Context, earning *domain.Earning) error
}

type earningRepository struct {
	conn *postgres.Connection
}

func NewEarningRepository(conn *postgres.Connection) EarningRepository {
	return &earningRepository{
		conn: conn,
	}
}

func (r *earningRepository) List(ctx context.Context) ([]*domain.Earning, error) {
	query, args, err := psql.Select(earningColumns...).From(earningsTable).OrderBy("created_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir consulta: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar ganhos: %w", err)
	}
	defer rows.Close()

	earnings := make([]*domain.Earning, 0)
	for rows.Next() {
		var e domain.Earning
		if err := rows.Scan(
			&e.ID,
			&e.Kind,
			&e.OperatorID,
			&e.OperatorName,
			&e.Amount,
			&e.PaymentMethod,
			&e.Description,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("erro ao processar ganho: %w", err)
		}
		earnings = append(earnings, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante iteração: %w", err)
	}

	return earnings, nil
}

// Create acrescenta um lançamento; o livro de ganhos não aceita alterações
func (r *earningRepository) Create(ctx context.Context, e *domain.Earning) error {
	query, args, err := psql.
		Insert(earningsTable).
		Columns(earningColumns...).
		Values(e.ID, string(e.Kind), e.OperatorID, e.OperatorName, e.Amount, e.PaymentMethod, e.Description, e.CreatedAt).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir consulta: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("erro ao gravar ganho: %w", err)
	}

	return nil
}
