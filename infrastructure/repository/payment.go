package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/pdv-api/infrastructure/database/postgres"
	"github.com/vfg2006/pdv-api/internal/domain"
)

var paymentColumns = []string{
	"id", "usuario_id", "referencia", "valor", "data_vencimento", "data_pagamento", "status",
	"forma_pagamento", "dias_comprados", "tipo_compra", "created_at",
}

type PaymentRepository interface {
	ListByOperator(ctx context.Context, operatorID string) ([]*domain.Payment, error)
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	Create(ctx context.Context, payment *domain.Payment) error
	Update(ctx context.Context, payment *domain.Payment) error
}

type paymentRepository struct {
	conn *postgres.Connection
}

func NewPaymentRepository(conn *postgres.Connection) PaymentRepository {
	return &paymentRepository{
		conn: conn,
	}
}

func scanPayment(row interface{ Scan(...any) error }) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(
		&p.ID,
		&p.OperatorID,
		&p.Reference,
		&p.Amount,
		&p.DueDate,
		&p.PaidAt,
		&p.Status,
		&p.Method,
		&p.DaysPurchased,
		&p.PurchaseType,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) ListByOperator(ctx context.Context, operatorID string) ([]*domain.Payment, error) {
	query, args, err := psql.
		Select(paymentColumns...).
		From(paymentsTable).
		Where(squirrel.Eq{"usuario_id": operatorID}).
		OrderBy("data_vencimento DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir consulta: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar pagamentos: %w", err)
	}
	defer rows.Close()

	payments := make([]*domain.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao processar pagamento: %w", err)
		}
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante iteração: %w", err)
	}

	return payments, nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query, args, err := psql.Select(paymentColumns...).From(paymentsTable).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir consulta: %w", err)
	}

	p, err := scanPayment(r.conn.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar pagamento: %w", err)
	}

	return p, nil
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query, args, err := psql.
		Insert(paymentsTable).
		Columns(paymentColumns...).
		Values(
			p.ID, p.OperatorID, p.Reference, p.Amount, p.DueDate, p.PaidAt, string(p.Status),
			p.Method, p.DaysPurchased, p.PurchaseType, p.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir consulta: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("erro ao registrar pagamento: %w", err)
	}

	return nil
}

func (r *paymentRepository) Update(ctx context.Context, p *domain.Payment) error {
	query, args, err := psql.
		Update(paymentsTable).
		Set("valor", p.Amount).
		Set("data_vencimento", p.DueDate).
		Set("data_pagamento", p.PaidAt).
		Set("status", string(p.Status)).
		Set("forma_pagamento", p.Method).
		Set("dias_comprados", p.DaysPurchased).
		Where(squirrel.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir consulta: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("erro ao atualizar pagamento: %w", err)
	}

	return nil
}
