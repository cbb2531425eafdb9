package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/pdv-api/infrastructure/database/postgres"
	"github.com/vfg2006/pdv-api/internal/domain"
)

var operatorColumns = []string{
	"id", "nome", "email", "senha", "is_admin", "ativo", "suspenso", "aguardando_pagamento",
	"forma_pagamento", "valor_mensal", "data_proximo_vencimento", "dias_assinatura",
	"data_pagamento", "created_at", "updated_at",
}

type OperatorRepository interface {
	List(ctx context.Context) ([]*domain.Operator, error)
	GetByID(ctx context.Context, id string) (*domain.Operator, error)
	GetByEmail(ctx context.Context, email string) (*domain.Operator, error)
	Create(ctx context.Context, operator *domain.Operator) error
	Update(ctx context.Context, operator *domain.Operator) error
	Delete(ctx context.Context, id string) error
	SuspendIfExpired(ctx context.Context, id string, today time.Time) (bool, error)
}

type operatorRepository struct {
	conn *postgres.Connection
}

func NewOperatorRepository(conn *postgres.Connection) OperatorRepository {
	return &operatorRepository{
		conn: conn,
	}
}

func scanOperator(row interface{ Scan(...any) error }) (*domain.Operator, error) {
	var op domain.Operator
	err := row.Scan(
		&op.ID,
		&op.Name,
		&op.Email,
		&op.Password,
		&op.IsAdmin,
		&op.Active,
		&op.Suspended,
		&op.AwaitingPayment,
		&op.PaymentMethod,
		&op.MonthlyValue,
		&op.NextDueDate,
		&op.SubscriptionDays,
		&op.PaymentDate,
		&op.CreatedAt,
		&op.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *operatorRepository) List(ctx context.Context) ([]*domain.Operator, error) {
	query, args, err := psql.Select(operatorColumns...).From(operatorsTable).OrderBy("nome ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir consulta: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar operadores: %w", err)
	}
	defer rows.Close()

	operators := make([]*domain.Operator, 0)
	for rows.Next() {
		op, err := scanOperator(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao processar operador: %w", err)
		}
		operators = append(operators, op)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante iteração: %w", err)
	}

	return operators, nil
}

func (r *operatorRepository) GetByID(ctx context.Context, id string) (*domain.Operator, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id})
}

func (r *operatorRepository) GetByEmail(ctx context.Context, email string) (*domain.Operator, error) {
	return r.getBy(ctx, squirrel.Eq{"email": email})
}

func (r *operatorRepository) getBy(ctx context.Context, where squirrel.Eq) (*domain.Operator, error) {
	query, args, err := psql.Select(operatorColumns...).From(operatorsTable).Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir consulta: %w", err)
	}

	op, err := scanOperator(r.conn.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar operador: %w", err)
	}

	return op, nil
}

func (r *operatorRepository) Create(ctx context.Context, op *domain.Operator) error {
	query, args, err := psql.
		Insert(operatorsTable).
		Columns(operatorColumns...).
		Values(
			op.ID, op.Name, op.Email, op.Password, op.IsAdmin, op.Active, op.Suspended,
			op.AwaitingPayment, op.PaymentMethod, op.MonthlyValue, op.NextDueDate,
			op.SubscriptionDays, op.PaymentDate, op.CreatedAt, op.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir consulta: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("erro ao criar operador: %w", err)
	}

	return nil
}

func (r *operatorRepository) Update(ctx context.Context, op *domain.Operator) error {
	query, args, err := psql.
		Update(operatorsTable).
		SetMap(map[string]any{
			"nome":                    op.Name,
			"email":                   op.Email,
			"senha":                   op.Password,
			"is_admin":                op.IsAdmin,
			"ativo":                   op.Active,
			"suspenso":                op.Suspended,
			"aguardando_pagamento":    op.AwaitingPayment,
			"forma_pagamento":         op.PaymentMethod,
			"valor_mensal":            op.MonthlyValue,
			"data_proximo_vencimento": op.NextDueDate,
			"dias_assinatura":         op.SubscriptionDays,
			"data_pagamento":          op.PaymentDate,
			"updated_at":              op.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": op.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir consulta: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("erro ao atualizar operador: %w", err)
	}

	return nil
}

func (r *operatorRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete(operatorsTable).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir consulta: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("erro ao remover operador: %w", err)
	}

	return nil
}

func suspendIfExpiredQuery(id string, today time.Time) squirrel.UpdateBuilder {
	return psql.
		Update(operatorsTable).
		Set("ativo", false).
		Set("suspenso", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Lt{"data_proximo_vencimento": today}).
		Where(squirrel.Or{squirrel.Eq{"ativo": true}, squirrel.Eq{"suspenso": false}})
}

// SuspendIfExpired suspende o operador numa única escrita condicional.
// Devolve true apenas quando esta chamada mudou o registro.
func (r *operatorRepository) SuspendIfExpired(ctx context.Context, id string, today time.Time) (bool, error) {
	query, args, err := suspendIfExpiredQuery(id, today).ToSql()
	if err != nil {
		return false, fmt.Errorf("erro ao construir consulta: %w", err)
	}

	result, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("erro ao suspender operador: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("erro ao ler linhas afetadas: %w", err)
	}

	return affected > 0, nil
}
