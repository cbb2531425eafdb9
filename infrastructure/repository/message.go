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

var messageColumns = []string{"id", "operador_id", "remetente", "texto", "lida", "created_at"}

type MessageRepository interface {
	ListByOperator(ctx context.Context, operatorID string) ([]*domain.ChatMessage, error)
	GetByID(ctx context.Context, id string) (*domain.ChatMessage, error)
	Create(ctx context.Context, msg *domain.ChatMessage) error
	MarkRead(ctx context.Context, operatorID, reader string) error
}

type messageRepository struct {
	conn *postgres.Connection
}

func NewMessageRepository(conn *postgres.Connection) MessageRepository {
	return &messageRepository{
		conn: conn,
	}
}

func scanMessage(row interface{ Scan(...any) error }) (*domain.ChatMessage, error) {
	var m domain.ChatMessage
	if err := row.Scan(&m.ID, &m.OperatorID, &m.Sender, &m.Text, &m.Read, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *messageRepository) ListByOperator(ctx context.Context, operatorID string) ([]*domain.ChatMessage, error) {
	query, args, err := psql.
		Select(messageColumns...).
		From(messagesTable).
		Where(squirrel.Eq{"operador_id": operatorID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir consulta: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar mensagens: %w", err)
	}
	defer rows.Close()

	msgs := make([]*domain.ChatMessage, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao processar mensagem: %w", err)
		}
		msgs = append(msgs, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante iteração: %w", err)
	}

	return msgs, nil
}

func (r *messageRepository) GetByID(ctx context.Context, id string) (*domain.ChatMessage, error) {
	query, args, err := psql.Select(messageColumns...).From(messagesTable).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir consulta: %w", err)
	}

	m, err := scanMessage(r.conn.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar mensagem: %w", err)
	}

	return m, nil
}

// Create é idempotente pelo id, para permitir o reenvio de mensagens pendentes
func (r *messageRepository) Create(ctx context.Context, m *domain.ChatMessage) error {
	query, args, err := psql.
		Insert(messagesTable).
		Columns(messageColumns...).
		Values(m.ID, m.OperatorID, m.Sender, m.Text, m.Read, m.CreatedAt).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir consulta: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("erro ao gravar mensagem: %w", err)
	}

	return nil
}

// MarkRead marca como lidas as mensagens da conversa que não foram enviadas por reader
func (r *messageRepository) MarkRead(ctx context.Context, operatorID, reader string) error {
	query, args, err := markReadQuery(operatorID, reader).ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir consulta: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("erro ao marcar mensagens como lidas: %w", err)
	}

	return nil
}

func markReadQuery(operatorID, reader string) squirrel.UpdateBuilder {
	return psql.
		Update(messagesTable).
		Set("lida", true).
		Where(squirrel.Eq{"operador_id": operatorID, "lida": false}).
		Where(squirrel.NotEq{"remetente": reader})
}
