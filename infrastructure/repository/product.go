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

var productColumns = []string{
	"id", "user_id", "nome", "codigo_barras", "preco", "estoque", "estoque_minimo",
	"categoria", "descricao", "created_at", "updated_at",
}

type ProductRepository interface {
	List(ctx context.Context, userID string) ([]*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Upsert(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
}

type productRepository struct {
	conn *postgres.Connection
}

func NewProductRepository(conn *postgres.Connection) ProductRepository {
	return &productRepository{
		conn: conn,
	}
}

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Barcode,
		&p.Price,
		&p.Stock,
		&p.MinStock,
		&p.Category,
		&p.Description,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func listProductsQuery(userID string) squirrel.SelectBuilder {
	query := psql.Select(productColumns...).From(productsTable).OrderBy("nome ASC")
	if userID != "" {
		query = query.Where(squirrel.Eq{"user_id": userID})
	}
	return query
}

// List devolve os produtos do dono informado; vazio lista todos
func (r *productRepository) List(ctx context.Context, userID string) ([]*domain.Product, error) {
	query, args, err := listProductsQuery(userID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir consulta: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar produtos: %w", err)
	}
	defer rows.Close()

	products := make([]*domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao processar produto: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante iteração: %w", err)
	}

	return products, nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query, args, err := psql.Select(productColumns...).From(productsTable).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir consulta: %w", err)
	}

	p, err := scanProduct(r.conn.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar produto: %w", err)
	}

	return p, nil
}

func upsertProductQuery(p *domain.Product) squirrel.InsertBuilder {
	return psql.
		Insert(productsTable).
		Columns(productColumns...).
		Values(
			p.ID, p.UserID, p.Name, p.Barcode, p.Price, p.Stock, p.MinStock,
			p.Category, p.Description, p.CreatedAt, p.UpdatedAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			nome = EXCLUDED.nome,
			codigo_barras = EXCLUDED.codigo_barras,
			preco = EXCLUDED.preco,
			estoque = EXCLUDED.estoque,
			estoque_minimo = EXCLUDED.estoque_minimo,
			categoria = EXCLUDED.categoria,
			descricao = EXCLUDED.descricao,
			updated_at = EXCLUDED.updated_at`)
}

func (r *productRepository) Upsert(ctx context.Context, p *domain.Product) error {
	query, args, err := upsertProductQuery(p).ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir consulta: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("erro ao gravar produto %s: %w", p.ID, err)
	}

	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete(productsTable).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir consulta: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("erro ao remover produto: %w", err)
	}

	return nil
}
