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

var companyColumns = []string{
	"operador_id", "razao_social", "nome_fantasia", "cnpj", "inscricao_estadual", "endereco",
	"numero", "bairro", "cidade", "estado", "cep", "telefone", "email", "updated_at",
}

var fiscalColumns = []string{
	"operador_id", "serie", "proximo_numero", "ambiente", "csc_id", "csc_token",
	"aliquota_icms", "aliquota_pis", "aliquota_cofins", "updated_at",
}

type CompanyRepository interface {
	Get(ctx context.Context, operatorID string) (*domain.Company, error)
	Upsert(ctx context.Context, company *domain.Company) error
}

type FiscalConfigRepository interface {
	Get(ctx context.Context, operatorID string) (*domain.FiscalConfig, error)
	Upsert(ctx context.Context, cfg *domain.FiscalConfig) error
}

type companyRepository struct {
	conn *postgres.Connection
}

func NewCompanyRepository(conn *postgres.Connection) CompanyRepository {
	return &companyRepository{
		conn: conn,
	}
}

func (r *companyRepository) Get(ctx context.Context, operatorID string) (*domain.Company, error) {
	query, args, err := psql.Select(companyColumns...).From(companiesTable).Where(squirrel.Eq{"operador_id": operatorID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir consulta: %w", err)
	}

	var c domain.Company
	err = r.conn.QueryRowContext(ctx, query, args...).Scan(
		&c.OperatorID,
		&c.Name,
		&c.TradeName,
		&c.CNPJ,
		&c.StateRegistration,
		&c.Address,
		&c.Number,
		&c.District,
		&c.City,
		&c.State,
		&c.ZipCode,
		&c.Phone,
		&c.Email,
		&c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar empresa: %w", err)
	}

	return &c, nil
}

func (r *companyRepository) Upsert(ctx context.Context, c *domain.Company) error {
	query, args, err := psql.
		Insert(companiesTable).
		Columns(companyColumns...).
		Values(
			c.OperatorID, c.Name, c.TradeName, c.CNPJ, c.StateRegistration, c.Address,
			c.Number, c.District, c.City, c.State, c.ZipCode, c.Phone, c.Email, c.UpdatedAt,
		).
		Suffix(`ON CONFLICT (operador_id) DO UPDATE SET
			razao_social = EXCLUDED.razao_social,
			nome_fantasia = EXCLUDED.nome_fantasia,
			cnpj = EXCLUDED.cnpj,
			inscricao_estadual = EXCLUDED.inscricao_estadual,
			endereco = EXCLUDED.endereco,
			numero = EXCLUDED.numero,
			bairro = EXCLUDED.bairro,
			cidade = EXCLUDED.cidade,
			estado = EXCLUDED.estado,
			cep = EXCLUDED.cep,
			telefone = EXCLUDED.telefone,
			email = EXCLUDED.email,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir consulta: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("erro ao gravar empresa: %w", err)
	}

	return nil
}

type fiscalConfigRepository struct {
	conn *postgres.Connection
}

func NewFiscalConfigRepository(conn *postgres.Connection) FiscalConfigRepository {
	return &fiscalConfigRepository{
		conn: conn,
	}
}

func (r *fiscalConfigRepository) Get(ctx context.Context, operatorID string) (*domain.FiscalConfig, error) {
	query, args, err := psql.Select(fiscalColumns...).From(fiscalTable).Where(squirrel.Eq{"operador_id": operatorID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir consulta: %w", err)
	}

	var f domain.FiscalConfig
	err = r.conn.QueryRowContext(ctx, query, args...).Scan(
		&f.OperatorID,
		&f.Series,
		&f.NextNumber,
		&f.Environment,
		&f.CSCID,
		&f.CSCToken,
		&f.ICMSRate,
		&f.PISRate,
		&f.COFINSRate,
		&f.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar configuração fiscal: %w", err)
	}

	return &f, nil
}

func (r *fiscalConfigRepository) Upsert(ctx context.Context, f *domain.FiscalConfig) error {
	query, args, err := psql.
		Insert(fiscalTable).
		Columns(fiscalColumns...).
		Values(
			f.OperatorID, f.Series, f.NextNumber, f.Environment, f.CSCID, f.CSCToken,
			f.ICMSRate, f.PISRate, f.COFINSRate, f.UpdatedAt,
		).
		Suffix(`ON CONFLICT (operador_id) DO UPDATE SET
			serie = EXCLUDED.serie,
			proximo_numero = EXCLUDED.proximo_numero,
			ambiente = EXCLUDED.ambiente,
			csc_id = EXCLUDED.csc_id,
			csc_token = EXCLUDED.csc_token,
			aliquota_icms = EXCLUDED.aliquota_icms,
			aliquota_pis = EXCLUDED.aliquota_pis,
			aliquota_cofins = EXCLUDED.aliquota_cofins,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir consulta: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("erro ao gravar configuração fiscal: %w", err)
	}

	return nil
}
