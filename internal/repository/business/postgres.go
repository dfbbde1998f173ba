package business

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
	"clientdesk/internal/patch"
	"github.com/jackc/pgx/v5"
)

const businessColumns = `id::text, name, business_number, incorporation_date, incorporation_number,
       email, phone, created_by, created_at, updated_at`

type postgresRepo struct {
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{logger: logger}
}

func (r *postgresRepo) Insert(ctx context.Context, q db.Querier, b domain.Business) (*domain.Business, error) {
	const query = `
INSERT INTO businesses (name, business_number, incorporation_date, incorporation_number, email, phone, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + businessColumns
	return r.scanBusiness(q.QueryRow(ctx, query,
		b.Name,
		b.BusinessNumber,
		b.IncorporationDate,
		b.IncorporationNumber,
		b.Email,
		b.Phone,
		b.CreatedBy,
	))
}

func (r *postgresRepo) GetByID(ctx context.Context, q db.Querier, id string) (*domain.Business, error) {
	const query = `SELECT ` + businessColumns + ` FROM businesses WHERE id = $1`
	return r.scanBusiness(q.QueryRow(ctx, query, id))
}

func (r *postgresRepo) GetByIDForUpdate(ctx context.Context, q db.Querier, id string) (*domain.Business, error) {
	const query = `SELECT ` + businessColumns + ` FROM businesses WHERE id = $1 FOR UPDATE`
	return r.scanBusiness(q.QueryRow(ctx, query, id))
}

func (r *postgresRepo) List(ctx context.Context, q db.Querier, p ListParams) ([]domain.Business, int, error) {
	sortCol := p.SortColumn
	if sortCol == "" {
		sortCol = "created_at"
	}
	dir := "ASC"
	if p.SortDesc {
		dir = "DESC"
	}

	var total int
	const countQuery = `
SELECT count(*) FROM businesses
WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR business_number ILIKE '%' || $1 || '%'`
	if err := q.QueryRow(ctx, countQuery, p.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
SELECT `+businessColumns+`
FROM businesses
WHERE $1 = '' OR name ILIKE '%%' || $1 || '%%' OR business_number ILIKE '%%' || $1 || '%%'
ORDER BY %s %s
LIMIT $2 OFFSET $3`, sortCol, dir)

	rows, err := q.Query(ctx, query, p.Search, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Business
	for rows.Next() {
		b, err := r.scanBusiness(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *postgresRepo) Update(ctx context.Context, q db.Querier, id string, b *patch.Builder) error {
	if b.Empty() {
		return nil
	}
	query := fmt.Sprintf(`UPDATE businesses SET %s, updated_at = now() WHERE id = $1`, b.SetClause(2))
	args := append([]any{id}, b.Args()...)
	cmd, err := q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, q db.Querier, id string) (int64, error) {
	cmd, err := q.Exec(ctx, `DELETE FROM businesses WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *postgresRepo) scanBusiness(row pgx.Row) (*domain.Business, error) {
	var b domain.Business
	err := row.Scan(
		&b.ID,
		&b.Name,
		&b.BusinessNumber,
		&b.IncorporationDate,
		&b.IncorporationNumber,
		&b.Email,
		&b.Phone,
		&b.CreatedBy,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("business repo: scan error=%v", err)
		return nil, err
	}
	return &b, nil
}
