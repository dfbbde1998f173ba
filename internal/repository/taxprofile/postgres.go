package taxprofile

import (
	"context"
	"errors"
	"fmt"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
	"clientdesk/internal/patch"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const profileColumns = `id::text, business_id::text, tax_type, frequency, start_date, start_year, start_quarter, created_at`

type postgresRepo struct{}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres() Repository {
	return &postgresRepo{}
}

func (r *postgresRepo) Insert(ctx context.Context, q db.Querier, p domain.TaxProfile) (*domain.TaxProfile, error) {
	const query = `
INSERT INTO tax_profiles (business_id, tax_type, frequency, start_date, start_year, start_quarter)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + profileColumns
	out, err := scanProfile(q.QueryRow(ctx, query,
		p.BusinessID,
		p.TaxType,
		p.Frequency,
		p.StartDate,
		p.StartYear,
		p.StartQuarter,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, q db.Querier, id string) (*domain.TaxProfile, error) {
	const query = `SELECT ` + profileColumns + ` FROM tax_profiles WHERE id = $1`
	return scanProfile(q.QueryRow(ctx, query, id))
}

func (r *postgresRepo) ListByBusiness(ctx context.Context, q db.Querier, businessID string) ([]domain.TaxProfile, error) {
	const query = `SELECT ` + profileColumns + ` FROM tax_profiles WHERE business_id = $1 ORDER BY tax_type ASC`
	rows, err := q.Query(ctx, query, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TaxProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) Update(ctx context.Context, q db.Querier, id string, b *patch.Builder) error {
	if b.Empty() {
		return nil
	}
	query := fmt.Sprintf(`UPDATE tax_profiles SET %s WHERE id = $1`, b.SetClause(2))
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
	cmd, err := q.Exec(ctx, `DELETE FROM tax_profiles WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanProfile(row pgx.Row) (*domain.TaxProfile, error) {
	var p domain.TaxProfile
	err := row.Scan(
		&p.ID,
		&p.BusinessID,
		&p.TaxType,
		&p.Frequency,
		&p.StartDate,
		&p.StartYear,
		&p.StartQuarter,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
