package address

import (
	"context"
	"errors"
	"fmt"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
	"clientdesk/internal/patch"
	"github.com/jackc/pgx/v5"
)

const addressColumns = `id::text, client_id::text, business_id::text, line1, line2, city, province,
       postal_code, country, is_primary, is_mailing, created_at`

type postgresRepo struct{}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres() Repository {
	return &postgresRepo{}
}

func (r *postgresRepo) Insert(ctx context.Context, q db.Querier, a domain.Address) (*domain.Address, error) {
	const query = `
INSERT INTO addresses (client_id, business_id, line1, line2, city, province, postal_code, country, is_primary, is_mailing)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + addressColumns
	return scanAddress(q.QueryRow(ctx, query,
		a.ClientID,
		a.BusinessID,
		a.Line1,
		a.Line2,
		a.City,
		a.Province,
		a.PostalCode,
		a.Country,
		a.IsPrimary,
		a.IsMailing,
	))
}

func (r *postgresRepo) GetByID(ctx context.Context, q db.Querier, id string) (*domain.Address, error) {
	const query = `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1`
	return scanAddress(q.QueryRow(ctx, query, id))
}

func (r *postgresRepo) ListByClient(ctx context.Context, q db.Querier, clientID string) ([]domain.Address, error) {
	const query = `
SELECT ` + addressColumns + `
FROM addresses
WHERE client_id = $1
ORDER BY is_primary DESC, is_mailing DESC, created_at ASC`
	return listAddresses(ctx, q, query, clientID)
}

func (r *postgresRepo) ListByBusiness(ctx context.Context, q db.Querier, businessID string) ([]domain.Address, error) {
	const query = `
SELECT ` + addressColumns + `
FROM addresses
WHERE business_id = $1
ORDER BY is_primary DESC, is_mailing DESC, created_at ASC`
	return listAddresses(ctx, q, query, businessID)
}

func (r *postgresRepo) GetPrimaryByBusiness(ctx context.Context, q db.Querier, businessID string) (*domain.Address, error) {
	const query = `SELECT ` + addressColumns + ` FROM addresses WHERE business_id = $1 AND is_primary LIMIT 1`
	return scanAddress(q.QueryRow(ctx, query, businessID))
}

func (r *postgresRepo) GetMailingByBusiness(ctx context.Context, q db.Querier, businessID string) (*domain.Address, error) {
	const query = `SELECT ` + addressColumns + ` FROM addresses WHERE business_id = $1 AND is_mailing LIMIT 1`
	return scanAddress(q.QueryRow(ctx, query, businessID))
}

func (r *postgresRepo) GetPrimaryByClient(ctx context.Context, q db.Querier, clientID string) (*domain.Address, error) {
	const query = `SELECT ` + addressColumns + ` FROM addresses WHERE client_id = $1 AND is_primary LIMIT 1`
	return scanAddress(q.QueryRow(ctx, query, clientID))
}

func (r *postgresRepo) Update(ctx context.Context, q db.Querier, id string, b *patch.Builder) error {
	if b.Empty() {
		return nil
	}
	query := fmt.Sprintf(`UPDATE addresses SET %s WHERE id = $1`, b.SetClause(2))
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

func (r *postgresRepo) ClearPrimary(ctx context.Context, q db.Querier, clientID, businessID *string) error {
	if clientID != nil {
		_, err := q.Exec(ctx, `UPDATE addresses SET is_primary = false WHERE client_id = $1 AND is_primary`, *clientID)
		return err
	}
	if businessID != nil {
		_, err := q.Exec(ctx, `UPDATE addresses SET is_primary = false WHERE business_id = $1 AND is_primary`, *businessID)
		return err
	}
	return nil
}

func (r *postgresRepo) ClearMailing(ctx context.Context, q db.Querier, businessID string) error {
	_, err := q.Exec(ctx, `UPDATE addresses SET is_mailing = false WHERE business_id = $1 AND is_mailing`, businessID)
	return err
}

func (r *postgresRepo) Delete(ctx context.Context, q db.Querier, id string) (int64, error) {
	cmd, err := q.Exec(ctx, `DELETE FROM addresses WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func listAddresses(ctx context.Context, q db.Querier, query string, ownerID string) ([]domain.Address, error) {
	rows, err := q.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanAddress(row pgx.Row) (*domain.Address, error) {
	var a domain.Address
	err := row.Scan(
		&a.ID,
		&a.ClientID,
		&a.BusinessID,
		&a.Line1,
		&a.Line2,
		&a.City,
		&a.Province,
		&a.PostalCode,
		&a.Country,
		&a.IsPrimary,
		&a.IsMailing,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
