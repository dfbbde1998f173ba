package shareholder

import (
	"context"
	"errors"
	"fmt"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
	"clientdesk/internal/patch"
	"github.com/jackc/pgx/v5"
)

const shareholderColumns = `id::text, business_id::text, client_id::text, full_name, share_percentage, created_at`

type postgresRepo struct{}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres() Repository {
	return &postgresRepo{}
}

func (r *postgresRepo) Insert(ctx context.Context, q db.Querier, s domain.Shareholder) (*domain.Shareholder, error) {
	const query = `
INSERT INTO shareholders (business_id, client_id, full_name, share_percentage)
VALUES ($1, $2, $3, $4)
RETURNING ` + shareholderColumns
	return scanShareholder(q.QueryRow(ctx, query, s.BusinessID, s.ClientID, s.FullName, s.SharePercentage))
}

func (r *postgresRepo) GetByIDForUpdate(ctx context.Context, q db.Querier, id string) (*domain.Shareholder, error) {
	const query = `SELECT ` + shareholderColumns + ` FROM shareholders WHERE id = $1 FOR UPDATE`
	return scanShareholder(q.QueryRow(ctx, query, id))
}

func (r *postgresRepo) ListByBusiness(ctx context.Context, q db.Querier, businessID string) ([]domain.Shareholder, error) {
	const query = `SELECT ` + shareholderColumns + ` FROM shareholders WHERE business_id = $1 ORDER BY created_at ASC`
	rows, err := q.Query(ctx, query, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Shareholder
	for rows.Next() {
		s, err := scanShareholder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
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
	query := fmt.Sprintf(`UPDATE shareholders SET %s WHERE id = $1`, b.SetClause(2))
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
	cmd, err := q.Exec(ctx, `DELETE FROM shareholders WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanShareholder(row pgx.Row) (*domain.Shareholder, error) {
	var s domain.Shareholder
	err := row.Scan(
		&s.ID,
		&s.BusinessID,
		&s.ClientID,
		&s.FullName,
		&s.SharePercentage,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
