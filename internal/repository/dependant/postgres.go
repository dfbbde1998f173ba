package dependant

import (
	"context"
	"errors"
	"fmt"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
	"clientdesk/internal/patch"
	"github.com/jackc/pgx/v5"
)

const dependantColumns = `id::text, client_id::text, first_name, last_name, date_of_birth,
       relationship, same_address, address_id::text, created_at`

type postgresRepo struct{}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres() Repository {
	return &postgresRepo{}
}

func (r *postgresRepo) Insert(ctx context.Context, q db.Querier, d domain.Dependant) (*domain.Dependant, error) {
	const query = `
INSERT INTO dependants (client_id, first_name, last_name, date_of_birth, relationship, same_address, address_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + dependantColumns
	return scanDependant(q.QueryRow(ctx, query,
		d.ClientID,
		d.FirstName,
		d.LastName,
		d.DateOfBirth,
		d.Relationship,
		d.SameAddress,
		d.AddressID,
	))
}

func (r *postgresRepo) GetByIDForUpdate(ctx context.Context, q db.Querier, id string) (*domain.Dependant, error) {
	const query = `SELECT ` + dependantColumns + ` FROM dependants WHERE id = $1 FOR UPDATE`
	return scanDependant(q.QueryRow(ctx, query, id))
}

func (r *postgresRepo) ListByClient(ctx context.Context, q db.Querier, clientID string) ([]domain.Dependant, error) {
	const query = `SELECT ` + dependantColumns + ` FROM dependants WHERE client_id = $1 ORDER BY created_at ASC`
	rows, err := q.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Dependant
	for rows.Next() {
		d, err := scanDependant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
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
	query := fmt.Sprintf(`UPDATE dependants SET %s WHERE id = $1`, b.SetClause(2))
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
	cmd, err := q.Exec(ctx, `DELETE FROM dependants WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanDependant(row pgx.Row) (*domain.Dependant, error) {
	var d domain.Dependant
	err := row.Scan(
		&d.ID,
		&d.ClientID,
		&d.FirstName,
		&d.LastName,
		&d.DateOfBirth,
		&d.Relationship,
		&d.SameAddress,
		&d.AddressID,
		&d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}
