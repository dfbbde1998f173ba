package note

import (
	"context"
	"errors"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
	"github.com/jackc/pgx/v5"
)

const noteColumns = `id::text, client_id::text, business_id::text, tax_record_id::text,
       body, created_by, created_at, updated_at`

type postgresRepo struct{}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres() Repository {
	return &postgresRepo{}
}

func (r *postgresRepo) Insert(ctx context.Context, q db.Querier, n domain.Note) (*domain.Note, error) {
	const query = `
INSERT INTO notes (client_id, business_id, tax_record_id, body, created_by)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + noteColumns
	return scanNote(q.QueryRow(ctx, query, n.ClientID, n.BusinessID, n.TaxRecordID, n.Body, n.CreatedBy))
}

func (r *postgresRepo) GetByID(ctx context.Context, q db.Querier, id string) (*domain.Note, error) {
	const query = `SELECT ` + noteColumns + ` FROM notes WHERE id = $1`
	return scanNote(q.QueryRow(ctx, query, id))
}

func (r *postgresRepo) ListByClient(ctx context.Context, q db.Querier, clientID string) ([]domain.Note, error) {
	const query = `SELECT ` + noteColumns + ` FROM notes WHERE client_id = $1 ORDER BY created_at DESC`
	return listNotes(ctx, q, query, clientID)
}

func (r *postgresRepo) ListByBusiness(ctx context.Context, q db.Querier, businessID string) ([]domain.Note, error) {
	const query = `SELECT ` + noteColumns + ` FROM notes WHERE business_id = $1 ORDER BY created_at DESC`
	return listNotes(ctx, q, query, businessID)
}

func (r *postgresRepo) ListByTaxRecord(ctx context.Context, q db.Querier, taxRecordID string) ([]domain.Note, error) {
	const query = `SELECT ` + noteColumns + ` FROM notes WHERE tax_record_id = $1 ORDER BY created_at DESC`
	return listNotes(ctx, q, query, taxRecordID)
}

func (r *postgresRepo) UpdateBody(ctx context.Context, q db.Querier, id, body string) (*domain.Note, error) {
	const query = `
UPDATE notes SET body = $2, updated_at = now()
WHERE id = $1
RETURNING ` + noteColumns
	return scanNote(q.QueryRow(ctx, query, id, body))
}

func (r *postgresRepo) Delete(ctx context.Context, q db.Querier, id string) (int64, error) {
	cmd, err := q.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func listNotes(ctx context.Context, q db.Querier, query string, ownerID string) ([]domain.Note, error) {
	rows, err := q.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanNote(row pgx.Row) (*domain.Note, error) {
	var n domain.Note
	err := row.Scan(
		&n.ID,
		&n.ClientID,
		&n.BusinessID,
		&n.TaxRecordID,
		&n.Body,
		&n.CreatedBy,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}
