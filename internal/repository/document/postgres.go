package document

import (
	"context"
	"errors"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
	"github.com/jackc/pgx/v5"
)

const documentColumns = `id::text, tax_record_id::text, client_id::text, business_id::text,
       file_name, storage_key, checksum, note, uploaded_by, created_at`

type postgresRepo struct{}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres() Repository {
	return &postgresRepo{}
}

func (r *postgresRepo) Insert(ctx context.Context, q db.Querier, d domain.Document) (*domain.Document, error) {
	const query = `
INSERT INTO documents (tax_record_id, client_id, business_id, file_name, storage_key, checksum, note, uploaded_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + documentColumns
	return scanDocument(q.QueryRow(ctx, query,
		d.TaxRecordID,
		d.ClientID,
		d.BusinessID,
		d.FileName,
		d.StorageKey,
		d.Checksum,
		d.Note,
		d.UploadedBy,
	))
}

func (r *postgresRepo) GetByID(ctx context.Context, q db.Querier, id string) (*domain.Document, error) {
	const query = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(q.QueryRow(ctx, query, id))
}

func (r *postgresRepo) ListByTaxRecord(ctx context.Context, q db.Querier, taxRecordID string) ([]domain.Document, error) {
	const query = `SELECT ` + documentColumns + ` FROM documents WHERE tax_record_id = $1 ORDER BY created_at ASC`
	return listDocuments(ctx, q, query, taxRecordID)
}

func (r *postgresRepo) ListByClient(ctx context.Context, q db.Querier, clientID string) ([]domain.Document, error) {
	const query = `SELECT ` + documentColumns + ` FROM documents WHERE client_id = $1 ORDER BY created_at ASC`
	return listDocuments(ctx, q, query, clientID)
}

func (r *postgresRepo) ListByBusiness(ctx context.Context, q db.Querier, businessID string) ([]domain.Document, error) {
	const query = `SELECT ` + documentColumns + ` FROM documents WHERE business_id = $1 ORDER BY created_at ASC`
	return listDocuments(ctx, q, query, businessID)
}

func (r *postgresRepo) Delete(ctx context.Context, q db.Querier, id string) (int64, error) {
	cmd, err := q.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func listDocuments(ctx context.Context, q db.Querier, query string, ownerID string) ([]domain.Document, error) {
	rows, err := q.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
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

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var d domain.Document
	err := row.Scan(
		&d.ID,
		&d.TaxRecordID,
		&d.ClientID,
		&d.BusinessID,
		&d.FileName,
		&d.StorageKey,
		&d.Checksum,
		&d.Note,
		&d.UploadedBy,
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
