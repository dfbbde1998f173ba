package taxrecord

import (
	"context"
	"errors"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const recordColumns = `id::text, client_id::text, business_id::text, tax_profile_id::text,
       tax_type, tax_year, tax_period, status, created_by, created_at`

type postgresRepo struct{}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres() Repository {
	return &postgresRepo{}
}

func (r *postgresRepo) Insert(ctx context.Context, q db.Querier, rec domain.TaxRecord) (*domain.TaxRecord, error) {
	const query = `
INSERT INTO tax_records (client_id, business_id, tax_profile_id, tax_type, tax_year, tax_period, status, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + recordColumns
	out, err := scanRecord(q.QueryRow(ctx, query,
		rec.ClientID,
		rec.BusinessID,
		rec.TaxProfileID,
		rec.TaxType,
		rec.TaxYear,
		rec.TaxPeriod,
		rec.Status,
		rec.CreatedBy,
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

func (r *postgresRepo) UpsertPersonal(ctx context.Context, q db.Querier, rec domain.TaxRecord) (*domain.TaxRecord, error) {
	const query = `
INSERT INTO tax_records (client_id, tax_type, tax_year, tax_period, status, created_by)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (client_id, tax_year) WHERE client_id IS NOT NULL
DO UPDATE SET tax_period = EXCLUDED.tax_period, status = EXCLUDED.status
RETURNING ` + recordColumns
	return scanRecord(q.QueryRow(ctx, query,
		rec.ClientID,
		rec.TaxType,
		rec.TaxYear,
		rec.TaxPeriod,
		rec.Status,
		rec.CreatedBy,
	))
}

func (r *postgresRepo) BusinessRecordExists(ctx context.Context, q db.Querier, businessID string, taxType domain.TaxType, year int, period *string) (bool, error) {
	const query = `
SELECT EXISTS (
    SELECT 1 FROM tax_records
    WHERE business_id = $1 AND tax_type = $2 AND tax_year = $3
      AND ($4::text IS NULL OR tax_period IS NULL OR tax_period = $4)
)`
	var exists bool
	if err := q.QueryRow(ctx, query, businessID, taxType, year, period).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, q db.Querier, id string) (*domain.TaxRecord, error) {
	const query = `SELECT ` + recordColumns + ` FROM tax_records WHERE id = $1`
	return scanRecord(q.QueryRow(ctx, query, id))
}

func (r *postgresRepo) GetByIDForUpdate(ctx context.Context, q db.Querier, id string) (*domain.TaxRecord, error) {
	const query = `SELECT ` + recordColumns + ` FROM tax_records WHERE id = $1 FOR UPDATE`
	return scanRecord(q.QueryRow(ctx, query, id))
}

func (r *postgresRepo) ListByBusiness(ctx context.Context, q db.Querier, businessID string) ([]domain.TaxRecord, error) {
	const query = `
SELECT ` + recordColumns + `
FROM tax_records
WHERE business_id = $1
ORDER BY tax_year DESC, created_at DESC`
	return listRecords(ctx, q, query, businessID)
}

func (r *postgresRepo) ListByClient(ctx context.Context, q db.Querier, clientID string) ([]domain.TaxRecord, error) {
	const query = `
SELECT ` + recordColumns + `
FROM tax_records
WHERE client_id = $1
ORDER BY tax_year DESC, created_at DESC`
	return listRecords(ctx, q, query, clientID)
}

func (r *postgresRepo) Delete(ctx context.Context, q db.Querier, id string) (int64, error) {
	cmd, err := q.Exec(ctx, `DELETE FROM tax_records WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func listRecords(ctx context.Context, q db.Querier, query string, ownerID string) ([]domain.TaxRecord, error) {
	rows, err := q.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TaxRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanRecord(row pgx.Row) (*domain.TaxRecord, error) {
	var rec domain.TaxRecord
	err := row.Scan(
		&rec.ID,
		&rec.ClientID,
		&rec.BusinessID,
		&rec.TaxProfileID,
		&rec.TaxType,
		&rec.TaxYear,
		&rec.TaxPeriod,
		&rec.Status,
		&rec.CreatedBy,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}
