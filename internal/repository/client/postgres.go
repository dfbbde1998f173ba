package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
	"clientdesk/internal/patch"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const clientColumns = `id::text, first_name, last_name, date_of_birth, gender, email, phone,
       sin_encrypted, sin_hash, marital_status, created_by, created_at, updated_at`

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

func (r *postgresRepo) Insert(ctx context.Context, q db.Querier, c domain.Client) (*domain.Client, error) {
	const query = `
INSERT INTO clients (first_name, last_name, date_of_birth, gender, email, phone,
                     sin_encrypted, sin_hash, marital_status, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + clientColumns
	return r.scanClient(q.QueryRow(ctx, query,
		c.FirstName,
		c.LastName,
		c.DateOfBirth,
		c.Gender,
		c.Email,
		c.Phone,
		c.SINEncrypted,
		c.SINHash,
		c.MaritalStatus,
		c.CreatedBy,
	))
}

func (r *postgresRepo) GetByID(ctx context.Context, q db.Querier, id string) (*domain.Client, error) {
	const query = `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	return r.scanClient(q.QueryRow(ctx, query, id))
}

func (r *postgresRepo) GetByIDForUpdate(ctx context.Context, q db.Querier, id string) (*domain.Client, error) {
	const query = `SELECT ` + clientColumns + ` FROM clients WHERE id = $1 FOR UPDATE`
	return r.scanClient(q.QueryRow(ctx, query, id))
}

func (r *postgresRepo) GetBySINHash(ctx context.Context, q db.Querier, hash string) (*domain.Client, error) {
	const query = `SELECT ` + clientColumns + ` FROM clients WHERE sin_hash = $1 LIMIT 1`
	return r.scanClient(q.QueryRow(ctx, query, hash))
}

func (r *postgresRepo) List(ctx context.Context, q db.Querier, p ListParams) ([]domain.Client, int, error) {
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
SELECT count(*) FROM clients
WHERE $1 = '' OR first_name ILIKE '%' || $1 || '%' OR last_name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'`
	if err := q.QueryRow(ctx, countQuery, p.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
SELECT `+clientColumns+`
FROM clients
WHERE $1 = '' OR first_name ILIKE '%%' || $1 || '%%' OR last_name ILIKE '%%' || $1 || '%%' OR email ILIKE '%%' || $1 || '%%'
ORDER BY %s %s
LIMIT $2 OFFSET $3`, sortCol, dir)

	rows, err := q.Query(ctx, query, p.Search, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Client
	for rows.Next() {
		c, err := r.scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
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
	query := fmt.Sprintf(`UPDATE clients SET %s, updated_at = now() WHERE id = $1`, b.SetClause(2))
	args := append([]any{id}, b.Args()...)
	cmd, err := q.Exec(ctx, query, args...)
	if err != nil {
		return translateErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) SetMaritalStatus(ctx context.Context, q db.Querier, id string, status *string) error {
	const query = `UPDATE clients SET marital_status = $2, updated_at = now() WHERE id = $1`
	cmd, err := q.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, q db.Querier, id string) (int64, error) {
	cmd, err := q.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// LinkSpouses inserts both directions of a spouse pair in one call so the
// symmetry invariant cannot be half-applied.
func (r *postgresRepo) LinkSpouses(ctx context.Context, q db.Querier, clientID, spouseID string, dateOfMarriage *time.Time) error {
	const query = `
INSERT INTO spouse_links (client_id, linked_client_id, date_of_marriage)
VALUES ($1, $2, $3), ($2, $1, $3)`
	if _, err := q.Exec(ctx, query, clientID, spouseID, dateOfMarriage); err != nil {
		return translateErr(err)
	}
	return nil
}

// UnlinkSpouses removes both directions of the pair.
func (r *postgresRepo) UnlinkSpouses(ctx context.Context, q db.Querier, clientID, spouseID string) error {
	const query = `
DELETE FROM spouse_links
WHERE (client_id = $1 AND linked_client_id = $2)
   OR (client_id = $2 AND linked_client_id = $1)`
	_, err := q.Exec(ctx, query, clientID, spouseID)
	return err
}

func (r *postgresRepo) GetSpouseLink(ctx context.Context, q db.Querier, clientID string) (*domain.SpouseLink, error) {
	const query = `
SELECT client_id::text, linked_client_id::text, date_of_marriage
FROM spouse_links
WHERE client_id = $1
LIMIT 1`
	var link domain.SpouseLink
	err := q.QueryRow(ctx, query, clientID).Scan(&link.ClientID, &link.LinkedClientID, &link.DateOfMarriage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *postgresRepo) scanClient(row pgx.Row) (*domain.Client, error) {
	var c domain.Client
	var dob *time.Time
	err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&dob,
		&c.Gender,
		&c.Email,
		&c.Phone,
		&c.SINEncrypted,
		&c.SINHash,
		&c.MaritalStatus,
		&c.CreatedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("client repo: scan error=%v", err)
		return nil, translateErr(err)
	}
	c.DateOfBirth = dob
	return &c, nil
}

func translateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrAlreadyExists
	}
	return err
}
