// Package seed inserts demo data for manual testing.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Apply inserts a demo personal client and a demo business with an HST
// profile. It is idempotent: rows are looked up before insert.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	clientID, err := ensureClient(ctx, pool, "Dana", "Whitfield", "dana.whitfield@example.com")
	if err != nil {
		return fmt.Errorf("ensure client: %w", err)
	}

	businessID, err := ensureBusiness(ctx, pool, "Whitfield Consulting Inc.", "701234567RC0001")
	if err != nil {
		return fmt.Errorf("ensure business: %w", err)
	}

	if err := ensureShareholder(ctx, pool, businessID, clientID, 100); err != nil {
		return fmt.Errorf("ensure shareholder: %w", err)
	}
	if err := ensureTaxProfile(ctx, pool, businessID, "HST", "quarterly"); err != nil {
		return fmt.Errorf("ensure tax profile: %w", err)
	}
	return nil
}

func ensureClient(ctx context.Context, pool *pgxpool.Pool, first, last, email string) (string, error) {
	const lookup = `SELECT id::text FROM clients WHERE email = $1`
	var id string
	err := pool.QueryRow(ctx, lookup, email).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	const insert = `
INSERT INTO clients (first_name, last_name, email, created_by)
VALUES ($1, $2, $3, 'seed')
RETURNING id::text
`
	if err := pool.QueryRow(ctx, insert, first, last, email).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func ensureBusiness(ctx context.Context, pool *pgxpool.Pool, name, businessNumber string) (string, error) {
	const lookup = `SELECT id::text FROM businesses WHERE business_number = $1`
	var id string
	err := pool.QueryRow(ctx, lookup, businessNumber).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	const insert = `
INSERT INTO businesses (name, business_number, created_by)
VALUES ($1, $2, 'seed')
RETURNING id::text
`
	if err := pool.QueryRow(ctx, insert, name, businessNumber).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func ensureShareholder(ctx context.Context, pool *pgxpool.Pool, businessID, clientID string, pct float64) error {
	const lookup = `SELECT 1 FROM shareholders WHERE business_id = $1 AND client_id = $2`
	var one int
	err := pool.QueryRow(ctx, lookup, businessID, clientID).Scan(&one)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	const insert = `
INSERT INTO shareholders (business_id, client_id, share_percentage)
VALUES ($1, $2, $3)
`
	_, err = pool.Exec(ctx, insert, businessID, clientID, pct)
	return err
}

func ensureTaxProfile(ctx context.Context, pool *pgxpool.Pool, businessID, taxType, frequency string) error {
	const q = `
INSERT INTO tax_profiles (business_id, tax_type, frequency)
VALUES ($1, $2, $3)
ON CONFLICT (business_id, tax_type) DO UPDATE SET frequency = EXCLUDED.frequency
`
	_, err := pool.Exec(ctx, q, businessID, taxType, frequency)
	return err
}
