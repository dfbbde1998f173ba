// Package importer reads personal-client CSV exports from the previous
// practice-management system and feeds them through the bulk create path so
// every row gets the same validation and SIN handling as the API.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	clientsvc "clientdesk/internal/service/client"
)

type bulkCreator interface {
	CreateBulk(ctx context.Context, inputs []clientsvc.CreateInput, actorID string) (*clientsvc.BulkSummary, error)
}

// CSVImporter parses client rows and submits them in batches.
type CSVImporter struct {
	reader    *csv.Reader
	clients   bulkCreator
	actorID   string
	batchSize int
}

// NewCSVImporter wraps r. Rows are submitted in batches of batchSize; zero
// means one batch for the whole file.
func NewCSVImporter(r io.Reader, clients bulkCreator, actorID string, batchSize int) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:    csvr,
		clients:   clients,
		actorID:   actorID,
		batchSize: batchSize,
	}
}

// Run parses every row and submits them through bulk create. It returns the
// number of clients created; rows rejected by validation count as failures
// in the error, not as a parse abort.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		batch   []clientsvc.CreateInput
		created int
		failed  int
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		summary, err := i.clients.CreateBulk(ctx, batch, i.actorID)
		if err != nil {
			return err
		}
		created += summary.Created
		failed += summary.Failed
		batch = batch[:0]
		return nil
	}

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return created, fmt.Errorf("read row: %w", err)
		}

		in, ok := parseRow(record, index)
		if !ok {
			continue
		}
		batch = append(batch, in)

		if i.batchSize > 0 && len(batch) >= i.batchSize {
			if err := flush(); err != nil {
				return created, err
			}
		}
	}
	if err := flush(); err != nil {
		return created, err
	}

	if failed > 0 {
		return created, fmt.Errorf("%d of %d rows rejected", failed, created+failed)
	}
	return created, nil
}

func parseRow(record []string, index map[string]int) (clientsvc.CreateInput, bool) {
	first := pick(record, index, "first_name")
	last := pick(record, index, "last_name")
	if first == "" && last == "" {
		return clientsvc.CreateInput{}, false
	}

	in := clientsvc.CreateInput{
		FirstName:     first,
		LastName:      last,
		Email:         optional(pick(record, index, "email")),
		Phone:         optional(pick(record, index, "phone")),
		SIN:           optional(pick(record, index, "sin")),
		MaritalStatus: optional(pick(record, index, "marital_status")),
	}

	if dob := pick(record, index, "date_of_birth"); dob != "" {
		if t, err := time.Parse("2006-01-02", dob); err == nil {
			in.DateOfBirth = &t
		}
	}

	if line1 := pick(record, index, "address_line1"); line1 != "" {
		in.Addresses = []clientsvc.AddressInput{{
			Line1:      line1,
			Line2:      optional(pick(record, index, "address_line2")),
			City:       optional(pick(record, index, "city")),
			Province:   optional(pick(record, index, "province")),
			PostalCode: optional(pick(record, index, "postal_code")),
			Country:    optional(pick(record, index, "country")),
		}}
	}
	return in, true
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
