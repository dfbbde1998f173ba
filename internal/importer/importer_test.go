package importer

import (
	"context"
	"strings"
	"testing"

	clientsvc "clientdesk/internal/service/client"
)

type stubBulkCreator struct {
	batches [][]clientsvc.CreateInput
	failAll bool
}

func (s *stubBulkCreator) CreateBulk(_ context.Context, inputs []clientsvc.CreateInput, _ string) (*clientsvc.BulkSummary, error) {
	batch := make([]clientsvc.CreateInput, len(inputs))
	copy(batch, inputs)
	s.batches = append(s.batches, batch)

	summary := &clientsvc.BulkSummary{}
	for i := range inputs {
		if s.failAll {
			summary.Failed++
			summary.Results = append(summary.Results, clientsvc.BulkResult{Index: i, Error: "rejected"})
			continue
		}
		summary.Created++
		summary.Results = append(summary.Results, clientsvc.BulkResult{Index: i, ClientID: "id"})
	}
	return summary, nil
}

const sampleCSV = `first_name,last_name,email,sin,date_of_birth,address_line1,city,province,postal_code
Dana,Whitfield,dana@example.com,123456789,1980-04-12,1 Front St,Toronto,ON,M5J 2N1
Kim,Lee,,,,,,,
,,,,,,,,
`

func TestRunParsesRows(t *testing.T) {
	creator := &stubBulkCreator{}
	imp := NewCSVImporter(strings.NewReader(sampleCSV), creator, "import", 0)

	n, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 clients, got %d", n)
	}
	if len(creator.batches) != 1 {
		t.Fatalf("expected one batch, got %d", len(creator.batches))
	}

	first := creator.batches[0][0]
	if first.FirstName != "Dana" || first.LastName != "Whitfield" {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if first.SIN == nil || *first.SIN != "123456789" {
		t.Fatalf("sin not parsed: %v", first.SIN)
	}
	if first.DateOfBirth == nil || first.DateOfBirth.Year() != 1980 {
		t.Fatalf("date of birth not parsed: %v", first.DateOfBirth)
	}
	if len(first.Addresses) != 1 || first.Addresses[0].City == nil || *first.Addresses[0].City != "Toronto" {
		t.Fatalf("address not parsed: %+v", first.Addresses)
	}

	second := creator.batches[0][1]
	if second.SIN != nil || len(second.Addresses) != 0 {
		t.Fatalf("blank optionals should stay nil: %+v", second)
	}
}

func TestRunBatches(t *testing.T) {
	creator := &stubBulkCreator{}
	imp := NewCSVImporter(strings.NewReader(sampleCSV), creator, "import", 1)

	if _, err := imp.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(creator.batches) != 2 {
		t.Fatalf("expected 2 batches of 1, got %d", len(creator.batches))
	}
}

func TestRunReportsRejectedRows(t *testing.T) {
	creator := &stubBulkCreator{failAll: true}
	imp := NewCSVImporter(strings.NewReader(sampleCSV), creator, "import", 0)

	n, err := imp.Run(context.Background())
	if err == nil {
		t.Fatal("expected error for rejected rows")
	}
	if n != 0 {
		t.Fatalf("expected 0 created, got %d", n)
	}
}
