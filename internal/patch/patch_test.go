package patch

import (
	"testing"
	"time"
)

func strPtr(v string) *string        { return &v }
func intPtr(v int) *int              { return &v }
func floatPtr(v float64) *float64    { return &v }
func timePtr(v time.Time) *time.Time { return &v }

func TestIdenticalValuesYieldEmptyPatch(t *testing.T) {
	b := New()
	b.Text("first_name", strPtr("Ada"), strPtr("Ada"))
	b.Text("email", strPtr("a@b.ca"), strPtr("a@b.ca"))
	b.Int("start_year", intPtr(2020), intPtr(2020))
	if !b.Empty() {
		t.Fatalf("expected empty patch, got columns %v", b.Columns())
	}
}

func TestAbsentFieldsAreSkipped(t *testing.T) {
	b := New()
	b.Text("first_name", strPtr("Ada"), nil)
	b.Int("start_year", intPtr(2020), nil)
	b.Date("start_date", nil, nil)
	if !b.Empty() {
		t.Fatalf("expected empty patch, got columns %v", b.Columns())
	}
}

func TestSingleChangedField(t *testing.T) {
	b := New()
	b.Text("first_name", strPtr("Ada"), strPtr("Ada"))
	b.Text("last_name", strPtr("Lovelace"), strPtr("King"))
	cols := b.Columns()
	if len(cols) != 1 || cols[0] != "last_name" {
		t.Fatalf("expected [last_name], got %v", cols)
	}
	if b.Args()[0] != "King" {
		t.Fatalf("unexpected arg %v", b.Args()[0])
	}
}

func TestBlankNormalizesToNull(t *testing.T) {
	b := New()
	b.Text("email", strPtr("a@b.ca"), strPtr("   "))
	if b.Empty() {
		t.Fatalf("expected a change when clearing a set field")
	}
	if b.Args()[0] != nil {
		t.Fatalf("expected NULL arg, got %v", b.Args()[0])
	}

	// Blank incoming against an already-null current is a no-op.
	b = New()
	b.Text("email", nil, strPtr(""))
	if !b.Empty() {
		t.Fatalf("blank over null should not register a change")
	}
}

func TestWhitespaceOnlyDifferenceIsNoop(t *testing.T) {
	b := New()
	b.Text("city", strPtr("Toronto"), strPtr("  Toronto  "))
	if !b.Empty() {
		t.Fatalf("whitespace-only difference registered a change")
	}
}

func TestNumericChangeFromNull(t *testing.T) {
	b := New()
	b.Int("start_year", nil, intPtr(2021))
	b.Float("share_percentage", floatPtr(50), floatPtr(25))
	if len(b.Columns()) != 2 {
		t.Fatalf("expected 2 changes, got %v", b.Columns())
	}
}

func TestDateComparison(t *testing.T) {
	day := time.Date(2021, 4, 30, 0, 0, 0, 0, time.UTC)
	b := New()
	b.Date("start_date", timePtr(day), timePtr(day))
	if !b.Empty() {
		t.Fatalf("equal dates registered a change")
	}
	b.Date("start_date", timePtr(day), timePtr(day.AddDate(1, 0, 0)))
	if b.Empty() {
		t.Fatalf("changed date not registered")
	}
}

func TestSetClausePlaceholders(t *testing.T) {
	b := New()
	b.Text("first_name", strPtr("Ada"), strPtr("Grace"))
	b.Int("start_year", nil, intPtr(2021))
	got := b.SetClause(2)
	want := "first_name = $2, start_year = $3"
	if got != want {
		t.Fatalf("SetClause = %q, want %q", got, want)
	}
	if len(b.Args()) != 2 {
		t.Fatalf("expected 2 args, got %d", len(b.Args()))
	}
}
