// Package patch computes the minimal column set that changed between a stored
// row and an incoming partial update. A nil incoming pointer means the field
// was absent from the payload; blank strings normalize to NULL. An empty
// builder tells the orchestrator to skip the UPDATE entirely, so no-op
// patches never bump updated_at.
package patch

import (
	"fmt"
	"strings"
	"time"
)

// Builder accumulates changed columns and their new values.
type Builder struct {
	cols []string
	args []any
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{}
}

// Text records col when the normalized incoming string differs from the
// normalized current value. Blank strings count as NULL on both sides.
func (b *Builder) Text(col string, current, incoming *string) {
	if incoming == nil {
		return
	}
	cur := normalizeText(current)
	in := normalizeText(incoming)
	if equalText(cur, in) {
		return
	}
	b.add(col, textArg(in))
}

// Int records col when the incoming integer differs from the current value.
func (b *Builder) Int(col string, current, incoming *int) {
	if incoming == nil {
		return
	}
	if current != nil && *current == *incoming {
		return
	}
	b.add(col, *incoming)
}

// Float records col when the incoming number differs from the current value.
func (b *Builder) Float(col string, current, incoming *float64) {
	if incoming == nil {
		return
	}
	if current != nil && *current == *incoming {
		return
	}
	b.add(col, *incoming)
}

// Bool records col when the incoming flag differs from the current value.
func (b *Builder) Bool(col string, current, incoming *bool) {
	if incoming == nil {
		return
	}
	if current != nil && *current == *incoming {
		return
	}
	b.add(col, *incoming)
}

// Date records col when the incoming timestamp differs from the current one.
func (b *Builder) Date(col string, current, incoming *time.Time) {
	if incoming == nil {
		return
	}
	if current != nil && current.Equal(*incoming) {
		return
	}
	b.add(col, *incoming)
}

// Set records col unconditionally. Callers use it when the comparison
// already happened elsewhere, e.g. matching an encrypted column through its
// fingerprint.
func (b *Builder) Set(col string, value any) {
	b.add(col, value)
}

// Empty reports whether nothing changed.
func (b *Builder) Empty() bool {
	return len(b.cols) == 0
}

// Columns returns the changed column names in insertion order.
func (b *Builder) Columns() []string {
	return b.cols
}

// Args returns the values matching Columns.
func (b *Builder) Args() []any {
	return b.args
}

// SetClause renders "col1 = $n, col2 = $n+1, ..." with placeholders starting
// at next, for use after any leading WHERE arguments.
func (b *Builder) SetClause(next int) string {
	parts := make([]string, 0, len(b.cols))
	for i, col := range b.cols {
		parts = append(parts, fmt.Sprintf("%s = $%d", col, next+i))
	}
	return strings.Join(parts, ", ")
}

func (b *Builder) add(col string, arg any) {
	b.cols = append(b.cols, col)
	b.args = append(b.args, arg)
}

func normalizeText(p *string) *string {
	if p == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*p)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func equalText(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func textArg(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
