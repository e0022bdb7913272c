package drda

import (
	"fmt"
	"strings"
	"time"
)

// Cursor is a thin convenience wrapper over Session.Query for callers
// that prefer a cursor-style API (description, fetch-all) to the raw
// Session methods.
type Cursor struct {
	session     *Session
	description []ColumnDescription
	rows        [][]any
}

// NewCursor returns a Cursor bound to session.
func NewCursor(session *Session) *Cursor {
	return &Cursor{session: session}
}

// Description returns the last executed query's column descriptions.
func (c *Cursor) Description() []ColumnDescription { return c.description }

// Execute runs sql against the bound Session, routing to Query when sql
// looks like a SELECT and to Execute otherwise.
func (c *Cursor) Execute(sql string, args ...any) error {
	if looksLikeSelect(sql) {
		desc, rows, err := c.session.Query(sql, args...)
		c.description = desc
		c.rows = rows
		return err
	}
	c.description = nil
	c.rows = nil
	return c.session.Execute(sql, args...)
}

func looksLikeSelect(sql string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(sql)), "SELECT")
}

// FetchAll returns every row buffered by the last Execute.
func (c *Cursor) FetchAll() [][]any { return c.rows }

// CallProc is not supported; stored-procedure calls never touch the wire.
func (c *Cursor) CallProc(name string, args ...any) error {
	return &NotSupportedError{Feature: "CallProc"}
}

// NextSet is not supported: result sets are fully materialized by
// FetchAll, there is no scrollable-cursor support.
func (c *Cursor) NextSet() error {
	return &NotSupportedError{Feature: "scrollable cursor (NextSet)"}
}

// Close releases the cursor's buffered result; the underlying Session is
// left open.
func (c *Cursor) Close() {
	c.description = nil
	c.rows = nil
}

// EscapeParameter renders v as a SQL literal for callers that inline
// parameters into statement text instead of binding them. This package
// itself always binds parameters through FDODSC/FDODTA and never uses
// this helper internally.
func EscapeParameter(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'"
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case time.Time:
		return "'" + x.Format("2006-01-02 15:04:05") + "'"
	case Decimal:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}
