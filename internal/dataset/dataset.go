package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/forms"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/validation"
	"gorm.io/gorm"
)

// Row outcomes.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionSkip   = "skip"
	ActionError  = "error"
)

// RowResult reports what happened to one data row. Row is 1-based and
// counts data rows only, the header excluded.
type RowResult struct {
	Row    int                   `json:"row"`
	ID     uint                  `json:"id,omitempty"`
	Action string                `json:"action"`
	Errors validation.Violations `json:"errors,omitempty"`
}

// Result summarises an import.
type Result struct {
	Resource  string      `json:"resource"`
	DryRun    bool        `json:"dry_run"`
	Committed bool        `json:"committed"`
	Total     int         `json:"total"`
	Created   int         `json:"created"`
	Updated   int         `json:"updated"`
	Skipped   int         `json:"skipped"`
	Rows      []RowResult `json:"rows"`
}

// HasErrors reports whether any row failed.
func (r *Result) HasErrors() bool {
	for _, row := range r.Rows {
		if row.Action == ActionError {
			return true
		}
	}
	return false
}

// ErrMissingHeader is returned when the file has no header row.
var ErrMissingHeader = errors.New("missing header row")

var errRollback = errors.New("rollback")

// Export writes a header row followed by one row per record.
func Export(ctx context.Context, db *gorm.DB, res *Resource, f Format, w io.Writer) error {
	rows, err := res.rows(ctx, db)
	if err != nil {
		return fmt.Errorf("export %s: %w", res.Name, err)
	}
	header := make([]any, len(res.Columns))
	for i, c := range res.Columns {
		header[i] = c
	}
	return writeRows(f, w, res.Name, append([][]any{header}, rows...))
}

// Import reads every row and creates or updates records inside a single
// transaction. Any row error rolls everything back; a dry run always does.
func Import(ctx context.Context, db *gorm.DB, res *Resource, f Format, r io.Reader, dryRun bool) (*Result, error) {
	rows, err := readRows(f, r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f, err)
	}
	if len(rows) == 0 {
		return nil, ErrMissingHeader
	}
	header := normalizeHeader(rows[0])
	known := map[string]bool{}
	for _, c := range res.Columns {
		known[c] = true
	}

	out := &Result{Resource: res.Name, DryRun: dryRun, Rows: []RowResult{}}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for n, cells := range rows[1:] {
			rr := RowResult{Row: n + 1}
			vals, id, bad := rowValues(header, known, cells)
			switch {
			case vals == nil && bad == nil:
				rr.Action = ActionSkip
				out.Skipped++
			case bad != nil:
				rr.Action, rr.Errors = ActionError, bad
			default:
				created, v, err := res.save(ctx, tx, id, vals)
				if err != nil {
					return fmt.Errorf("row %d: %w", rr.Row, err)
				}
				rr.ID = id
				switch {
				case !v.Empty():
					rr.Action, rr.Errors = ActionError, v
				case created:
					rr.Action = ActionCreate
					out.Created++
					// later blank-id rows must not collide with this id
					if id != 0 {
						if err := syncSequence(tx, res.Name); err != nil {
							return fmt.Errorf("row %d: %w", rr.Row, err)
						}
					}
				default:
					rr.Action = ActionUpdate
					out.Updated++
				}
			}
			out.Rows = append(out.Rows, rr)
			out.Total++
		}
		if dryRun || out.HasErrors() {
			return errRollback
		}
		return nil
	})
	if err != nil && !errors.Is(err, errRollback) {
		return nil, fmt.Errorf("import %s: %w", res.Name, err)
	}
	out.Committed = err == nil
	return out, nil
}

func normalizeHeader(row []string) []string {
	out := make([]string, len(row))
	for i, h := range row {
		h = strings.TrimPrefix(h, "\ufeff")
		out[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return out
}

// rowValues maps cells to column names. It returns nil values for a blank
// row and a violation when the id cell is not a number.
func rowValues(header []string, known map[string]bool, cells []string) (forms.Values, uint, validation.Violations) {
	vals := forms.Values{}
	blank := true
	var id uint
	for i, col := range header {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if strings.TrimSpace(cell) != "" {
			blank = false
		}
		switch {
		case col == "id":
			if strings.TrimSpace(cell) == "" {
				continue
			}
			parsed, err := forms.ParseID(cell)
			if err != nil {
				return nil, 0, validation.Violations{"id": validation.CodeInvalidInteger}
			}
			id = parsed
		case readOnly[col] || !known[col]:
			continue
		default:
			vals[col] = cell
		}
	}
	if blank {
		return nil, 0, nil
	}
	return vals, id, nil
}

// syncSequence moves the postgres id sequence past ids written explicitly.
func syncSequence(tx *gorm.DB, table string) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec(fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)",
		table)).Error
}
