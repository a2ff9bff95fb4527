package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format is a tabular file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnknownFormat is returned for formats other than csv and xlsx.
var ErrUnknownFormat = fmt.Errorf("unknown format")

// ParseFormat maps "csv"/"xlsx" (any case, "" meaning csv).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

func writeRows(f Format, w io.Writer, sheet string, rows [][]any) error {
	switch f {
	case FormatCSV:
		cw := csv.NewWriter(w)
		for _, row := range rows {
			rec := make([]string, len(row))
			for i, cell := range row {
				rec[i] = fmt.Sprint(cell)
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case FormatXLSX:
		x := excelize.NewFile()
		defer x.Close()
		if err := x.SetSheetName(x.GetSheetName(0), sheet); err != nil {
			return err
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return err
			}
			r := row
			if err := x.SetSheetRow(sheet, cell, &r); err != nil {
				return err
			}
		}
		return x.Write(w)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

func readRows(f Format, r io.Reader) ([][]string, error) {
	switch f {
	case FormatCSV:
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true
		return cr.ReadAll()
	case FormatXLSX:
		x, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("open xlsx: %w", err)
		}
		defer x.Close()
		sheets := x.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil
		}
		return x.GetRows(sheets[0])
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}
