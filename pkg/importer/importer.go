// Package importer reads tabular uploads (CSV or XLSX) into named-column records.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for files that are neither .csv nor .xlsx.
var ErrUnsupportedFormat = errors.New("unsupported file format, expected .csv or .xlsx")

// MissingColumnsError lists required headers absent from the upload.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("file must have columns: %s", strings.Join(e.Columns, ", "))
}

// Record is one data row keyed by canonical column name. Line is the 1-based row in the source file.
// A row that could not be parsed has Malformed set and no values.
type Record struct {
	Line      int
	Values    map[string]string
	Malformed bool
}

type sourceRow struct {
	cells     []string
	malformed bool
}

// Get returns the trimmed cell for column.
func (r Record) Get(column string) string {
	return strings.TrimSpace(r.Values[column])
}

// Read parses the upload and returns its records. Header matching is case-insensitive;
// required columns are returned under the exact spelling given.
func Read(filename string, src io.Reader, required ...string) ([]Record, error) {
	rows, err := readRows(filename, src)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	if rows[0].malformed {
		return nil, fmt.Errorf("header row is malformed")
	}
	index := make(map[string]int, len(rows[0].cells))
	for i, header := range rows[0].cells {
		key := normalizeHeader(header)
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}
	var missing []string
	for _, col := range required {
		if _, ok := index[normalizeHeader(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if row.malformed {
			records = append(records, Record{Line: i + 2, Malformed: true})
			continue
		}
		if isBlankRow(row.cells) {
			continue
		}
		values := make(map[string]string, len(required))
		for _, col := range required {
			values[col] = cellValue(row.cells, index[normalizeHeader(col)])
		}
		records = append(records, Record{Line: i + 2, Values: values})
	}
	return records, nil
}

func readRows(filename string, src io.Reader) ([]sourceRow, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return readCSV(src)
	case ".xlsx":
		data, err := io.ReadAll(src)
		if err != nil {
			return nil, err
		}
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
		defer func() { _ = file.Close() }()

		sheet := file.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("no worksheet found")
		}
		rows, err := file.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read worksheet: %w", err)
		}
		out := make([]sourceRow, len(rows))
		for i, cells := range rows {
			out[i] = sourceRow{cells: cells}
		}
		return out, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// readCSV reads record by record so one unparsable line is kept as a malformed row
// instead of failing the whole file.
func readCSV(src io.Reader) ([]sourceRow, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []sourceRow
	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			rows = append(rows, sourceRow{malformed: true})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, sourceRow{cells: cells})
	}
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
