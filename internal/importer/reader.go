package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned when an uploaded file is not supported.
var ErrUnsupportedFormat = errors.New("unsupported file format")

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// Table is the fully materialized input: one header row plus every
// non-empty data row, padded to the header width. Files of the
// expected volume fit in memory, so there is no streaming path.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadTable materializes the payload. CSV is the primary format; .xlsx
// is accepted as a convenience and read from the first sheet.
func ReadTable(fileName string, payload []byte) (Table, error) {
	if len(payload) == 0 {
		return Table{}, errors.New("file is empty")
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case "", ".csv", ".txt":
		return readCSV(payload)
	case ".xlsx":
		return readExcel(payload)
	default:
		return Table{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func readCSV(payload []byte) (Table, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("failed to read csv: %w", err)
	}

	return buildTable(records)
}

func readExcel(payload []byte) (Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return Table{}, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, errors.New("excel file has no sheets")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return Table{}, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}

	return buildTable(records)
}

// buildTable takes the first non-empty row as the header and keeps
// every following non-empty row, padded to the header width.
func buildTable(records [][]string) (Table, error) {
	var table Table
	for _, row := range records {
		if isEmptyRow(row) {
			continue
		}
		if table.Header == nil {
			table.Header = row
			continue
		}
		table.Rows = append(table.Rows, padRow(row, len(table.Header)))
	}

	if table.Header == nil {
		return Table{}, errors.New("no header row found in file")
	}

	return table, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func padRow(row []string, length int) []string {
	if len(row) >= length {
		return row
	}
	padded := make([]string, length)
	copy(padded, row)
	return padded
}
