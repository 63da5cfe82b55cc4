package importer

import (
	"errors"
	"testing"
)

func TestReadTableStripsBOM(t *testing.T) {
	payload := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Date,Driver\n1/1/2024,John\n")...)

	table, err := ReadTable("shifts.csv", payload)
	if err != nil {
		t.Fatalf("read returned error: %v", err)
	}
	if table.Header[0] != "Date" {
		t.Fatalf("expected BOM stripped from header, got %q", table.Header[0])
	}
}

func TestReadTableHandlesCRLF(t *testing.T) {
	table, err := ReadTable("shifts.csv", []byte("Date,Driver\r\n1/1/2024,John\r\n"))
	if err != nil {
		t.Fatalf("read returned error: %v", err)
	}
	if len(table.Rows) != 1 || table.Rows[0][1] != "John" {
		t.Fatalf("unexpected rows: %+v", table.Rows)
	}
}

func TestReadTableSkipsEmptyRows(t *testing.T) {
	payload := []byte("\nDate,Driver\n\n1/1/2024,John\n ,\n2/1/2024,Jane\n")

	table, err := ReadTable("shifts.csv", payload)
	if err != nil {
		t.Fatalf("read returned error: %v", err)
	}
	if table.Header[0] != "Date" {
		t.Fatalf("expected first non-empty row as header, got %+v", table.Header)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 data rows, got %+v", table.Rows)
	}
}

func TestReadTablePadsShortRows(t *testing.T) {
	table, err := ReadTable("shifts.csv", []byte("Date,Driver,Vehicle\n1/1/2024,John\n"))
	if err != nil {
		t.Fatalf("read returned error: %v", err)
	}
	row := table.Rows[0]
	if len(row) != 3 || row[2] != "" {
		t.Fatalf("expected padded row, got %+v", row)
	}
}

func TestReadTableRejectsUnknownExtension(t *testing.T) {
	_, err := ReadTable("shifts.pdf", []byte("Date\n1/1/2024\n"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestReadTableRejectsEmptyPayload(t *testing.T) {
	if _, err := ReadTable("shifts.csv", nil); err == nil {
		t.Fatal("expected error for empty payload")
	}
}
