package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// CSVExporter writes tables as RFC 4180 CSV with a header row.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Write streams the table to w.
func (e *CSVExporter) Write(w io.Writer, table Table) error {
	if err := table.validate(); err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Titles()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := writer.WriteAll(table.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// Render returns the encoded table.
func (e *CSVExporter) Render(table Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Write(&buf, table); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
