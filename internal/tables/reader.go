// Package tables reads the upstream CSV tables and writes report exports.
package tables

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/j-veylop/brand-forecast-tui/internal/forecast"
)

// ErrEmptyTable is returned for a file without a header row, which usually
// means it was caught while being rewritten.
var ErrEmptyTable = errors.New("table has no header row")

// ReadTable parses a CSV stream into a raw table. Every row must have as
// many fields as the header.
func ReadTable(r io.Reader, name, model string) (forecast.Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return forecast.Table{}, ErrEmptyTable
	}
	if err != nil {
		return forecast.Table{}, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	table := forecast.Table{Name: name, Model: model, Header: header}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return forecast.Table{}, fmt.Errorf("failed to read row: %w", err)
		}
		if isBlank(row) {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ReadFile reads a CSV file into a raw table named after the file.
func ReadFile(path, model string) (forecast.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return forecast.Table{}, err
	}
	defer f.Close()

	t, err := ReadTable(f, filepath.Base(path), model)
	if err != nil {
		return forecast.Table{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return t, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
