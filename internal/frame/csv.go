package frame

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseValue parses a numeric cell. Empty cells and the "na"/"nan" tokens, in any case, are
// missing values.
func ParseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "na", "nan":
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid numeric value %q", s)
	}

	return v, nil
}

// FormatValue formats a cell, writing missing values as empty cells.
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}

	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ReadCSV reads a table whose first record is the header.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Wrap(ErrEmptyTable, "missing header")
	}
	if err != nil {
		return nil, errors.Wrap(err, "unable to read header")
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	var rows [][]float64
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read line %d", line)
		}
		row := make([]float64, len(rec))
		for i, cell := range rec {
			row[i], err = ParseValue(cell)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d column %q", line, columns[i])
			}
		}
		rows = append(rows, row)
	}

	return New(columns, rows)
}

// ReadCSVFile reads a table from a CSV file.
func ReadCSVFile(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", path)
	}
	defer file.Close()

	t, err := ReadCSV(file)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %s", path)
	}

	return t, nil
}

// WriteCSV writes the header then every row.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	err := writer.Write(t.Columns)
	if err != nil {
		return errors.Wrap(err, "unable to write header")
	}

	rec := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			rec[i] = FormatValue(v)
		}
		err = writer.Write(rec)
		if err != nil {
			return errors.Wrap(err, "unable to write row")
		}
	}
	writer.Flush()

	return errors.Wrap(writer.Error(), "unable to flush csv")
}

// WriteCSVFile writes the table to path, creating parent directories.
func (t *Table) WriteCSVFile(path string) error {
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return errors.Wrapf(err, "unable to create directory for %s", path)
	}
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", path)
	}

	err = t.WriteCSV(file)
	if err != nil {
		file.Close()
		return errors.Wrapf(err, "unable to write %s", path)
	}

	return errors.Wrapf(file.Close(), "unable to close %s", path)
}
