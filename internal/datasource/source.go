// Package datasource provides the record sources the ingestion stage reads from.
package datasource

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/netsec-pipeline/internal/frame"
)

// Source fetches the full dataset as a table.
type Source interface {
	Fetch(ctx context.Context) (*frame.Table, error)
}

// CSVSource reads a CSV file with a header line.
type CSVSource struct {
	Path string
}

func (s CSVSource) Fetch(ctx context.Context) (*frame.Table, error) {
	err := ctx.Err()
	if err != nil {
		return nil, err
	}

	t, err := frame.ReadCSVFile(s.Path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to fetch csv source")
	}

	return t, nil
}

// MemorySource serves a copy of an in-memory table.
type MemorySource struct {
	Table *frame.Table
}

func (s MemorySource) Fetch(ctx context.Context) (*frame.Table, error) {
	err := ctx.Err()
	if err != nil {
		return nil, err
	}
	if s.Table == nil {
		return &frame.Table{}, nil
	}

	return s.Table.Clone(), nil
}
