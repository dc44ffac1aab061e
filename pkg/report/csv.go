package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cast"
)

// Column maps an entry field to a CSV column.
type Column struct {
	Header string
	Key    string
}

// CSVColumns exports one row per entry with a header row of the keys.
func CSVColumns(keys ...string) CSVFunc {
	columns := make([]Column, len(keys))
	for i, k := range keys {
		columns[i] = Column{Header: k, Key: k}
	}
	return CSVTable(columns...)
}

// CSVTable exports one row per entry. Missing fields become empty cells.
func CSVTable(columns ...Column) CSVFunc {
	return func(_ context.Context, r *Report, w io.Writer) error {
		cw := csv.NewWriter(w)

		header := make([]string, len(columns))
		for i, c := range columns {
			header[i] = c.Header
		}
		if err := cw.Write(header); err != nil {
			return err
		}

		for i, entry := range r.Entries {
			row := make([]string, len(columns))
			for j, c := range columns {
				v, _ := Lookup(entry, c.Key)
				cell, err := FormatValue(v)
				if err != nil {
					return fmt.Errorf("entry %d column %s: %w", i, c.Key, err)
				}
				row[j] = cell
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}

		cw.Flush()
		return cw.Error()
	}
}

// FormatValue renders a field value as text. Times use RFC 3339.
func FormatValue(v any) (string, error) {
	switch value := v.(type) {
	case nil:
		return "", nil
	case time.Time:
		if value.IsZero() {
			return "", nil
		}
		return value.Format(time.RFC3339), nil
	}
	return cast.ToStringE(v)
}
