// export.go writes query results as CSV or JSON for the results viewer's
// export action.
package db

import (
	"encoding/csv"
	"encoding/json"
	"io"
)

// WriteCSV writes the result as CSV with a header row.
func (r *QueryResult) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.Columns); err != nil {
		return err
	}
	for _, row := range r.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the result as an array of objects keyed by column name.
func (r *QueryResult) WriteJSON(w io.Writer) error {
	records := make([]map[string]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		rec := make(map[string]string, len(r.Columns))
		for i, col := range r.Columns {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
