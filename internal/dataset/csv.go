package dataset

import (
	"encoding/csv"
	"io"
	"strings"
)

// ReadCSV parses a CSV stream into a table. The first record is the
// header; all cells come in as strings (empty cells become null) and are
// typed later by Normalize. Short records are padded with nulls rather
// than rejected, because the upstream exports are not always rectangular.
func ReadCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return Table{}, nil
	}
	if err != nil {
		return Table{}, err
	}

	t := Table{Cols: make([]string, len(header))}
	for i, h := range header {
		t.Cols[i] = normalizeHeader(h)
	}

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, err
		}
		row := make(Row, len(t.Cols))
		for i, col := range t.Cols {
			if i < len(rec) {
				cell := strings.TrimSpace(rec[i])
				if cell != "" {
					row[col] = cell
				}
			}
		}
		t.Append(row)
	}
	return t, nil
}

// WriteCSV streams a table out as CSV in column order. Renames maps
// internal column names to output headers; unmapped columns keep their
// name. Null cells are written empty.
func WriteCSV(w io.Writer, t Table, renames map[string]string) error {
	writer := csv.NewWriter(w)

	header := make([]string, len(t.Cols))
	for i, c := range t.Cols {
		if label, ok := renames[c]; ok {
			header[i] = label
		} else {
			header[i] = c
		}
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	record := make([]string, len(t.Cols))
	for _, r := range t.Rows {
		for i, c := range t.Cols {
			record[i] = FormatCell(r[c])
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func normalizeHeader(h string) string {
	h = strings.ReplaceAll(h, "\uFEFF", "")
	return strings.ToLower(strings.TrimSpace(h))
}
