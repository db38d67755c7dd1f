package feed

import (
	"encoding/csv"
	"io"
	"strings"
)

// parseCSV reads lenient CSV: variable field counts, lazy quoting, blank
// lines skipped, rows shorter than the header simply omit the missing keys.
// A row the reader cannot parse is dropped, not fatal.
func parseCSV(content string) []Record {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	var headers []string
	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if isBlankRow(row) {
			continue
		}

		if headers == nil {
			headers = make([]string, len(row))
			for i, col := range row {
				headers[i] = stripQuotes(strings.TrimPrefix(strings.TrimSpace(col), "\uFEFF"))
			}
			continue
		}

		rec := Record{}
		for i, col := range row {
			if i >= len(headers) {
				break
			}
			if headers[i] == "" {
				continue
			}
			rec[headers[i]] = strings.TrimSpace(col)
		}
		records = append(records, rec)
	}
	return records
}

func isBlankRow(row []string) bool {
	for _, col := range row {
		if strings.TrimSpace(col) != "" {
			return false
		}
	}
	return true
}

func stripQuotes(s string) string {
	s = strings.Trim(s, `"`)
	return strings.Trim(s, `'`)
}
