package reviewpipe

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"
)

// decodeCSV decodes UTF-8 comma-delimited text. The first record is
// the header; each following record becomes one raw row keyed by
// header. Short records leave the trailing columns absent rather than
// empty, mirroring how spreadsheet exports omit unfilled cells.
func decodeCSV(data []byte) ([]RawRow, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("файл не является корректным текстом UTF-8")
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // user-authored files have ragged rows

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("некорректный CSV: %v", err)
	}

	var rows []RawRow
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("некорректный CSV: %v", err)
		}
		row := NewRawRow()
		for i, key := range header {
			if i < len(record) {
				row.Set(key, record[i])
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
