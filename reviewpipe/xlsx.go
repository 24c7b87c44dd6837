package reviewpipe

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// decodeXLSX parses an OOXML spreadsheet from an in-memory buffer.
// The first worksheet is used; its first row is the header and must
// contain at least one non-empty cell. Data cells map to headers by
// position: header index i keys cell index i of each following row.
func decodeXLSX(data []byte) ([]RawRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("некорректный XLSX: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("в файле XLSX не найден лист")
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("некорректный XLSX: %v", err)
	}
	if len(cells) == 0 || allBlank(cells[0]) {
		return nil, fmt.Errorf("в файле не найдено заголовков (первая строка пуста)")
	}

	header := make([]string, len(cells[0]))
	for i, h := range cells[0] {
		header[i] = strings.TrimSpace(h)
	}

	var rows []RawRow
	for _, record := range cells[1:] {
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

func allBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
