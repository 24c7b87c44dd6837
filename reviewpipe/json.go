package reviewpipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// decodeJSON decodes a UTF-8 JSON array of flat objects into raw rows.
// Key order within each object is preserved by walking the token
// stream instead of unmarshalling into a map.
func decodeJSON(data []byte) ([]RawRow, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("файл не является корректным текстом UTF-8")
	}

	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("некорректный JSON: %v", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("ожидался JSON-массив объектов")
	}

	var rows []RawRow
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("некорректный JSON: %v", err)
		}
		if d, ok := tok.(json.Delim); !ok || d != '{' {
			return nil, fmt.Errorf("элемент #%d не является объектом", len(rows)+1)
		}

		row, err := decodeObject(dec, len(rows)+1)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if _, err := dec.Token(); err != nil { // closing ']'
		return nil, fmt.Errorf("некорректный JSON: %v", err)
	}

	return rows, nil
}

// decodeObject reads the fields of an object whose opening '{' has
// already been consumed, including the closing '}'.
func decodeObject(dec *json.Decoder, idx int) (RawRow, error) {
	row := NewRawRow()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return RawRow{}, fmt.Errorf("некорректный JSON: %v", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return RawRow{}, fmt.Errorf("некорректный ключ в элементе #%d", idx)
		}
		var val any
		if err := dec.Decode(&val); err != nil {
			return RawRow{}, fmt.Errorf("некорректный JSON: %v", err)
		}
		row.Set(key, val)
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return RawRow{}, fmt.Errorf("некорректный JSON: %v", err)
	}
	return row, nil
}

// RowFromJSON decodes a single flat JSON object into a raw row,
// preserving key order. Used by callers that accept one review at a
// time instead of a file.
func RowFromJSON(data []byte) (RawRow, error) {
	if !utf8.Valid(data) {
		return RawRow{}, fmt.Errorf("тело запроса не является корректным текстом UTF-8")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return RawRow{}, fmt.Errorf("некорректный JSON: %v", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return RawRow{}, fmt.Errorf("ожидался JSON-объект")
	}
	return decodeObject(dec, 1)
}
