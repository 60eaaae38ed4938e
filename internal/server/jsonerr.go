package server

import (
	"encoding/json"
	"errors"
	"fmt"
)

// contextWindow is the number of characters shown on either side of a JSON
// syntax error when reporting it to the caller.
const contextWindow = 20

// decodeJSON unmarshals body into v, turning syntax and type errors into a
// diagnostic that carries the line/column of the failure and a window of the
// surrounding input.
func decodeJSON(body []byte, v interface{}) error {
	err := json.Unmarshal(body, v)
	if err == nil {
		return nil
	}

	var offset int64 = -1
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return err
	}

	line, col := lineCol(body, offset)
	return fmt.Errorf("JSON parse error at line %d, column %d: %v\nContext: '%s'",
		line, col, err, window(body, offset))
}

func lineCol(body []byte, offset int64) (line, col int) {
	line, col = 1, 1
	for i := int64(0); i < offset && i < int64(len(body)); i++ {
		if body[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

func window(body []byte, offset int64) string {
	start := offset - contextWindow
	if start < 0 {
		start = 0
	}
	end := offset + contextWindow
	if end > int64(len(body)) {
		end = int64(len(body))
	}
	return string(body[start:end])
}
