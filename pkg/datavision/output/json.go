// Package output serializes pipeline values as JSON.
package output

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
)

// ToJSON encodes v without HTML escaping. Pretty output is indented with two
// spaces.
func ToJSON(v any, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, v, pretty); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Encode writes v to w followed by a newline.
func Encode(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// WriteFile writes v to path, or to stdout when path is empty.
func WriteFile(path string, v any, pretty bool) error {
	if path == "" {
		return Encode(os.Stdout, v, pretty)
	}
	data, err := ToJSON(v, pretty)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
