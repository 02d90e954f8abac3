package display

import (
	"bytes"
	"encoding/json"
)

// MarshalJSON marshals v indented by two spaces without HTML escaping, so
// letter text such as "<b>" or "&" is printed as written.
func MarshalJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
