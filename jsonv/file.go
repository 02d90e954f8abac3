package jsonv

import (
	"os"
	"path/filepath"

	"github.com/teranos/corrfill/errors"
)

// ReadFile parses the JSON document at path. A missing file is reported as
// errors.ErrNotFound.
func ReadFile(path string) (Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Value{}, errors.NewNotFoundError("required JSON file not found: %s", path)
		}
		return Value{}, errors.Wrapf(err, "failed to read %s", path)
	}
	v, err := Parse(data)
	if err != nil {
		return Value{}, errors.Wrapf(err, "%s", path)
	}
	return v, nil
}

// WriteFile writes v to path as JSON indented by two spaces, creating
// parent directories as needed.
func WriteFile(path string, v Value) error {
	data, err := MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode output")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create output directory %s", dir)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
