package am

import (
	"bytes"
	"encoding/json"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/teranos/corrfill/errors"
)

// Formats accepted by Render.
const (
	FormatTOML = "toml"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Render encodes a settings map (as returned by viper's AllSettings) in
// the given format
func Render(settings map[string]interface{}, format string) ([]byte, error) {
	switch format {
	case FormatTOML, "":
		var buf bytes.Buffer
		enc := toml.NewEncoder(&buf)
		enc.SetIndentTables(true)
		if err := enc.Encode(settings); err != nil {
			return nil, errors.Wrap(err, "failed to encode config as TOML")
		}
		return buf.Bytes(), nil

	case FormatJSON:
		data, err := json.MarshalIndent(settings, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode config as JSON")
		}
		return append(data, '\n'), nil

	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(settings); err != nil {
			return nil, errors.Wrap(err, "failed to encode config as YAML")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, "failed to encode config as YAML")
		}
		return buf.Bytes(), nil
	}

	return nil, errors.WithHint(
		errors.NewInvalidRequestError("unknown format %q", format),
		"use toml, json or yaml",
	)
}
