package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/sqlhint/internal/namespace"
)

// ErrUnsupportedFormat is returned for description files that are neither
// YAML nor JSON.
var ErrUnsupportedFormat = errors.New("unsupported schema file format")

// Format names accepted by Parse.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// FormatOf derives the format of a description file from its extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// LoadFile reads a YAML or JSON description file.
func LoadFile(path string) (namespace.Description, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema load: %w", err)
	}
	desc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("schema load %s: %w", path, err)
	}
	return desc, nil
}

// Parse decodes a description in the given format.
func Parse(data []byte, format string) (namespace.Description, error) {
	var desc namespace.Description
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &desc); err != nil {
			return nil, err
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &desc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return desc, nil
}
