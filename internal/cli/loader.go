package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/quarrydb/quarry/internal/schema"
	"github.com/quarrydb/quarry/internal/value"
)

// LoadSchema loads a schema definition file, dispatching on extension:
// .yaml/.yml through the YAML loader, .cue through the CUE loader.
func LoadSchema(path string) (*schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return schema.LoadYAML(data)
	case ".cue":
		return schema.LoadCUE(data)
	default:
		return nil, fmt.Errorf("unsupported schema file %q: expected .yaml, .yml or .cue", path)
	}
}

// LoadFilter reads a raw filter payload from a file, or stdin when path is
// "-".
func LoadFilter(path string) (value.RawMap, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read filter: %w", err)
	}
	return value.DecodeJSONMap(data)
}
