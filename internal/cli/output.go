package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteOutput renders v to w in the selected format. JSON output is
// indented with sorted keys; text output is a plain fmt rendering for
// quick inspection.
func WriteOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "text":
		_, err := fmt.Fprintf(w, "%v\n", v)
		return err
	default:
		return fmt.Errorf("invalid format %q", format)
	}
}
