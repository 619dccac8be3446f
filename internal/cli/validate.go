package cli

import (
	"github.com/spf13/cobra"
)

// NewValidateCommand creates the validate command: load a schema file and
// report its models. Loading performs full validation, so success means
// the schema is usable.
func NewValidateCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <schema-file>",
		Short: "Validate a schema definition file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := LoadSchema(args[0])
			if err != nil {
				return err
			}

			summary := make([]map[string]any, 0)
			for _, m := range s.Models() {
				scalars, relations := 0, 0
				for _, f := range m.Fields {
					if f.IsRelation() {
						relations++
					} else {
						scalars++
					}
				}
				entry := map[string]any{
					"model":     m.Name,
					"scalars":   scalars,
					"relations": relations,
				}
				if id := m.IDField(); id != nil {
					entry["identity"] = id.Name
				}
				summary = append(summary, entry)
			}
			return WriteOutput(cmd.OutOrStdout(), opts.Format, summary)
		},
	}
	return cmd
}
