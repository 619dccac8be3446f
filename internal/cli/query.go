package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quarrydb/quarry/internal/compiler"
	"github.com/quarrydb/quarry/internal/store"
	"github.com/quarrydb/quarry/internal/value"
)

// NewQueryCommand creates the query command: compile a filter and execute
// it against a SQLite record store.
func NewQueryCommand(opts *RootOptions) *cobra.Command {
	var (
		schemaPath string
		dbPath     string
		modelName  string
	)

	cmd := &cobra.Command{
		Use:   "query <filter.json>",
		Short: "Run a filter against a record store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := LoadSchema(schemaPath)
			if err != nil {
				return err
			}
			model := s.Model(modelName)
			if model == nil {
				return fmt.Errorf("unknown model %q", modelName)
			}

			input, err := LoadFilter(args[0])
			if err != nil {
				return err
			}
			expr, err := compiler.New(s).Compile(model, input, compiler.ModeDefault)
			if err != nil {
				return err
			}

			st, err := store.Open(dbPath, s)
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := st.QueryRecords(cmd.Context(), model, expr, nil)
			if err != nil {
				return err
			}

			out := make([]map[string]any, len(records))
			for i, rec := range records {
				row := make(map[string]any, len(rec.Data)+1)
				row["id"] = rec.ID
				for name, tv := range rec.Data {
					row[name] = value.ToAny(value.ToRaw(tv))
				}
				out[i] = row
			}
			return WriteOutput(cmd.OutOrStdout(), opts.Format, out)
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "schema definition file (.yaml or .cue)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path")
	cmd.Flags().StringVar(&modelName, "model", "", "model the filter targets")
	cmd.MarkFlagRequired("schema")
	cmd.MarkFlagRequired("db")
	cmd.MarkFlagRequired("model")

	return cmd
}
