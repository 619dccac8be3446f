package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/quarrydb/quarry/internal/compiler"
	"github.com/quarrydb/quarry/internal/filterir"
)

// NewCompileCommand creates the compile command: parse a filter payload,
// compile it against a model, print the expression tree.
func NewCompileCommand(opts *RootOptions) *cobra.Command {
	var (
		schemaPath string
		modelName  string
		scoped     bool
	)

	cmd := &cobra.Command{
		Use:   "compile <filter.json>",
		Short: "Compile a raw filter payload into a typed expression tree",
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

			mode := compiler.ModeDefault
			if scoped {
				mode = compiler.ModeScoped
			}
			expr, err := compiler.New(s).Compile(model, input, mode)
			if err != nil {
				return err
			}

			// A Raw node means the compiler failed to classify a shape the
			// registry accepted; surface it as a defect, not silently.
			if filterir.HasRaw(expr) {
				slog.Warn("filter contains unclassified shapes; treat as a compiler defect",
					"model", modelName)
			}

			return WriteOutput(cmd.OutOrStdout(), opts.Format, filterir.ToJSON(expr))
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "schema definition file (.yaml or .cue)")
	cmd.Flags().StringVar(&modelName, "model", "", "model the filter targets")
	cmd.Flags().BoolVar(&scoped, "scoped", false, "recognize the nested-scope key (node)")
	cmd.MarkFlagRequired("schema")
	cmd.MarkFlagRequired("model")

	return cmd
}
