package cli

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TechXTT/LiteRM/internal/dsl"
)

// NewGenCmd builds the `gen` command, which writes RecordFields methods
// for the exported structs of a Go source file.
func NewGenCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "gen <file.go>",
		Short: "Generate record descriptors for the structs in a Go file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			ast, err := dsl.ParseSource(src)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if out == "" {
				out = strings.TrimSuffix(args[0], ".go") + "_records.go"
			}

			var buf bytes.Buffer
			if err := dsl.NewGenerator().Generate(ast, &buf); err != nil {
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d records)\n", out, len(ast.Entities))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default <file>_records.go)")
	return cmd
}
