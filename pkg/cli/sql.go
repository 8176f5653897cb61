package cli

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	db "github.com/TechXTT/LiteRM"
)

// NewQueryCmd builds the `query` command.
func NewQueryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a SELECT and print the rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := opts.open()
			if err != nil {
				return err
			}
			defer conn.Close()

			rs, err := conn.SelectContext(cmd.Context(), args[0])
			if db.StatusOf(err) == db.StatusNotFound {
				fmt.Fprintln(cmd.OutOrStdout(), "(no rows)")
				return nil
			}
			if err != nil {
				return err
			}
			return printRecordSet(cmd.OutOrStdout(), rs)
		},
	}
}

// NewExecCmd builds the `exec` command.
func NewExecCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <sql> [values...]",
		Short: "Run a statement, binding values to its ? parameters",
		Long: `Run a statement, binding values to its ? parameters in order.
Values that parse as integers or floats are bound as numbers, NULL binds NULL,
anything else binds as text.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := opts.open()
			if err != nil {
				return err
			}
			defer conn.Close()

			values := make([]any, 0, len(args)-1)
			for _, a := range args[1:] {
				values = append(values, parseValue(a))
			}
			res, err := conn.ExecuteContext(cmd.Context(), args[0], values)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rows affected: %d, last insert id: %d\n", res.RowsAffected, res.LastInsertID)
			return nil
		},
	}
}

// NewTablesCmd builds the `tables` command.
func NewTablesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := opts.open()
			if err != nil {
				return err
			}
			defer conn.Close()

			tables, err := conn.TablesContext(cmd.Context())
			if err != nil {
				return err
			}
			for _, t := range tables {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
}

func parseValue(s string) any {
	if strings.EqualFold(s, "NULL") {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func printRecordSet(w io.Writer, rs *db.RecordSet) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(rs.Header, "\t"))
	for _, row := range rs.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return "x'" + hex.EncodeToString(x) + "'"
	default:
		return fmt.Sprint(x)
	}
}
