// Package records implements the records command.
package records

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/supplymap/cmd/application"
	"github.com/agentstation/supplymap/internal/cmd/output"
	"github.com/agentstation/supplymap/internal/cmd/table"
	"github.com/agentstation/supplymap/pkg/catalogs"
	"github.com/agentstation/supplymap/pkg/errors"
)

// NewCommand creates the records command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "records [SUPPLIER_CODE]",
		GroupID: "core",
		Short:   "List canonical product records",
		Long: `Records lists the canonical catalog written by the last committed sync,
ordered by supplier_code. With a supplier code it shows every field of that
one record.`,
		Example: `  supplymap records
  supplymap records -o wide
  supplymap records P1001 -o yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := ""
			if len(args) == 1 {
				code = args[0]
			}
			return Run(cmd.Context(), app, code, cmd.OutOrStdout())
		},
	}
}

// Run prints every record, or the one keyed by code.
func Run(ctx context.Context, app application.Application, code string, w io.Writer) error {
	client, err := app.Client(ctx)
	if err != nil {
		return err
	}
	entries, err := client.Records(ctx)
	if err != nil {
		return err
	}

	format := output.Format(app.OutputFormat())
	if code != "" {
		for _, e := range entries {
			if e.Key == code {
				return output.Print(w, format, e.Record.Strings(), func() output.Data {
					return table.RecordToTableData(e.Record)
				})
			}
		}
		return errors.NewNotFoundError("record", code)
	}

	recs := make([]catalogs.Record, len(entries))
	docs := make([]map[string]string, len(entries))
	for i, e := range entries {
		recs[i] = e.Record
		docs[i] = e.Record.Strings()
	}
	return output.Print(w, format, docs, func() output.Data {
		return table.RecordsToTableData(recs, format == output.FormatWide)
	})
}
