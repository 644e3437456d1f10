// Package importfeed implements the import command.
package importfeed

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/supplymap/cmd/application"
	"github.com/agentstation/supplymap/internal/cmd/emoji"
	"github.com/agentstation/supplymap/internal/cmd/output"
	"github.com/agentstation/supplymap/internal/cmd/table"
	"github.com/agentstation/supplymap/internal/feed"
	"github.com/agentstation/supplymap/pkg/ingest"
)

// Flags holds the import command flags.
type Flags struct {
	Format      string
	Truncate    bool
	AutoApprove bool
}

// NewCommand creates the import command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "import SUPPLIER FILE",
		GroupID: "core",
		Short:   "Load a supplier feed file into its staging table",
		Long: `Import reads a CSV or JSON feed and upserts every row into the supplier's
staging table, keyed by the row's natural key. Malformed rows and rows without
a natural key are skipped and reported. The whole file is imported in one
transaction.

--truncate empties the staging table first and asks for confirmation unless
-y is given.`,
		Example: `  supplymap import alloy feeds/alloy.csv
  supplymap import ls feeds/ls.json --format json
  supplymap import alloy feeds/alloy.csv --truncate -y`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), app, flags, args[0], args[1], cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&flags.Format, "feed-format", "", "feed format: csv or json (default: from the file extension)")
	cmd.Flags().BoolVar(&flags.Truncate, "truncate", false, "empty the staging table before importing")
	cmd.Flags().BoolVarP(&flags.AutoApprove, "yes", "y", false, "do not ask before truncating")

	return cmd
}

// Run imports the feed at path for supplier.
func Run(ctx context.Context, app application.Application, flags *Flags, supplier, path string, in io.Reader, w io.Writer) error {
	format, err := feed.ParseFormat(flags.Format)
	if err != nil {
		return err
	}

	reg, err := app.Registry()
	if err != nil {
		return err
	}
	cfg, err := reg.Get(supplier)
	if err != nil {
		return err
	}

	if flags.Truncate && !flags.AutoApprove {
		ok, err := Confirm(in, w, fmt.Sprintf("Empty staging table %s before importing? (y/N): ", cfg.Staging))
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(w, "Import cancelled")
			return nil
		}
	}

	src, err := feed.Open(path, format)
	if err != nil {
		return err
	}

	client, err := app.Client(ctx)
	if err != nil {
		return err
	}

	result, err := client.Import(ctx, supplier, src,
		ingest.WithTruncate(flags.Truncate),
		ingest.WithName(filepath.Base(path)),
	)
	if err != nil {
		if !app.Quiet() {
			_, _ = fmt.Fprintf(w, "%s Import failed: %v\n", emoji.Error, err)
		}
		return err
	}

	return printResult(w, app, result)
}

// Confirm asks question on w and reads a yes/no answer from in. Anything
// other than y or yes is a no.
func Confirm(in io.Reader, w io.Writer, question string) (bool, error) {
	if _, err := fmt.Fprint(w, question); err != nil {
		return false, err
	}
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false, nil
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

func printResult(w io.Writer, app application.Application, result *ingest.Result) error {
	format := output.Format(app.OutputFormat())
	if format.IsStructured() {
		return output.Print(w, format, output.NewImportReport(result), nil)
	}
	if !app.Quiet() {
		if err := output.Print(w, format, nil, func() output.Data { return table.ImportResultToTableData(result) }); err != nil {
			return err
		}
		if len(result.Errors) > 0 {
			if err := output.Print(w, format, nil, func() output.Data { return table.ErrorsToTableData(result.Errors) }); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "%s %s: %s\n", emoji.Status(true, result.Skipped), result.Message, result.Summary())
	return err
}
