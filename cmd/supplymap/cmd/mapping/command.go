// Package mapping implements the map command, a dry preview of how a feed
// maps onto the canonical schema.
package mapping

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/supplymap/cmd/application"
	"github.com/agentstation/supplymap/internal/cmd/output"
	"github.com/agentstation/supplymap/internal/cmd/table"
	"github.com/agentstation/supplymap/internal/feed"
	"github.com/agentstation/supplymap/pkg/catalogs"
	"github.com/agentstation/supplymap/pkg/errors"
	"github.com/agentstation/supplymap/pkg/identity"
	"github.com/agentstation/supplymap/pkg/ingest"
	"github.com/agentstation/supplymap/pkg/mapper"
)

// Preview is the mapped form of one feed.
type Preview struct {
	Supplier string              `json:"supplier" yaml:"supplier"`
	Records  []map[string]string `json:"records" yaml:"records"`
	Skipped  []string            `json:"skipped,omitempty" yaml:"skipped,omitempty"`

	records []catalogs.Record
	errs    []error
}

// NewCommand creates the map command.
func NewCommand(app application.Application) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "map SUPPLIER FILE",
		GroupID: "management",
		Short:   "Preview the canonical records a feed maps to",
		Long: `Map reads a feed and prints the canonical record each row maps to, using
the supplier's field mappings and type coercions. Nothing is written.`,
		Example: `  supplymap map alloy feeds/alloy.csv
  supplymap map ls feeds/ls.json -o wide`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := feed.ParseFormat(format)
			if err != nil {
				return err
			}
			src, err := feed.Open(args[1], f)
			if err != nil {
				return err
			}
			preview, err := Map(app, args[0], src)
			if err != nil {
				return err
			}
			return Print(cmd.OutOrStdout(), app, preview)
		},
	}
	cmd.Flags().StringVar(&format, "feed-format", "", "feed format: csv or json (default: from the file extension)")

	return cmd
}

// Map maps every row of src for supplier. Malformed rows and rows without
// an identity are listed as skipped.
func Map(app application.Application, supplier string, src ingest.Source) (*Preview, error) {
	reg, err := app.Registry()
	if err != nil {
		return nil, err
	}
	cfg, err := reg.Get(supplier)
	if err != nil {
		return nil, err
	}
	rows, err := src.Rows()
	if err != nil {
		return nil, err
	}

	p := &Preview{Supplier: cfg.Key}
	for _, row := range rows {
		if row.Err != nil {
			p.skip(row.Err)
			continue
		}
		rec := mapper.MapWith(cfg, row.Raw)
		if _, ok := identity.Resolve(rec); !ok {
			p.skip(errors.NewIdentityError(cfg.Key, row.Index))
			continue
		}
		p.records = append(p.records, rec)
		p.Records = append(p.Records, rec.Strings())
	}
	return p, nil
}

func (p *Preview) skip(err error) {
	p.errs = append(p.errs, err)
	p.Skipped = append(p.Skipped, err.Error())
}

// Print writes the preview in the configured format.
func Print(w io.Writer, app application.Application, p *Preview) error {
	format := output.Format(app.OutputFormat())
	if format.IsStructured() {
		return output.Print(w, format, p, nil)
	}
	if err := output.Print(w, format, nil, func() output.Data {
		return table.RecordsToTableData(p.records, format == output.FormatWide)
	}); err != nil {
		return err
	}
	if len(p.errs) > 0 && !app.Quiet() {
		return output.Print(w, format, nil, func() output.Data {
			return table.ErrorsToTableData(p.errs)
		})
	}
	return nil
}
