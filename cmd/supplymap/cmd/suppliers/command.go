// Package suppliers implements the suppliers command.
package suppliers

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/supplymap/cmd/application"
	"github.com/agentstation/supplymap/internal/cmd/output"
	"github.com/agentstation/supplymap/internal/cmd/table"
	"github.com/agentstation/supplymap/pkg/catalogs"
	pkgsuppliers "github.com/agentstation/supplymap/pkg/suppliers"
)

// NewCommand creates the suppliers command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "suppliers [KEY]",
		Aliases: []string{"supplier"},
		GroupID: "management",
		Short:   "List registered suppliers or one supplier's field mappings",
		Example: `  supplymap suppliers
  supplymap suppliers alloy
  supplymap suppliers -o yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			}
			return Run(app, key, cmd.OutOrStdout())
		},
	}
}

// Supplier is the document form of a supplier configuration.
type Supplier struct {
	Key      string                    `json:"key" yaml:"key"`
	Name     string                    `json:"name" yaml:"name"`
	Enabled  bool                      `json:"enabled" yaml:"enabled"`
	Priority int                       `json:"priority" yaml:"priority"`
	Staging  string                    `json:"staging,omitempty" yaml:"staging,omitempty"`
	Mappings map[string]catalogs.Field `json:"mappings" yaml:"mappings"`
}

// Run prints the registry, or the mappings of the supplier key.
func Run(app application.Application, key string, w io.Writer) error {
	reg, err := app.Registry()
	if err != nil {
		return err
	}
	format := output.Format(app.OutputFormat())

	if key != "" {
		cfg, err := reg.Get(key)
		if err != nil {
			return err
		}
		return output.Print(w, format, document(cfg), func() output.Data {
			return table.MappingsToTableData(cfg)
		})
	}

	all := reg.All()
	docs := make([]Supplier, len(all))
	for i, cfg := range all {
		docs[i] = document(cfg)
	}
	return output.Print(w, format, docs, func() output.Data {
		return table.SuppliersToTableData(all)
	})
}

func document(cfg pkgsuppliers.Config) Supplier {
	return Supplier{
		Key:      cfg.Key,
		Name:     cfg.Name,
		Enabled:  cfg.Enabled,
		Priority: cfg.Priority,
		Staging:  cfg.Staging,
		Mappings: cfg.Mappings,
	}
}
