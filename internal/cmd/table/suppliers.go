package table

import (
	"sort"
	"strconv"

	"github.com/agentstation/supplymap/pkg/suppliers"
)

// SuppliersToTableData lists suppliers in the order given.
func SuppliersToTableData(cfgs []suppliers.Config) Data {
	rows := make([][]string, 0, len(cfgs))
	for _, cfg := range cfgs {
		rows = append(rows, []string{
			cfg.Key,
			dash(cfg.Name),
			strconv.Itoa(cfg.Priority),
			yesNo(cfg.Enabled),
			dash(cfg.Staging),
			strconv.Itoa(len(cfg.Mappings)),
		})
	}
	return Data{
		Headers: []string{"Key", "Name", "Priority", "Enabled", "Staging Table", "Mappings"},
		Rows:    rows,
		ColumnAlignment: []Align{
			AlignLeft, AlignLeft, AlignRight, AlignCenter, AlignLeft, AlignRight,
		},
	}
}

// MappingsToTableData lists one supplier's field mappings by supplier field.
func MappingsToTableData(cfg suppliers.Config) Data {
	fields := cfg.SupplierFields()
	sort.Strings(fields)

	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		target, _ := cfg.Target(f)
		rows = append(rows, []string{f, target.String()})
	}
	return Data{
		Headers: []string{"Supplier Field", "Canonical Field"},
		Rows:    rows,
	}
}
