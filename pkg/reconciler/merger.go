package reconciler

import (
	"sort"

	"github.com/agentstation/supplymap/pkg/catalogs"
	"github.com/agentstation/supplymap/pkg/provenance"
)

// Merge combines one product's records from several suppliers with the
// priority strategy. order lists supplier keys by ascending priority number.
func Merge(order []string, contributions map[string]catalogs.Record) (catalogs.Record, provenance.Fields) {
	return MergeWith(NewPriorityStrategy(), order, contributions)
}

// MergeWith combines contributions using strategy.
//
// Fields are visited in name order and suppliers in priority order, so the
// result never depends on map iteration. Contributors missing from order are
// considered after it, by key. Inputs are not modified.
func MergeWith(strategy Strategy, order []string, contributions map[string]catalogs.Record) (catalogs.Record, provenance.Fields) {
	order = completeOrder(order, contributions)

	merged := make(catalogs.Record)
	prov := make(provenance.Fields)
	for _, field := range unionFields(contributions) {
		values := make(map[string]catalogs.Value, len(contributions))
		for supplier, rec := range contributions {
			if v, ok := rec[field]; ok {
				values[supplier] = v
			}
		}
		v, supplier, ok := strategy.ResolveConflict(field, order, values)
		if !ok {
			continue
		}
		merged[field] = v
		prov[field] = provenance.Provenance{
			Supplier: supplier,
			Value:    v.String(),
			Reason:   string(strategy.Type()),
		}
	}
	return merged, prov
}

func completeOrder(order []string, contributions map[string]catalogs.Record) []string {
	seen := make(map[string]bool, len(order))
	out := make([]string, 0, len(order)+len(contributions))
	for _, s := range order {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	var extra []string
	for s := range contributions {
		if !seen[s] {
			extra = append(extra, s)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

func unionFields(contributions map[string]catalogs.Record) []catalogs.Field {
	set := make(map[catalogs.Field]struct{})
	for _, rec := range contributions {
		for f := range rec {
			set[f] = struct{}{}
		}
	}
	fields := make([]catalogs.Field, 0, len(set))
	for f := range set {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}
