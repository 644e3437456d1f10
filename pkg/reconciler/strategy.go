package reconciler

import (
	"fmt"

	"github.com/agentstation/supplymap/pkg/catalogs"
	"github.com/agentstation/supplymap/pkg/errors"
)

// StrategyType represents the type of merge strategy.
type StrategyType string

// String returns the string representation of a strategy type.
func (s StrategyType) String() string {
	return string(s)
}

const (
	// StrategyTypePriority takes each field from the highest-priority supplier offering it.
	StrategyTypePriority StrategyType = "priority"
	// StrategyTypeNewest takes each field from the most recently updated supplier row.
	StrategyTypeNewest StrategyType = "newest"
	// StrategyTypeCustom delegates to user-supplied rules.
	StrategyTypeCustom StrategyType = "custom"
)

// Strategy decides which supplier's value wins for a field.
type Strategy interface {
	// Type returns the strategy type
	Type() StrategyType

	// Description returns a human-readable description
	Description() string

	// ResolveConflict picks the winning value among the suppliers that
	// contributed field. order lists suppliers by ascending priority number.
	// found is false when no supplier offers a usable value.
	ResolveConflict(field catalogs.Field, order []string, values map[string]catalogs.Value) (value catalogs.Value, supplier string, found bool)
}

type baseStrategy struct {
	typ         StrategyType
	description string
}

// Type returns the strategy type.
func (s *baseStrategy) Type() StrategyType {
	return s.typ
}

// Description returns a human-readable description.
func (s *baseStrategy) Description() string {
	return s.description
}

// PriorityStrategy keeps, for every field, the first non-empty value in
// supplier priority order. Integer zero and boolean false count as values.
type PriorityStrategy struct {
	baseStrategy
}

// NewPriorityStrategy creates the priority strategy.
func NewPriorityStrategy() Strategy {
	return &PriorityStrategy{
		baseStrategy: baseStrategy{
			typ:         StrategyTypePriority,
			description: "Takes each field from the highest-priority supplier with a non-empty value",
		},
	}
}

// ResolveConflict walks order and returns the first non-empty value.
func (s *PriorityStrategy) ResolveConflict(_ catalogs.Field, order []string, values map[string]catalogs.Value) (catalogs.Value, string, bool) {
	for _, supplier := range order {
		if v, ok := values[supplier]; ok && !v.IsEmpty() {
			return v, supplier, true
		}
	}
	return catalogs.Value{}, "", false
}

// StrategyFor returns the strategy registered under name.
func StrategyFor(name string) (Strategy, error) {
	switch StrategyType(name) {
	case StrategyTypePriority, "":
		return NewPriorityStrategy(), nil
	case StrategyTypeNewest, StrategyTypeCustom:
		return nil, errors.NewConfigError("reconciler",
			fmt.Sprintf("merge strategy %q is not implemented", name), errors.ErrNotImplemented)
	default:
		return nil, errors.NewConfigError("reconciler", fmt.Sprintf("unknown merge strategy %q", name), nil)
	}
}
