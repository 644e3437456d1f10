package reconciler

import (
	"strings"

	"github.com/agentstation/supplymap/pkg/catalogs"
	"github.com/agentstation/supplymap/pkg/errors"
)

// ValidateRequired checks that rec carries a non-empty value for every
// required field. The returned *errors.ValidationError names all missing
// fields and carries rec as its Value.
func ValidateRequired(identity string, rec catalogs.Record, required []catalogs.Field) error {
	var missing []string
	for _, f := range required {
		if !rec.Has(f) {
			missing = append(missing, string(f))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &errors.ValidationError{
		Identity: identity,
		Field:    strings.Join(missing, ","),
		Value:    rec,
		Message:  "required field missing or empty",
	}
}
