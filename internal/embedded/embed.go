// Package embedded carries files compiled into the supplymap binary.
package embedded

import (
	"embed"
)

// SuppliersFile is the path of the default supplier registry inside FS.
const SuppliersFile = "suppliers.yaml"

// FS embeds the default supplier registry.
//
//go:embed suppliers.yaml
var FS embed.FS
