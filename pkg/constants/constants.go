// Package constants provides shared constants used throughout supplymap.
package constants

import "time"

// Registry defaults
const (
	// DefaultPriority is assigned to suppliers that declare no priority.
	DefaultPriority = 999

	// DefaultCanonicalTable is the canonical product table name.
	DefaultCanonicalTable = "products"

	// DefaultMergeStrategy is the merge strategy used when none is configured.
	DefaultMergeStrategy = "priority"
)

// DefaultRequiredFields lists the canonical fields every merged record must carry.
var DefaultRequiredFields = []string{"supplier_code", "name"}

// Truthy values for boolean coercion, compared case-insensitively.
var Truthy = []string{"yes", "true", "1", "y"}

// Timeouts
const (
	// LockTTL is how long a run lock outlives a holder that stopped renewing it
	LockTTL = 30 * time.Minute

	// ShutdownTimeout bounds the metrics server shutdown
	ShutdownTimeout = 5 * time.Second
)

// FilePermissions is the default permission for created files (rw-r--r--)
const FilePermissions = 0644

// Formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// EnvPrefix prefixes environment variables that take precedence over the
// bare names.
const EnvPrefix = "SUPPLYMAP"
