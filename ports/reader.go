package ports

import (
	"context"

	"gtdash/domain/incident"
)

// IncidentSourcePort provides read-only access to the raw incident table.
// Implementations never write back to their backing store.
type IncidentSourcePort interface {
	// Describe returns a human-readable origin, e.g. a file path or table name.
	Describe() string

	// ReadTable reads every row of the source into memory.
	ReadTable(ctx context.Context) (*incident.RawTable, error)
}
