package model

import "github.com/wippyai/dotnet-metadata/metadata"

// Raw is the entity for tables without a dedicated type. It exposes the
// underlying row so callers can read columns positionally.
type Raw struct {
	entity
}

// Row returns the underlying table row view.
func (r *Raw) Row() metadata.Row {
	return r.row
}
