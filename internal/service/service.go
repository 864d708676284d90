// Package service implements the catalog and lending policy engines.
package service

import "github.com/oklog/ulid/v2"

// newID generates a sortable unique identifier for new entities.
func newID() string {
	return ulid.Make().String()
}
