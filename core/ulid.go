// ABOUTME: ULID generation helper using crypto/rand for agent task ids.
// ABOUTME: Centralizes ULID creation so all packages use the same entropy source.
package core

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// NewULID generates a new ULID using crypto/rand entropy.
func NewULID() ulid.ULID {
	return ulid.MustNew(ulid.Now(), rand.Reader)
}
