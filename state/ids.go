package state

import (
	"strings"

	"github.com/google/uuid"
)

const tempIDPrefix = "tmp-"

// TempIDSource hands out placeholder identifiers for optimistically created
// entities. It is constructed explicitly and passed to whoever needs it;
// there is no package-level instance.
type TempIDSource struct{}

// NewTempIDSource creates a placeholder identifier source.
func NewTempIDSource() *TempIDSource {
	return &TempIDSource{}
}

// Next returns a fresh placeholder identifier, distinguishable from any
// server-assigned one by its prefix.
func (t *TempIDSource) Next() string {
	return tempIDPrefix + uuid.NewString()
}

// IsTempID reports whether id is a locally generated placeholder.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, tempIDPrefix)
}
