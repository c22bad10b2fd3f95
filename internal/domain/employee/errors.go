package employee

import (
	"github.com/staffbook/staffbook/internal/domain/shared"
)

// Staff domain errors.
var (
	ErrMalformedRecord = shared.NewDomainError("staff", "FromString", shared.ErrInvalidFormat, "record must be first-last-pay")
	ErrMalformedName   = shared.NewDomainError("staff", "SetFullname", shared.ErrInvalidFormat, `name must be "first last"`)
	ErrNameCleared     = shared.NewDomainError("staff", "Name", shared.ErrInvalidState, "name has been cleared")
	ErrStaffNotFound   = shared.NewDomainError("staff", "Find", shared.ErrNotFound, "staff member not found")
	ErrUnknownKind     = shared.NewDomainError("staff", "Restore", shared.ErrInvalidInput, "unknown staff kind")
	ErrNotManager      = shared.NewDomainError("roster", "Resolve", shared.ErrInvalidInput, "staff member is not a manager")
)

// IsFormatError reports whether err came from a malformed record or name.
func IsFormatError(err error) bool {
	return shared.IsFormat(err)
}
