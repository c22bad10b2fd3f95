package employee

import (
	"time"

	"github.com/staffbook/staffbook/pkg/timeutil"
)

// IsWorkday reports whether day falls Monday through Friday.
func IsWorkday(day time.Time) bool {
	return timeutil.IsWorkday(day)
}
