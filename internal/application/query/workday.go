package query

import (
	"time"

	"github.com/staffbook/staffbook/internal/domain/employee"
	"github.com/staffbook/staffbook/internal/domain/shared"
	"github.com/staffbook/staffbook/pkg/timeutil"
)

// WorkdayQuery asks about a calendar date given as YYYY-MM-DD.
type WorkdayQuery struct {
	Date string
}

// WorkdayResult answers WorkdayQuery.
type WorkdayResult struct {
	Date        string       `json:"date"`
	Weekday     time.Weekday `json:"weekday"`
	IsWorkday   bool         `json:"is_workday"`
	NextWorkday string       `json:"next_workday"`
}

// Workday answers q. The date is judged by its own weekday.
func Workday(q WorkdayQuery) (*WorkdayResult, error) {
	day, err := timeutil.ParseDate(q.Date)
	if err != nil {
		return nil, shared.WrapError("query", "Workday", shared.ErrInvalidFormat, "date must be YYYY-MM-DD", err)
	}
	return &WorkdayResult{
		Date:        timeutil.FormatDateStr(day),
		Weekday:     day.Weekday(),
		IsWorkday:   employee.IsWorkday(day),
		NextWorkday: timeutil.FormatDateStr(timeutil.NextWorkday(day)),
	}, nil
}
