package models

// WorkHoursConfig is a department's single daily working-hours record. Times
// are stored as HH:MM strings and durations as whole hours.
type WorkHoursConfig struct {
	DepartmentID    string `db:"department_id" json:"department_id"`
	DayStart        string `db:"day_start" json:"day_start"`
	DayEnd          string `db:"day_end" json:"day_end"`
	LectureDuration int    `db:"lecture_duration" json:"lecture_duration"`
	LabDuration     int    `db:"lab_duration" json:"lab_duration"`
}

// Validate checks the structural invariants: day_start < day_end, durations > 0.
func (c WorkHoursConfig) Validate() error {
	start, err := ParseClock(c.DayStart)
	if err != nil {
		return err
	}
	end, err := ParseClock(c.DayEnd)
	if err != nil {
		return err
	}
	if start >= end {
		return errWorkHoursInverted
	}
	if c.LectureDuration <= 0 || c.LabDuration <= 0 {
		return errWorkHoursDurations
	}
	return nil
}

// Span returns parsed day bounds. Callers must Validate first.
func (c WorkHoursConfig) Span() (ClockMinutes, ClockMinutes) {
	start, _ := ParseClock(c.DayStart)
	end, _ := ParseClock(c.DayEnd)
	return start, end
}

var (
	errWorkHoursInverted  = clockError("work hours day_start must precede day_end")
	errWorkHoursDurations = clockError("work hours durations must be positive")
)

type clockError string

func (e clockError) Error() string { return string(e) }
