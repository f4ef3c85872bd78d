package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ClockMinutes is a time of day expressed as minutes since midnight. All
// schedule comparisons run on this type so that "6:30" and "06:30" denote the
// same instant regardless of how the caller formatted them.
type ClockMinutes int

// ParseClock accepts H:MM or HH:MM and returns a normalized minute-of-day value.
func ParseClock(raw string) (ClockMinutes, error) {
	trimmed := strings.TrimSpace(raw)
	parts := strings.SplitN(trimmed, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", raw)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", raw)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", raw)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("clock value %q out of range", raw)
	}
	return ClockMinutes(hours*60 + minutes), nil
}

// String renders the value as zero-padded HH:MM.
func (c ClockMinutes) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// BreakWindow is the process-wide interval excluded from scheduling.
type BreakWindow struct {
	Start ClockMinutes
	End   ClockMinutes
}

// Contains reports whether the given start time falls inside the window.
func (b BreakWindow) Contains(t ClockMinutes) bool {
	if b.End <= b.Start {
		return false
	}
	return t >= b.Start && t < b.End
}

// Overlaps reports whether [start, end) intersects the window.
func (b BreakWindow) Overlaps(start, end ClockMinutes) bool {
	if b.End <= b.Start {
		return false
	}
	return start < b.End && end > b.Start
}

// SlotCandidate is one bookable interval of fixed duration inside a
// department's working hours.
type SlotCandidate struct {
	Start ClockMinutes
	End   ClockMinutes
}
