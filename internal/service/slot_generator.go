package service

import (
	"github.com/campus-ops/timetable-api/internal/models"
)

// slotCandidates holds the two per-day candidate sequences derived from a
// department's working hours: lecture-length and lab-length intervals.
type slotCandidates struct {
	Lecture []models.SlotCandidate
	Lab     []models.SlotCandidate
}

// buildSlotCandidates generates both sequences for a validated config. Both
// span the full working day minus the break window.
func buildSlotCandidates(cfg models.WorkHoursConfig, brk models.BreakWindow) (slotCandidates, error) {
	if err := cfg.Validate(); err != nil {
		return slotCandidates{}, err
	}
	dayStart, dayEnd := cfg.Span()
	return slotCandidates{
		Lecture: slotsForDuration(dayStart, dayEnd, models.ClockMinutes(cfg.LectureDuration*60), brk),
		Lab:     slotsForDuration(dayStart, dayEnd, models.ClockMinutes(cfg.LabDuration*60), brk),
	}, nil
}

// slotsForDuration steps a cursor forward from dayStart emitting back-to-back
// intervals of the given duration. A candidate intersecting the break window
// is dropped and the cursor jumps to the break end; a candidate extending past
// dayEnd is discarded.
func slotsForDuration(dayStart, dayEnd, duration models.ClockMinutes, brk models.BreakWindow) []models.SlotCandidate {
	if duration <= 0 {
		return nil
	}
	var slots []models.SlotCandidate
	cursor := dayStart
	for cursor < dayEnd {
		candidate := models.SlotCandidate{Start: cursor, End: cursor + duration}
		if brk.Overlaps(candidate.Start, candidate.End) {
			cursor = brk.End
			continue
		}
		if candidate.End > dayEnd {
			break
		}
		slots = append(slots, candidate)
		cursor = candidate.End
	}
	return slots
}

// byType selects the matching-type sequence for a session request.
func (s slotCandidates) byType(t models.SessionType) []models.SlotCandidate {
	if t == models.SessionTypeLab {
		return s.Lab
	}
	return s.Lecture
}
