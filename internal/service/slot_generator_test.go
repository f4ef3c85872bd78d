package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/timetable-api/internal/models"
)

func standardWorkHours() models.WorkHoursConfig {
	return models.WorkHoursConfig{
		DepartmentID:    "dept-1",
		DayStart:        "09:00",
		DayEnd:          "17:00",
		LectureDuration: 1,
		LabDuration:     2,
	}
}

func standardBreak() models.BreakWindow {
	return models.BreakWindow{Start: 13 * 60, End: 14 * 60}
}

func TestBuildSlotCandidatesSkipsBreakWindow(t *testing.T) {
	slots, err := buildSlotCandidates(standardWorkHours(), standardBreak())
	require.NoError(t, err)

	// 09-13 yields four lecture slots, 14-17 three more.
	require.Len(t, slots.Lecture, 7)
	assert.Equal(t, models.ClockMinutes(9*60), slots.Lecture[0].Start)
	assert.Equal(t, models.ClockMinutes(12*60), slots.Lecture[3].Start)
	assert.Equal(t, models.ClockMinutes(14*60), slots.Lecture[4].Start)
	assert.Equal(t, models.ClockMinutes(17*60), slots.Lecture[6].End)

	brk := standardBreak()
	for _, slot := range slots.Lecture {
		assert.False(t, brk.Overlaps(slot.Start, slot.End),
			"lecture slot %s-%s intersects the break", slot.Start, slot.End)
	}
	for _, slot := range slots.Lab {
		assert.False(t, brk.Overlaps(slot.Start, slot.End),
			"lab slot %s-%s intersects the break", slot.Start, slot.End)
	}
}

func TestBuildSlotCandidatesLabSpacing(t *testing.T) {
	slots, err := buildSlotCandidates(standardWorkHours(), standardBreak())
	require.NoError(t, err)

	// 09-11, 11-13, then the 13-15 candidate hits the break and the cursor
	// jumps to 14, leaving 14-16. 16-18 runs past day end and is dropped.
	require.Len(t, slots.Lab, 3)
	assert.Equal(t, models.ClockMinutes(9*60), slots.Lab[0].Start)
	assert.Equal(t, models.ClockMinutes(11*60), slots.Lab[1].Start)
	assert.Equal(t, models.ClockMinutes(14*60), slots.Lab[2].Start)
	assert.Equal(t, models.ClockMinutes(16*60), slots.Lab[2].End)
}

func TestBuildSlotCandidatesBackToBack(t *testing.T) {
	slots, err := buildSlotCandidates(standardWorkHours(), standardBreak())
	require.NoError(t, err)

	for i := 1; i < len(slots.Lecture); i++ {
		prev, cur := slots.Lecture[i-1], slots.Lecture[i]
		assert.GreaterOrEqual(t, cur.Start, prev.End, "same-type slots must not overlap")
	}
}

func TestBuildSlotCandidatesNoBreak(t *testing.T) {
	slots, err := buildSlotCandidates(standardWorkHours(), models.BreakWindow{})
	require.NoError(t, err)

	assert.Len(t, slots.Lecture, 8)
	assert.Len(t, slots.Lab, 4)
}

func TestBuildSlotCandidatesRejectsInvalidConfig(t *testing.T) {
	cfg := standardWorkHours()
	cfg.DayEnd = "08:00"
	_, err := buildSlotCandidates(cfg, standardBreak())
	assert.Error(t, err)
}

func TestSlotCandidatesByType(t *testing.T) {
	slots, err := buildSlotCandidates(standardWorkHours(), standardBreak())
	require.NoError(t, err)

	assert.Equal(t, slots.Lecture, slots.byType(models.SessionTypeLecture))
	assert.Equal(t, slots.Lab, slots.byType(models.SessionTypeLab))
}
