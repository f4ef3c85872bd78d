package models

// RoomType distinguishes classroom and laboratory inventory.
type RoomType string

const (
	RoomTypeClassroom RoomType = "CLASSROOM"
	RoomTypeLab       RoomType = "LAB"
)

// RoomTypeFor maps a session type to the room type it requires.
func RoomTypeFor(session SessionType) RoomType {
	if session == SessionTypeLab {
		return RoomTypeLab
	}
	return RoomTypeClassroom
}

// SectionRoom is a room owned by a section. A section carries at most one
// classroom and at most one lab room; that cardinality is enforced by the
// room-assignment collaborator, not here.
type SectionRoom struct {
	ID           string   `db:"id" json:"id"`
	DepartmentID string   `db:"department_id" json:"department_id"`
	BatchID      string   `db:"batch_id" json:"batch_id"`
	Section      string   `db:"section" json:"section"`
	RoomID       string   `db:"room_id" json:"room_id"`
	RoomType     RoomType `db:"room_type" json:"room_type"`
}
