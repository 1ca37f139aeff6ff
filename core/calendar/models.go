package calendar

import (
	"time"

	"github.com/trezcool/scola/core"
)

// Event types
const (
	TypeAssignment = "assignment"
	TypeTest       = "test"
	TypeExam       = "exam"
	TypeMeeting    = "meeting"
	TypeOther      = "other"
)

var EventTypes = []EventType{
	{Value: TypeAssignment, Name: "Assignment", Color: "#3b82f6"},
	{Value: TypeTest, Name: "Test", Color: "#f59e0b"},
	{Value: TypeExam, Name: "Exam", Color: "#ef4444"},
	{Value: TypeMeeting, Name: "Meeting", Color: "#10b981"},
	{Value: TypeOther, Name: "Other", Color: "#6b7280"},
}

type EventType struct {
	Value string `json:"value"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Type        string    `json:"type"`
	CreatedBy   string    `json:"created_by"`
	CreatedByID string    `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type NewEvent struct {
	Title       string `json:"title" validate:"required,notblank"`
	Description string `json:"description"`
	Date        string `json:"date" validate:"required,isodate"`
	Time        string `json:"time" validate:"required,notblank"`
	Type        string `json:"type" validate:"required,oneof=assignment test exam meeting other"`
}

func (ne *NewEvent) Clean() {
	ne.Title = core.CleanString(ne.Title)
	ne.Description = core.CleanString(ne.Description)
	ne.Time = core.CleanString(ne.Time)
	ne.Type = core.CleanString(ne.Type, true /* lower */)
}

// Day is a cell of a Month grid.
type Day struct {
	Date   string  `json:"date"`
	Day    int     `json:"day"`
	Events []Event `json:"events"`
}

// Month is a calendar grid: Days starts with nil cells for the weekdays (from Sunday) before the 1st.
type Month struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Name  string `json:"name"`
	Days  []*Day `json:"days"`
}
