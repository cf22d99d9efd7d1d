package models

// Status is the progress state of a milestone
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every status in board column order
var Statuses = []Status{StatusNotStarted, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the three known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Label returns the human readable column name
func (s Status) Label() string {
	switch s {
	case StatusNotStarted:
		return "Not Started"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

// Next returns the following status, wrapping around
func (s Status) Next() Status {
	return Statuses[(s.index()+1)%len(Statuses)]
}

// Prev returns the preceding status, wrapping around
func (s Status) Prev() Status {
	return Statuses[(s.index()+len(Statuses)-1)%len(Statuses)]
}

func (s Status) index() int {
	for i, st := range Statuses {
		if st == s {
			return i
		}
	}
	return 0
}

// Palette is the fixed set of project colors, assigned by creation order
var Palette = []string{
	"#7aa2f7",
	"#bb9af7",
	"#9ece6a",
	"#e0af68",
	"#f7768e",
	"#7dcfff",
}

// PaletteColor returns the color for the n-th created project
func PaletteColor(n int) string {
	return Palette[n%len(Palette)]
}

// Project groups milestones
type Project struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Color       string `json:"color" yaml:"color"`
}

// Milestone is a dated checkpoint inside a project
type Milestone struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	DueDate     string `json:"dueDate" yaml:"dueDate"` // YYYY-MM-DD or empty
	Status      Status `json:"status" yaml:"status"`
	ProjectID   string `json:"projectId" yaml:"projectId"`
}

// MilestoneFields holds the mutable fields of a milestone
type MilestoneFields struct {
	Title       string
	Description string
	DueDate     string
	Status      Status
}

// Snapshot is the persisted state of both collections
type Snapshot struct {
	Projects   []Project   `json:"projects" yaml:"projects"`
	Milestones []Milestone `json:"milestones" yaml:"milestones"`
}
