package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/milestones/internal/models"
)

// Theme represents a color scheme for the application
type Theme struct {
	Name string

	// Base colors
	Background    lipgloss.Color
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	// Accent colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	// Semantic colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// UI element colors
	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Selection   lipgloss.Color
	Cursor      lipgloss.Color
}

// TokyoNight is the default color theme
var TokyoNight = Theme{
	Name: "Tokyo Night",

	Background:    lipgloss.Color("#1a1b26"),
	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),

	Primary:   lipgloss.Color("#7aa2f7"),
	Secondary: lipgloss.Color("#bb9af7"),
	Accent:    lipgloss.Color("#7dcfff"),

	Success: lipgloss.Color("#9ece6a"),
	Warning: lipgloss.Color("#e0af68"),
	Error:   lipgloss.Color("#f7768e"),
	Info:    lipgloss.Color("#7aa2f7"),

	Border:      lipgloss.Color("#3b4261"),
	BorderFocus: lipgloss.Color("#7aa2f7"),
	Selection:   lipgloss.Color("#33467c"),
	Cursor:      lipgloss.Color("#c0caf5"),
}

// Current holds the active theme
var Current = TokyoNight

// MaxWidth is the maximum content width for the app (classic terminal width)
const MaxWidth = 80

// ContentWidth returns the actual content width to use (min of terminal width and MaxWidth)
func ContentWidth(terminalWidth int) int {
	if terminalWidth > MaxWidth {
		return MaxWidth
	}
	return terminalWidth
}

// CenterView wraps content and centers it horizontally if terminal is wider than MaxWidth
func CenterView(content string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= MaxWidth {
		return content
	}
	return lipgloss.Place(terminalWidth, terminalHeight,
		lipgloss.Center, lipgloss.Top,
		content,
	)
}

// Styles holds all the pre-computed styles for the UI
type Styles struct {
	// Titles
	Title      lipgloss.Style
	TitleMuted lipgloss.Style

	// Lists
	ListItem     lipgloss.Style
	ListSelected lipgloss.Style

	// Popups and dropdown frames
	FilterBar lipgloss.Style

	// Buttons
	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	ButtonPrimary lipgloss.Style

	// Milestone rows and cards
	Badge         lipgloss.Style
	DueDate       lipgloss.Style
	Overdue       lipgloss.Style
	Column        lipgloss.Style
	ColumnActive  lipgloss.Style
	Card          lipgloss.Style
	CardSelected  lipgloss.Style
	CardDragging  lipgloss.Style
	ProgressFill  lipgloss.Style
	ProgressEmpty lipgloss.Style

	// Input fields
	Input        lipgloss.Style
	InputFocused lipgloss.Style
	InputError   lipgloss.Style

	// Help text
	Help     lipgloss.Style
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style

	// Status bar
	StatusBar   lipgloss.Style
	StatusError lipgloss.Style
}

// NewStyles creates styles based on the current theme
func NewStyles() *Styles {
	t := Current

	return &Styles{
		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		TitleMuted: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		ListItem: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 2),

		ListSelected: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Padding(0, 2).
			Bold(true),

		FilterBar: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border),

		Button: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 2),

		ButtonFocused: lipgloss.NewStyle().
			Foreground(t.Primary).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 2).
			Bold(true),

		ButtonPrimary: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Primary).
			Padding(0, 2).
			Bold(true),

		Badge: lipgloss.NewStyle().
			Foreground(t.Background).
			Padding(0, 1).
			Bold(true),

		DueDate: lipgloss.NewStyle().
			Foreground(t.Accent),

		Overdue: lipgloss.NewStyle().
			Foreground(t.Error).
			Bold(true),

		Column: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		ColumnActive: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 1),

		Card: lipgloss.NewStyle().
			Foreground(t.Foreground),

		CardSelected: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Bold(true),

		CardDragging: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Warning).
			Bold(true),

		ProgressFill: lipgloss.NewStyle().
			Foreground(t.Success),

		ProgressEmpty: lipgloss.NewStyle().
			Foreground(t.Border),

		Input: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		InputFocused: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 1),

		InputError: lipgloss.NewStyle().
			Foreground(t.Error),

		Help: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(1, 2),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		HelpDesc: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		StatusBar: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(0, 1),

		StatusError: lipgloss.NewStyle().
			Foreground(t.Error).
			Padding(0, 1),
	}
}

// StatusColor maps a milestone status to a theme color
func StatusColor(s models.Status) lipgloss.Color {
	switch s {
	case models.StatusInProgress:
		return Current.Warning
	case models.StatusCompleted:
		return Current.Success
	}
	return Current.ForegroundDim
}

// StatusBadge renders a colored status pill
func (s *Styles) StatusBadge(st models.Status) string {
	return s.Badge.Background(StatusColor(st)).Render(st.Label())
}

// Swatch renders a project color dot
func Swatch(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●")
}

// ProgressBar renders pct as a bar of the given width
func (s *Styles) ProgressBar(pct, width int) string {
	if width < 1 {
		return ""
	}
	filled := width * pct / 100
	return s.ProgressFill.Render(strings.Repeat("█", filled)) +
		s.ProgressEmpty.Render(strings.Repeat("░", width-filled))
}
