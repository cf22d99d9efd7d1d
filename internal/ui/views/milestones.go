package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/tgienger/milestones/internal/models"
	"github.com/tgienger/milestones/internal/store"
	"github.com/tgienger/milestones/internal/ui/drag"
	"github.com/tgienger/milestones/internal/ui/keys"
	"github.com/tgienger/milestones/internal/ui/styles"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// truncate fits s on a single line of at most width cells.
// Line breaks collapse to spaces so every row keeps its fixed height.
func truncate(s string, width int) string {
	if width < 1 {
		return ""
	}
	return runewidth.Truncate(strings.Join(strings.Fields(s), " "), width, "…")
}

// Mode selects how the milestones of a project are laid out
type Mode string

const (
	ModeTimeline Mode = "timeline"
	ModeBoard    Mode = "board"
)

// BackToProjects signals to go back to project list
type BackToProjects struct{}

// ViewModeChanged is emitted when the user toggles timeline/board
type ViewModeChanged struct {
	Mode Mode
}

// MilestonesView shows one project's milestones as a timeline or a board
type MilestonesView struct {
	store   *store.Store
	project models.Project
	styles  *styles.Styles
	keys    keys.KeyMap
	now     func() time.Time

	width  int
	height int

	mode Mode

	// Timeline selection
	cursor  int
	scrollY int

	// Board selection, one row per status column
	column    int
	rows      [3]int
	colScroll [3]int
	gesture   drag.Gesture

	// Milestone creation/editing
	editing      bool
	editingID    string // empty when creating
	editTitle    textinput.Model
	editDesc     textarea.Model
	editDue      textinput.Model
	editStatus   models.Status
	editFocusIdx int // 0=title, 1=desc, 2=due, 3=status, 4=save
	editErr      string

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string

	showHelpPopup bool
}

// NewMilestonesView creates the view for project in the given mode
func NewMilestonesView(st *store.Store, project models.Project, mode Mode) *MilestonesView {
	editTitle := textinput.New()
	editTitle.Placeholder = "Milestone title"
	editTitle.CharLimit = 200

	editDesc := textarea.New()
	editDesc.Placeholder = "Description"
	editDesc.CharLimit = 1000
	editDesc.SetWidth(50)
	editDesc.SetHeight(3)
	editDesc.ShowLineNumbers = false

	editDue := textinput.New()
	editDue.Placeholder = "YYYY-MM-DD"
	editDue.CharLimit = 10

	if mode != ModeBoard {
		mode = ModeTimeline
	}

	return &MilestonesView{
		store:      st,
		project:    project,
		styles:     styles.NewStyles(),
		keys:       keys.DefaultKeyMap(),
		now:        time.Now,
		mode:       mode,
		editTitle:  editTitle,
		editDesc:   editDesc,
		editDue:    editDue,
		editStatus: models.StatusNotStarted,
	}
}

// Mode returns the current layout
func (v *MilestonesView) Mode() Mode { return v.mode }

// Init initializes the view
func (v *MilestonesView) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (v *MilestonesView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		v.editDesc.SetWidth(clamp(contentWidth-10, 20, 50))
		v.ensureVisible()
		return v, nil

	case tea.MouseMsg:
		if v.mode == ModeBoard && !v.editing && !v.confirmingDelete && !v.showHelpPopup {
			v.updateMouse(msg)
		}
		return v, nil

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.editing {
			return v.updateEditing(msg)
		}

		if v.gesture.Active() {
			return v.updateDragging(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *MilestonesView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToProjects{} }

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil

	case key.Matches(msg, v.keys.ToggleView):
		selected, ok := v.selected()
		if v.mode == ModeBoard {
			v.mode = ModeTimeline
		} else {
			v.mode = ModeBoard
		}
		if ok {
			v.selectID(selected.ID)
		}
		mode := v.mode
		return v, func() tea.Msg { return ViewModeChanged{Mode: mode} }

	case key.Matches(msg, v.keys.New):
		v.startNewMilestone()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit), key.Matches(msg, v.keys.Enter):
		if m, ok := v.selected(); ok {
			v.startEditMilestone(m)
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if m, ok := v.selected(); ok {
			v.confirmingDelete = true
			v.deleteTargetID = m.ID
			v.deleteTargetName = m.Title
		}
		return v, nil

	case key.Matches(msg, v.keys.NotStarted):
		v.setSelectedStatus(models.StatusNotStarted)
		return v, nil

	case key.Matches(msg, v.keys.InProgress):
		v.setSelectedStatus(models.StatusInProgress)
		return v, nil

	case key.Matches(msg, v.keys.Completed):
		v.setSelectedStatus(models.StatusCompleted)
		return v, nil

	case key.Matches(msg, v.keys.Up):
		v.moveRow(-1)
		return v, nil

	case key.Matches(msg, v.keys.Down):
		v.moveRow(1)
		return v, nil

	case key.Matches(msg, v.keys.Left):
		if v.mode == ModeBoard {
			v.moveColumn(-1)
		}
		return v, nil

	case key.Matches(msg, v.keys.Right):
		if v.mode == ModeBoard {
			v.moveColumn(1)
		}
		return v, nil

	case key.Matches(msg, v.keys.Grab):
		if v.mode == ModeBoard {
			if m, ok := v.selected(); ok {
				v.gesture.Begin(m.ID, m.Status)
			}
		}
		return v, nil
	}

	return v, nil
}

func (v *MilestonesView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.store.DeleteMilestone(v.deleteTargetID)
		v.confirmingDelete = false
		v.clampSelection()
		return v, nil
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

// setSelectedStatus is the status-button path; drops use the same store call
func (v *MilestonesView) setSelectedStatus(status models.Status) {
	m, ok := v.selected()
	if !ok {
		return
	}
	if v.store.SetMilestoneStatus(m.ID, status) {
		v.selectID(m.ID)
	}
}

// selected returns the milestone under the cursor in the current mode
func (v *MilestonesView) selected() (models.Milestone, bool) {
	if v.mode == ModeBoard {
		col := v.store.Grouped()[models.Statuses[v.column]]
		if row := v.rows[v.column]; row < len(col) {
			return col[row], true
		}
		return models.Milestone{}, false
	}

	ms := v.store.Visible()
	if v.cursor < len(ms) {
		return ms[v.cursor], true
	}
	return models.Milestone{}, false
}

// selectID moves both the timeline cursor and the board selection onto id
func (v *MilestonesView) selectID(id string) {
	for i, m := range v.store.Visible() {
		if m.ID == id {
			v.cursor = i
			break
		}
	}
	groups := v.store.Grouped()
	for c, status := range models.Statuses {
		for r, m := range groups[status] {
			if m.ID == id {
				v.column = c
				v.rows[c] = r
			}
		}
	}
	v.ensureVisible()
}

func (v *MilestonesView) clampSelection() {
	n := len(v.store.Visible())
	v.cursor = clamp(v.cursor, 0, max(0, n-1))
	groups := v.store.Grouped()
	for c, status := range models.Statuses {
		v.rows[c] = clamp(v.rows[c], 0, max(0, len(groups[status])-1))
	}
	v.ensureVisible()
}

func (v *MilestonesView) moveRow(delta int) {
	if v.mode == ModeBoard {
		n := len(v.store.Grouped()[models.Statuses[v.column]])
		v.rows[v.column] = clamp(v.rows[v.column]+delta, 0, max(0, n-1))
	} else {
		n := len(v.store.Visible())
		v.cursor = clamp(v.cursor+delta, 0, max(0, n-1))
	}
	v.ensureVisible()
}

func (v *MilestonesView) moveColumn(delta int) {
	v.column = clamp(v.column+delta, 0, len(models.Statuses)-1)
}

func (v *MilestonesView) ensureVisible() {
	// Timeline rows are 2 lines + 1 margin
	visible := max(v.bodyHeight()/3, 1)
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visible {
		v.scrollY = v.cursor - visible + 1
	}

	perColumn := v.cardsPerColumn()
	for c := range v.rows {
		if v.rows[c] < v.colScroll[c] {
			v.colScroll[c] = v.rows[c]
		} else if v.rows[c] >= v.colScroll[c]+perColumn {
			v.colScroll[c] = v.rows[c] - perColumn + 1
		}
	}
}

// bodyHeight is the number of lines left for the timeline or board
func (v *MilestonesView) bodyHeight() int {
	// header + blank line + help block
	return max(v.height-lipgloss.Height(v.renderHeader())-1-v.footerHeight(), 3)
}

func (v *MilestonesView) footerHeight() int {
	return lipgloss.Height(v.renderFooter())
}

// View renders the view
func (v *MilestonesView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.editing {
		return v.renderEditForm()
	}

	contentWidth := styles.ContentWidth(v.width)

	var body string
	if v.mode == ModeBoard {
		body = v.renderBoard()
	} else {
		body = v.renderTimeline()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		v.renderHeader(),
		"",
		lipgloss.NewStyle().Height(v.bodyHeight()).Render(body),
		v.renderFooter(),
	)
	content = lipgloss.NewStyle().Width(contentWidth).Render(content)
	return styles.CenterView(content, v.width, v.height)
}

func (v *MilestonesView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	title := styles.Swatch(v.project.Color) + " " + s.Title.Render(v.project.Name)

	stats := v.store.ProjectStats(v.project.ID, v.now())
	barWidth := clamp(contentWidth-40, 10, 30)
	summary := fmt.Sprintf(" %d%% complete • %d milestones", stats.Completion, stats.Total)
	if stats.Overdue > 0 {
		summary += " • " + s.Overdue.Render(fmt.Sprintf("%d overdue", stats.Overdue))
	}
	progress := s.ProgressBar(stats.Completion, barWidth) + s.TitleMuted.Render(summary)

	timelineTab := s.TitleMuted.Render(" Timeline ")
	boardTab := s.TitleMuted.Render(" Board ")
	if v.mode == ModeBoard {
		boardTab = s.ButtonPrimary.Render("Board")
	} else {
		timelineTab = s.ButtonPrimary.Render("Timeline")
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Center, timelineTab, " ", boardTab)

	return lipgloss.JoinVertical(lipgloss.Left, title, progress, tabs)
}

func (v *MilestonesView) renderFooter() string {
	s := v.styles
	lines := []string{}
	if err := v.store.SaveErr(); err != nil {
		lines = append(lines, s.StatusError.Render("Changes not saved: "+err.Error()))
	}
	if v.gesture.Active() {
		lines = append(lines, s.StatusBar.Render(fmt.Sprintf("Moving to %s • ←/→ choose • space drop • esc cancel", v.gesture.Over().Label())))
	}
	lines = append(lines, v.renderHelp())
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (v *MilestonesView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}

	k := v.styles.HelpKey
	if v.mode == ModeBoard {
		return v.styles.Help.Render(
			fmt.Sprintf("%s move • %s drag • %s status • %s new • %s edit • %s del • %s timeline • %s back",
				k.Render("←↑↓→"),
				k.Render("space"),
				k.Render("1-3"),
				k.Render("n"),
				k.Render("e"),
				k.Render("d"),
				k.Render("v"),
				k.Render("esc"),
			),
		)
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s move • %s status • %s new • %s edit • %s del • %s board • %s back • %s quit",
			k.Render("↑↓"),
			k.Render("1-3"),
			k.Render("n"),
			k.Render("e"),
			k.Render("d"),
			k.Render("v"),
			k.Render("esc"),
			k.Render("q"),
		),
	)
}

func (v *MilestonesView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("↑↓") + s.HelpDesc.Render("     select milestone"),
		s.HelpKey.Render("←→") + s.HelpDesc.Render("     switch column (board)"),
		s.HelpKey.Render("space") + s.HelpDesc.Render("  pick up / drop card (board)"),
		s.HelpKey.Render("1") + s.HelpDesc.Render("      mark not started"),
		s.HelpKey.Render("2") + s.HelpDesc.Render("      mark in progress"),
		s.HelpKey.Render("3") + s.HelpDesc.Render("      mark completed"),
		s.HelpKey.Render("n") + s.HelpDesc.Render("      new milestone"),
		s.HelpKey.Render("e") + s.HelpDesc.Render("      edit milestone"),
		s.HelpKey.Render("d") + s.HelpDesc.Render("      delete milestone"),
		s.HelpKey.Render("v") + s.HelpDesc.Render("      toggle timeline/board"),
		s.HelpKey.Render("esc") + s.HelpDesc.Render("    back to projects"),
		s.HelpKey.Render("q") + s.HelpDesc.Render("      quit"),
		"",
		s.TitleMuted.Render("Cards can also be dragged with the mouse"),
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.FilterBar.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *MilestonesView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Milestone?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("%q will be removed.", truncate(v.deleteTargetName, contentWidth-20))),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func dueLabel(due string) string {
	if strings.TrimSpace(due) == "" {
		return "No date"
	}
	return due
}
