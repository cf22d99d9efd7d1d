package views

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/milestones/internal/derive"
	"github.com/tgienger/milestones/internal/models"
	"github.com/tgienger/milestones/internal/ui/styles"
)

const editFields = 5 // title, desc, due, status, save

func (v *MilestonesView) startNewMilestone() {
	v.editing = true
	v.editingID = ""
	v.editFocusIdx = 0
	v.editErr = ""
	v.editTitle.Reset()
	v.editDesc.Reset()
	v.editDue.Reset()
	v.editStatus = models.StatusNotStarted
	// New cards land in the column the board cursor is on
	if v.mode == ModeBoard {
		v.editStatus = models.Statuses[v.column]
	}
	v.updateEditFocus()
}

func (v *MilestonesView) startEditMilestone(m models.Milestone) {
	v.editing = true
	v.editingID = m.ID
	v.editFocusIdx = 0
	v.editErr = ""
	v.editTitle.SetValue(m.Title)
	v.editDesc.SetValue(m.Description)
	v.editDue.SetValue(m.DueDate)
	v.editStatus = m.Status
	v.updateEditFocus()
}

func (v *MilestonesView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.saveMilestone()

	case key.Matches(msg, v.keys.Tab):
		v.editFocusIdx = (v.editFocusIdx + 1) % editFields
		v.updateEditFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.editFocusIdx = (v.editFocusIdx + editFields - 1) % editFields
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		// Enter on single-line fields moves to next field
		if v.editFocusIdx == 0 || v.editFocusIdx == 2 || v.editFocusIdx == 3 {
			v.editFocusIdx++
			v.updateEditFocus()
			return v, nil
		}
		if v.editFocusIdx == 4 {
			return v, v.saveMilestone()
		}
		// For the description textarea, let enter pass through for newlines

	case v.editFocusIdx == 3 && key.Matches(msg, v.keys.Left):
		v.editStatus = v.editStatus.Prev()
		return v, nil

	case v.editFocusIdx == 3 && (key.Matches(msg, v.keys.Right) || msg.String() == " "):
		v.editStatus = v.editStatus.Next()
		return v, nil
	}

	var cmd tea.Cmd
	switch v.editFocusIdx {
	case 0:
		v.editTitle, cmd = v.editTitle.Update(msg)
	case 1:
		v.editDesc, cmd = v.editDesc.Update(msg)
	case 2:
		v.editDue, cmd = v.editDue.Update(msg)
	}
	return v, cmd
}

func (v *MilestonesView) updateEditFocus() {
	v.editTitle.Blur()
	v.editDesc.Blur()
	v.editDue.Blur()

	switch v.editFocusIdx {
	case 0:
		v.editTitle.Focus()
	case 1:
		v.editDesc.Focus()
	case 2:
		v.editDue.Focus()
	}
}

func (v *MilestonesView) saveMilestone() tea.Cmd {
	title := strings.TrimSpace(v.editTitle.Value())
	if title == "" {
		v.editing = false
		return nil
	}

	due := strings.TrimSpace(v.editDue.Value())
	if due != "" {
		if _, ok := derive.ParseDueDate(due, time.Local); !ok {
			v.editErr = "Due date must be YYYY-MM-DD or empty"
			v.editFocusIdx = 2
			v.updateEditFocus()
			return nil
		}
	}
	desc := strings.TrimSpace(v.editDesc.Value())

	var id string
	if v.editingID == "" {
		m, ok := v.store.CreateMilestone(title, desc, due, v.editStatus)
		if !ok {
			v.editing = false
			return nil
		}
		id = m.ID
	} else {
		v.store.UpdateMilestone(v.editingID, models.MilestoneFields{
			Title:       title,
			Description: desc,
			DueDate:     due,
			Status:      v.editStatus,
		})
		id = v.editingID
	}

	v.editing = false
	v.editErr = ""
	v.selectID(id)
	return nil
}

func (v *MilestonesView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	formTitle := "New Milestone"
	if v.editingID != "" {
		formTitle = "Edit Milestone"
	}

	titleStyle := s.Input
	descStyle := s.Input
	dueStyle := s.Input
	statusStyle := s.Input
	btnStyle := s.Button

	switch v.editFocusIdx {
	case 0:
		titleStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		dueStyle = s.InputFocused
	case 3:
		statusStyle = s.InputFocused
	case 4:
		btnStyle = s.ButtonFocused
	}

	// Dynamic input width based on content width
	inputWidth := clamp(contentWidth-6, 20, 50)

	var options []string
	for _, st := range models.Statuses {
		if st == v.editStatus {
			options = append(options, s.StatusBadge(st))
		} else {
			options = append(options, s.TitleMuted.Render(st.Label()))
		}
	}
	statusSelector := strings.Join(options, "  ")

	rows := []string{
		s.Title.Render(formTitle),
		"",
		"Title:",
		titleStyle.Width(inputWidth).Render(v.editTitle.View()),
		"",
		"Description:",
		descStyle.Render(v.editDesc.View()),
		"",
		"Due date:",
		dueStyle.Width(14).Render(v.editDue.View()),
	}
	if v.editErr != "" {
		rows = append(rows, s.InputError.Render(v.editErr))
	}
	rows = append(rows,
		"",
		"Status:",
		statusStyle.Width(inputWidth).Render(statusSelector),
		"",
		btnStyle.Render(" Save "),
		"",
		s.TitleMuted.Render("Tab: next • ←/→: status • Ctrl+S: save • Esc: cancel"),
	)

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)

	// Center within content width, then center that in terminal
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
