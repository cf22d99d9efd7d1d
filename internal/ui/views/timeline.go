package views

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/milestones/internal/derive"
	"github.com/tgienger/milestones/internal/models"
	"github.com/tgienger/milestones/internal/ui/styles"
)

func (v *MilestonesView) renderTimeline() string {
	s := v.styles
	ms := v.store.Visible()

	if len(ms) == 0 {
		return s.TitleMuted.Render("No milestones. Press 'n' to create one.")
	}

	visibleItems := max(v.bodyHeight()/3, 1)
	endIdx := min(v.scrollY+visibleItems, len(ms))

	var items []string
	for i := v.scrollY; i < endIdx; i++ {
		items = append(items, v.renderTimelineItem(ms[i], i == v.cursor))
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *MilestonesView) renderTimelineItem(m models.Milestone, selected bool) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)

	marker := "○"
	switch m.Status {
	case models.StatusInProgress:
		marker = "◐"
	case models.StatusCompleted:
		marker = "●"
	}
	marker = lipgloss.NewStyle().Foreground(styles.StatusColor(m.Status)).Render(marker)

	date := s.DueDate.Render(dueLabel(m.DueDate))
	badge := s.StatusBadge(m.Status)
	overdue := ""
	if derive.ShowOverdue(m, v.now()) {
		overdue = " " + s.Overdue.Render("OVERDUE")
	}

	// row padding (4) plus marker and separators (6)
	titleWidth := width - lipgloss.Width(date) - lipgloss.Width(badge) - lipgloss.Width(overdue) - 10
	titleLine := marker + " " + date + "  " + truncate(m.Title, titleWidth) + "  " + badge + overdue

	desc := truncate(m.Description, width-6)
	if desc == "" {
		desc = "No description"
	}
	desc = s.TitleMuted.Render(desc)
	descLine := "│ " + desc

	var rowStyle lipgloss.Style
	if selected {
		rowStyle = s.ListSelected.Width(width)
	} else {
		rowStyle = s.ListItem.Width(width)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		rowStyle.Render(titleLine),
		rowStyle.Render(descLine),
	) + "\n"
}
