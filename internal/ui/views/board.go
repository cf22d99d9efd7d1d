package views

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/milestones/internal/derive"
	"github.com/tgienger/milestones/internal/models"
	"github.com/tgienger/milestones/internal/ui/styles"
)

// Each card is a title line and a date line
const cardHeight = 2

// Column chrome: top border, label, rule, bottom border
const columnChrome = 4

// boardGeometry locates the board on screen for mouse hit-testing
type boardGeometry struct {
	left     int // screen x of the first column
	top      int // screen y of the column top borders
	height   int // total column height including borders
	colWidth int // outer width of one column
	cardsTop int // screen y of the first card line
}

func (v *MilestonesView) geometry() boardGeometry {
	contentWidth := styles.ContentWidth(v.width)
	left := 0
	if v.width > styles.MaxWidth {
		left = (v.width - contentWidth) / 2
	}
	top := lipgloss.Height(v.renderHeader()) + 1
	return boardGeometry{
		left:     left,
		top:      top,
		height:   v.bodyHeight(),
		colWidth: contentWidth / len(models.Statuses),
		cardsTop: top + 3,
	}
}

func (v *MilestonesView) cardsPerColumn() int {
	return max((v.bodyHeight()-columnChrome)/cardHeight, 1)
}

// columnAt maps a screen cell to a board column
func (v *MilestonesView) columnAt(x, y int) (int, bool) {
	g := v.geometry()
	if y < g.top || y >= g.top+g.height || x < g.left || g.colWidth <= 0 {
		return 0, false
	}
	c := (x - g.left) / g.colWidth
	if c >= len(models.Statuses) {
		return 0, false
	}
	return c, true
}

// cardAt maps a screen cell to a card position
func (v *MilestonesView) cardAt(x, y int) (col, row int, ok bool) {
	col, ok = v.columnAt(x, y)
	if !ok {
		return 0, 0, false
	}
	g := v.geometry()
	rel := y - g.cardsTop
	if rel < 0 {
		return 0, 0, false
	}
	idx := rel / cardHeight
	if idx >= v.cardsPerColumn() {
		return 0, 0, false
	}
	row = v.colScroll[col] + idx
	if row >= len(v.store.Grouped()[models.Statuses[col]]) {
		return 0, 0, false
	}
	return col, row, true
}

func (v *MilestonesView) updateMouse(msg tea.MouseMsg) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		col, row, ok := v.cardAt(msg.X, msg.Y)
		if !ok {
			return
		}
		v.column = col
		v.rows[col] = row
		if m, ok := v.selected(); ok {
			v.gesture.Begin(m.ID, m.Status)
		}

	case tea.MouseActionMotion:
		if !v.gesture.Active() {
			return
		}
		if col, ok := v.columnAt(msg.X, msg.Y); ok {
			v.gesture.Hover(models.Statuses[col])
		}

	case tea.MouseActionRelease:
		if !v.gesture.Active() {
			return
		}
		col, ok := v.columnAt(msg.X, msg.Y)
		if !ok {
			v.gesture.Cancel()
			return
		}
		v.drop(models.Statuses[col])
	}
}

func (v *MilestonesView) updateDragging(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	over := slices.Index(models.Statuses, v.gesture.Over())

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	case key.Matches(msg, v.keys.Back):
		v.gesture.Cancel()
	case key.Matches(msg, v.keys.Left):
		v.gesture.Hover(models.Statuses[clamp(over-1, 0, len(models.Statuses)-1)])
	case key.Matches(msg, v.keys.Right):
		v.gesture.Hover(models.Statuses[clamp(over+1, 0, len(models.Statuses)-1)])
	case key.Matches(msg, v.keys.Grab), key.Matches(msg, v.keys.Enter):
		v.drop(v.gesture.Over())
	}
	return v, nil
}

// drop finishes the gesture with a single status change
func (v *MilestonesView) drop(to models.Status) {
	id, status, ok := v.gesture.Drop(to)
	if !ok {
		return
	}
	if v.store.SetMilestoneStatus(id, status) {
		v.selectID(id)
	}
}

func (v *MilestonesView) renderBoard() string {
	g := v.geometry()
	groups := v.store.Grouped()

	active := v.column
	if v.gesture.Active() {
		active = slices.Index(models.Statuses, v.gesture.Over())
	}

	cols := make([]string, len(models.Statuses))
	for c, status := range models.Statuses {
		cols[c] = v.renderColumn(c, status, groups[status], c == active, g)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (v *MilestonesView) renderColumn(c int, status models.Status, cards []models.Milestone, active bool, g boardGeometry) string {
	s := v.styles
	inner := max(g.colWidth-2, 8) // minus borders
	textWidth := inner - 2        // minus padding

	label := lipgloss.NewStyle().Foreground(styles.StatusColor(status)).Bold(true).
		Render(truncate(fmt.Sprintf("%s (%d)", status.Label(), len(cards)), textWidth))
	rule := s.TitleMuted.Render(strings.Repeat("─", max(textWidth, 0)))

	lines := []string{label, rule}
	perColumn := v.cardsPerColumn()
	end := min(v.colScroll[c]+perColumn, len(cards))
	for i := v.colScroll[c]; i < end; i++ {
		lines = append(lines, v.renderCard(cards[i], c == v.column && i == v.rows[c], textWidth))
	}
	if len(cards) == 0 {
		lines = append(lines, s.TitleMuted.Render(truncate("Drop here", textWidth)))
	}

	colStyle := s.Column
	if active {
		colStyle = s.ColumnActive
	}
	return colStyle.Width(inner).Height(max(g.height-2, 1)).Render(strings.Join(lines, "\n"))
}

func (v *MilestonesView) renderCard(m models.Milestone, selected bool, width int) string {
	s := v.styles

	style := s.Card
	switch {
	case v.gesture.Active() && v.gesture.ID() == m.ID:
		style = s.CardDragging
	case selected:
		style = s.CardSelected
	}

	meta := s.DueDate.Render(dueLabel(m.DueDate))
	if derive.ShowOverdue(m, v.now()) {
		meta += " " + s.Overdue.Render("!")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		style.Width(width).Render(truncate(m.Title, width)),
		meta,
	)
}
