package views

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/milestones/internal/models"
	"github.com/tgienger/milestones/internal/store"
)

type memPersister struct {
	snap  models.Snapshot
	saves int
}

func (p *memPersister) Load() (models.Snapshot, bool, error) { return p.snap, p.saves > 0, nil }

func (p *memPersister) Save(s models.Snapshot) error {
	p.snap = s
	p.saves++
	return nil
}

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local)

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyCtrlS = tea.KeyMsg{Type: tea.KeyCtrlS}
)

// newFixture builds a store with one project holding the given milestones
func newFixture(t *testing.T, ms ...models.Milestone) (*store.Store, *memPersister, models.Project) {
	t.Helper()
	p := &memPersister{}
	n := 0
	st, err := store.New(p, store.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	project, _ := st.CreateProject("Launch", "")
	for _, m := range ms {
		if _, ok := st.CreateMilestone(m.Title, m.Description, m.DueDate, m.Status); !ok {
			t.Fatalf("create milestone %q rejected", m.Title)
		}
	}
	return st, p, project
}

func newMilestonesView(t *testing.T, st *store.Store, project models.Project, mode Mode) *MilestonesView {
	t.Helper()
	v := NewMilestonesView(st, project, mode)
	v.now = func() time.Time { return fixedNow }
	v.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	return v
}

func send(v tea.Model, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = v.Update(msg)
	}
	return cmd
}

func statusOf(t *testing.T, st *store.Store, title string) models.Status {
	t.Helper()
	for _, m := range st.Milestones() {
		if m.Title == title {
			return m.Status
		}
	}
	t.Fatalf("milestone %q not found", title)
	return ""
}

func TestStatusButtonsInTimeline(t *testing.T) {
	st, _, project := newFixture(t,
		models.Milestone{Title: "Beta", DueDate: "2024-01-01", Status: models.StatusNotStarted},
		models.Milestone{Title: "GA", DueDate: "2024-09-01", Status: models.StatusNotStarted},
	)
	v := newMilestonesView(t, st, project, ModeTimeline)

	send(v, keyRunes("j"), keyRunes("3"))
	if got := statusOf(t, st, "GA"); got != models.StatusCompleted {
		t.Fatalf("expected GA completed, got %s", got)
	}
	if got := statusOf(t, st, "Beta"); got != models.StatusNotStarted {
		t.Fatalf("expected Beta untouched, got %s", got)
	}
}

func TestKeyboardDragMovesCardOnce(t *testing.T) {
	st, p, project := newFixture(t,
		models.Milestone{Title: "Beta", DueDate: "2024-01-01", Status: models.StatusNotStarted},
	)
	v := newMilestonesView(t, st, project, ModeBoard)
	before := p.saves

	send(v, keySpace)
	if !v.gesture.Active() {
		t.Fatal("expected card picked up")
	}
	send(v, keyRight, keySpace)

	if got := statusOf(t, st, "Beta"); got != models.StatusInProgress {
		t.Fatalf("expected in-progress, got %s", got)
	}
	if p.saves != before+1 {
		t.Fatalf("expected exactly one save for the drop, got %d", p.saves-before)
	}
	if v.column != 1 {
		t.Fatalf("expected selection to follow card to column 1, got %d", v.column)
	}

	groups := st.Grouped()
	if len(groups[models.StatusInProgress]) != 1 || len(groups[models.StatusNotStarted]) != 0 || len(groups[models.StatusCompleted]) != 0 {
		t.Fatalf("unexpected grouping %+v", groups)
	}
}

func TestKeyboardDragCancelDoesNothing(t *testing.T) {
	st, p, project := newFixture(t,
		models.Milestone{Title: "Beta", Status: models.StatusNotStarted},
	)
	v := newMilestonesView(t, st, project, ModeBoard)
	before := p.saves

	send(v, keySpace, keyRight, keyEsc)
	if v.gesture.Active() {
		t.Fatal("expected gesture cancelled")
	}
	if p.saves != before {
		t.Fatalf("expected no save, got %d", p.saves-before)
	}
	if got := statusOf(t, st, "Beta"); got != models.StatusNotStarted {
		t.Fatalf("expected status unchanged, got %s", got)
	}
}

func TestMouseDragAcrossColumns(t *testing.T) {
	st, p, project := newFixture(t,
		models.Milestone{Title: "Beta", Status: models.StatusNotStarted},
	)
	v := newMilestonesView(t, st, project, ModeBoard)
	g := v.geometry()
	before := p.saves

	send(v,
		tea.MouseMsg{X: g.left + 2, Y: g.cardsTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: g.left + g.colWidth + 2, Y: g.cardsTop, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft},
	)
	if !v.gesture.Active() || v.gesture.Over() != models.StatusInProgress {
		t.Fatalf("expected drag hovering in-progress, active=%v over=%s", v.gesture.Active(), v.gesture.Over())
	}

	send(v, tea.MouseMsg{X: g.left + 2*g.colWidth + 2, Y: g.top + 1, Action: tea.MouseActionRelease})
	if got := statusOf(t, st, "Beta"); got != models.StatusCompleted {
		t.Fatalf("expected completed, got %s", got)
	}
	if p.saves != before+1 {
		t.Fatalf("expected one save, got %d", p.saves-before)
	}
}

func TestMouseDropOutsideBoardCancels(t *testing.T) {
	st, p, project := newFixture(t,
		models.Milestone{Title: "Beta", Status: models.StatusNotStarted},
	)
	v := newMilestonesView(t, st, project, ModeBoard)
	g := v.geometry()
	before := p.saves

	send(v,
		tea.MouseMsg{X: g.left + 2, Y: g.cardsTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: g.left + 2, Y: 0, Action: tea.MouseActionRelease},
	)
	if v.gesture.Active() {
		t.Fatal("expected gesture cancelled")
	}
	if p.saves != before {
		t.Fatalf("expected no save, got %d", p.saves-before)
	}
}

func TestMousePressOnEmptySpaceStartsNothing(t *testing.T) {
	st, _, project := newFixture(t,
		models.Milestone{Title: "Beta", Status: models.StatusNotStarted},
	)
	v := newMilestonesView(t, st, project, ModeBoard)
	g := v.geometry()

	// second column is empty
	send(v, tea.MouseMsg{X: g.left + g.colWidth + 2, Y: g.cardsTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if v.gesture.Active() {
		t.Fatal("expected no gesture on empty column")
	}
}

func TestMouseIgnoredInTimeline(t *testing.T) {
	st, _, project := newFixture(t,
		models.Milestone{Title: "Beta", Status: models.StatusNotStarted},
	)
	v := newMilestonesView(t, st, project, ModeTimeline)
	g := v.geometry()

	send(v, tea.MouseMsg{X: g.left + 2, Y: g.cardsTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if v.gesture.Active() {
		t.Fatal("expected mouse ignored in timeline")
	}
}

func TestCreateMilestoneThroughForm(t *testing.T) {
	st, _, project := newFixture(t)
	v := newMilestonesView(t, st, project, ModeTimeline)

	send(v, keyRunes("n"))
	if !v.editing {
		t.Fatal("expected form open")
	}
	send(v, keyRunes("Beta"), keyTab, keyTab, keyRunes("2024-01-01"), keyTab, keyRight, keyCtrlS)

	if v.editing {
		t.Fatalf("expected form closed, err=%q", v.editErr)
	}
	ms := st.Milestones()
	if len(ms) != 1 {
		t.Fatalf("expected 1 milestone, got %d", len(ms))
	}
	want := models.Milestone{ID: ms[0].ID, Title: "Beta", DueDate: "2024-01-01", Status: models.StatusInProgress, ProjectID: project.ID}
	if ms[0] != want {
		t.Fatalf("expected %+v, got %+v", want, ms[0])
	}
}

func TestFormRejectsMalformedDueDate(t *testing.T) {
	st, _, project := newFixture(t)
	v := newMilestonesView(t, st, project, ModeTimeline)

	send(v, keyRunes("n"), keyRunes("Beta"), keyTab, keyTab, keyRunes("soon"), keyCtrlS)
	if !v.editing {
		t.Fatal("expected form to stay open")
	}
	if v.editErr == "" {
		t.Fatal("expected inline error")
	}
	if len(st.Milestones()) != 0 {
		t.Fatalf("expected nothing saved, got %d", len(st.Milestones()))
	}
}

func TestFormBlankTitleClosesWithoutSaving(t *testing.T) {
	st, _, project := newFixture(t)
	v := newMilestonesView(t, st, project, ModeTimeline)

	send(v, keyRunes("n"), keyCtrlS)
	if v.editing {
		t.Fatal("expected form closed")
	}
	if len(st.Milestones()) != 0 {
		t.Fatalf("expected nothing saved, got %d", len(st.Milestones()))
	}
}

func TestEditMilestone(t *testing.T) {
	st, _, project := newFixture(t,
		models.Milestone{Title: "Beta", Status: models.StatusNotStarted},
	)
	v := newMilestonesView(t, st, project, ModeTimeline)

	send(v, keyRunes("e"))
	if !v.editing || v.editingID == "" {
		t.Fatal("expected edit form for existing milestone")
	}
	send(v, keyRunes(" 2"), keyCtrlS)

	ms := st.Milestones()
	if len(ms) != 1 || ms[0].Title != "Beta 2" {
		t.Fatalf("expected renamed milestone, got %+v", ms)
	}
}

func TestDeleteWithConfirmation(t *testing.T) {
	st, _, project := newFixture(t,
		models.Milestone{Title: "Beta", Status: models.StatusNotStarted},
		models.Milestone{Title: "GA", Status: models.StatusNotStarted},
	)
	v := newMilestonesView(t, st, project, ModeTimeline)

	send(v, keyRunes("d"), keyRunes("n"))
	if len(st.Milestones()) != 2 {
		t.Fatal("expected decline to keep milestone")
	}
	send(v, keyRunes("d"), keyRunes("y"))
	if len(st.Milestones()) != 1 {
		t.Fatalf("expected one milestone left, got %d", len(st.Milestones()))
	}
}

func TestToggleViewEmitsModeChange(t *testing.T) {
	st, _, project := newFixture(t)
	v := newMilestonesView(t, st, project, ModeTimeline)

	cmd := send(v, keyRunes("v"))
	if v.Mode() != ModeBoard {
		t.Fatalf("expected board mode, got %s", v.Mode())
	}
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(ViewModeChanged)
	if !ok || msg.Mode != ModeBoard {
		t.Fatalf("expected ViewModeChanged{board}, got %#v", msg)
	}
}

func TestRenderTimelineAndBoard(t *testing.T) {
	st, _, project := newFixture(t,
		models.Milestone{Title: "Beta", DueDate: "2024-01-01", Status: models.StatusInProgress},
		models.Milestone{Title: "Shipped", DueDate: "2024-01-02", Status: models.StatusCompleted},
	)

	timeline := newMilestonesView(t, st, project, ModeTimeline).View()
	for _, want := range []string{"Launch", "Beta", "2024-01-01", "OVERDUE", "50% complete"} {
		if !strings.Contains(timeline, want) {
			t.Fatalf("expected %q in timeline:\n%s", want, timeline)
		}
	}
	if strings.Count(timeline, "OVERDUE") != 1 {
		t.Fatalf("expected completed milestone to hide overdue marker:\n%s", timeline)
	}

	board := newMilestonesView(t, st, project, ModeBoard).View()
	for _, want := range []string{"Not Started (0)", "In Progress (1)", "Completed (1)"} {
		if !strings.Contains(board, want) {
			t.Fatalf("expected %q in board:\n%s", want, board)
		}
	}
}

func TestMultilineDescriptionsKeepTimelineInFrame(t *testing.T) {
	var ms []models.Milestone
	for i := 0; i < 20; i++ {
		ms = append(ms, models.Milestone{
			Title:       fmt.Sprintf("Milestone %02d", i),
			Description: "first line\nsecond line\nthird line\nfourth line",
			Status:      models.StatusNotStarted,
		})
	}
	st, _, project := newFixture(t, ms...)
	v := newMilestonesView(t, st, project, ModeTimeline)
	for i := 0; i < 8; i++ {
		send(v, keyRunes("j"))
	}

	out := v.View()
	if h := lipgloss.Height(out); h > 40 {
		t.Fatalf("expected view to fit 40 lines, got %d:\n%s", h, out)
	}
	for _, want := range []string{"Milestone 08", "first line second line", "quit"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in timeline:\n%s", want, out)
		}
	}
}

func TestEscReturnsToProjects(t *testing.T) {
	st, _, project := newFixture(t)
	v := newMilestonesView(t, st, project, ModeTimeline)

	cmd := send(v, keyEsc)
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(BackToProjects); !ok {
		t.Fatal("expected BackToProjects")
	}
}

func TestProjectListCreatesAndOpens(t *testing.T) {
	p := &memPersister{}
	st, err := store.New(p)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	v := NewProjectListView(st)
	send(v, tea.WindowSizeMsg{Width: 80, Height: 40}, v.Init()())

	if !strings.Contains(v.View(), "No Projects") {
		t.Fatalf("expected empty state:\n%s", v.View())
	}

	send(v, keyRunes("n"), keyRunes("   "))
	if cmd := send(v, keyCtrlS); cmd != nil {
		t.Fatal("expected blank name to be rejected")
	}
	if !v.creating {
		t.Fatal("expected form to stay open on blank name")
	}

	send(v, keyEsc, keyRunes("n"), keyRunes("Launch"))
	cmd := send(v, keyCtrlS)
	if cmd == nil {
		t.Fatal("expected open command")
	}
	msg, ok := cmd().(SelectedProject)
	if !ok || msg.Project.Name != "Launch" {
		t.Fatalf("expected SelectedProject for Launch, got %#v", msg)
	}
	if st.Selected() != msg.Project.ID {
		t.Fatalf("expected new project selected, got %q", st.Selected())
	}
	if msg.Project.Color != models.Palette[0] {
		t.Fatalf("expected first palette color, got %s", msg.Project.Color)
	}
}

func TestProjectListShowsStats(t *testing.T) {
	st, _, _ := newFixture(t,
		models.Milestone{Title: "Beta", DueDate: "2024-01-01", Status: models.StatusInProgress},
		models.Milestone{Title: "GA", DueDate: "2024-01-02", Status: models.StatusCompleted},
	)
	st.CreateProject("Docs", "handbook rewrite")

	v := NewProjectListView(st)
	v.now = func() time.Time { return fixedNow }
	send(v, tea.WindowSizeMsg{Width: 80, Height: 40}, v.Init()())

	out := v.View()
	for _, want := range []string{"Launch", "50% of 2", "1 overdue", "Docs", "no milestones yet • handbook rewrite"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in project list:\n%s", want, out)
		}
	}
}

func TestHelpPopupListsBindings(t *testing.T) {
	st, _, project := newFixture(t)
	v := newMilestonesView(t, st, project, ModeBoard)

	send(v, keyRunes("?"))
	out := v.View()
	for _, want := range []string{"Keyboard Shortcuts", "pick up / drop card", "toggle timeline/board"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in help:\n%s", want, out)
		}
	}

	send(v, keyRunes("x"))
	if v.showHelpPopup {
		t.Fatal("expected any key to close help")
	}
}
