package views

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/milestones/internal/models"
	"github.com/tgienger/milestones/internal/store"
	"github.com/tgienger/milestones/internal/ui/keys"
	"github.com/tgienger/milestones/internal/ui/styles"
)

type projectItem struct {
	project models.Project
	stats   store.Stats
}

func (i projectItem) Title() string       { return i.project.Name }
func (i projectItem) Description() string { return i.project.Description }
func (i projectItem) FilterValue() string { return i.project.Name }

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d projectDelegate) Height() int                               { return 2 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	title := styles.Swatch(p.project.Color) + " " + truncate(p.Title(), width-8)
	fmt.Fprintf(w, "%s\n%s", titleStyle.Render(title), descStyle.Render(d.statsLine(p, width-4)))
}

// statsLine renders a mini progress bar, the counts and as much of the
// description as still fits
func (d projectDelegate) statsLine(p projectItem, width int) string {
	if p.stats.Total == 0 {
		return truncate(joinNonEmpty(" • ", "no milestones yet", p.Description()), width)
	}

	bar := d.styles.ProgressBar(p.stats.Completion, 10)
	counts := fmt.Sprintf(" %3d%% of %d", p.stats.Completion, p.stats.Total)
	if p.stats.Overdue > 0 {
		counts += " • " + d.styles.Overdue.Render(fmt.Sprintf("%d overdue", p.stats.Overdue))
	}
	used := lipgloss.Width(bar) + lipgloss.Width(counts)
	if desc := truncate(p.Description(), width-used-3); desc != "" {
		counts += " • " + desc
	}
	return bar + counts
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, sep)
}

type ProjectListView struct {
	store    *store.Store
	list     list.Model
	delegate *projectDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	now      func() time.Time
	width    int
	height   int
	creating bool
	loaded   bool
	newName  textinput.Model
	newDesc  textinput.Model
	focusIdx int // 0=name, 1=desc, 2=confirm

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

func NewProjectListView(st *store.Store) *ProjectListView {
	s := styles.NewStyles()

	newName := textinput.New()
	newName.Placeholder = "Project name"
	newName.CharLimit = 100

	newDesc := textinput.New()
	newDesc.Placeholder = "Description (optional)"
	newDesc.CharLimit = 200

	// Setup custom delegate
	delegate := &projectDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &ProjectListView{
		store:    st,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		now:      time.Now,
		newName:  newName,
		newDesc:  newDesc,
	}
}

func (v *ProjectListView) Init() tea.Cmd {
	return v.loadProjects
}

func (v *ProjectListView) loadProjects() tea.Msg {
	return projectsLoadedMsg{projects: v.store.Projects()}
}

type projectsLoadedMsg struct {
	projects []models.Project
}

// SelectedProject asks the app to open a project
type SelectedProject struct {
	Project models.Project
}

func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		// Use content width (capped at MaxWidth) for internal layout
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case projectsLoadedMsg:
		items := make([]list.Item, len(msg.projects))
		now := v.now()
		for i, p := range msg.projects {
			items[i] = projectItem{project: p, stats: v.store.ProjectStats(p.ID, now)}
		}
		v.list.SetItems(items)
		v.loaded = true
		return v, nil

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.creating {
			return v.updateCreating(msg)
		}

		// Let the list own keys while its filter is being typed
		if v.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			// Don't quit on escape in project list - only q quits
			return v, nil
		case key.Matches(msg, v.keys.New):
			v.creating = true
			v.focusIdx = 0
			v.newName.Reset()
			v.newDesc.Reset()
			v.newName.Focus()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, func() tea.Msg {
					return SelectedProject{Project: item.project}
				}
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *ProjectListView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.createProject()

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 2) % 3
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 3
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx == 0 || v.focusIdx == 1 {
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}

		if v.focusIdx == 2 {
			return v, v.createProject()
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.newName, cmd = v.newName.Update(msg)
	case 1:
		v.newDesc, cmd = v.newDesc.Update(msg)
	}
	return v, cmd
}

// createProject stores the form and opens the new project; a blank name keeps the form open
func (v *ProjectListView) createProject() tea.Cmd {
	project, ok := v.store.CreateProject(v.newName.Value(), v.newDesc.Value())
	if !ok {
		return nil
	}
	v.creating = false
	return func() tea.Msg {
		return SelectedProject{Project: project}
	}
}

func (v *ProjectListView) updateFocus() {
	v.newName.Blur()
	v.newDesc.Blur()
	switch v.focusIdx {
	case 0:
		v.newName.Focus()
	case 1:
		v.newDesc.Focus()
	}
}

// View renders the view
func (v *ProjectListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.creating {
		return v.renderCreateForm()
	}

	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	if len(v.list.Items()) == 0 {
		return v.renderEmpty()
	}

	content := v.list.View() + "\n" + v.renderStatus() + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *ProjectListView) renderEmpty() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	// A sample timeline row hints at what a project will hold
	sample := lipgloss.JoinHorizontal(lipgloss.Center,
		s.DueDate.Render("2025-03-01"), "  ",
		s.TitleMuted.Render("First milestone"), "  ",
		s.StatusBadge(models.StatusNotStarted),
	)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No Projects"),
		"",
		s.TitleMuted.Render("A project groups milestones on a timeline and a status board."),
		"",
		s.FilterBar.Render(sample),
		"",
		s.ButtonPrimary.Render(" n - New Project "),
	)

	// Center within content width, then center that in terminal
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	nameStyle := s.Input
	descStyle := s.Input
	btnStyle := s.Button

	switch v.focusIdx {
	case 0:
		nameStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	// Dynamic input width based on content width
	inputWidth := clamp(contentWidth-6, 20, 50)

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New Project"),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.newName.View()),
		"",
		"Description:",
		descStyle.Width(inputWidth).Render(v.newDesc.View()),
		"",
		btnStyle.Render(" Create "),
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)

	// Center within content width, then center that in terminal
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s open • %s new • %s filter • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("/"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *ProjectListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("↵") + s.HelpDesc.Render("      open project"),
		s.HelpKey.Render("n") + s.HelpDesc.Render("      new project"),
		s.HelpKey.Render("/") + s.HelpDesc.Render("      filter projects"),
		s.HelpKey.Render("q") + s.HelpDesc.Render("      quit"),
		"",
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

// renderStatus shows a pending save failure, if any
func (v *ProjectListView) renderStatus() string {
	if err := v.store.SaveErr(); err != nil {
		return v.styles.StatusError.Render("Changes not saved: "+err.Error()) + "\n"
	}
	return ""
}
