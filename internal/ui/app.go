package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tgienger/milestones/internal/models"
	"github.com/tgienger/milestones/internal/store"
	"github.com/tgienger/milestones/internal/ui/views"
)

// Setting keys for session preferences
const (
	SettingLastProject = "last_project_id"
	SettingViewMode    = "view_mode"
)

// Settings persists small session preferences outside the snapshot
type Settings interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

// Currently active view
type View int

const (
	ViewProjects View = iota
	ViewMilestones
)

type App struct {
	store       *store.Store
	settings    Settings
	log         *zap.Logger
	mode        views.Mode
	currentView View
	projectList *views.ProjectListView
	milestones  *views.MilestonesView
	width       int
	height      int
}

// Creates a new application. defaultMode is used until the user toggles a view.
func NewApp(st *store.Store, settings Settings, log *zap.Logger, defaultMode views.Mode) *App {
	if log == nil {
		log = zap.NewNop()
	}
	mode := defaultMode
	if saved, err := settings.GetSetting(SettingViewMode); err != nil {
		log.Warn("read view mode", zap.Error(err))
	} else if saved == string(views.ModeTimeline) || saved == string(views.ModeBoard) {
		mode = views.Mode(saved)
	}

	return &App{
		store:       st,
		settings:    settings,
		log:         log,
		mode:        mode,
		currentView: ViewProjects,
		projectList: views.NewProjectListView(st),
	}
}

func (a *App) Init() tea.Cmd {
	// Check for last opened project
	lastProjectID, err := a.settings.GetSetting(SettingLastProject)
	if err != nil {
		a.log.Warn("read last project", zap.Error(err))
	} else if lastProjectID != "" {
		if project, ok := a.store.Project(lastProjectID); ok {
			return a.openProject(project)
		}
	}

	return a.projectList.Init()
}

func (a *App) openProject(project models.Project) tea.Cmd {
	a.currentView = ViewMilestones
	a.store.SelectProject(project.ID)
	a.milestones = views.NewMilestonesView(a.store, project, a.mode)

	// Save as last opened project
	a.setSetting(SettingLastProject, project.ID)

	// Initialize milestones view with window size
	return tea.Batch(
		a.milestones.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) setSetting(key, value string) {
	if err := a.settings.SetSetting(key, value); err != nil {
		a.log.Warn("write setting", zap.String("key", key), zap.Error(err))
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Always update project list size since it persists
		a.projectList.Update(msg)

	case views.SelectedProject:
		return a, a.openProject(msg.Project)

	case views.ViewModeChanged:
		a.mode = msg.Mode
		a.setSetting(SettingViewMode, string(msg.Mode))
		return a, nil

	case views.BackToProjects:
		a.currentView = ViewProjects
		a.store.SelectProject("")
		a.setSetting(SettingLastProject, "")
		return a, tea.Batch(
			a.projectList.Init(),
			func() tea.Msg {
				return tea.WindowSizeMsg{Width: a.width, Height: a.height}
			},
		)
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewProjects:
		_, cmd = a.projectList.Update(msg)
	case ViewMilestones:
		_, cmd = a.milestones.Update(msg)
	}

	return a, cmd
}

func (a *App) View() string {
	switch a.currentView {
	case ViewMilestones:
		if a.milestones != nil {
			return a.milestones.View()
		}
	}
	return a.projectList.View()
}
