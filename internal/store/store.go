// Package store owns the project and milestone collections for a session.
//
// All mutations go through the Store. Validation failures and lookups of
// unknown ids are silent no-ops reported only through the returned bool.
// Every accepted mutation writes a full snapshot through the Persister; a
// failed write is logged and kept in SaveErr so the UI can show a notice
// without ending the session.
package store

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tgienger/milestones/internal/derive"
	"github.com/tgienger/milestones/internal/models"
)

// Persister loads and saves whole snapshots
type Persister interface {
	Load() (models.Snapshot, bool, error)
	Save(models.Snapshot) error
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used for mutations and save failures
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithIDGenerator replaces the default random id generator
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// Store holds the session state
type Store struct {
	persister  Persister
	log        *zap.Logger
	newID      func() string
	projects   []models.Project
	milestones []models.Milestone
	selected   string
	saveErr    error
}

// New creates a store and loads the persisted snapshot once
func New(p Persister, opts ...Option) (*Store, error) {
	s := &Store{
		persister: p,
		log:       zap.NewNop(),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	snap, ok, err := p.Load()
	if err != nil {
		return nil, err
	}
	if ok {
		s.projects = slices.Clone(snap.Projects)
		s.milestones = slices.Clone(snap.Milestones)
	}
	// Unknown statuses would fall outside every board column
	for i := range s.milestones {
		m := &s.milestones[i]
		if !m.Status.Valid() {
			s.log.Warn("unknown milestone status, loading as not started",
				zap.String("id", m.ID),
				zap.String("status", string(m.Status)),
			)
			m.Status = models.StatusNotStarted
		}
	}
	s.log.Debug("state loaded",
		zap.Bool("found", ok),
		zap.Int("projects", len(s.projects)),
		zap.Int("milestones", len(s.milestones)),
	)
	return s, nil
}

// CreateProject appends a project, colors it by creation order and selects it
func (s *Store) CreateProject(name, description string) (models.Project, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Project{}, false
	}

	p := models.Project{
		ID:          s.newID(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Color:       models.PaletteColor(len(s.projects)),
	}
	s.projects = append(s.projects, p)
	s.selected = p.ID
	s.log.Debug("project created", zap.String("id", p.ID), zap.String("name", p.Name))
	s.save()
	return p, true
}

// CreateMilestone appends a milestone to the selected project
func (s *Store) CreateMilestone(title, description, dueDate string, status models.Status) (models.Milestone, bool) {
	title = strings.TrimSpace(title)
	if title == "" || !status.Valid() {
		return models.Milestone{}, false
	}
	// the owner must exist now; nothing re-checks it later
	if _, ok := s.SelectedProject(); !ok {
		return models.Milestone{}, false
	}

	m := models.Milestone{
		ID:          s.newID(),
		Title:       title,
		Description: strings.TrimSpace(description),
		DueDate:     strings.TrimSpace(dueDate),
		Status:      status,
		ProjectID:   s.selected,
	}
	s.milestones = append(s.milestones, m)
	s.log.Debug("milestone created", zap.String("id", m.ID), zap.String("project", m.ProjectID))
	s.save()
	return m, true
}

// UpdateMilestone replaces every mutable field of the milestone with id
func (s *Store) UpdateMilestone(id string, f models.MilestoneFields) bool {
	title := strings.TrimSpace(f.Title)
	if title == "" || !f.Status.Valid() {
		return false
	}
	i := s.indexOf(id)
	if i < 0 {
		return false
	}

	m := &s.milestones[i]
	m.Title = title
	m.Description = strings.TrimSpace(f.Description)
	m.DueDate = strings.TrimSpace(f.DueDate)
	m.Status = f.Status
	s.log.Debug("milestone updated", zap.String("id", id))
	s.save()
	return true
}

// DeleteMilestone removes the milestone with id
func (s *Store) DeleteMilestone(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.milestones = slices.Delete(s.milestones, i, i+1)
	s.log.Debug("milestone deleted", zap.String("id", id))
	s.save()
	return true
}

// SetMilestoneStatus changes only the status of the milestone with id.
// Status buttons and board drops both land here.
func (s *Store) SetMilestoneStatus(id string, status models.Status) bool {
	if !status.Valid() {
		return false
	}
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.milestones[i].Status = status
	s.log.Debug("milestone status set", zap.String("id", id), zap.String("status", string(status)))
	s.save()
	return true
}

// SelectProject points the selection at id without checking it exists
func (s *Store) SelectProject(id string) {
	s.selected = id
}

// Selected returns the selected project id, possibly empty
func (s *Store) Selected() string {
	return s.selected
}

// SelectedProject returns the selected project if it exists
func (s *Store) SelectedProject() (models.Project, bool) {
	return s.Project(s.selected)
}

// Project looks up a project by id
func (s *Store) Project(id string) (models.Project, bool) {
	for _, p := range s.projects {
		if p.ID == id {
			return p, true
		}
	}
	return models.Project{}, false
}

// Milestone looks up a milestone by id
func (s *Store) Milestone(id string) (models.Milestone, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.milestones[i], true
	}
	return models.Milestone{}, false
}

// Projects returns a copy of all projects in creation order
func (s *Store) Projects() []models.Project {
	return slices.Clone(s.projects)
}

// Milestones returns a copy of all milestones in creation order
func (s *Store) Milestones() []models.Milestone {
	return slices.Clone(s.milestones)
}

// Visible returns the selected project's milestones sorted by due date
func (s *Store) Visible() []models.Milestone {
	return derive.SortByDueDate(derive.ForProject(s.milestones, s.selected))
}

// Grouped returns the visible milestones bucketed by status
func (s *Store) Grouped() map[models.Status][]models.Milestone {
	return derive.GroupByStatus(s.Visible())
}

// Completion returns the selected project's completion percentage
func (s *Store) Completion() int {
	return derive.CompletionPercentage(derive.ForProject(s.milestones, s.selected))
}

// Stats summarizes one project's milestones
type Stats struct {
	Total      int
	Completion int
	Overdue    int
}

// ProjectStats computes Stats for projectID as of now
func (s *Store) ProjectStats(projectID string, now time.Time) Stats {
	ms := derive.ForProject(s.milestones, projectID)
	return Stats{
		Total:      len(ms),
		Completion: derive.CompletionPercentage(ms),
		Overdue:    derive.CountOverdue(ms, now),
	}
}

// Snapshot returns a copy of both collections
func (s *Store) Snapshot() models.Snapshot {
	return models.Snapshot{
		Projects:   s.Projects(),
		Milestones: s.Milestones(),
	}
}

// SaveErr returns the error from the most recent save, nil after a success
func (s *Store) SaveErr() error {
	return s.saveErr
}

func (s *Store) save() {
	s.saveErr = s.persister.Save(s.Snapshot())
	if s.saveErr != nil {
		s.log.Error("save state", zap.Error(s.saveErr))
	}
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.milestones, func(m models.Milestone) bool {
		return m.ID == id
	})
}
