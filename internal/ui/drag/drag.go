// Package drag tracks a single board drag from pick-up to drop.
package drag

import "github.com/tgienger/milestones/internal/models"

// Gesture is an in-flight drag of one milestone between status columns.
// The zero value is idle.
type Gesture struct {
	active bool
	id     string
	from   models.Status
	over   models.Status
}

// Begin picks up the milestone id from column from
func (g *Gesture) Begin(id string, from models.Status) {
	g.active = true
	g.id = id
	g.from = from
	g.over = from
}

// Active reports whether a milestone is currently held
func (g *Gesture) Active() bool { return g.active }

// ID returns the held milestone id
func (g *Gesture) ID() string { return g.id }

// From returns the column the drag started in
func (g *Gesture) From() models.Status { return g.from }

// Over returns the column currently hovered
func (g *Gesture) Over() models.Status { return g.over }

// Hover moves the drop target without dropping
func (g *Gesture) Hover(s models.Status) {
	if g.active && s.Valid() {
		g.over = s
	}
}

// Drop ends the gesture on column to. ok is false when nothing was held or
// to is not a column, and the caller must not mutate anything then.
func (g *Gesture) Drop(to models.Status) (id string, status models.Status, ok bool) {
	if !g.active {
		return "", "", false
	}
	if !to.Valid() {
		g.Cancel()
		return "", "", false
	}
	id = g.id
	g.Cancel()
	return id, to, true
}

// Cancel abandons the gesture
func (g *Gesture) Cancel() {
	*g = Gesture{}
}
