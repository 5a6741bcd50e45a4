// Package object holds the Obj identity and its two append-only
// collections — motions and actions — plus the Action/Motion/WorldView
// contracts the scheduler drives.
package object

import (
	"errors"
	"sort"
)

// ErrInvalidAction is returned when an action's tauEnd precedes its tauStart.
var ErrInvalidAction = errors.New("object: invalid action")

// Obj is an immutable identity (ID, Name) together with two mutable,
// append-only collections. Identity is by ID, assigned at creation; Name is
// used only for display.
type Obj struct {
	ID   string
	Name string

	starts  []float64
	motions map[float64]Motion

	actions []Action
}

// New creates an object with no motions or actions.
func New(id, name string) *Obj {
	return &Obj{ID: id, Name: name, motions: make(map[float64]Motion)}
}

// Motions returns the object's motions ordered by TauStart.
func (o *Obj) Motions() []Motion {
	out := make([]Motion, len(o.starts))
	for i, s := range o.starts {
		out[i] = o.motions[s]
	}
	return out
}

// Actions returns the object's actions in the stable (tauStart, tauEnd, Key)
// order of §3.
func (o *Obj) Actions() []Action {
	out := make([]Action, len(o.actions))
	copy(out, o.actions)
	return out
}

// AddMotion inserts m, failing with ErrInvalidMotion if it overlaps an
// existing motion's half-open proper-time interval, or if the immediately
// following motion would start before m's end.
func (o *Obj) AddMotion(m Motion) error {
	start, end := m.TauStart(), m.TauEnd()
	if end < start {
		return ErrInvalidMotion
	}
	idx := sort.SearchFloat64s(o.starts, start)

	if idx < len(o.starts) {
		next := o.motions[o.starts[idx]]
		if next.TauStart() < end {
			return ErrInvalidMotion
		}
	}
	if idx > 0 {
		prev := o.motions[o.starts[idx-1]]
		if prev.TauEnd() > start {
			return ErrInvalidMotion
		}
	}
	if _, exists := o.motions[start]; exists {
		return ErrInvalidMotion
	}

	o.motions[start] = m
	o.starts = append(o.starts, 0)
	copy(o.starts[idx+1:], o.starts[idx:])
	o.starts[idx] = start
	return nil
}

// AddAction inserts a, failing with ErrInvalidAction if a.TauEnd() < a.TauStart().
func (o *Obj) AddAction(a Action) error {
	if a.TauEnd() < a.TauStart() {
		return ErrInvalidAction
	}
	idx := sort.Search(len(o.actions), func(i int) bool {
		return !actionLess(o.actions[i], a)
	})
	o.actions = append(o.actions, nil)
	copy(o.actions[idx+1:], o.actions[idx:])
	o.actions[idx] = a
	return nil
}

func actionLess(a, b Action) bool {
	if a.TauStart() != b.TauStart() {
		return a.TauStart() < b.TauStart()
	}
	if a.TauEnd() != b.TauEnd() {
		return a.TauEnd() < b.TauEnd()
	}
	return a.Key() < b.Key()
}
