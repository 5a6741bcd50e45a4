// Package simworld holds the committed World and the write-buffered
// DeltaWorld candidate overlay the scheduler builds on top of it each step.
package simworld

import (
	"github.com/flatspace/worldline/eventlog"
	"github.com/flatspace/worldline/frame"
	"github.com/flatspace/worldline/object"
)

// World is the committed simulation state of spec.md §3: a coordinate time,
// a set of objects in stable insertion order, each object's current
// world-frame State, the active/complete action bookkeeping, per-action
// opaque state tokens, and the event log.
type World struct {
	Now            float64
	Eps            float64
	LogActionsFlag bool

	order   []string
	objects map[string]*object.Obj

	space map[string]frame.State

	active   map[string]string // action key -> owning object id
	complete map[string]bool
	states   map[string]object.ActionState

	events []eventlog.Event
}

// New creates an empty World at coordinate time 0.
func New(eps float64, logActions bool) *World {
	return &World{
		Eps:            eps,
		LogActionsFlag: logActions,
		objects:        make(map[string]*object.Obj),
		space:          make(map[string]frame.State),
		active:         make(map[string]string),
		complete:       make(map[string]bool),
		states:         make(map[string]object.ActionState),
	}
}

// AddObject introduces o at state s, owned by client code before the first
// simulateTo call. Re-adding an existing id updates its state in place.
func (w *World) AddObject(o *object.Obj, s frame.State) {
	if _, exists := w.objects[o.ID]; !exists {
		w.order = append(w.order, o.ID)
	}
	w.objects[o.ID] = o
	w.space[o.ID] = s
}

// Object looks up an object by id.
func (w *World) Object(id string) (*object.Obj, bool) {
	o, ok := w.objects[id]
	return o, ok
}

// Objects returns every object in stable insertion order.
func (w *World) Objects() []*object.Obj {
	out := make([]*object.Obj, len(w.order))
	for i, id := range w.order {
		out[i] = w.objects[id]
	}
	return out
}

// State returns an object's current world-frame State.
func (w *World) State(id string) (frame.State, error) {
	s, ok := w.space[id]
	if !ok {
		return frame.State{}, ErrUnknownObject
	}
	return s, nil
}

// Events returns the committed event log, in commit order.
func (w *World) Events() []eventlog.Event { return w.events }

// IsActive reports whether the action identified by key currently spans a
// non-trivial interval that has fired its start edge but not its end edge.
func (w *World) IsActive(key string) bool {
	_, ok := w.active[key]
	return ok
}

// IsComplete reports whether the action identified by key has fired its end
// edge (or was a single instant that already fired).
func (w *World) IsComplete(key string) bool { return w.complete[key] }

// ActionState returns the opaque per-action token, if one has been set.
func (w *World) ActionState(key string) (object.ActionState, bool) {
	s, ok := w.states[key]
	return s, ok
}

// ActiveOwner returns the object id owning the given active action.
func (w *World) ActiveOwner(key string) (string, bool) {
	id, ok := w.active[key]
	return id, ok
}

// ActiveKeys returns the keys of every currently active action, in no
// particular order; callers needing a stable order should sort.
func (w *World) ActiveKeys() []string {
	keys := make([]string, 0, len(w.active))
	for k := range w.active {
		keys = append(keys, k)
	}
	return keys
}

// MarkActive records that the action identified by key (owned by objID) now
// spans a non-trivial interval that has fired its start edge.
func (w *World) MarkActive(key, objID string) { w.active[key] = objID }

// MarkComplete records that the action identified by key has fired its end
// edge, removing it from the active set if present.
func (w *World) MarkComplete(key string) {
	w.complete[key] = true
	delete(w.active, key)
}

// AppendEvent appends e directly to the committed log, for scheduler
// bookkeeping that happens outside the DeltaWorld transaction (the Action
// events logged by completion bookkeeping).
func (w *World) AppendEvent(e eventlog.Event) { w.events = append(w.events, e) }

// AppendAction appends a to objID's action set directly, for scheduling a
// synthetic finisher action at completion bookkeeping time.
func (w *World) AppendAction(objID string, a object.Action) error {
	o, ok := w.objects[objID]
	if !ok {
		return ErrUnknownObject
	}
	return o.AddAction(a)
}
