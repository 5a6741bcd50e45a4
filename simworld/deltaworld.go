package simworld

import (
	"github.com/flatspace/worldline/eventlog"
	"github.com/flatspace/worldline/frame"
	"github.com/flatspace/worldline/object"
	"github.com/flatspace/worldline/vector"
)

// DeltaWorld is a write-buffered candidate overlay on a base World, built
// fresh for each inner-loop evaluation of the scheduler (spec.md §4.7, §4.8,
// §9). Every write is buffered in a change set and is only visible to later
// reads within the same DeltaWorld; nothing reaches the base World until
// ApplyAll folds the buffer into a new one. A discarded DeltaWorld (a
// RetrySmallerStep candidate) leaves the base World and its objects
// completely untouched — motions and actions scheduled through it are
// appended to the owning Obj only on ApplyAll, never eagerly.
type DeltaWorld struct {
	base          *World
	evaluatedTime float64

	space           map[string]frame.State
	introduced      map[string]*object.Obj
	introducedOrder []string

	events []eventlog.Event

	activations   map[string]string
	deactivations map[string]bool
	completions   map[string]bool

	stateUpdates map[string]object.ActionState

	pendingMotions map[string][]object.Motion
	pendingActions map[string][]object.Action
}

// NewDeltaWorld builds a DeltaWorld over base at evaluatedTime, seeded with the
// already-computed candidate Space for every object.
func NewDeltaWorld(base *World, evaluatedTime float64, space map[string]frame.State) *DeltaWorld {
	return &DeltaWorld{
		base:           base,
		evaluatedTime:  evaluatedTime,
		space:          space,
		introduced:     make(map[string]*object.Obj),
		activations:    make(map[string]string),
		deactivations:  make(map[string]bool),
		completions:    make(map[string]bool),
		stateUpdates:   make(map[string]object.ActionState),
		pendingMotions: make(map[string][]object.Motion),
		pendingActions: make(map[string][]object.Action),
	}
}

// Activate records that key (owned by objID) has begun spanning a
// non-trivial interval. It is not part of the object.WorldView capability
// set that action callbacks see.
func (dw *DeltaWorld) Activate(key, objID string) {
	dw.activations[key] = objID
}

var _ object.WorldView = (*DeltaWorld)(nil)

// Now implements object.WorldView.
func (dw *DeltaWorld) Now() float64 { return dw.evaluatedTime }

// Eps implements object.WorldView.
func (dw *DeltaWorld) Eps() float64 { return dw.base.Eps }

// LogActions implements object.WorldView.
func (dw *DeltaWorld) LogActions() bool { return dw.base.LogActionsFlag }

// ObjectIDs implements object.WorldView.
func (dw *DeltaWorld) ObjectIDs() []string {
	ids := make([]string, 0, len(dw.base.order)+len(dw.introducedOrder))
	ids = append(ids, dw.base.order...)
	ids = append(ids, dw.introducedOrder...)
	return ids
}

// State implements object.WorldView.
func (dw *DeltaWorld) State(id string) (frame.State, error) {
	s, ok := dw.space[id]
	if !ok {
		return frame.State{}, ErrUnknownObject
	}
	return s, nil
}

// StateInFrame implements object.WorldView.
func (dw *DeltaWorld) StateInFrame(id string, f frame.Frame) (frame.State, error) {
	s, err := dw.State(id)
	if err != nil {
		return frame.State{}, err
	}
	return frame.Transform(s, frame.Origin, f)
}

// ActionState implements object.WorldView.
func (dw *DeltaWorld) ActionState(key string) (object.ActionState, bool) {
	if s, ok := dw.stateUpdates[key]; ok {
		return s, true
	}
	return dw.base.ActionState(key)
}

// IsActive implements object.WorldView.
func (dw *DeltaWorld) IsActive(key string) bool {
	if dw.deactivations[key] {
		return false
	}
	if _, ok := dw.activations[key]; ok {
		return true
	}
	return dw.base.IsActive(key)
}

// IsComplete implements object.WorldView.
func (dw *DeltaWorld) IsComplete(key string) bool {
	if dw.completions[key] {
		return true
	}
	return dw.base.IsComplete(key)
}

// AddEvent implements object.WorldView.
func (dw *DeltaWorld) AddEvent(e eventlog.Event) { dw.events = append(dw.events, e) }

// AddAction implements object.WorldView.
func (dw *DeltaWorld) AddAction(objID string, a object.Action) {
	dw.pendingActions[objID] = append(dw.pendingActions[objID], a)
}

// AddMotion implements object.WorldView.
func (dw *DeltaWorld) AddMotion(objID string, m object.Motion) {
	dw.pendingMotions[objID] = append(dw.pendingMotions[objID], m)
}

// AddOrSetObject implements object.WorldView, including the §4.8
// PastObjectIntroduction validation and future-introduction rewrite.
func (dw *DeltaWorld) AddOrSetObject(objID, name string, s frame.State) error {
	eps := dw.base.Eps
	if s.R.T < dw.evaluatedTime-eps {
		return ErrPastObjectIntroduction
	}
	if s.R.T > dw.evaluatedTime+eps {
		nowState := frame.State{
			R:   vector.NewVector4(dw.evaluatedTime, s.R.Spatial()),
			V:   vector.Zero3,
			Tau: s.Tau - (s.R.T - dw.evaluatedTime),
		}
		dw.setObject(objID, name, nowState)
		dw.AddMotion(objID, object.AbruptVelocityChange{Start: s.Tau, V: s.V})
		dw.AddAction(objID, object.Marker{Name: "Appear", Tau: s.Tau, SilentFlag: true})
		return nil
	}
	dw.setObject(objID, name, s)
	return nil
}

func (dw *DeltaWorld) setObject(objID, name string, s frame.State) {
	if _, known := dw.base.objects[objID]; !known {
		if _, already := dw.introduced[objID]; !already {
			dw.introduced[objID] = object.New(objID, name)
			dw.introducedOrder = append(dw.introducedOrder, objID)
		}
	}
	dw.space[objID] = s
}

// SetActionState implements object.WorldView.
func (dw *DeltaWorld) SetActionState(key string, s object.ActionState) {
	dw.stateUpdates[key] = s
}

// Complete implements object.WorldView.
func (dw *DeltaWorld) Complete(key string) {
	dw.completions[key] = true
	delete(dw.activations, key)
}

// Deactivate implements object.WorldView.
func (dw *DeltaWorld) Deactivate(key string) {
	dw.deactivations[key] = true
}

// ApplyAll folds the buffered change set into a new World, promoting it in
// place of base. Motions and actions scheduled through the DeltaWorld are
// appended to their owning Obj only now.
func (dw *DeltaWorld) ApplyAll() (*World, error) {
	nw := &World{
		Now:            dw.evaluatedTime,
		Eps:            dw.base.Eps,
		LogActionsFlag: dw.base.LogActionsFlag,
		objects:        make(map[string]*object.Obj, len(dw.base.objects)+len(dw.introduced)),
		space:          make(map[string]frame.State, len(dw.space)),
		active:         make(map[string]string, len(dw.base.active)+len(dw.activations)),
		complete:       make(map[string]bool, len(dw.base.complete)+len(dw.completions)),
		states:         make(map[string]object.ActionState, len(dw.base.states)+len(dw.stateUpdates)),
	}

	nw.order = append(nw.order, dw.base.order...)
	for id, o := range dw.base.objects {
		nw.objects[id] = o
	}
	for _, id := range dw.introducedOrder {
		nw.objects[id] = dw.introduced[id]
		nw.order = append(nw.order, id)
	}
	for id, s := range dw.space {
		nw.space[id] = s
	}

	for k, v := range dw.base.active {
		nw.active[k] = v
	}
	for k, v := range dw.activations {
		nw.active[k] = v
	}
	for k := range dw.deactivations {
		delete(nw.active, k)
	}
	for k := range dw.completions {
		delete(nw.active, k)
	}

	for k := range dw.base.complete {
		nw.complete[k] = true
	}
	for k := range dw.completions {
		nw.complete[k] = true
	}

	for k, v := range dw.base.states {
		nw.states[k] = v
	}
	for k, v := range dw.stateUpdates {
		nw.states[k] = v
	}

	nw.events = make([]eventlog.Event, 0, len(dw.base.events)+len(dw.events))
	nw.events = append(nw.events, dw.base.events...)
	nw.events = append(nw.events, dw.events...)

	for objID, ms := range dw.pendingMotions {
		o := nw.objects[objID]
		for _, m := range ms {
			if err := o.AddMotion(m); err != nil {
				return nil, err
			}
		}
	}
	for objID, as := range dw.pendingActions {
		o := nw.objects[objID]
		for _, a := range as {
			if err := o.AddAction(a); err != nil {
				return nil, err
			}
		}
	}

	return nw, nil
}
