package object

import (
	"fmt"
	"math"

	"github.com/flatspace/worldline/eventlog"
	"github.com/flatspace/worldline/frame"
	"github.com/flatspace/worldline/kinematics"
)

// ActionState is an opaque per-action token, created by Init on first fire
// and threaded back in on every subsequent Act. Never downcast outside the
// owning Action implementation.
type ActionState = any

// RetrySmallerStep is control flow, not a failure: an Action returns it from
// Act to ask the scheduler to bisect the current time step and re-evaluate.
// Hint, if non-nil, suggests a world-frame coordinate time to retry at.
type RetrySmallerStep struct {
	Hint *float64
}

func (RetrySmallerStep) Error() string { return "object: retry smaller step" }

// WorldView is the capability set an Action's callback sees: a read-only
// snapshot of the candidate world plus a buffered write API. Writes reach
// the committed World only when the scheduler commits the enclosing step.
type WorldView interface {
	Now() float64
	Eps() float64
	LogActions() bool

	ObjectIDs() []string
	State(objID string) (frame.State, error)
	StateInFrame(objID string, f frame.Frame) (frame.State, error)

	ActionState(key string) (ActionState, bool)
	IsActive(key string) bool
	IsComplete(key string) bool

	AddEvent(e eventlog.Event)
	AddAction(objID string, a Action)
	AddMotion(objID string, m Motion)
	AddOrSetObject(objID, name string, s frame.State) error
	SetActionState(key string, s ActionState)
	Complete(key string)
	Deactivate(key string)
}

// Action is the closed tagged-variant contract of spec.md §9: Marker,
// Sender, Pulse, DetectCollision, and UserAction all implement it.
type Action interface {
	Key() string
	TauStart() float64
	TauEnd() float64
	CauseName() string
	Silent() bool
	Init() ActionState
	Act(wv WorldView, obj *Obj, tau float64, state ActionState) (ActionState, error)
}

// Marker fires a single named event with no other behavior.
type Marker struct {
	Name       string
	Tau        float64
	SilentFlag bool
}

func (m Marker) Key() string       { return fmt.Sprintf("Marker:%s@%g", m.Name, m.Tau) }
func (m Marker) TauStart() float64 { return m.Tau }
func (m Marker) TauEnd() float64   { return m.Tau }
func (m Marker) CauseName() string { return "Marker" }
func (m Marker) Silent() bool      { return m.SilentFlag }
func (m Marker) Init() ActionState { return nil }

func (m Marker) Act(wv WorldView, obj *Obj, tau float64, state ActionState) (ActionState, error) {
	st, err := wv.State(obj.ID)
	if err != nil {
		return state, err
	}
	wv.AddEvent(eventlog.Event{Name: m.Name, Cause: m.CauseName(), SenderID: obj.ID, SenderState: st})
	return state, nil
}

// Sender periodically schedules Pulse actions: on firing it schedules one
// Pulse at its own proper time and a follow-up Sender one Period later.
type Sender struct {
	Name       string
	Start      float64
	Period     float64
	N          int
	SilentFlag bool
}

func (s Sender) Key() string       { return fmt.Sprintf("Sender:%s#%d@%g", s.Name, s.N, s.Start) }
func (s Sender) TauStart() float64 { return s.Start }
func (s Sender) TauEnd() float64   { return s.Start }
func (s Sender) CauseName() string { return "Sender" }
func (s Sender) Silent() bool      { return s.SilentFlag }
func (s Sender) Init() ActionState { return nil }

func (s Sender) Act(wv WorldView, obj *Obj, tau float64, state ActionState) (ActionState, error) {
	wv.AddAction(obj.ID, Pulse{Name: s.Name, Start: s.Start, SilentFlag: s.SilentFlag})
	wv.AddAction(obj.ID, Sender{Name: s.Name, Start: s.Start + s.Period, Period: s.Period, N: s.N + 1, SilentFlag: s.SilentFlag})
	return state, nil
}

// pulseState is Pulse's opaque per-action token.
type pulseState struct {
	source     *frame.State
	impossible map[string]bool
	tracked    map[string]bool
}

// Pulse propagates a spherical lightlike wavefront from the firing object's
// state at Start. It never completes: TauEnd is +Inf. A reception event
// carries the receiver's state at the reception as both SenderState and
// ReceiverState, so SenderState.R is where and when the pulse arrived.
type Pulse struct {
	Name       string
	Start      float64
	SilentFlag bool
}

func (p Pulse) Key() string       { return fmt.Sprintf("Pulse:%s@%g", p.Name, p.Start) }
func (p Pulse) TauStart() float64 { return p.Start }
func (p Pulse) TauEnd() float64 {
	return math.Inf(1)
}
func (p Pulse) CauseName() string { return "Pulse" }
func (p Pulse) Silent() bool      { return p.SilentFlag }
func (p Pulse) Init() ActionState {
	return &pulseState{impossible: make(map[string]bool), tracked: make(map[string]bool)}
}

func (p Pulse) Act(wv WorldView, obj *Obj, tau float64, state ActionState) (ActionState, error) {
	// Work on a copy so the token held by the committed World is unchanged
	// when this candidate is discarded.
	ps := p.Init().(*pulseState)
	if prev, _ := state.(*pulseState); prev != nil {
		ps.source = prev.source
		for id := range prev.impossible {
			ps.impossible[id] = true
		}
		for id := range prev.tracked {
			ps.tracked[id] = true
		}
	}
	if ps.source == nil {
		s, err := wv.State(obj.ID)
		if err != nil {
			return ps, err
		}
		ps.source = &s
	}

	eps := wv.Eps()

	for _, id := range wv.ObjectIDs() {
		if id == obj.ID || ps.impossible[id] || ps.tracked[id] {
			continue
		}
		st, err := wv.State(id)
		if err != nil {
			return ps, err
		}
		// Timelike here always means "with later time": candidate states are
		// only ever evaluated at evaluatedTime >= source.R.T, so a timelike
		// separation can't land in the pulse's own past.
		switch kinematics.ClassifySeparation(ps.source.R, st.R, eps) {
		case kinematics.Timelike:
			ps.impossible[id] = true
		case kinematics.Lightlike:
			wv.AddEvent(eventlog.Event{Name: p.Name, Cause: p.CauseName(), SenderID: obj.ID, SenderState: st, ReceiverID: id, ReceiverState: st})
			ps.impossible[id] = true
		case kinematics.Spacelike:
			ps.tracked[id] = true
		}
	}

	for id := range ps.tracked {
		st, err := wv.State(id)
		if err != nil {
			return ps, err
		}
		switch kinematics.ClassifySeparation(ps.source.R, st.R, eps) {
		case kinematics.Timelike:
			return ps, RetrySmallerStep{}
		case kinematics.Lightlike:
			wv.AddEvent(eventlog.Event{Name: p.Name, Cause: p.CauseName(), SenderID: obj.ID, SenderState: st, ReceiverID: id, ReceiverState: st})
			delete(ps.tracked, id)
			ps.impossible[id] = true
		case kinematics.Spacelike:
			// still ahead of the wavefront
		}
	}

	return ps, nil
}

// DetectCollision watches a list of targets for 3-space proximity within the
// activity window [Start, Until].
type DetectCollision struct {
	Name       string
	Start      float64
	Until      float64
	Targets    []string
	SilentFlag bool
}

func (d DetectCollision) Key() string       { return fmt.Sprintf("DetectCollision:%s@%g", d.Name, d.Start) }
func (d DetectCollision) TauStart() float64 { return d.Start }
func (d DetectCollision) TauEnd() float64   { return d.Until }
func (d DetectCollision) CauseName() string { return "DetectCollision" }
func (d DetectCollision) Silent() bool      { return d.SilentFlag }
func (d DetectCollision) Init() ActionState { return make(map[string]bool) }

func (d DetectCollision) Act(wv WorldView, obj *Obj, tau float64, state ActionState) (ActionState, error) {
	// Work on a copy so the token held by the committed World is unchanged
	// when this candidate is discarded.
	prev, _ := state.(map[string]bool)
	generated := make(map[string]bool, len(prev))
	for target := range prev {
		generated[target] = true
	}
	eps := wv.Eps()
	self, err := wv.State(obj.ID)
	if err != nil {
		return generated, err
	}
	for _, target := range d.Targets {
		targetSt, err := wv.State(target)
		if err != nil {
			return generated, err
		}
		diff := self.R.Spatial().Sub(targetSt.R.Spatial())
		dist := diff.Norm()
		switch {
		case generated[target] && dist > 2*eps:
			delete(generated, target)
		case !generated[target] && dist < 2*eps:
			wv.AddEvent(eventlog.Event{Name: "collide", Cause: d.CauseName(), SenderID: obj.ID, SenderState: self, ReceiverID: target, ReceiverState: targetSt})
			generated[target] = true
		}
	}
	return generated, nil
}

// UserAction wraps an arbitrary user-supplied callback as an Action, for
// client code that needs behavior none of the built-in variants cover.
type UserAction struct {
	Name       string
	Start      float64
	End        float64
	SilentFlag bool
	InitFn     func() ActionState
	Fn         func(wv WorldView, obj *Obj, tau float64, state ActionState) (ActionState, error)
}

func (u UserAction) Key() string       { return fmt.Sprintf("UserAction:%s@%g", u.Name, u.Start) }
func (u UserAction) TauStart() float64 { return u.Start }
func (u UserAction) TauEnd() float64   { return u.End }
func (u UserAction) CauseName() string { return "UserAction" }
func (u UserAction) Silent() bool      { return u.SilentFlag }

func (u UserAction) Init() ActionState {
	if u.InitFn == nil {
		return nil
	}
	return u.InitFn()
}

func (u UserAction) Act(wv WorldView, obj *Obj, tau float64, state ActionState) (ActionState, error) {
	return u.Fn(wv, obj, tau, state)
}
