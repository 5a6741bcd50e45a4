// Package scheduler drives the simulate-to loop of spec.md §4.7: the heart
// of the system. It selects the earliest pending action across all objects,
// advances a candidate DeltaWorld to that coordinate time, invokes active
// and newly-firing actions, bisects on RetrySmallerStep, and commits.
package scheduler

import (
	"errors"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/flatspace/worldline/eventlog"
	"github.com/flatspace/worldline/frame"
	"github.com/flatspace/worldline/object"
	"github.com/flatspace/worldline/simworld"
	"github.com/flatspace/worldline/vector"
)

// Telemetry is the subset of instrumentation the scheduler drives; satisfied
// by internal/telemetry.Recorder. Accepted as an interface so this package
// never imports the ambient stack.
type Telemetry interface {
	ObserveStep(now float64)
	ObserveRetry()
	ObserveEvent()
}

// Observer is invoked after every committed step with a read-only view of
// the world. Returning true requests early termination of SimulateTo.
type Observer func(w *simworld.World) (stop bool)

// Config holds the simulator-wide tunables of spec.md §5 and §9 — promoted
// out of mutable globals into an explicit struct, per the teacher's
// engineconfig idiom.
type Config struct {
	Eps                 float64
	MaxRetries          int
	RetryBisectFraction float64
	LogActions          bool
}

// Engine owns a World and drives it forward via SimulateTo. It is the only
// object client code interacts with directly.
type Engine struct {
	world *simworld.World
	cfg   Config

	observers []Observer
	logger    zerolog.Logger
	telemetry Telemetry
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithObserver registers an Observer.
func WithObserver(ob Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, ob) }
}

// WithLogger attaches a structured logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithTelemetry attaches a metrics sink.
func WithTelemetry(t Telemetry) Option {
	return func(e *Engine) { e.telemetry = t }
}

// New constructs an Engine with an empty World.
func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		world:  simworld.New(cfg.Eps, cfg.LogActions),
		cfg:    cfg,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddObject introduces o at the given world-frame 4-position, velocity, and
// proper time, before the first SimulateTo call.
func (e *Engine) AddObject(o *object.Obj, r vector.Vector4, v vector.Vector3, tau float64) {
	e.world.AddObject(o, frame.State{R: r, V: v, Tau: tau})
}

// World returns the current committed World.
func (e *Engine) World() *simworld.World { return e.world }

// Events runs q against the committed event log.
func (e *Engine) Events(q eventlog.Query) []eventlog.Event {
	return q.Run(e.world.Events())
}

// RegisterObserver adds an Observer to the engine.
func (e *Engine) RegisterObserver(ob Observer) {
	e.observers = append(e.observers, ob)
}

// candidate is the earliest pending action found across all objects, and
// the world-frame state of its owning object at that proper time.
type candidate struct {
	obj    *object.Obj
	action object.Action
	state  frame.State
}

// SimulateTo advances the world from its current now up to tHorizon,
// firing actions in non-decreasing world-frame coordinate time order.
func (e *Engine) SimulateTo(tHorizon float64) error {
	for e.world.Now < tHorizon-e.cfg.Eps {
		if err := e.stepOnce(tHorizon); err != nil {
			return err
		}
		if e.telemetry != nil {
			e.telemetry.ObserveStep(e.world.Now)
		}
		for _, ob := range e.observers {
			if ob(e.world) {
				return nil
			}
		}
	}
	return nil
}

func (e *Engine) stepOnce(tHorizon float64) error {
	earliest, err := e.earliest()
	if err != nil {
		return err
	}
	if earliest != nil && earliest.state.R.T > tHorizon+e.cfg.Eps {
		earliest = nil
	}

	if earliest == nil && len(e.world.ActiveKeys()) == 0 {
		return e.fastForward(tHorizon)
	}

	targetTime := tHorizon
	if earliest != nil {
		targetTime = earliest.state.R.T
	}

	firedAtOwnTime, err := e.innerLoop(earliest, targetTime)
	if err != nil {
		return err
	}
	if firedAtOwnTime {
		e.completeBookkeeping(earliest)
	}
	return nil
}

// earliest finds, across all objects, the pending action with the smallest
// world-frame firing time (§4.7 step 1).
func (e *Engine) earliest() (*candidate, error) {
	var best *candidate
	for _, o := range e.world.Objects() {
		next, found := firstPending(o, e.world)
		if !found {
			continue
		}
		cur, err := e.world.State(o.ID)
		if err != nil {
			return nil, err
		}
		st, err := object.AdvanceToProperTime(o, cur, next.TauStart(), e.cfg.Eps)
		if err != nil {
			return nil, err
		}
		if best == nil || st.R.T < best.state.R.T {
			best = &candidate{obj: o, action: next, state: st}
		}
	}
	return best, nil
}

func firstPending(o *object.Obj, w *simworld.World) (object.Action, bool) {
	for _, a := range o.Actions() {
		key := a.Key()
		if w.IsComplete(key) || w.IsActive(key) {
			continue
		}
		return a, true
	}
	return nil, false
}

// fastForward handles §4.7 step 3: no pending action in the window and no
// currently active action, so every object simply coasts to the horizon.
func (e *Engine) fastForward(tHorizon float64) error {
	space := make(map[string]frame.State, len(e.world.Objects()))
	for _, o := range e.world.Objects() {
		cur, err := e.world.State(o.ID)
		if err != nil {
			return err
		}
		st, err := object.AdvanceToCoordinateTime(o, cur, tHorizon, e.cfg.Eps)
		if err != nil {
			return err
		}
		space[o.ID] = st
	}
	dw := simworld.NewDeltaWorld(e.world, tHorizon, space)
	nw, err := dw.ApplyAll()
	if err != nil {
		return err
	}
	e.world = nw
	return nil
}

type invocation struct {
	key    string
	objID  string
	action object.Action
}

// innerLoop is the transactional inner loop of §4.7 step 4: build a
// candidate, invoke active and earliest actions, bisect on
// RetrySmallerStep, and commit. Returns whether the earliest action (if
// any) actually fired at its own proper time.
func (e *Engine) innerLoop(earliest *candidate, targetTime float64) (bool, error) {
	fallbackTime := e.world.Now
	evaluatedTime := targetTime
	retries := 0

	for {
		space, err := e.candidateSpace(earliest, evaluatedTime)
		if err != nil {
			return false, err
		}
		dw := simworld.NewDeltaWorld(e.world, evaluatedTime, space)

		fires := e.activeInvocations()
		firesEarliest := earliest != nil && evaluatedTime == earliest.state.R.T
		if firesEarliest {
			fires = append(fires, invocation{key: earliest.action.Key(), objID: earliest.obj.ID, action: earliest.action})
		}
		sort.SliceStable(fires, func(i, j int) bool { return invocationLess(fires[i], fires[j]) })

		var retry *object.RetrySmallerStep
		for _, inv := range fires {
			owner, ok := e.world.Object(inv.objID)
			if !ok {
				return false, simworld.ErrUnknownObject
			}
			st, known := dw.ActionState(inv.key)
			if !known {
				st = inv.action.Init()
			}
			newSt, err := inv.action.Act(dw, owner, evaluatedTime, st)
			if err != nil {
				var rs object.RetrySmallerStep
				if errors.As(err, &rs) {
					if retry == nil {
						retry = &rs
					}
					continue
				}
				return false, err
			}
			dw.SetActionState(inv.key, newSt)
			if e.telemetry != nil {
				e.telemetry.ObserveEvent()
			}
		}

		if retry != nil {
			retries++
			if retries > e.cfg.MaxRetries {
				return false, simworld.ErrExcessiveRetries
			}
			if e.telemetry != nil {
				e.telemetry.ObserveRetry()
			}
			if math.Abs(fallbackTime-evaluatedTime) < e.cfg.Eps {
				e.logger.Warn().Float64("fallback", fallbackTime).Float64("evaluated", evaluatedTime).Msg("precision warning: proceeding despite continued retry")
			} else {
				span := evaluatedTime - fallbackTime
				next := (fallbackTime + evaluatedTime) / 2
				if retry.Hint != nil && *retry.Hint > fallbackTime && *retry.Hint < evaluatedTime {
					lo := fallbackTime + e.cfg.RetryBisectFraction*span
					hi := evaluatedTime - e.cfg.RetryBisectFraction*span
					h := *retry.Hint
					if h < lo {
						h = lo
					}
					if h > hi {
						h = hi
					}
					next = h
				}
				targetTime = evaluatedTime
				evaluatedTime = next
				continue
			}
		}

		nw, err := dw.ApplyAll()
		if err != nil {
			return false, err
		}
		if e.telemetry != nil {
			for i := len(e.world.Events()); i < len(nw.Events()); i++ {
				e.telemetry.ObserveEvent()
			}
		}
		e.world = nw

		if evaluatedTime < targetTime-e.cfg.Eps {
			fallbackTime = evaluatedTime
			evaluatedTime = targetTime
			continue
		}
		return firesEarliest, nil
	}
}

func (e *Engine) candidateSpace(earliest *candidate, evaluatedTime float64) (map[string]frame.State, error) {
	space := make(map[string]frame.State, len(e.world.Objects()))
	for _, o := range e.world.Objects() {
		if earliest != nil && o.ID == earliest.obj.ID && evaluatedTime == earliest.state.R.T {
			space[o.ID] = earliest.state
			continue
		}
		cur, err := e.world.State(o.ID)
		if err != nil {
			return nil, err
		}
		st, err := object.AdvanceToCoordinateTime(o, cur, evaluatedTime, e.cfg.Eps)
		if err != nil {
			return nil, err
		}
		space[o.ID] = st
	}
	return space, nil
}

func (e *Engine) activeInvocations() []invocation {
	var out []invocation
	for _, key := range e.world.ActiveKeys() {
		objID, ok := e.world.ActiveOwner(key)
		if !ok {
			continue
		}
		owner, ok := e.world.Object(objID)
		if !ok {
			continue
		}
		for _, a := range owner.Actions() {
			if a.Key() == key {
				out = append(out, invocation{key: key, objID: objID, action: a})
				break
			}
		}
	}
	return out
}

func invocationLess(a, b invocation) bool {
	if a.action.TauStart() != b.action.TauStart() {
		return a.action.TauStart() < b.action.TauStart()
	}
	if a.action.TauEnd() != b.action.TauEnd() {
		return a.action.TauEnd() < b.action.TauEnd()
	}
	return a.key < b.key
}

// completeBookkeeping is §4.7 step 5: mark the fired action complete, or
// active plus a scheduled finisher, and optionally log an Action event. A
// Marker gets no Action event, since it already logs its own named event.
func (e *Engine) completeBookkeeping(c *candidate) {
	key := c.action.Key()
	if c.action.TauStart() == c.action.TauEnd() {
		e.world.MarkComplete(key)
	} else {
		e.world.MarkActive(key, c.obj.ID)
		if !math.IsInf(c.action.TauEnd(), 1) {
			_ = e.world.AppendAction(c.obj.ID, finisher{
				ownerKey:   key,
				ownerCause: c.action.CauseName(),
				tau:        c.action.TauEnd(),
				silent:     c.action.Silent(),
			})
		}
	}
	if _, isMarker := c.action.(object.Marker); !isMarker && e.cfg.LogActions && !c.action.Silent() {
		e.world.AppendEvent(eventlog.Event{Name: "Action", Cause: c.action.CauseName(), SenderID: c.obj.ID, SenderState: c.state})
	}
}
