package scheduler

import (
	"github.com/flatspace/worldline/eventlog"
	"github.com/flatspace/worldline/object"
)

// finisher is a synthetic action scheduled by completion bookkeeping (§4.7
// step 5) at a finite-duration action's tauEnd. When it fires it marks the
// owning action complete and, unless silenced, emits an Action-end event.
type finisher struct {
	ownerKey   string
	ownerCause string
	tau        float64
	silent     bool
}

func (f finisher) Key() string       { return "finisher:" + f.ownerKey }
func (f finisher) TauStart() float64 { return f.tau }
func (f finisher) TauEnd() float64   { return f.tau }
func (f finisher) CauseName() string { return "ActionEnd" }
func (f finisher) Silent() bool      { return f.silent }
func (f finisher) Init() object.ActionState { return nil }

func (f finisher) Act(wv object.WorldView, obj *object.Obj, tau float64, state object.ActionState) (object.ActionState, error) {
	wv.Complete(f.ownerKey)
	if wv.LogActions() && !f.silent {
		st, err := wv.State(obj.ID)
		if err != nil {
			return state, err
		}
		wv.AddEvent(eventlog.Event{Name: "Action-end", Cause: f.ownerCause, SenderID: obj.ID, SenderState: st})
	}
	return state, nil
}
