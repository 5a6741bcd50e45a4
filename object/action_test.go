package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flatspace/worldline/eventlog"
	"github.com/flatspace/worldline/frame"
)

// fakeView is a minimal WorldView stand-in for exercising Action.Act in
// isolation, without a scheduler or DeltaWorld.
type fakeView struct {
	now    float64
	states map[string]frame.State
	events []eventlog.Event
}

func (f *fakeView) Now() float64 { return f.now }
func (f *fakeView) Eps() float64 { return 1e-8 }
func (f *fakeView) LogActions() bool { return true }

func (f *fakeView) ObjectIDs() []string {
	ids := make([]string, 0, len(f.states))
	for id := range f.states {
		ids = append(ids, id)
	}
	return ids
}

func (f *fakeView) State(id string) (frame.State, error) { return f.states[id], nil }
func (f *fakeView) StateInFrame(id string, fr frame.Frame) (frame.State, error) {
	return frame.Transform(f.states[id], frame.Origin, fr)
}
func (f *fakeView) ActionState(key string) (ActionState, bool) { return nil, false }
func (f *fakeView) IsActive(key string) bool                   { return false }
func (f *fakeView) IsComplete(key string) bool                 { return false }
func (f *fakeView) AddEvent(e eventlog.Event)                  { f.events = append(f.events, e) }
func (f *fakeView) AddAction(objID string, a Action)           {}
func (f *fakeView) AddMotion(objID string, m Motion)           {}
func (f *fakeView) AddOrSetObject(objID, name string, s frame.State) error {
	f.states[objID] = s
	return nil
}
func (f *fakeView) SetActionState(key string, s ActionState) {}
func (f *fakeView) Complete(key string)                      {}
func (f *fakeView) Deactivate(key string)                    {}

func TestMarkerEmitsOneEvent(t *testing.T) {
	obj := New("a", "alpha")
	v := &fakeView{now: 1, states: map[string]frame.State{"a": {}}}
	m := Marker{Name: "hello", Tau: 1}
	_, err := m.Act(v, obj, 1, m.Init())
	require.NoError(t, err)
	require.Len(t, v.events, 1)
	assert.Equal(t, "hello", v.events[0].Name)
}

func TestDetectCollisionEmitsOnceWithinTolerance(t *testing.T) {
	obj := New("a", "alpha")
	v := &fakeView{now: 0, states: map[string]frame.State{"a": {}, "b": {}}}
	d := DetectCollision{Name: "hit", Start: 0, Until: 10, Targets: []string{"b"}}
	state := d.Init()
	state, err := d.Act(v, obj, 0, state)
	require.NoError(t, err)
	require.Len(t, v.events, 1)
	assert.Equal(t, "collide", v.events[0].Name)

	_, err = d.Act(v, obj, 0, state)
	require.NoError(t, err)
	assert.Len(t, v.events, 1, "expected no duplicate event while still colliding")
}
