package scheduler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flatspace/worldline/object"
	"github.com/flatspace/worldline/vector"
)

const testTol = 1e-3

func newEngine() *Engine {
	return New(Config{Eps: 1e-8, MaxRetries: 64, RetryBisectFraction: 0.1, LogActions: true})
}

func TestTrivialInertial(t *testing.T) {
	e := newEngine()
	o := object.New("o1", "o1")
	e.AddObject(o, vector.Vector4{}, vector.Zero3, 0)

	require.NoError(t, e.SimulateTo(1.0))
	assert.Empty(t, e.World().Events())

	st, err := e.World().State("o1")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, st.R.T, testTol)
	assert.InDelta(t, 0.0, st.R.Spatial().Norm(), testTol)
	assert.InDelta(t, 1.0, st.Tau, testTol)
}

func TestMovingObjectMarkerEvent(t *testing.T) {
	e := newEngine()
	o := object.New("o1", "o1")
	require.NoError(t, o.AddAction(object.Marker{Name: "mark", Tau: 0.5}))
	e.AddObject(o, vector.Vector4{}, vector.Vector3{X: 0.5}, 0)

	require.NoError(t, e.SimulateTo(1.0))
	events := e.World().Events()
	require.Len(t, events, 1)

	gamma := 1 / math.Sqrt(0.75)
	wantT := 0.5 * gamma
	wantX := 0.25 * gamma
	got := events[0].SenderState.R
	assert.InDelta(t, wantT, got.T, testTol)
	assert.InDelta(t, wantX, got.X, testTol)

	final, err := e.World().State("o1")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, final.R.T, testTol)
	assert.InDelta(t, 0.5, final.R.X, testTol)
	assert.InDelta(t, 1/gamma, final.Tau, testTol)
}

func TestPulseReception(t *testing.T) {
	e := newEngine()
	sender := object.New("sender", "sender")
	require.NoError(t, sender.AddAction(object.Pulse{Name: "beep", Start: 0}))
	receiver := object.New("receiver", "receiver")
	e.AddObject(sender, vector.Vector4{}, vector.Zero3, 0)
	e.AddObject(receiver, vector.NewVector4(0, vector.Vector3{X: 1}), vector.Zero3, 0)

	require.NoError(t, e.SimulateTo(2.0))
	events := e.World().Events()

	var found bool
	for _, ev := range events {
		if ev.Name == "beep" && ev.ReceiverID == "receiver" {
			found = true
			assert.InDelta(t, 1.0, ev.SenderState.R.T, testTol)
			assert.InDelta(t, 1.0, ev.SenderState.R.X, testTol)
			assert.InDelta(t, 1.0, ev.ReceiverState.Tau, testTol)
		}
	}
	assert.True(t, found, "expected a beep reception event, got %+v", events)
}

func TestHyperbolicRocket(t *testing.T) {
	e := newEngine()
	o := object.New("rocket", "rocket")
	require.NoError(t, o.AddMotion(object.LongitudinalAcceleration{Start: 0, End: math.Inf(1), A: vector.Vector3{X: 1}}))
	require.NoError(t, o.AddAction(object.Marker{Name: "checkpoint", Tau: 1}))
	e.AddObject(o, vector.Vector4{}, vector.Zero3, 0)

	require.NoError(t, e.SimulateTo(2.0))
	events := e.World().Events()
	require.Len(t, events, 1)

	got := events[0].SenderState
	assert.InDelta(t, math.Sinh(1), got.R.T, testTol)
	assert.InDelta(t, math.Cosh(1)-1, got.R.X, testTol)
	assert.InDelta(t, math.Tanh(1), got.V.X, testTol)
}

func TestTwinParadox(t *testing.T) {
	e := newEngine()
	twinOld := object.New("old", "old")
	twinYoung := object.New("young", "young")

	segs := []struct {
		start, dur float64
		dir        float64
	}{
		{0, 4, 1},
		{4, 8, -1},
		{12, 4, 1},
	}
	for _, s := range segs {
		m := object.LongitudinalAcceleration{Start: s.start, End: s.start + s.dur, A: vector.Vector3{X: s.dir}}
		require.NoError(t, twinYoung.AddMotion(m))
	}
	require.NoError(t, twinYoung.AddAction(object.DetectCollision{Name: "reunite", Start: 4, Until: math.Inf(1), Targets: []string{"old"}}))

	e.AddObject(twinOld, vector.Vector4{}, vector.Zero3, 0)
	e.AddObject(twinYoung, vector.Vector4{}, vector.Zero3, 0)

	require.NoError(t, e.SimulateTo(110))

	events := e.World().Events()
	var collided bool
	for _, ev := range events {
		if ev.Name == "collide" {
			collided = true
		}
	}
	assert.True(t, collided, "expected a collide event marking reunion, got %+v", events)

	oldSt, err := e.World().State("old")
	require.NoError(t, err)
	youngSt, err := e.World().State("young")
	require.NoError(t, err)
	assert.Greater(t, oldSt.Tau, 6*youngSt.Tau, "expected stationary twin to age more than 6x")
}

func TestRocketClocksWithSender(t *testing.T) {
	e := newEngine()

	bottom := object.New("bottom", "bottom")
	top := object.New("top", "top")

	accel := vector.Vector3{X: 0.1}
	require.NoError(t, bottom.AddMotion(object.LongitudinalAcceleration{Start: 0, End: math.Inf(1), A: accel}))
	require.NoError(t, top.AddMotion(object.LongitudinalAcceleration{Start: 0, End: math.Inf(1), A: accel}))
	require.NoError(t, bottom.AddAction(object.Sender{Name: "A", Start: 0, Period: 1}))

	e.AddObject(bottom, vector.Vector4{}, vector.Zero3, 0)
	e.AddObject(top, vector.NewVector4(0, vector.Vector3{X: 1}), vector.Zero3, 0)

	require.NoError(t, e.SimulateTo(10))

	var receptions []float64
	for _, ev := range e.World().Events() {
		if ev.Name == "A" && ev.ReceiverID == "top" {
			receptions = append(receptions, ev.ReceiverState.Tau)
		}
	}
	require.GreaterOrEqual(t, len(receptions), 2, "expected at least two receptions at top, got %+v", receptions)
	for i := 1; i < len(receptions); i++ {
		gap := receptions[i] - receptions[i-1]
		assert.Greater(t, receptions[i], receptions[i-1], "reception proper times not monotonically increasing: %v", receptions)
		assert.Greater(t, gap, 1.0, "reception gap at index %d not strictly greater than one proper-time unit", i)
	}
}

func TestFiniteDurationActionDoesNotRefireAfterCompletion(t *testing.T) {
	e := newEngine()
	young := object.New("young", "young")
	old := object.New("old", "old")
	require.NoError(t, young.AddAction(object.DetectCollision{Name: "window", Start: 0, Until: 5, Targets: []string{"old"}}))

	e.AddObject(young, vector.Vector4{}, vector.Zero3, 0)
	e.AddObject(old, vector.NewVector4(0, vector.Vector3{X: 100}), vector.Zero3, 0)

	require.NoError(t, e.SimulateTo(50))

	var collisions int
	for _, ev := range e.World().Events() {
		if ev.Name == "collide" {
			collisions++
		}
	}
	assert.Zero(t, collisions, "objects never meet, so the finite window must not keep firing past its end")

	key := object.DetectCollision{Name: "window", Start: 0, Until: 5, Targets: []string{"old"}}.Key()
	assert.True(t, e.World().IsComplete(key), "the window must be complete once its end has fired")
	assert.False(t, e.World().IsActive(key), "a completed window must leave the active set and not fire again")
}
