package kinematics

import (
	"math"
	"testing"

	"github.com/flatspace/worldline/vector"
)

const testEps = 1e-9

func almostEqual(t *testing.T, got, want, eps float64) {
	t.Helper()
	if math.Abs(got-want) > eps {
		t.Fatalf("got %v, want %v (eps %v)", got, want, eps)
	}
}

func TestGammaAtHalfC(t *testing.T) {
	g, err := Gamma(vector.Vector3{X: 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	almostEqual(t, g, 2/math.Sqrt(3), testEps)
}

func TestGammaRejectsLightspeed(t *testing.T) {
	if _, err := Gamma(vector.Vector3{X: 1}); err != ErrLightspeedFrame {
		t.Fatalf("expected ErrLightspeedFrame, got %v", err)
	}
}

func TestAddedVelocityIdentityAtZeroFrame(t *testing.T) {
	u := vector.Vector3{X: 0.3, Y: 0.1}
	got, err := ObservedAddedVelocity(vector.Zero3, u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.AlmostEqual(u, testEps) {
		t.Fatalf("ObservedAddedVelocity with zero frame = %v, want %v", got, u)
	}
}

func TestTransformedAddedVelocityInvertsObserved(t *testing.T) {
	vFrame := vector.Vector3{X: 0.4, Y: -0.2}
	uPrime := vector.Vector3{X: 0.1, Y: 0.2, Z: -0.05}
	observed, err := ObservedAddedVelocity(vFrame, uPrime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := TransformedAddedVelocity(vFrame, observed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !back.AlmostEqual(uPrime, 1e-9) {
		t.Fatalf("round trip = %v, want %v", back, uPrime)
	}
}

func TestLorentzTransformIdentityAtZeroVelocity(t *testing.T) {
	r4 := vector.Vector4{T: 1, X: 2, Y: 3, Z: 4}
	got, err := LorentzTransform(vector.Zero3, r4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != r4 {
		t.Fatalf("LorentzTransform with zero v = %v, want %v", got, r4)
	}
}

func TestLorentzTransformRoundTrip(t *testing.T) {
	v := vector.Vector3{X: 0.6, Y: 0.1}
	r4 := vector.Vector4{T: 2, X: 1, Y: -1, Z: 0.5}
	boosted, err := LorentzTransform(v, r4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := LorentzTransformInv(v, boosted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !back.AlmostEqual(r4, 1e-9) {
		t.Fatalf("round trip = %v, want %v", back, r4)
	}
}

func TestRelativisticAccelerationAtTauOne(t *testing.T) {
	st := RelativisticAcceleration(vector.Vector3{X: 1}, 1)
	almostEqual(t, st.R.T, math.Sinh(1), 1e-9)
	almostEqual(t, st.R.X, math.Cosh(1)-1, 1e-9)
	almostEqual(t, st.V.X, math.Tanh(1), 1e-9)
	almostEqual(t, st.Tau, 1, 1e-12)
}

func TestRelativisticCoordAccelerationInvertsProperForm(t *testing.T) {
	a0 := vector.Vector3{X: 0.3}
	tau := 2.5
	st := RelativisticAcceleration(a0, tau)
	back := RelativisticCoordAcceleration(a0, st.R.T)
	almostEqual(t, back.Tau, tau, 1e-8)
	almostEqual(t, back.R.T, st.R.T, 1e-12)
}

func TestRelativisticCoordAccelerationBoostedReducesToSimpleFormAtZeroV(t *testing.T) {
	a0 := vector.Vector3{X: 0.2}
	tau, err := RelativisticCoordAccelerationBoosted(a0, vector.Zero3, 3.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := RelativisticCoordAcceleration(a0, 3.0)
	almostEqual(t, tau, want.Tau, 1e-8)
}

func TestClassifySeparation(t *testing.T) {
	origin := vector.Vector4{}
	if got := ClassifySeparation(origin, vector.Vector4{T: 2, X: 1}, 1e-8); got != Timelike {
		t.Fatalf("expected Timelike, got %v", got)
	}
	if got := ClassifySeparation(origin, vector.Vector4{T: 1, X: 2}, 1e-8); got != Spacelike {
		t.Fatalf("expected Spacelike, got %v", got)
	}
	if got := ClassifySeparation(origin, vector.Vector4{T: 1, X: 1}, 1e-8); got != Lightlike {
		t.Fatalf("expected Lightlike, got %v", got)
	}
}
