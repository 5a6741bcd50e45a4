package object

import (
	"math"

	"github.com/flatspace/worldline/frame"
)

// segment walks the sorted motion list and the synthetic inertial gaps
// between entries, tracking a cursor so zero-length motions (such as
// AbruptVelocityChange) are visited exactly once instead of forever
// re-matching at the same proper time.
type segment struct {
	motions []Motion
	idx     int
}

// next returns the Motion governing proper time tau, advancing the internal
// cursor past any motion it fully consumes. An Inertial or
// LongitudinalAcceleration entered part-way through is returned with its
// Start moved up to tau, so it runs from the object's current proper time.
func (s *segment) next(tau float64) Motion {
	for s.idx < len(s.motions) && s.motions[s.idx].TauEnd() < tau {
		s.idx++
	}
	if s.idx >= len(s.motions) {
		return Inertial{Start: tau, End: math.Inf(1)}
	}
	m := s.motions[s.idx]
	if m.TauStart() <= tau {
		s.idx++
		switch mm := m.(type) {
		case Inertial:
			mm.Start = tau
			return mm
		case LongitudinalAcceleration:
			mm.Start = tau
			return mm
		}
		return m
	}
	return Inertial{Start: tau, End: m.TauStart()}
}

// AdvanceToProperTime produces the object's world-frame State at proper
// time tauTarget, starting from state, per spec.md §4.4. Assumes
// tauTarget >= state.Tau (the direction the scheduler always advances in).
func AdvanceToProperTime(o *Obj, state frame.State, tauTarget, eps float64) (frame.State, error) {
	cur := state
	seg := &segment{motions: o.Motions()}
	for cur.Tau < tauTarget-eps {
		m := seg.next(cur.Tau)
		segEnd := m.TauEnd()
		if segEnd > tauTarget {
			segEnd = tauTarget
		}
		coMovingFrame := frame.Frame{R: cur.R, V: cur.V}
		local, err := m.MoveUntilProperTime(coMovingFrame, cur.Tau, segEnd)
		if err != nil {
			return frame.State{}, err
		}
		next, err := frame.Transform(local, coMovingFrame, frame.Origin)
		if err != nil {
			return frame.State{}, err
		}
		next.Tau = segEnd
		cur = next
	}
	cur.Tau = tauTarget
	return cur, nil
}

// AdvanceToCoordinateTime produces the object's world-frame State at
// coordinate time tTarget, starting from state, per spec.md §4.4.
func AdvanceToCoordinateTime(o *Obj, state frame.State, tTarget, eps float64) (frame.State, error) {
	cur := state
	seg := &segment{motions: o.Motions()}
	for cur.R.T < tTarget-eps {
		m := seg.next(cur.Tau)
		coMovingFrame := frame.Frame{R: cur.R, V: cur.V}
		local, err := m.MoveUntilCoordinateTime(coMovingFrame, tTarget)
		if err != nil {
			return frame.State{}, err
		}
		next, err := frame.Transform(local, coMovingFrame, frame.Origin)
		if err != nil {
			return frame.State{}, err
		}
		cur = next
	}
	cur.R.T = tTarget
	return cur, nil
}
