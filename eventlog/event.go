// Package eventlog holds the Event record emitted by the scheduler and a
// functional-option query builder for filtering a committed log.
package eventlog

import "github.com/flatspace/worldline/frame"

// Event is a single causal record: an action firing, a pulse reception, a
// collision, or a motion boundary. SenderState.R is the event's world-frame
// 4-position.
type Event struct {
	Name string
	Cause string

	SenderID    string
	SenderState frame.State

	ReceiverID    string
	ReceiverState frame.State
}
