package eventlog

import "regexp"

// Query filters a committed event log. Construct with New and zero or more
// Option values, then run with Run.
type Query struct {
	name        string
	hasName     bool
	nameRegex   *regexp.Regexp
	minTime     *float64
	maxTime     *float64
	senderID    string
	hasSender   bool
	receiverID  string
	hasReceiver bool
	cause       string
	hasCause    bool
	minTau      *float64
	maxTau      *float64
	place       [3]float64
	placeRadius float64
	hasPlace    bool
}

// Option configures a Query.
type Option func(*Query)

// New builds a Query from the given options.
func New(opts ...Option) Query {
	var q Query
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

// ByName restricts to events with an exact Name match.
func ByName(name string) Option {
	return func(q *Query) {
		q.name = name
		q.hasName = true
	}
}

// ByNameRegex restricts to events whose Name matches re.
func ByNameRegex(re *regexp.Regexp) Option {
	return func(q *Query) { q.nameRegex = re }
}

// ByTimeRange restricts to events whose SenderState.R.T lies in [min, max].
func ByTimeRange(min, max float64) Option {
	return func(q *Query) { q.minTime = &min; q.maxTime = &max }
}

// ByProperTimeRange restricts to events whose SenderState.Tau lies in [min, max].
func ByProperTimeRange(min, max float64) Option {
	return func(q *Query) { q.minTau = &min; q.maxTau = &max }
}

// BySender restricts to events whose SenderID matches id.
func BySender(id string) Option {
	return func(q *Query) { q.senderID = id; q.hasSender = true }
}

// ByReceiver restricts to events whose ReceiverID matches id.
func ByReceiver(id string) Option {
	return func(q *Query) { q.receiverID = id; q.hasReceiver = true }
}

// ByCause restricts to events whose Cause matches exactly (the action-kind tag).
func ByCause(cause string) Option {
	return func(q *Query) { q.cause = cause; q.hasCause = true }
}

// ByPlace restricts to events whose sender spatial position lies within
// radius of center.
func ByPlace(center [3]float64, radius float64) Option {
	return func(q *Query) {
		q.place = center
		q.placeRadius = radius
		q.hasPlace = true
	}
}

// Run filters events against the query, preserving input order.
func (q Query) Run(events []Event) []Event {
	var out []Event
	for _, e := range events {
		if q.hasName && e.Name != q.name {
			continue
		}
		if q.nameRegex != nil && !q.nameRegex.MatchString(e.Name) {
			continue
		}
		if q.hasSender && e.SenderID != q.senderID {
			continue
		}
		if q.hasReceiver && e.ReceiverID != q.receiverID {
			continue
		}
		if q.hasCause && e.Cause != q.cause {
			continue
		}
		if q.minTime != nil && e.SenderState.R.T < *q.minTime {
			continue
		}
		if q.maxTime != nil && e.SenderState.R.T > *q.maxTime {
			continue
		}
		if q.minTau != nil && e.SenderState.Tau < *q.minTau {
			continue
		}
		if q.maxTau != nil && e.SenderState.Tau > *q.maxTau {
			continue
		}
		if q.hasPlace {
			r := e.SenderState.R.Spatial()
			dx, dy, dz := r.X-q.place[0], r.Y-q.place[1], r.Z-q.place[2]
			if dx*dx+dy*dy+dz*dz > q.placeRadius*q.placeRadius {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}
