package metrics

import (
	"github.com/san-kum/glacialsim/internal/dynamo"
)

// Occupancy is the fraction of recorded steps spent in one regime.
type Occupancy struct {
	name    string
	state   dynamo.GlacialState
	hits    int
	samples int
}

func NewOccupancy(state dynamo.GlacialState) *Occupancy {
	return &Occupancy{
		name:  "occupancy." + state.Label(),
		state: state,
	}
}

func (o *Occupancy) Name() string { return o.name }

func (o *Occupancy) Observe(step int, t float64, snap dynamo.Snapshot) {
	if snap.State == o.state {
		o.hits++
	}
	o.samples++
}

func (o *Occupancy) Value() float64 {
	if o.samples == 0 {
		return 0
	}
	return float64(o.hits) / float64(o.samples)
}

func (o *Occupancy) Reset() {
	o.hits = 0
	o.samples = 0
}

// Transitions counts regime changes between consecutive steps.
type Transitions struct {
	name       string
	prev       dynamo.GlacialState
	seen       bool
	count      int
	outOfCycle bool
}

func NewTransitions() *Transitions {
	return &Transitions{name: "transitions"}
}

// NewCycleViolations counts changes that do not follow i -> g -> G -> i.
// Any non-zero value points at a model bug.
func NewCycleViolations() *Transitions {
	return &Transitions{name: "cycle_violations", outOfCycle: true}
}

func (c *Transitions) Name() string { return c.name }

func (c *Transitions) Observe(step int, t float64, snap dynamo.Snapshot) {
	if c.seen && snap.State != c.prev {
		if !c.outOfCycle || snap.State != c.prev.Next() {
			c.count++
		}
	}
	c.prev = snap.State
	c.seen = true
}

func (c *Transitions) Value() float64 { return float64(c.count) }

func (c *Transitions) Reset() {
	c.count = 0
	c.seen = false
	c.prev = 0
}
