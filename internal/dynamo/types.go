package dynamo

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// GlacialState is the climate regime a model is in.
type GlacialState uint8

const (
	Interglacial GlacialState = iota
	MildGlacial
	FullGlacial

	NumStates = 3
)

var stateLabels = [NumStates]string{"i", "g", "G"}
var stateNames = [NumStates]string{"interglacial", "mild_glacial", "full_glacial"}

// Label returns the short display label (i, g or G).
func (s GlacialState) Label() string {
	if !s.Valid() {
		return "?"
	}
	return stateLabels[s]
}

func (s GlacialState) String() string {
	if !s.Valid() {
		return fmt.Sprintf("GlacialState(%d)", uint8(s))
	}
	return stateNames[s]
}

func (s GlacialState) Valid() bool {
	return s < NumStates
}

// Next returns the regime that follows s in the i -> g -> G -> i cycle.
func (s GlacialState) Next() GlacialState {
	return (s + 1) % NumStates
}

// Level maps the regime onto a plotting axis: G=0, g=1, i=2.
func (s GlacialState) Level() float64 {
	return float64(NumStates - 1 - int(s))
}

// ParseGlacialState accepts a short label or a long name.
func ParseGlacialState(v string) (GlacialState, error) {
	for i := 0; i < NumStates; i++ {
		if v == stateLabels[i] || strings.EqualFold(v, stateNames[i]) {
			return GlacialState(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidState, v)
}

func (s GlacialState) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidState, uint8(s))
	}
	return []byte(stateLabels[s]), nil
}

func (s *GlacialState) UnmarshalText(b []byte) error {
	v, err := ParseGlacialState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Inputs is what the driver hands a model for one step. Models ignore the
// fields they have no use for.
type Inputs struct {
	Insolation         float64
	InsolationPrevious float64
	// InsolationPreviousPeak is -Inf when no peak precedes the step.
	InsolationPreviousPeak float64
}

// NoPeak marks the absence of a previous peak.
var NoPeak = math.Inf(-1)

// NewInputs builds step inputs with no previous peak.
func NewInputs(insolation, previous float64) Inputs {
	return Inputs{
		Insolation:             insolation,
		InsolationPrevious:     previous,
		InsolationPreviousPeak: NoPeak,
	}
}

// WithPeak returns a copy of in carrying a previous peak value.
func (in Inputs) WithPeak(peak float64) Inputs {
	in.InsolationPreviousPeak = peak
	return in
}

// HasPreviousPeak reports whether a peak preceded the step.
func (in Inputs) HasPreviousPeak() bool {
	return !math.IsInf(in.InsolationPreviousPeak, -1)
}

// Snapshot is the per-step record a model reports.
type Snapshot struct {
	State GlacialState
	// Vars holds model specific scalars such as "v" or "tc".
	Vars map[string]float64
}

func (s Snapshot) Clone() Snapshot {
	c := Snapshot{State: s.State}
	if s.Vars != nil {
		c.Vars = make(map[string]float64, len(s.Vars))
		for k, v := range s.Vars {
			c.Vars[k] = v
		}
	}
	return c
}

func (s Snapshot) IsValid() bool {
	if !s.State.Valid() {
		return false
	}
	for _, v := range s.Vars {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// VarNames returns the snapshot variable names in sorted order.
func (s Snapshot) VarNames() []string {
	names := make([]string, 0, len(s.Vars))
	for k := range s.Vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Configurable exposes a closed set of named numeric parameters.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// ParamValidator is implemented by models that can check a parameter value
// without applying it.
type ParamValidator interface {
	ValidateParam(name string, value float64) error
}

// Model is a glacial cycle model the simulator can drive.
type Model interface {
	Configurable
	Name() string
	Step(in Inputs) Snapshot
	Snapshot() Snapshot
}

type Metric interface {
	Name() string
	Observe(step int, t float64, snap Snapshot)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(step int, t float64, in Inputs, snap Snapshot)
}

type Result struct {
	Model      string
	Times      []float64
	Forcing    []float64
	Snapshots  []Snapshot
	PeakIdx    []int
	Metrics    map[string]float64
	StepsTaken int
}

// States returns the regime of every recorded step.
func (r *Result) States() []GlacialState {
	out := make([]GlacialState, len(r.Snapshots))
	for i, s := range r.Snapshots {
		out[i] = s.State
	}
	return out
}

// Series returns a snapshot variable across the run; steps that lack it are NaN.
func (r *Result) Series(name string) []float64 {
	out := make([]float64, len(r.Snapshots))
	for i, s := range r.Snapshots {
		v, ok := s.Vars[name]
		if !ok {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}
