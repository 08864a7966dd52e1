package sim

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/glacialsim/internal/dynamo"
	"github.com/san-kum/glacialsim/internal/peaks"
)

// Session advances one model through one forcing series a step at a time.
// It owns the model for its lifetime.
type Session struct {
	model     dynamo.Model
	times     []float64
	forcing   []float64
	index     *peaks.Index
	schedules map[string]Schedule
	names     []string
	validate  bool
	initial   dynamo.Snapshot
	last      dynamo.Snapshot
	step      int
}

// NewSession validates the inputs and schedules and records the model's
// pre-run snapshot as step 0.
func NewSession(model dynamo.Model, times, forcing []float64, cfg Config) (*Session, error) {
	if err := validateSeries(times, forcing); err != nil {
		return nil, err
	}

	params := model.GetParams()
	names := make([]string, 0, len(cfg.Schedules))
	for name, fn := range cfg.Schedules {
		if _, ok := params[name]; !ok {
			return nil, fmt.Errorf("schedule: %w", dynamo.UnknownParam(model.Name(), name))
		}
		if fn == nil {
			return nil, fmt.Errorf("schedule %q: nil function", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if v, ok := model.(dynamo.ParamValidator); ok {
		for _, name := range names {
			for t := 1; t < len(times); t++ {
				if err := v.ValidateParam(name, cfg.Schedules[name](t)); err != nil {
					return nil, fmt.Errorf("schedule %q at step %d: %w", name, t, err)
				}
			}
		}
	}

	index := cfg.Peaks
	if index == nil {
		index = peaks.New(forcing, cfg.Plateau)
	}

	initial := model.Snapshot()
	return &Session{
		model:     model,
		times:     times,
		forcing:   forcing,
		index:     index,
		schedules: cfg.Schedules,
		names:     names,
		validate:  cfg.ValidateState,
		initial:   initial,
		last:      initial,
	}, nil
}

func (s *Session) Initial() dynamo.Snapshot { return s.initial }

func (s *Session) Peaks() *peaks.Index { return s.index }

// Step is the index of the last recorded snapshot.
func (s *Session) Step() int { return s.step }

func (s *Session) Len() int { return len(s.times) }

func (s *Session) Done() bool { return s.step >= len(s.times)-1 }

// Inputs builds the model inputs for step t (t >= 1).
func (s *Session) Inputs(t int) dynamo.Inputs {
	in := dynamo.NewInputs(s.forcing[t], s.forcing[t-1])
	if k, ok := s.index.LatestBefore(t); ok {
		in = in.WithPeak(s.forcing[k])
	}
	return in
}

// Next steps the model once, then applies the schedules for that step.
func (s *Session) Next() (int, dynamo.Inputs, dynamo.Snapshot, error) {
	if s.Done() {
		return s.step, dynamo.Inputs{}, s.last, fmt.Errorf("session finished after %d steps", s.step)
	}

	t := s.step + 1
	in := s.Inputs(t)
	snap := s.model.Step(in)

	if s.validate && !snap.IsValid() {
		return t, in, snap, &dynamo.SimulationError{
			Step:    t,
			Time:    s.times[t],
			State:   snap,
			Wrapped: dynamo.ErrInvalidState,
		}
	}

	for _, name := range s.names {
		if err := s.model.SetParam(name, s.schedules[name](t)); err != nil {
			return t, in, snap, &dynamo.SimulationError{Step: t, Time: s.times[t], State: snap, Wrapped: err}
		}
	}

	s.step = t
	s.last = snap
	return t, in, snap, nil
}

func validateSeries(times, forcing []float64) error {
	if len(times) != len(forcing) {
		return fmt.Errorf("%w: %d times, %d forcing values", dynamo.ErrLengthMismatch, len(times), len(forcing))
	}
	if len(times) == 0 {
		return dynamo.ErrEmptySeries
	}
	for i := range times {
		if math.IsNaN(times[i]) || math.IsInf(times[i], 0) {
			return fmt.Errorf("%w: time[%d]=%v", dynamo.ErrNonFinite, i, times[i])
		}
		if math.IsNaN(forcing[i]) || math.IsInf(forcing[i], 0) {
			return fmt.Errorf("%w: forcing[%d]=%v", dynamo.ErrNonFinite, i, forcing[i])
		}
	}
	return nil
}
