package sim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/glacialsim/internal/dynamo"
)

type Simulator struct {
	model     dynamo.Model
	metrics   []dynamo.Metric
	observers []dynamo.Observer
	logger    *slog.Logger
}

func New(model dynamo.Model) *Simulator {
	return &Simulator{
		model:     model,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
		logger:    slog.Default(),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

func (s *Simulator) Model() dynamo.Model { return s.model }

// Run drives the model over the series and returns one snapshot per time
// index, the first being the model's state before any forcing is consumed.
// Any error discards the run.
func (s *Simulator) Run(ctx context.Context, times, forcing []float64, cfg Config) (*dynamo.Result, error) {
	session, err := NewSession(s.model, times, forcing, cfg)
	if err != nil {
		return nil, err
	}

	n := len(times)
	result := &dynamo.Result{
		Model:     s.model.Name(),
		Times:     times,
		Forcing:   forcing,
		Snapshots: make([]dynamo.Snapshot, 0, n),
		PeakIdx:   session.Peaks().Indices(),
		Metrics:   make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	prev := session.Initial()
	s.record(result, 0, times[0], dynamo.NewInputs(forcing[0], forcing[0]), prev)

	for !session.Done() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		t, in, snap, err := session.Next()
		if err != nil {
			return nil, err
		}

		if snap.State != prev.State {
			s.logger.Debug("regime transition",
				"step", t,
				"time", times[t],
				"from", prev.State.Label(),
				"to", snap.State.Label(),
			)
		}

		s.record(result, t, times[t], in, snap)
		result.StepsTaken++
		prev = snap
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.logger.Info("simulation complete",
		"model", result.Model,
		"steps", len(result.Snapshots),
		"peaks", len(result.PeakIdx),
		"final", prev.State.Label(),
	)

	return result, nil
}

func (s *Simulator) record(r *dynamo.Result, step int, t float64, in dynamo.Inputs, snap dynamo.Snapshot) {
	r.Snapshots = append(r.Snapshots, snap)
	for _, m := range s.metrics {
		m.Observe(step, t, snap)
	}
	for _, obs := range s.observers {
		obs.OnStep(step, t, in, snap)
	}
}
