package models

import (
	"fmt"
	"math"

	"github.com/san-kum/glacialsim/internal/dynamo"
)

const thresholdModelName = "state"

// ThresholdParams configures a ThresholdStateModel.
type ThresholdParams struct {
	I0 float64
	I1 float64
	I2 float64
	I3 float64
	// Tg is the minimum time in the mild glacial regime before full glaciation.
	Tg float64
	// Dt is added to the elapsed counter on every step.
	Dt float64

	InitState   dynamo.GlacialState
	InitElapsed float64
}

func DefaultThresholdParams() ThresholdParams {
	return ThresholdParams{
		I0: -0.75,
		I1: 0.0,
		I2: 0.0,
		I3: 1.0,
		Tg: 33000,
		Dt: 1000,
	}
}

// ThresholdStateModel is the three-regime threshold model. It tracks only the
// regime and the time elapsed since the last transition.
type ThresholdStateModel struct {
	p     ThresholdParams
	tc    float64
	state dynamo.GlacialState
}

func NewThresholdStateModel(p ThresholdParams) (*ThresholdStateModel, error) {
	if !p.InitState.Valid() {
		return nil, fmt.Errorf("%w: %d", dynamo.ErrInvalidState, uint8(p.InitState))
	}
	if err := checkParams(thresholdParamMap(p)); err != nil {
		return nil, err
	}
	if math.IsNaN(p.InitElapsed) || math.IsInf(p.InitElapsed, 0) {
		return nil, fmt.Errorf("%w: init_elapsed=%v", dynamo.ErrNonFinite, p.InitElapsed)
	}

	return &ThresholdStateModel{
		p:     p,
		tc:    p.InitElapsed,
		state: p.InitState,
	}, nil
}

func (m *ThresholdStateModel) Name() string { return thresholdModelName }

func (m *ThresholdStateModel) State() dynamo.GlacialState { return m.state }

// Elapsed is the time since the last transition.
func (m *ThresholdStateModel) Elapsed() float64 { return m.tc }

// Step advances the elapsed counter and applies at most one transition.
func (m *ThresholdStateModel) Step(in dynamo.Inputs) dynamo.Snapshot {
	ins := in.Insolation
	prev := in.InsolationPrevious
	peak := in.InsolationPreviousPeak

	m.tc += m.p.Dt

	switch {
	case m.state == dynamo.Interglacial && ins < m.p.I0 && prev > m.p.I0:
		m.transition(dynamo.MildGlacial)
	case m.state == dynamo.MildGlacial && m.tc > m.p.Tg && ins < m.p.I2 && prev <= m.p.I2 && peak < m.p.I3:
		m.transition(dynamo.FullGlacial)
	case m.state == dynamo.FullGlacial && ins > m.p.I1:
		m.transition(dynamo.Interglacial)
	}

	return m.Snapshot()
}

func (m *ThresholdStateModel) transition(to dynamo.GlacialState) {
	m.state = to
	m.tc = 0
}

func (m *ThresholdStateModel) Snapshot() dynamo.Snapshot {
	return dynamo.Snapshot{
		State: m.state,
		Vars:  map[string]float64{"tc": m.tc},
	}
}

func (m *ThresholdStateModel) GetParams() map[string]float64 {
	return thresholdParamMap(m.p)
}

func (m *ThresholdStateModel) ValidateParam(name string, value float64) error {
	if _, ok := thresholdParamMap(m.p)[name]; !ok {
		return dynamo.UnknownParam(thresholdModelName, name)
	}
	return checkParam(name, value)
}

func (m *ThresholdStateModel) SetParam(name string, value float64) error {
	if err := m.ValidateParam(name, value); err != nil {
		return err
	}
	switch name {
	case "i0":
		m.p.I0 = value
	case "i1":
		m.p.I1 = value
	case "i2":
		m.p.I2 = value
	case "i3":
		m.p.I3 = value
	case "tg":
		m.p.Tg = value
	case "dt":
		m.p.Dt = value
	default:
		return dynamo.UnknownParam(thresholdModelName, name)
	}
	return nil
}

func thresholdParamMap(p ThresholdParams) map[string]float64 {
	return map[string]float64{
		"i0": p.I0,
		"i1": p.I1,
		"i2": p.I2,
		"i3": p.I3,
		"tg": p.Tg,
		"dt": p.Dt,
	}
}
