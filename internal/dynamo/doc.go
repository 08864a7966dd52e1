// Package dynamo provides the core primitives shared by the glacial cycle
// models and the simulator that drives them.
//
//   - [GlacialState]: interglacial, mild glacial and full glacial regimes
//   - [Model]: a stepped model exposing [Model.Step] and [Model.Snapshot]
//   - [Configurable]: typed parameter overrides by name
//   - [Inputs]: current, previous and previous-peak forcing for one step
//   - [Snapshot]: the per-step record a model reports
//
// # Example
//
//	p := models.DefaultThresholdParams()
//	p.I0 = 0.5
//	m, _ := models.NewThresholdStateModel(p)
//	snap := m.Step(dynamo.NewInputs(0, 1))
//	fmt.Println(snap.State.Label()) // g
//
// # Thread Safety
//
// Models are NOT thread-safe. A model is owned by one simulator run at a time.
package dynamo
