// Package models implements the two Paillard (1998) glacial cycle models.
//
//   - [ThresholdStateModel]: a pure state machine driven by insolation
//     thresholds and the time spent in the current regime
//   - [IceVolumeModel]: a continuous ice volume relaxing toward a
//     state-dependent reference, coupled to the regime through thresholds
//
// Both implement [dynamo.Model]. Thresholds and timescales are set at
// construction and afterwards only through [dynamo.Configurable.SetParam];
// the regime itself changes only inside Step.
//
// Insolation passed to either model is expected to be truncated and
// normalized already (see package forcing).
package models
