// Package viz provides a terminal viewer that steps a glacial model through
// its forcing and draws the run as it unfolds.
//
// The viewer is a Bubble Tea program built around [Model]:
//
//   - a Braille [Canvas] with the recent forcing window and the model's
//     insolation thresholds
//   - a coloured regime strip, one cell per step
//   - an asciigraph panel of the model's main variable (ice volume or the
//     elapsed-time counter)
//
// # Key Bindings
//
//	Space - Pause/Resume
//	+/-   - Steps per frame
//	Tab   - Select parameter
//	Up/K  - Raise selected parameter
//	Down/J- Lower selected parameter
//	T     - Cycle colour themes
//	?     - Toggle help
//	Q     - Quit
package viz
