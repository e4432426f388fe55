// Package viz renders fields in the terminal.
//
// [Heatmap] draws a 2D slice of a field with a character ramp, optionally
// coloured from a [Palette]. [Profile] plots a 1D field on a braille canvas.
// [Model] is a Bubble Tea program that steps an engine live.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Single step while paused
//	+/-   - More/fewer steps per frame
//	P     - Cycle palettes
//	Q     - Quit
package viz
