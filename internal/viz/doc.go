// Package viz renders oscillator runs in the terminal.
//
// [Player] is a Bubble Tea model that steps a model with RK4 in real time,
// draws it on a braille [Canvas] and charts the total energy. It keeps a
// bounded history that can be scrubbed while paused.
//
// # Key Bindings
//
//	Space/P - Pause/Resume
//	R       - Reset to the initial state
//	[ ]     - Step back/forward through history
//	+ -     - Faster/slower playback
//	?       - Show help
//	Q       - Quit
package viz
