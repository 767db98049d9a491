// Package viz renders run data for the terminal.
//
//   - [SeriesChart] and [HistogramChart]: asciigraph line charts
//   - [Projection]: braille snapshot of particle positions on the XY plane
//   - [ProgressModel]: Bubble Tea view of a running simulation, fed by a
//     [ProgressObserver] attached to the simulator
//   - [Summary]: lipgloss panel of labelled values
package viz
