// Package render draws the recent activity bar of a tracker summary.
//
// # Overview
//
// A [Bar] is built from a [worktime.History]: the periods become coloured
// segments that end at the right edge, and every adjustment becomes a label
// anchored where it happened. Label boxes are measured and spaced out with
// the [arrange] engine so that neighbouring labels stay readable.
//
//	bar := render.NewBar(ctx, summary.History, 600)
//	svg := render.RenderSVG(bar, render.NewPalette(summary.Modes))
//
// # Outputs
//
//   - [RenderSVG] writes a standalone SVG document.
//   - [RenderPNG] rasterizes the bar with gg; [GGMeasurer] measures labels
//     with the same face so the arrangement matches the pixels.
//   - [RenderTerminal] draws the bar in character cells for the watch TUI;
//     build its bar with [TerminalOptions].
//
// Mode colours come from a [Palette] and are shared by all outputs.
//
// [arrange]: github.com/matzehuels/worktime/pkg/arrange
package render
