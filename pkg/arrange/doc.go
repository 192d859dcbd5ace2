// Package arrange places annotation boxes along a horizontal timeline.
//
// # Overview
//
// Each [Box] is anchored to a point on the timeline (its ideal position) and
// has a natural width. [Arrange] centers every box over its anchor, keeps it
// inside the container and then spaces out overlapping neighbours until no two
// boxes touch, or until the pass limit is reached.
//
// The result is reported both in pixels ([Result.Boxes]) and as left offsets
// relative to the container width ([Result.Offsets]), rounded to one decimal
// place so they can be used directly as CSS percentages:
//
//	boxes := []arrange.Box{
//	    arrange.NewBox(50, 200, 1000),
//	    arrange.NewBox(52, 200, 1000),
//	}
//	res := arrange.Arrange(boxes, 1000)
//	fmt.Println(res.Percents()) // [30.8% 51.3%]
//
// # Algorithm
//
// Arrangement runs as a single forward pipeline:
//
//  1. Center: Left = Position - Width/2
//  2. Clamp: keep [Left, Left+Width] inside [0, totalWidth]
//  3. Resolve: group adjacent overlapping boxes into runs and push the
//     outermost boxes of each run apart, repeated up to [DefaultMaxPasses]
//     times
//  4. Emit: convert Left to a percentage of totalWidth
//
// Two boxes that touch count as overlapping. A run of two boxes is split
// evenly; in a run of three or more boxes only the outer two move, by the
// full overlap with their inner neighbour plus the minimum spacing. Inner
// boxes are left for later passes, when the run has shrunk.
//
// When the pass limit is reached with overlaps remaining the result is still
// returned, with [Result.Converged] set to false and a warning logged.
//
// # Ordering
//
// Boxes are processed in order of their ideal position regardless of the
// order they are passed in; results are always reported in input order.
//
// # Concurrency
//
// Arrange copies its input and holds no package state, so it is safe to call
// from multiple goroutines.
package arrange
