// Package worktime tracks time spent in modes.
//
// A user is always in at most one mode (by default w for work, p for play,
// n for neutral and s for sleep). [Tracker.SwitchMode] closes the running
// period and credits its length to the old mode's total. Totals can be
// corrected with [Tracker.Adjust], and [Tracker.Clear] archives the whole
// log into an era and starts a fresh one.
//
// [Tracker.Summary] assembles everything a front end displays: the running
// mode, per-mode totals, ratios over several timespans and a history of the
// recent periods and adjustments. History positions are percentages of the
// history window so that renderers can lay them out on a bar of any width.
package worktime
