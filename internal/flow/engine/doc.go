// Package engine implements the fund-flow polling engine.
//
// The engine:
//   - Polls a DataSource for every tracked instrument on a fixed-rate ticker
//   - Merges each result into that instrument's state independently
//   - Publishes an immutable snapshot after every settled fetch
//   - Reports per-instrument failures to observers without stopping the cycle
//
// Overlapping fetches for the same instrument apply in completion order
// (last completion wins). Results that land after Stop are discarded.
// The engine imposes no per-fetch timeout; a source that never answers
// leaves its instrument stale until it does.
package engine
