// Package model holds the value types shared by the polling engine, the
// data source client and the archive:
//
//   - [Sample]: one instrument's fund-flow reading from the source
//   - [HistoryPoint]: one locally observed trend value
//   - [FetchError]: a per-instrument, per-cycle fetch failure
package model
