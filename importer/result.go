package importer

import (
	"github.com/rustyeddy/tradebook/position"
)

// Result summarizes one import run. It is complete even when the run closed
// zero trades: row and position level issues accumulate in Warnings and never
// abort the run, while Errors only carries the structural failure (if any)
// that stopped processing before reconstruction.
type Result struct {
	ImportID string
	Exchange string

	TotalRows         int
	FillsAfterDedupe  int
	DuplicatesRemoved int
	ClosedEmitted     int
	InProgressCount   int

	Warnings []string
	Errors   []string

	// Ordered outputs; ownership of Trades passes to the persistence store.
	Trades     []position.ClosedTrade
	InProgress []position.InProgress
}
