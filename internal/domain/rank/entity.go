// Package rank contains the fully derived leaderboard tables. Rank rows
// are disposable: the rebuilder deletes and recreates them from current
// ratings every hourly cycle, never incrementally.
package rank

// TopN is the size cap of every rank table.
const TopN = 1000

// Entry maps a 1-based rank position to a player-character pair.
// Global and per-character tables share the shape; for per-character
// tables the CharID is the table's scope.
type Entry struct {
	Rank     int32
	PlayerID int64
	CharID   int16
}
