package rank

import "context"

// Repository defines the rebuild operations. The rebuilder has sole
// delete+insert rights over both tables; nothing else writes to them.
type Repository interface {
	// Clear deletes every row of both rank tables.
	Clear(ctx context.Context) error

	// RebuildGlobal fills the global table with the top TopN rankable
	// public ratings ordered by value descending. Returns rows inserted.
	RebuildGlobal(ctx context.Context) (int, error)

	// RebuildCharacter does the same scoped to one character id.
	RebuildCharacter(ctx context.Context, charID int16) (int, error)

	// TopGlobal reads back the current global table, best first.
	TopGlobal(ctx context.Context, limit int) ([]Entry, error)
}
