package caseid

import (
	"context"
	"database/sql"
	"fmt"
)

// SequenceAllocator draws identifiers from a PostgreSQL sequence
type SequenceAllocator struct {
	db     *sql.DB
	domain Domain
}

// NewSequenceAllocator creates an allocator backed by the domain's sequence
func NewSequenceAllocator(db *sql.DB, d Domain) *SequenceAllocator {
	return &SequenceAllocator{db: db, domain: d}
}

// Next implements Allocator
func (a *SequenceAllocator) Next(ctx context.Context) (string, error) {
	var n int64
	// Sequence names are fixed identifiers from the Domain table, never user input.
	query := fmt.Sprintf("SELECT nextval('%s')", a.domain.Sequence)
	if err := a.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return "", fmt.Errorf("failed to allocate %s case id: %w", a.domain.Name, err)
	}
	return a.domain.Format(n), nil
}
