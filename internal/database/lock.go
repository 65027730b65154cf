package database

import (
	"context"
	"fmt"
	"hash/fnv"
)

// LockKey hashes the parts of a scope into a transaction advisory lock key.
func LockKey(parts ...string) int64 {
	h := fnv.New64a()

	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}

	return int64(h.Sum64())
}

// LockScope takes a transaction-scoped advisory lock. It is released when
// the transaction commits or rolls back.
func LockScope(ctx context.Context, q DBTX, parts ...string) error {
	if _, err := q.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", LockKey(parts...)); err != nil {
		return fmt.Errorf("acquiring scope lock: %w", Classify(err))
	}

	return nil
}
