package clickhouse

import (
	"context"
	"fmt"
	"time"
)

const clearQuery = `DELETE FROM tron_blocks WHERE network = ?`

// Clear removes the archived blocks of the network.
func (r *Repository) Clear(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("clear", err, start)
	}()

	if err = r.conn.Exec(ctx, clearQuery, string(r.network)); err != nil {
		return fmt.Errorf("clear blocks: %w", err)
	}
	return nil
}
