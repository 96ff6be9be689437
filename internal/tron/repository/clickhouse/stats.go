package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/hashroad-backend/internal/tron/model"
)

const statsQuery = `
SELECT
	count() AS total,
	countIf(parity = 'ODD') AS odd,
	countIf(parity = 'EVEN') AS even,
	countIf(size_class = 'BIG') AS big,
	countIf(size_class = 'SMALL') AS small,
	if(total = 0, toUInt64(0), min(height)) AS first_height,
	if(total = 0, toUInt64(0), max(height)) AS last_height
FROM tron_blocks FINAL
WHERE network = ?`

// Stats aggregates the archived blocks of the network.
func (r *Repository) Stats(ctx context.Context) (stats model.ArchiveStats, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("stats", err, start)
	}()

	rows, err := r.conn.Query(ctx, statsQuery, string(r.network))
	if err != nil {
		return model.ArchiveStats{}, fmt.Errorf("query stats: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	if !rows.Next() {
		return model.ArchiveStats{}, errors.New("stats row not found")
	}
	if err = rows.Scan(
		&stats.Total,
		&stats.Odd,
		&stats.Even,
		&stats.Big,
		&stats.Small,
		&stats.FirstHeight,
		&stats.LastHeight,
	); err != nil {
		return model.ArchiveStats{}, fmt.Errorf("scan stats: %w", err)
	}
	if err = rows.Err(); err != nil {
		return model.ArchiveStats{}, fmt.Errorf("iterate stats: %w", err)
	}
	return stats, nil
}
