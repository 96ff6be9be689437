package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/hashroad-backend/internal/tron/model"
	"github.com/goodnatureofminers/hashroad-backend/pkg/safe"
)

const recentBlocksQuery = `
SELECT
	height,
	hash,
	result_value,
	parity,
	size_class,
	observed_at,
	timestamp,
	witness,
	tx_count
FROM tron_blocks FINAL
WHERE network = ?
ORDER BY height DESC
LIMIT ?`

// RecentBlocks returns up to limit blocks, highest height first.
func (r *Repository) RecentBlocks(ctx context.Context, limit int) (blocks []model.ClassifiedBlock, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("recent_blocks", err, start)
	}()

	if limit <= 0 {
		return []model.ClassifiedBlock{}, nil
	}

	n, err := safe.Uint64(limit)
	if err != nil {
		return nil, err
	}
	rows, err := r.conn.Query(ctx, recentBlocksQuery, string(r.network), n)
	if err != nil {
		return nil, fmt.Errorf("query recent blocks: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	blocks = make([]model.ClassifiedBlock, 0, limit)
	for rows.Next() {
		var (
			b         model.ClassifiedBlock
			value     uint8
			parity    string
			sizeClass string
		)
		if err = rows.Scan(
			&b.Height,
			&b.Hash,
			&value,
			&parity,
			&sizeClass,
			&b.ObservedAt,
			&b.Timestamp,
			&b.Witness,
			&b.TxCount,
		); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		b.ResultValue = int(value)
		b.Parity = model.Parity(parity)
		b.SizeClass = model.SizeClass(sizeClass)
		b.Timestamp = b.Timestamp.UTC()
		blocks = append(blocks, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocks: %w", err)
	}
	return blocks, nil
}
