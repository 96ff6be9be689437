package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/hashroad-backend/internal/tron/model"
	"github.com/goodnatureofminers/hashroad-backend/pkg/safe"
)

const insertBlocksQuery = `
INSERT INTO tron_blocks (
	network,
	height,
	hash,
	result_value,
	parity,
	size_class,
	observed_at,
	timestamp,
	witness,
	tx_count
) VALUES`

// InsertBlocks stores block rows. Rows of an existing height are replaced on merge.
func (r *Repository) InsertBlocks(ctx context.Context, blocks []model.ClassifiedBlock) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("insert_blocks", err, start)
	}()

	if len(blocks) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, insertBlocksQuery)
	if err != nil {
		return fmt.Errorf("prepare blocks batch: %w", err)
	}

	for _, b := range blocks {
		value, convErr := safe.Uint8(b.ResultValue)
		if convErr != nil {
			_ = batch.Abort()
			err = fmt.Errorf("block %d result value: %w", b.Height, convErr)
			return err
		}
		if err = batch.Append(
			string(r.network),
			b.Height,
			b.Hash,
			value,
			string(b.Parity),
			string(b.SizeClass),
			b.ObservedAt,
			b.Timestamp,
			b.Witness,
			b.TxCount,
		); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append block %d: %w", b.Height, err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert blocks: %w", err)
	}
	return nil
}
