// Package clickhouse implements the block archive on ClickHouse.
package clickhouse

import (
	"errors"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/model"
)

// Repository reads and writes the tron_blocks table of one network.
type Repository struct {
	conn    Conn
	metrics Metrics
	network model.Network
}

// NewRepository opens a ClickHouse connection from dsn.
func NewRepository(dsn string, metrics Metrics, network model.Network) (*Repository, error) {
	if dsn == "" {
		return nil, errors.New("clickhouse dsn is required")
	}
	if metrics == nil {
		return nil, errors.New("clickhouse repository metrics is required")
	}
	if network == "" {
		return nil, errors.New("network is required")
	}

	options, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse clickhouse dsn: %w", err)
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open clickhouse connection: %w", err)
	}

	return &Repository{conn: conn, metrics: metrics, network: network}, nil
}

// Close releases the connection.
func (r *Repository) Close() error {
	return r.conn.Close()
}
