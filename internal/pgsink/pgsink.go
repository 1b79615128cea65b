// Package pgsink optionally mirrors the node and link tables into
// Postgres via pgx.CopyFrom, chunked the way internal/db's
// importStopTimesChunked batches large GTFS imports in the teacher repo.
// It is an additive side effect: the CSV files remain the contract
// (SPEC_FULL.md §4.2); a sink failure is logged, never fatal to the run.
package pgsink

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anninhn/hcmc-transit-accessibility/internal/model"
)

// chunkSize bounds how many rows are buffered before a CopyFrom call,
// mirroring the 50,000-row chunks importStopTimesChunked uses.
const chunkSize = 50000

// Sink bulk-loads nodes and links into Postgres.
type Sink struct {
	pool *pgxpool.Pool
}

// Open connects to dsn and ensures the destination tables exist.
func Open(ctx context.Context, dsn string) (*Sink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgsink: connecting: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgsink: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, createTablesSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgsink: creating tables: %w", err)
	}
	return &Sink{pool: pool}, nil
}

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS transit_node (
	node_id     BIGINT PRIMARY KEY,
	route_id    INTEGER NOT NULL,
	route_no    TEXT NOT NULL,
	route_var_id INTEGER NOT NULL,
	trip_id     INTEGER NOT NULL,
	stop_id     INTEGER NOT NULL,
	stop_name   TEXT NOT NULL,
	timestamp   BIGINT NOT NULL,
	event       TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS transit_link (
	link_id    BIGINT PRIMARY KEY,
	from_node  BIGINT NOT NULL,
	to_node    BIGINT NOT NULL,
	duration   BIGINT NOT NULL,
	mode       TEXT NOT NULL
);
`

// WriteNodes bulk-loads nodes in chunkSize-row batches.
func (s *Sink) WriteNodes(ctx context.Context, nodes []model.Node) error {
	for start := 0; start < len(nodes); start += chunkSize {
		end := start + chunkSize
		if end > len(nodes) {
			end = len(nodes)
		}
		chunk := nodes[start:end]
		rows := make([][]interface{}, len(chunk))
		for i, n := range chunk {
			rows[i] = []interface{}{n.NodeID, n.RouteID, n.RouteNo, n.VariantID, n.TripID, n.StopID, n.StopName, n.Timestamp, n.Event.String()}
		}
		_, err := s.pool.CopyFrom(ctx,
			pgx.Identifier{"transit_node"},
			[]string{"node_id", "route_id", "route_no", "route_var_id", "trip_id", "stop_id", "stop_name", "timestamp", "event"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("pgsink: copying node chunk at %d: %w", start, err)
		}
		log.Printf("pgsink: loaded nodes %d-%d / %d", start+1, end, len(nodes))
	}
	return nil
}

// WriteLinks bulk-loads links in chunkSize-row batches.
func (s *Sink) WriteLinks(ctx context.Context, links []model.Link) error {
	for start := 0; start < len(links); start += chunkSize {
		end := start + chunkSize
		if end > len(links) {
			end = len(links)
		}
		chunk := links[start:end]
		rows := make([][]interface{}, len(chunk))
		for i, l := range chunk {
			rows[i] = []interface{}{l.LinkID, l.FromNode, l.ToNode, l.Duration, l.Mode.String()}
		}
		_, err := s.pool.CopyFrom(ctx,
			pgx.Identifier{"transit_link"},
			[]string{"link_id", "from_node", "to_node", "duration", "mode"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("pgsink: copying link chunk at %d: %w", start, err)
		}
		log.Printf("pgsink: loaded links %d-%d / %d", start+1, end, len(links))
	}
	return nil
}

// Close releases the pool.
func (s *Sink) Close() { s.pool.Close() }
