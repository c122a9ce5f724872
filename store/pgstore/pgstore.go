// Package pgstore persists snapshots to PostgreSQL.
//
// Monetary amounts travel as numeric end to end: the pool registers the
// shopspring decimal codec so no float ever touches an amount.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ozgurk/folio"
)

// Schema is the DDL the store expects. Run it once at deploy time.
const Schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id          UUID PRIMARY KEY,
	kind        TEXT NOT NULL,
	parent_id   TEXT NOT NULL,
	on_date     DATE NOT NULL,
	name        TEXT NOT NULL,
	slug        TEXT NOT NULL UNIQUE,
	currency    TEXT NOT NULL,
	total_value NUMERIC NOT NULL,
	total_cost  NUMERIC NOT NULL,
	gain_loss   NUMERIC NOT NULL,
	irr_pct     DOUBLE PRECISION,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS snapshots_series ON snapshots (kind, parent_id, on_date);

CREATE TABLE IF NOT EXISTS snapshot_items (
	snapshot_id    UUID NOT NULL REFERENCES snapshots (id) ON DELETE CASCADE,
	position       INT NOT NULL,
	label          TEXT NOT NULL,
	quantity       NUMERIC NOT NULL,
	cost_basis     NUMERIC NOT NULL,
	value          NUMERIC NOT NULL,
	gain_loss      NUMERIC NOT NULL,
	gain_loss_pct  DOUBLE PRECISION NOT NULL,
	allocation_pct DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (snapshot_id, position)
);
`

// Store is a folio.SnapshotStore backed by a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to the database and verifies connectivity.
func New(ctx context.Context, dbURL string) (*Store, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Migrate applies the schema.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, Schema)
	return err
}

func (s *Store) Close() { s.pool.Close() }

// Save writes the header and all item rows in one transaction.
func (s *Store) Save(ctx context.Context, snap *folio.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO snapshots (id, kind, parent_id, on_date, name, slug, currency,
		                       total_value, total_cost, gain_loss, irr_pct)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		snap.ID, string(snap.Kind), snap.ParentID, snap.On.String(), snap.Name, snap.Slug,
		snap.Currency, snap.TotalValue.Amount(), snap.TotalCost.Amount(),
		snap.GainLoss.Amount(), snap.IRRPct)
	if err != nil {
		return fmt.Errorf("inserting snapshot %s: %w", snap.Slug, err)
	}

	for i, item := range snap.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO snapshot_items (snapshot_id, position, label, quantity,
			                            cost_basis, value, gain_loss, gain_loss_pct, allocation_pct)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			snap.ID, i, item.Label, item.Quantity.Decimal(), item.CostBasis.Amount(),
			item.Value.Amount(), item.GainLoss.Amount(),
			float64(item.GainLossPct), float64(item.AllocationPct))
		if err != nil {
			return fmt.Errorf("inserting snapshot item %q: %w", item.Label, err)
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM snapshots WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

// LatestBefore returns the series' most recent snapshot strictly before the
// date, items included.
func (s *Store) LatestBefore(ctx context.Context, kind folio.SnapshotKind, parentID string, on folio.Date) (*folio.Snapshot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, kind, parent_id, on_date, name, slug, currency,
		       total_value, total_cost, gain_loss, irr_pct
		FROM snapshots
		WHERE kind = $1 AND parent_id = $2 AND on_date < $3
		ORDER BY on_date DESC, created_at DESC
		LIMIT 1`,
		string(kind), parentID, on.String())

	snap, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, folio.ErrNoSnapshot
		}
		return nil, err
	}
	if err := s.loadItems(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Get returns a snapshot by slug, items included.
func (s *Store) Get(ctx context.Context, slug string) (*folio.Snapshot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, kind, parent_id, on_date, name, slug, currency,
		       total_value, total_cost, gain_loss, irr_pct
		FROM snapshots WHERE slug = $1`, slug)

	snap, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("snapshot %q: %w", slug, folio.ErrNoSnapshot)
		}
		return nil, err
	}
	if err := s.loadItems(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Store) SetIRR(ctx context.Context, id uuid.UUID, irrPct float64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE snapshots SET irr_pct = $2 WHERE id = $1`, id, irrPct)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("snapshot %s: %w", id, folio.ErrNoSnapshot)
	}
	return nil
}

func scanSnapshot(row pgx.Row) (*folio.Snapshot, error) {
	var (
		snap                        folio.Snapshot
		kind                        string
		on                          time.Time
		totalValue, totalCost, gain decimal.Decimal
	)
	err := row.Scan(&snap.ID, &kind, &snap.ParentID, &on, &snap.Name, &snap.Slug,
		&snap.Currency, &totalValue, &totalCost, &gain, &snap.IRRPct)
	if err != nil {
		return nil, err
	}
	snap.Kind = folio.SnapshotKind(kind)
	snap.On = folio.NewDate(on.Date())
	snap.TotalValue = folio.M(totalValue, snap.Currency)
	snap.TotalCost = folio.M(totalCost, snap.Currency)
	snap.GainLoss = folio.M(gain, snap.Currency)
	return &snap, nil
}

func (s *Store) loadItems(ctx context.Context, snap *folio.Snapshot) error {
	rows, err := s.pool.Query(ctx, `
		SELECT label, quantity, cost_basis, value, gain_loss, gain_loss_pct, allocation_pct
		FROM snapshot_items WHERE snapshot_id = $1 ORDER BY position`, snap.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			label                  string
			qty, cost, value, gain decimal.Decimal
			gainPct, allocPct      float64
		)
		if err := rows.Scan(&label, &qty, &cost, &value, &gain, &gainPct, &allocPct); err != nil {
			return err
		}
		snap.Items = append(snap.Items, folio.SnapshotItem{
			Label:         label,
			Quantity:      folio.Q(qty),
			CostBasis:     folio.M(cost, snap.Currency),
			Value:         folio.M(value, snap.Currency),
			GainLoss:      folio.M(gain, snap.Currency),
			GainLossPct:   folio.Percent(gainPct),
			AllocationPct: folio.Percent(allocPct),
		})
	}
	return rows.Err()
}

var _ folio.SnapshotStore = (*Store)(nil)
