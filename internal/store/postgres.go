package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// table names are fixed per kind; kinds never come from user input.
var tables = map[Kind]string{
	KindVehicle:      "vehicle",
	KindJourney:      "journey",
	KindFuelPurchase: "fuel_purchase",
	KindExpense:      "expense",
}

func tableFor(kind Kind) string {
	t, ok := tables[kind]
	if !ok {
		panic(fmt.Sprintf("store: unknown kind %q", kind))
	}
	return t
}

// Postgres implements Store on a pgx connection pool.
type Postgres struct {
	Pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{Pool: pool}
}

func (p *Postgres) InTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := p.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (p *Postgres) MaxUpdatedAt(ctx context.Context, kind Kind, ownerID string) (int64, bool, error) {
	var ms *int64
	err := p.Pool.QueryRow(ctx,
		`SELECT MAX(updated_at_ms) FROM `+tableFor(kind)+` WHERE owner_id = $1`,
		ownerID).Scan(&ms)
	if err != nil {
		return 0, false, err
	}
	if ms == nil {
		return 0, false, nil
	}
	return *ms, true, nil
}

func (p *Postgres) ListActive(ctx context.Context, kind Kind, ownerID string) ([]Row, error) {
	rows, err := p.Pool.Query(ctx, `
		SELECT id, created_at_ms, updated_at_ms, deleted_at_ms, payload_json
		FROM `+tableFor(kind)+`
		WHERE owner_id = $1 AND deleted_at_ms IS NULL
		ORDER BY updated_at_ms, id
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows, ownerID)
}

func (p *Postgres) ListChangedSince(ctx context.Context, kind Kind, ownerID string, sinceMs int64) ([]Row, error) {
	rows, err := p.Pool.Query(ctx, `
		SELECT id, created_at_ms, updated_at_ms, deleted_at_ms, payload_json
		FROM `+tableFor(kind)+`
		WHERE owner_id = $1 AND updated_at_ms > $2
		ORDER BY updated_at_ms, id
	`, ownerID, sinceMs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows, ownerID)
}

func scanRows(rows pgx.Rows, ownerID string) ([]Row, error) {
	out := make([]Row, 0)
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.CreatedAtMs, &r.UpdatedAtMs, &r.DeletedAtMs, &r.Payload); err != nil {
			return nil, err
		}
		r.OwnerID = ownerID
		out = append(out, r)
	}
	return out, rows.Err()
}

// pgTx adapts a pgx transaction to the Tx interface. Savepoints map
// onto pgx nested transactions (SAVEPOINT / ROLLBACK TO SAVEPOINT).
type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Find(ctx context.Context, kind Kind, ownerID, id string) (*Row, error) {
	r := Row{ID: id, OwnerID: ownerID}
	err := t.tx.QueryRow(ctx, `
		SELECT created_at_ms, updated_at_ms, deleted_at_ms, payload_json
		FROM `+tableFor(kind)+`
		WHERE owner_id = $1 AND id = $2
	`, ownerID, id).Scan(&r.CreatedAtMs, &r.UpdatedAtMs, &r.DeletedAtMs, &r.Payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (t *pgTx) Insert(ctx context.Context, kind Kind, row Row) error {
	payload, err := json.Marshal(row.Payload)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `
		INSERT INTO `+tableFor(kind)+` (id, owner_id, created_at_ms, updated_at_ms, deleted_at_ms, payload_json)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, row.ID, row.OwnerID, row.CreatedAtMs, row.UpdatedAtMs, row.DeletedAtMs, payload)
	return err
}

func (t *pgTx) Update(ctx context.Context, kind Kind, row Row) error {
	payload, err := json.Marshal(row.Payload)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `
		UPDATE `+tableFor(kind)+`
		SET updated_at_ms = $1, deleted_at_ms = $2, payload_json = $3
		WHERE owner_id = $4 AND id = $5
	`, row.UpdatedAtMs, row.DeletedAtMs, payload, row.OwnerID, row.ID)
	return err
}

func (t *pgTx) Savepoint(ctx context.Context, fn func(Tx) error) error {
	inner, err := t.tx.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(&pgTx{tx: inner}); err != nil {
		_ = inner.Rollback(ctx)
		return err
	}
	return inner.Commit(ctx)
}
