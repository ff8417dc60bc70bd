// Package postgres implements the store contract on PostgreSQL via the pgx
// stdlib driver. Aggregates are stored whole as JSONB documents, one row per
// record, with the lookup keys lifted into indexed columns.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/recovera/timeline-service/internal/model"
	"github.com/recovera/timeline-service/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies
// connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Timelines() store.Timelines { return &timelines{db: s.db} }
func (s *pgStore) Library() store.Library     { return &library{db: s.db} }
func (s *pgStore) Customers() store.Customers { return &customers{db: s.db} }
func (s *pgStore) Segments() store.Segments   { return &segments{db: s.db} }
func (s *pgStore) Events() store.Events       { return &events{db: s.db} }

// Ping implements store.Pinger.
func (s *pgStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// EnsureSchema creates the tables if they do not exist. There are no
// migrations beyond "collection exists".
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS timelines (
            workspace_id TEXT NOT NULL,
            timeline_id  TEXT NOT NULL,
            created_at   TIMESTAMPTZ NOT NULL,
            doc          JSONB NOT NULL,
            PRIMARY KEY (workspace_id, timeline_id)
        )`,
		`CREATE TABLE IF NOT EXISTS library_actions (
            workspace_id TEXT NOT NULL,
            action_id    TEXT NOT NULL,
            name         TEXT NOT NULL,
            doc          JSONB NOT NULL,
            PRIMARY KEY (workspace_id, action_id)
        )`,
		`CREATE TABLE IF NOT EXISTS customers (
            workspace_id TEXT NOT NULL,
            customer_id  TEXT NOT NULL,
            full_name    TEXT NOT NULL,
            doc          JSONB NOT NULL,
            PRIMARY KEY (workspace_id, customer_id)
        )`,
		`CREATE TABLE IF NOT EXISTS customer_segments (
            workspace_id TEXT NOT NULL,
            segment_id   TEXT NOT NULL,
            priority     INT NOT NULL DEFAULT 0,
            doc          JSONB NOT NULL,
            PRIMARY KEY (workspace_id, segment_id)
        )`,
		`CREATE TABLE IF NOT EXISTS customer_events (
            workspace_id TEXT NOT NULL,
            event_id     TEXT NOT NULL,
            customer_id  TEXT NOT NULL,
            event_date   TIMESTAMPTZ NOT NULL,
            doc          JSONB NOT NULL,
            PRIMARY KEY (workspace_id, event_id)
        )`,
		`CREATE INDEX IF NOT EXISTS customer_events_by_customer
            ON customer_events (workspace_id, customer_id, event_date)`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, model.ErrStorage)
}

// --- Timelines ---

type timelines struct{ db *sql.DB }

func (t *timelines) Put(ctx context.Context, tl *model.Timeline) error {
	doc, err := json.Marshal(tl)
	if err != nil {
		return storageErr("timelines.put encode", err)
	}
	_, err = t.db.ExecContext(ctx, `
        INSERT INTO timelines (workspace_id, timeline_id, created_at, doc)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (workspace_id, timeline_id) DO UPDATE SET doc = EXCLUDED.doc
    `, tl.WorkspaceID, tl.ID, tl.CreatedAt, doc)
	if err != nil {
		return storageErr("timelines.put", err)
	}
	return nil
}

func (t *timelines) Get(ctx context.Context, workspaceID, timelineID string) (*model.Timeline, error) {
	var doc []byte
	row := t.db.QueryRowContext(ctx,
		`SELECT doc FROM timelines WHERE workspace_id=$1 AND timeline_id=$2`,
		workspaceID, timelineID)
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("timeline %s: %w", timelineID, model.ErrNotFound)
		}
		return nil, storageErr("timelines.get", err)
	}
	var out model.Timeline
	if err := json.Unmarshal(doc, &out); err != nil {
		return nil, storageErr("timelines.get decode", err)
	}
	return &out, nil
}

func (t *timelines) List(ctx context.Context, workspaceID string) ([]*model.Timeline, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT doc FROM timelines WHERE workspace_id=$1 ORDER BY created_at`,
		workspaceID)
	if err != nil {
		return nil, storageErr("timelines.list", err)
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Timeline
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, storageErr("timelines.list scan", err)
		}
		var tl model.Timeline
		if err := json.Unmarshal(doc, &tl); err != nil {
			return nil, storageErr("timelines.list decode", err)
		}
		out = append(out, &tl)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("timelines.list rows", err)
	}
	return out, nil
}

func (t *timelines) Delete(ctx context.Context, workspaceID, timelineID string) error {
	res, err := t.db.ExecContext(ctx,
		`DELETE FROM timelines WHERE workspace_id=$1 AND timeline_id=$2`,
		workspaceID, timelineID)
	if err != nil {
		return storageErr("timelines.delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("timeline %s: %w", timelineID, model.ErrNotFound)
	}
	return nil
}

// --- Library ---

type library struct{ db *sql.DB }

func (l *library) Put(ctx context.Context, workspaceID string, a *model.Action) error {
	doc, err := json.Marshal(a)
	if err != nil {
		return storageErr("library.put encode", err)
	}
	_, err = l.db.ExecContext(ctx, `
        INSERT INTO library_actions (workspace_id, action_id, name, doc)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (workspace_id, action_id) DO UPDATE SET name = EXCLUDED.name, doc = EXCLUDED.doc
    `, workspaceID, a.ID, a.Name, doc)
	if err != nil {
		return storageErr("library.put", err)
	}
	return nil
}

func (l *library) Get(ctx context.Context, workspaceID, actionID string) (*model.Action, error) {
	var doc []byte
	row := l.db.QueryRowContext(ctx,
		`SELECT doc FROM library_actions WHERE workspace_id=$1 AND action_id=$2`,
		workspaceID, actionID)
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("library action %s: %w", actionID, model.ErrNotFound)
		}
		return nil, storageErr("library.get", err)
	}
	a, err := model.DecodeActionPayload(doc)
	if err != nil {
		return nil, storageErr("library.get decode", err)
	}
	return &a, nil
}

func (l *library) List(ctx context.Context, workspaceID string) ([]*model.Action, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT doc FROM library_actions WHERE workspace_id=$1 ORDER BY name`,
		workspaceID)
	if err != nil {
		return nil, storageErr("library.list", err)
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Action
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, storageErr("library.list scan", err)
		}
		a, err := model.DecodeActionPayload(doc)
		if err != nil {
			return nil, storageErr("library.list decode", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("library.list rows", err)
	}
	return out, nil
}

func (l *library) Delete(ctx context.Context, workspaceID, actionID string) error {
	res, err := l.db.ExecContext(ctx,
		`DELETE FROM library_actions WHERE workspace_id=$1 AND action_id=$2`,
		workspaceID, actionID)
	if err != nil {
		return storageErr("library.delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("library action %s: %w", actionID, model.ErrNotFound)
	}
	return nil
}

// --- Customers ---

type customers struct{ db *sql.DB }

func (c *customers) Put(ctx context.Context, m *model.Customer) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return storageErr("customers.put encode", err)
	}
	_, err = c.db.ExecContext(ctx, `
        INSERT INTO customers (workspace_id, customer_id, full_name, doc)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (workspace_id, customer_id) DO UPDATE SET full_name = EXCLUDED.full_name, doc = EXCLUDED.doc
    `, m.WorkspaceID, m.ID, m.FullName, doc)
	if err != nil {
		return storageErr("customers.put", err)
	}
	return nil
}

func (c *customers) Get(ctx context.Context, workspaceID, customerID string) (*model.Customer, error) {
	var doc []byte
	row := c.db.QueryRowContext(ctx,
		`SELECT doc FROM customers WHERE workspace_id=$1 AND customer_id=$2`,
		workspaceID, customerID)
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("customer %s: %w", customerID, model.ErrNotFound)
		}
		return nil, storageErr("customers.get", err)
	}
	var out model.Customer
	if err := json.Unmarshal(doc, &out); err != nil {
		return nil, storageErr("customers.get decode", err)
	}
	return &out, nil
}

func (c *customers) List(ctx context.Context, workspaceID string) ([]*model.Customer, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT doc FROM customers WHERE workspace_id=$1 ORDER BY full_name`,
		workspaceID)
	if err != nil {
		return nil, storageErr("customers.list", err)
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Customer
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, storageErr("customers.list scan", err)
		}
		var m model.Customer
		if err := json.Unmarshal(doc, &m); err != nil {
			return nil, storageErr("customers.list decode", err)
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("customers.list rows", err)
	}
	return out, nil
}

func (c *customers) Delete(ctx context.Context, workspaceID, customerID string) error {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM customers WHERE workspace_id=$1 AND customer_id=$2`,
		workspaceID, customerID)
	if err != nil {
		return storageErr("customers.delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("customer %s: %w", customerID, model.ErrNotFound)
	}
	return nil
}

// --- Segments ---

type segments struct{ db *sql.DB }

func (s *segments) Put(ctx context.Context, m *model.CustomerSegment) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return storageErr("segments.put encode", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO customer_segments (workspace_id, segment_id, priority, doc)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (workspace_id, segment_id) DO UPDATE SET priority = EXCLUDED.priority, doc = EXCLUDED.doc
    `, m.WorkspaceID, m.ID, m.Priority, doc)
	if err != nil {
		return storageErr("segments.put", err)
	}
	return nil
}

func (s *segments) Get(ctx context.Context, workspaceID, segmentID string) (*model.CustomerSegment, error) {
	var doc []byte
	row := s.db.QueryRowContext(ctx,
		`SELECT doc FROM customer_segments WHERE workspace_id=$1 AND segment_id=$2`,
		workspaceID, segmentID)
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("segment %s: %w", segmentID, model.ErrNotFound)
		}
		return nil, storageErr("segments.get", err)
	}
	var out model.CustomerSegment
	if err := json.Unmarshal(doc, &out); err != nil {
		return nil, storageErr("segments.get decode", err)
	}
	return &out, nil
}

func (s *segments) List(ctx context.Context, workspaceID string) ([]*model.CustomerSegment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM customer_segments WHERE workspace_id=$1 ORDER BY priority`,
		workspaceID)
	if err != nil {
		return nil, storageErr("segments.list", err)
	}
	defer func() { _ = rows.Close() }()
	var out []*model.CustomerSegment
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, storageErr("segments.list scan", err)
		}
		var m model.CustomerSegment
		if err := json.Unmarshal(doc, &m); err != nil {
			return nil, storageErr("segments.list decode", err)
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("segments.list rows", err)
	}
	return out, nil
}

func (s *segments) Delete(ctx context.Context, workspaceID, segmentID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM customer_segments WHERE workspace_id=$1 AND segment_id=$2`,
		workspaceID, segmentID)
	if err != nil {
		return storageErr("segments.delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("segment %s: %w", segmentID, model.ErrNotFound)
	}
	return nil
}

// --- Events ---

type events struct{ db *sql.DB }

func (e *events) Put(ctx context.Context, m *model.CustomerTimelineEvent) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return storageErr("events.put encode", err)
	}
	_, err = e.db.ExecContext(ctx, `
        INSERT INTO customer_events (workspace_id, event_id, customer_id, event_date, doc)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (workspace_id, event_id) DO UPDATE SET doc = EXCLUDED.doc
    `, m.WorkspaceID, m.ID, m.CustomerID, m.Date, doc)
	if err != nil {
		return storageErr("events.put", err)
	}
	return nil
}

func (e *events) ListByCustomer(ctx context.Context, workspaceID, customerID string) ([]*model.CustomerTimelineEvent, error) {
	rows, err := e.db.QueryContext(ctx, `
        SELECT doc FROM customer_events
        WHERE workspace_id=$1 AND customer_id=$2
        ORDER BY event_date
    `, workspaceID, customerID)
	if err != nil {
		return nil, storageErr("events.list", err)
	}
	defer func() { _ = rows.Close() }()
	var out []*model.CustomerTimelineEvent
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, storageErr("events.list scan", err)
		}
		var m model.CustomerTimelineEvent
		if err := json.Unmarshal(doc, &m); err != nil {
			return nil, storageErr("events.list decode", err)
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("events.list rows", err)
	}
	return out, nil
}
