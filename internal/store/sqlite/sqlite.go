// Package sqlite implements the store contract on an embedded SQLite
// database (modernc.org/sqlite, no cgo). It is the default driver: the
// closest analog to the keyed local store the original application used.
// Row shapes mirror the postgres backend: one JSON document per record with
// the lookup keys lifted into columns.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/recovera/timeline-service/internal/model"
	"github.com/recovera/timeline-service/internal/store"
)

// Open opens (or creates) a SQLite database at path and enables WAL journal
// mode. The parent directory is created if missing to avoid SQLITE_CANTOPEN.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a SQLite store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &sqlStore{db: db} }

type sqlStore struct{ db *sql.DB }

func (s *sqlStore) Timelines() store.Timelines { return &timelines{db: s.db} }
func (s *sqlStore) Library() store.Library     { return &library{db: s.db} }
func (s *sqlStore) Customers() store.Customers { return &customers{db: s.db} }
func (s *sqlStore) Segments() store.Segments   { return &segments{db: s.db} }
func (s *sqlStore) Events() store.Events       { return &events{db: s.db} }

// Ping implements store.Pinger.
func (s *sqlStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// EnsureSchema creates the tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS timelines (
            workspace_id TEXT NOT NULL,
            timeline_id  TEXT NOT NULL,
            created_at   TEXT NOT NULL,
            doc          TEXT NOT NULL,
            PRIMARY KEY (workspace_id, timeline_id)
        )`,
		`CREATE TABLE IF NOT EXISTS library_actions (
            workspace_id TEXT NOT NULL,
            action_id    TEXT NOT NULL,
            name         TEXT NOT NULL,
            doc          TEXT NOT NULL,
            PRIMARY KEY (workspace_id, action_id)
        )`,
		`CREATE TABLE IF NOT EXISTS customers (
            workspace_id TEXT NOT NULL,
            customer_id  TEXT NOT NULL,
            full_name    TEXT NOT NULL,
            doc          TEXT NOT NULL,
            PRIMARY KEY (workspace_id, customer_id)
        )`,
		`CREATE TABLE IF NOT EXISTS customer_segments (
            workspace_id TEXT NOT NULL,
            segment_id   TEXT NOT NULL,
            priority     INTEGER NOT NULL DEFAULT 0,
            doc          TEXT NOT NULL,
            PRIMARY KEY (workspace_id, segment_id)
        )`,
		`CREATE TABLE IF NOT EXISTS customer_events (
            workspace_id TEXT NOT NULL,
            event_id     TEXT NOT NULL,
            customer_id  TEXT NOT NULL,
            event_date   TEXT NOT NULL,
            doc          TEXT NOT NULL,
            PRIMARY KEY (workspace_id, event_id)
        )`,
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

// getDoc reads a single JSON document and decodes it into out.
func getDoc(ctx context.Context, db *sql.DB, query string, out interface{}, notFound error, args ...interface{}) error {
	var doc []byte
	if err := db.QueryRowContext(ctx, query, args...).Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound
		}
		return storageErr("get", err)
	}
	if err := json.Unmarshal(doc, out); err != nil {
		return storageErr("get decode", err)
	}
	return nil
}

// listDocs runs a query returning doc rows and hands each raw document to
// decode.
func listDocs(ctx context.Context, db *sql.DB, query string, decode func(doc []byte) error, args ...interface{}) error {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return storageErr("list", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return storageErr("list scan", err)
		}
		if err := decode(doc); err != nil {
			return storageErr("list decode", err)
		}
	}
	if err := rows.Err(); err != nil {
		return storageErr("list rows", err)
	}
	return nil
}

func deleteRow(ctx context.Context, db *sql.DB, query string, notFound error, args ...interface{}) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return storageErr("delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound
	}
	return nil
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
        VALUES (?,?,?,?)
        ON CONFLICT (workspace_id, timeline_id) DO UPDATE SET doc = excluded.doc
    `, tl.WorkspaceID, tl.ID, tl.CreatedAt.UTC().Format(time.RFC3339Nano), string(doc))
	if err != nil {
		return storageErr("timelines.put", err)
	}
	return nil
}

func (t *timelines) Get(ctx context.Context, workspaceID, timelineID string) (*model.Timeline, error) {
	var out model.Timeline
	err := getDoc(ctx, t.db,
		`SELECT doc FROM timelines WHERE workspace_id=? AND timeline_id=?`,
		&out, fmt.Errorf("timeline %s: %w", timelineID, model.ErrNotFound),
		workspaceID, timelineID)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (t *timelines) List(ctx context.Context, workspaceID string) ([]*model.Timeline, error) {
	var out []*model.Timeline
	err := listDocs(ctx, t.db,
		`SELECT doc FROM timelines WHERE workspace_id=? ORDER BY created_at`,
		func(doc []byte) error {
			var tl model.Timeline
			if err := json.Unmarshal(doc, &tl); err != nil {
				return err
			}
			out = append(out, &tl)
			return nil
		}, workspaceID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (t *timelines) Delete(ctx context.Context, workspaceID, timelineID string) error {
	return deleteRow(ctx, t.db,
		`DELETE FROM timelines WHERE workspace_id=? AND timeline_id=?`,
		fmt.Errorf("timeline %s: %w", timelineID, model.ErrNotFound),
		workspaceID, timelineID)
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
        VALUES (?,?,?,?)
        ON CONFLICT (workspace_id, action_id) DO UPDATE SET name = excluded.name, doc = excluded.doc
    `, workspaceID, a.ID, a.Name, string(doc))
	if err != nil {
		return storageErr("library.put", err)
	}
	return nil
}

func (l *library) Get(ctx context.Context, workspaceID, actionID string) (*model.Action, error) {
	var doc []byte
	row := l.db.QueryRowContext(ctx,
		`SELECT doc FROM library_actions WHERE workspace_id=? AND action_id=?`,
		workspaceID, actionID)
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("library action %s: %w", actionID, model.ErrNotFound)
		}
		return nil, storageErr("library.get", err)
	}
	// Accept legacy-shaped documents written by older releases.
	a, err := model.DecodeActionPayload(doc)
	if err != nil {
		return nil, storageErr("library.get decode", err)
	}
	return &a, nil
}

func (l *library) List(ctx context.Context, workspaceID string) ([]*model.Action, error) {
	var out []*model.Action
	err := listDocs(ctx, l.db,
		`SELECT doc FROM library_actions WHERE workspace_id=? ORDER BY name`,
		func(doc []byte) error {
			a, err := model.DecodeActionPayload(doc)
			if err != nil {
				return err
			}
			out = append(out, &a)
			return nil
		}, workspaceID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (l *library) Delete(ctx context.Context, workspaceID, actionID string) error {
	return deleteRow(ctx, l.db,
		`DELETE FROM library_actions WHERE workspace_id=? AND action_id=?`,
		fmt.Errorf("library action %s: %w", actionID, model.ErrNotFound),
		workspaceID, actionID)
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
        VALUES (?,?,?,?)
        ON CONFLICT (workspace_id, customer_id) DO UPDATE SET full_name = excluded.full_name, doc = excluded.doc
    `, m.WorkspaceID, m.ID, m.FullName, string(doc))
	if err != nil {
		return storageErr("customers.put", err)
	}
	return nil
}

func (c *customers) Get(ctx context.Context, workspaceID, customerID string) (*model.Customer, error) {
	var out model.Customer
	err := getDoc(ctx, c.db,
		`SELECT doc FROM customers WHERE workspace_id=? AND customer_id=?`,
		&out, fmt.Errorf("customer %s: %w", customerID, model.ErrNotFound),
		workspaceID, customerID)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *customers) List(ctx context.Context, workspaceID string) ([]*model.Customer, error) {
	var out []*model.Customer
	err := listDocs(ctx, c.db,
		`SELECT doc FROM customers WHERE workspace_id=? ORDER BY full_name`,
		func(doc []byte) error {
			var m model.Customer
			if err := json.Unmarshal(doc, &m); err != nil {
				return err
			}
			out = append(out, &m)
			return nil
		}, workspaceID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *customers) Delete(ctx context.Context, workspaceID, customerID string) error {
	return deleteRow(ctx, c.db,
		`DELETE FROM customers WHERE workspace_id=? AND customer_id=?`,
		fmt.Errorf("customer %s: %w", customerID, model.ErrNotFound),
		workspaceID, customerID)
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
        VALUES (?,?,?,?)
        ON CONFLICT (workspace_id, segment_id) DO UPDATE SET priority = excluded.priority, doc = excluded.doc
    `, m.WorkspaceID, m.ID, m.Priority, string(doc))
	if err != nil {
		return storageErr("segments.put", err)
	}
	return nil
}

func (s *segments) Get(ctx context.Context, workspaceID, segmentID string) (*model.CustomerSegment, error) {
	var out model.CustomerSegment
	err := getDoc(ctx, s.db,
		`SELECT doc FROM customer_segments WHERE workspace_id=? AND segment_id=?`,
		&out, fmt.Errorf("segment %s: %w", segmentID, model.ErrNotFound),
		workspaceID, segmentID)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *segments) List(ctx context.Context, workspaceID string) ([]*model.CustomerSegment, error) {
	var out []*model.CustomerSegment
	err := listDocs(ctx, s.db,
		`SELECT doc FROM customer_segments WHERE workspace_id=? ORDER BY priority`,
		func(doc []byte) error {
			var m model.CustomerSegment
			if err := json.Unmarshal(doc, &m); err != nil {
				return err
			}
			out = append(out, &m)
			return nil
		}, workspaceID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *segments) Delete(ctx context.Context, workspaceID, segmentID string) error {
	return deleteRow(ctx, s.db,
		`DELETE FROM customer_segments WHERE workspace_id=? AND segment_id=?`,
		fmt.Errorf("segment %s: %w", segmentID, model.ErrNotFound),
		workspaceID, segmentID)
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
        VALUES (?,?,?,?,?)
        ON CONFLICT (workspace_id, event_id) DO UPDATE SET doc = excluded.doc
    `, m.WorkspaceID, m.ID, m.CustomerID, m.Date.UTC().Format(time.RFC3339Nano), string(doc))
	if err != nil {
		return storageErr("events.put", err)
	}
	return nil
}

func (e *events) ListByCustomer(ctx context.Context, workspaceID, customerID string) ([]*model.CustomerTimelineEvent, error) {
	var out []*model.CustomerTimelineEvent
	err := listDocs(ctx, e.db, `
        SELECT doc FROM customer_events
        WHERE workspace_id=? AND customer_id=?
        ORDER BY event_date
    `, func(doc []byte) error {
		var m model.CustomerTimelineEvent
		if err := json.Unmarshal(doc, &m); err != nil {
			return err
		}
		out = append(out, &m)
		return nil
	}, workspaceID, customerID)
	if err != nil {
		return nil, err
	}
	return out, nil
}
