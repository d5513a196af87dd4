// Package project persists automation state to a SQLite project file.
//
// A Project is a plain document store: Save writes the full committed
// state of a store (lanes, clips, points) in one transaction, Load
// restores it into an empty store. There is no incremental sync; the
// engine's source of truth is the in-memory store and the file is only
// touched on explicit save and open.
package project

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/waveline/automation/internal/curve"
	"github.com/waveline/automation/internal/store"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// Project is an open project file.
type Project struct {
	db *sql.DB
}

// Open creates or opens a project file at the given path, applying
// pragmas and the schema. Idempotent.
//
// The database is configured with WAL mode, NORMAL synchronous, a
// 5-second busy timeout, and a single connection since SQLite allows
// only one writer.
func Open(path string) (*Project, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open project: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open project: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("open project: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("open project: %w", err)
	}
	return &Project{db: db}, nil
}

// Close closes the project file.
func (p *Project) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

// Save writes the store's full committed state, replacing whatever the
// file held before. One transaction; a failed save leaves the previous
// contents intact.
func (p *Project) Save(ctx context.Context, st *store.Store) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save project: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, table := range []string{"points", "lanes", "clips"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("save project: clear %s: %w", table, err)
		}
	}

	for i, lane := range st.Lanes() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO lanes (id, target, visible, position)
			VALUES (?, ?, ?, ?)
		`, string(lane.ID), lane.Target, lane.Visible, i)
		if err != nil {
			return fmt.Errorf("save project: lane %s: %w", lane.ID, err)
		}
		if err := p.savePoints(ctx, tx, st, store.OwnerID(lane.ID)); err != nil {
			return err
		}
	}

	for i, clip := range st.Clips() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO clips (id, position) VALUES (?, ?)
		`, string(clip.ID), i)
		if err != nil {
			return fmt.Errorf("save project: clip %s: %w", clip.ID, err)
		}
		if err := p.savePoints(ctx, tx, st, store.OwnerID(clip.ID)); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save project: commit: %w", err)
	}
	return nil
}

func (p *Project) savePoints(ctx context.Context, tx *sql.Tx, st *store.Store, owner store.OwnerID) error {
	pts, _ := st.Points(owner)
	for i, pt := range pts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO points
			(id, owner_id, time, value, curve_type, tension,
			 in_time, in_value, out_time, out_value, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			pt.ID,
			string(owner),
			pt.Time,
			pt.Value,
			int(pt.Type),
			pt.Tension,
			pt.In.TimeOffset,
			pt.In.ValueOffset,
			pt.Out.TimeOffset,
			pt.Out.ValueOffset,
			i,
		)
		if err != nil {
			return fmt.Errorf("save project: point %s: %w", pt.ID, err)
		}
	}
	return nil
}

// Load restores the file's contents into the given store, which must be
// empty. Lanes, clips, and points come back with their saved identities,
// so selections and commands recorded against a prior session's IDs stay
// meaningful only within that session; fresh edits get fresh IDs.
func (p *Project) Load(ctx context.Context, st *store.Store) error {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, target, visible FROM lanes ORDER BY position
	`)
	if err != nil {
		return fmt.Errorf("load project: lanes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var lane store.Lane
		var id string
		if err := rows.Scan(&id, &lane.Target, &lane.Visible); err != nil {
			return fmt.Errorf("load project: scan lane: %w", err)
		}
		lane.ID = store.LaneID(id)
		st.RestoreLane(lane)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load project: lanes: %w", err)
	}

	clipRows, err := p.db.QueryContext(ctx, `
		SELECT id FROM clips ORDER BY position
	`)
	if err != nil {
		return fmt.Errorf("load project: clips: %w", err)
	}
	defer clipRows.Close()
	for clipRows.Next() {
		var id string
		if err := clipRows.Scan(&id); err != nil {
			return fmt.Errorf("load project: scan clip: %w", err)
		}
		st.RestoreClip(store.Clip{ID: store.ClipID(id)})
	}
	if err := clipRows.Err(); err != nil {
		return fmt.Errorf("load project: clips: %w", err)
	}

	ptRows, err := p.db.QueryContext(ctx, `
		SELECT id, owner_id, time, value, curve_type, tension,
		       in_time, in_value, out_time, out_value
		FROM points ORDER BY owner_id, position
	`)
	if err != nil {
		return fmt.Errorf("load project: points: %w", err)
	}
	defer ptRows.Close()
	for ptRows.Next() {
		var pt curve.Point
		var owner string
		var typ int
		if err := ptRows.Scan(
			&pt.ID, &owner, &pt.Time, &pt.Value, &typ, &pt.Tension,
			&pt.In.TimeOffset, &pt.In.ValueOffset,
			&pt.Out.TimeOffset, &pt.Out.ValueOffset,
		); err != nil {
			return fmt.Errorf("load project: scan point: %w", err)
		}
		pt.Type = curve.Type(typ)
		if err := st.InsertPoint(store.OwnerID(owner), pt); err != nil {
			return fmt.Errorf("load project: point %s: %w", pt.ID, err)
		}
	}
	if err := ptRows.Err(); err != nil {
		return fmt.Errorf("load project: points: %w", err)
	}
	return nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
