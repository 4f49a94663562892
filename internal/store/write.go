package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/dimu/internal/collection"
	"github.com/roach88/dimu/internal/hist"
	"github.com/roach88/dimu/internal/ir"
)

// Run describes one saved aggregate.
type Run struct {
	ID               string
	Seq              int64
	Label            string
	ConfigDigest     string
	CollectionDigest string
	ToolVersion      string
	SchemaVersion    string
	Events           int64
	CreatedAt        string
	Objects          int
}

// SaveCollection writes coll as a new run in one transaction and returns
// the stored run record. ID, Seq, CollectionDigest, versions and CreatedAt
// are filled in by the store.
func (s *Store) SaveCollection(ctx context.Context, run Run, coll *collection.Collection) (Run, error) {
	digest, err := coll.Digest()
	if err != nil {
		return Run{}, fmt.Errorf("save collection: %w", err)
	}

	run.ID = s.ids.Generate()
	run.CollectionDigest = digest
	run.ToolVersion = ir.ToolVersion
	run.SchemaVersion = ir.SchemaVersion
	run.CreatedAt = s.clock()
	run.Objects = coll.Len()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("save collection: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
		return Run{}, fmt.Errorf("save collection: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, label, config_digest, collection_digest, tool_version, schema_version, events, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seq,
		run.Label,
		run.ConfigDigest,
		run.CollectionDigest,
		run.ToolVersion,
		run.SchemaVersion,
		run.Events,
		run.CreatedAt,
	)
	if err != nil {
		return Run{}, fmt.Errorf("save collection: insert run: %w", err)
	}

	written := make(map[*hist.Template]string)
	for _, e := range coll.Entries() {
		if err := writeObject(ctx, tx, run.ID, e, written); err != nil {
			return Run{}, fmt.Errorf("save collection: %s: %w", e.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("save collection: commit: %w", err)
	}
	return run, nil
}

func writeObject(ctx context.Context, tx *sql.Tx, runID string, e collection.Entry, written map[*hist.Template]string) error {
	obj := e.Object
	switch obj.Kind() {
	case collection.KindCounter:
		_, err := tx.ExecContext(ctx, `
			INSERT INTO objects (run_id, path, name, kind, count)
			VALUES (?, ?, ?, ?, ?)
		`, runID, e.Key.Path.String(), e.Key.Name, obj.Kind().String(), obj.Counter().Value())
		return err

	case collection.KindHistogram:
		h := obj.Histogram()
		tmplDigest, err := writeTemplate(ctx, tx, h.Template(), written)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO objects (run_id, path, name, kind, template, entries, dropped)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, runID, e.Key.Path.String(), e.Key.Name, obj.Kind().String(), tmplDigest, h.Entries(), h.Dropped())
		if err != nil {
			return err
		}
		objectID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO bins (object_id, idx, sum, entries) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, c := range h.Cells() {
			if _, err := stmt.ExecContext(ctx, objectID, int64(c.Index), c.Sum, c.Entries); err != nil {
				return fmt.Errorf("bin %d: %w", c.Index, err)
			}
		}
		return nil
	}
	return fmt.Errorf("unsupported object kind %s", obj.Kind())
}

// writeTemplate stores the axes of tmpl once per database.
func writeTemplate(ctx context.Context, tx *sql.Tx, tmpl *hist.Template, written map[*hist.Template]string) (string, error) {
	if d, ok := written[tmpl]; ok {
		return d, nil
	}
	digest := tmpl.Digest()
	for i := 0; i < tmpl.Dims(); i++ {
		a := tmpl.Axis(i)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO axes (template, position, name, unit, bins, min, max)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (template, position) DO NOTHING
		`, digest, i, a.Name(), a.Unit(), a.Bins(), a.Min(), a.Max())
		if err != nil {
			return "", fmt.Errorf("axis %d: %w", i, err)
		}
	}
	written[tmpl] = digest
	return digest, nil
}
