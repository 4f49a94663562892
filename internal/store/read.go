package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/dimu/internal/collection"
	"github.com/roach88/dimu/internal/hist"
	"github.com/roach88/dimu/internal/ir"
)

const runColumns = `
	r.id, r.seq, r.label, r.config_digest, r.collection_digest, r.tool_version,
	r.schema_version, r.events, r.created_at,
	(SELECT COUNT(*) FROM objects o WHERE o.run_id = r.id)
`

// Runs returns every saved run, oldest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs r
		ORDER BY r.seq ASC, r.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Run returns the run with the given id, or ErrRunNotFound.
func (s *Store) Run(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs r WHERE r.id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

// LatestRun returns the most recently saved run, or ErrRunNotFound when
// the store is empty.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs r ORDER BY r.seq DESC LIMIT 1`)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	err := row.Scan(
		&r.ID, &r.Seq, &r.Label, &r.ConfigDigest, &r.CollectionDigest, &r.ToolVersion,
		&r.SchemaVersion, &r.Events, &r.CreatedAt, &r.Objects,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	return r, nil
}

// LoadCollection rebuilds the collection saved under runID. The rebuilt
// collection's digest must match the recorded one.
func (s *Store) LoadCollection(ctx context.Context, runID string) (*collection.Collection, error) {
	run, err := s.Run(ctx, runID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, name, kind, COALESCE(template, ''), entries, dropped, count
		FROM objects
		WHERE run_id = ?
		ORDER BY path COLLATE BINARY ASC, name COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query objects: %w", err)
	}

	type objectRow struct {
		id       int64
		key      ir.Key
		kind     collection.Kind
		template string
		entries  int64
		dropped  int64
		count    int64
	}
	var objs []objectRow
	for rows.Next() {
		var (
			o          objectRow
			path, kind string
		)
		if err := rows.Scan(&o.id, &path, &o.key.Name, &kind, &o.template, &o.entries, &o.dropped, &o.count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan object: %w", err)
		}
		if o.key.Path, err = ir.ParsePath(path); err != nil {
			rows.Close()
			return nil, fmt.Errorf("object %d: %w", o.id, err)
		}
		o.kind = collection.ParseKind(kind)
		objs = append(objs, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate objects: %w", err)
	}

	templates := make(map[string]*hist.Template)
	coll := collection.New()
	for _, o := range objs {
		var obj collection.Object
		switch o.kind {
		case collection.KindCounter:
			c := &collection.Counter{}
			c.Add(o.count)
			obj = collection.CounterObject(c)

		case collection.KindHistogram:
			tmpl, ok := templates[o.template]
			if !ok {
				if tmpl, err = s.readTemplate(ctx, o.template); err != nil {
					return nil, fmt.Errorf("object %s: %w", o.key, err)
				}
				templates[o.template] = tmpl
			}
			h := hist.New(tmpl)
			if err := s.readBins(ctx, o.id, h); err != nil {
				return nil, fmt.Errorf("object %s: %w", o.key, err)
			}
			if h.Entries() != o.entries {
				return nil, fmt.Errorf("object %s: bins hold %d entries, recorded %d", o.key, h.Entries(), o.entries)
			}
			h.AddDropped(o.dropped)
			obj = collection.HistogramObject(h)

		default:
			return nil, fmt.Errorf("object %s: unknown kind", o.key)
		}
		if err := coll.Add(o.key, obj); err != nil {
			return nil, err
		}
	}

	digest, err := coll.Digest()
	if err != nil {
		return nil, err
	}
	if digest != run.CollectionDigest {
		return nil, fmt.Errorf("run %s: collection digest mismatch (stored %s, rebuilt %s)", runID, run.CollectionDigest, digest)
	}
	return coll, nil
}

func (s *Store) readTemplate(ctx context.Context, digest string) (*hist.Template, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, unit, bins, min, max
		FROM axes
		WHERE template = ?
		ORDER BY position ASC
	`, digest)
	if err != nil {
		return nil, fmt.Errorf("query axes: %w", err)
	}
	defer rows.Close()

	var axes []hist.Axis
	for rows.Next() {
		var (
			name, unit string
			bins       int
			lo, hi     float64
		)
		if err := rows.Scan(&name, &unit, &bins, &lo, &hi); err != nil {
			return nil, fmt.Errorf("scan axis: %w", err)
		}
		a, err := hist.NewAxis(name, unit, bins, lo, hi)
		if err != nil {
			return nil, err
		}
		axes = append(axes, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tmpl, err := hist.NewTemplate(axes...)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", digest, err)
	}
	if got := tmpl.Digest(); got != digest {
		return nil, fmt.Errorf("template digest mismatch (stored %s, rebuilt %s)", digest, got)
	}
	return tmpl, nil
}

func (s *Store) readBins(ctx context.Context, objectID int64, h *hist.Histogram) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, sum, entries FROM bins WHERE object_id = ? ORDER BY idx ASC
	`, objectID)
	if err != nil {
		return fmt.Errorf("query bins: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			idx, entries int64
			sum          float64
		)
		if err := rows.Scan(&idx, &sum, &entries); err != nil {
			return fmt.Errorf("scan bin: %w", err)
		}
		if idx < 0 {
			return fmt.Errorf("negative bin index %d", idx)
		}
		if err := h.AddCell(uint64(idx), sum, entries); err != nil {
			return err
		}
	}
	return rows.Err()
}
