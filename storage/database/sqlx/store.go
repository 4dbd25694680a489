// Package sqlxdb is the Postgres core.Store: one JSONB row per document, keyed by (collection, id).
package sqlxdb

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kokulite/core"
)

const (
	queryDocs = `SELECT data FROM document WHERE collection = $1 AND school_id = $2 ORDER BY seq`
	getDoc    = `SELECT data FROM document WHERE collection = $1 AND id = $2`
	insertDoc = `INSERT INTO document (collection, id, school_id, data, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (collection, id) DO NOTHING`
	updateDoc = `UPDATE document SET school_id = $3, data = $4, updated_at = $5 WHERE collection = $1 AND id = $2`
	deleteDoc = `DELETE FROM document WHERE collection = $1 AND id = $2`
)

type Store struct {
	db *sqlx.DB
}

var _ core.Store = (*Store)(nil)

func New(db *sql.DB) *Store {
	return &Store{db: sqlx.NewDb(db, "postgres")}
}

func (s *Store) Query(ctx context.Context, coll core.Collection, schoolID string, dst interface{}) error {
	var docs []null.JSON
	if err := s.db.SelectContext(ctx, &docs, queryDocs, coll, schoolID); err != nil {
		return core.NewStoreError("query", err)
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, doc := range docs {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(doc.JSON)
	}
	buf.WriteByte(']')
	return errors.Wrap(json.Unmarshal(buf.Bytes(), dst), "decoding documents")
}

func (s *Store) Get(ctx context.Context, coll core.Collection, id string, dst interface{}) error {
	var doc null.JSON
	if err := s.db.GetContext(ctx, &doc, getDoc, coll, id); err != nil {
		if err == sql.ErrNoRows {
			return core.ErrDocNotFound
		}
		return core.NewStoreError("get", err)
	}
	return errors.Wrap(doc.Unmarshal(dst), "decoding document")
}

// Apply runs every write in one transaction.
func (s *Store) Apply(ctx context.Context, writes ...core.Write) (err error) {
	if len(writes) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.NewStoreError("begin", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := core.Now()
	for _, w := range writes {
		if err = apply(ctx, tx, w, now); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return core.NewStoreError("commit", err)
	}
	return nil
}

func apply(ctx context.Context, tx *sqlx.Tx, w core.Write, now time.Time) error {
	if w.ID == "" {
		return errors.Errorf("%s %s: missing document id", w.Op, w.Collection)
	}

	var (
		res sql.Result
		err error
	)
	switch w.Op {
	case core.OpCreate, core.OpUpdate:
		data, mErr := json.Marshal(w.Doc)
		if mErr != nil {
			return errors.Wrapf(mErr, "encoding %s/%s", w.Collection, w.ID)
		}
		if w.Op == core.OpCreate {
			res, err = tx.ExecContext(ctx, insertDoc, w.Collection, w.ID, w.SchoolID, null.JSONFrom(data), now)
		} else {
			res, err = tx.ExecContext(ctx, updateDoc, w.Collection, w.ID, w.SchoolID, null.JSONFrom(data), now)
		}
	case core.OpDelete:
		res, err = tx.ExecContext(ctx, deleteDoc, w.Collection, w.ID)
	default:
		return errors.Errorf("%s/%s: unknown write op %d", w.Collection, w.ID, w.Op)
	}
	if err != nil {
		return core.NewStoreError(w.Op.String(), err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return core.NewStoreError(w.Op.String(), err)
	}
	if n == 0 {
		switch w.Op {
		case core.OpCreate:
			return errors.Wrapf(core.ErrDocExists, "%s/%s", w.Collection, w.ID)
		case core.OpUpdate:
			return errors.Wrapf(core.ErrDocNotFound, "%s/%s", w.Collection, w.ID)
		}
	}
	return nil
}
