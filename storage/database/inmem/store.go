// Package inmemdb is a core.Store kept in process memory, used for development and tests.
package inmemdb

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/kokulite/core"
)

type (
	document struct {
		seq      uint64
		schoolID string
		data     []byte
	}

	table map[string]*document

	docKey struct {
		coll core.Collection
		id   string
	}

	Store struct {
		mu       sync.RWMutex
		seq      uint64
		tables   map[core.Collection]table
		failNext error
	}
)

var _ core.Store = (*Store)(nil)

func New() *Store {
	s := &Store{}
	s.Reset()
	return s
}

// Reset drops every document.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tables = make(map[core.Collection]table, len(core.Collections))
	for _, coll := range core.Collections {
		s.tables[coll] = make(table)
	}
	s.failNext = nil
}

// FailNext makes the next Apply fail with a core.StoreError wrapping err, without writing anything.
func (s *Store) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

// Count returns the number of documents in coll, across schools.
func (s *Store) Count(coll core.Collection) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[coll])
}

func (s *Store) table(coll core.Collection) (table, error) {
	t, ok := s.tables[coll]
	if !ok {
		return nil, errors.Errorf("unknown collection %q", coll)
	}
	return t, nil
}

func (s *Store) Query(ctx context.Context, coll core.Collection, schoolID string, dst interface{}) error {
	if err := ctx.Err(); err != nil {
		return core.NewStoreError("query", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.table(coll)
	if err != nil {
		return err
	}
	docs := make([]*document, 0, len(t))
	for _, doc := range t {
		if doc.schoolID == schoolID {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].seq < docs[j].seq })

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, doc := range docs {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(doc.data)
	}
	buf.WriteByte(']')
	return errors.Wrap(json.Unmarshal(buf.Bytes(), dst), "decoding documents")
}

func (s *Store) Get(ctx context.Context, coll core.Collection, id string, dst interface{}) error {
	if err := ctx.Err(); err != nil {
		return core.NewStoreError("get", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.table(coll)
	if err != nil {
		return err
	}
	doc, ok := t[id]
	if !ok {
		return core.ErrDocNotFound
	}
	return errors.Wrap(json.Unmarshal(doc.data, dst), "decoding document")
}

// Apply validates every write against the current state plus the writes before it, then commits them all.
func (s *Store) Apply(ctx context.Context, writes ...core.Write) error {
	if err := ctx.Err(); err != nil {
		return core.NewStoreError("apply", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return core.NewStoreError("apply", err)
	}

	staged := make(map[docKey]*document, len(writes))
	order := make([]docKey, 0, len(writes))
	exists := func(k docKey) bool {
		if doc, ok := staged[k]; ok {
			return doc != nil
		}
		_, ok := s.tables[k.coll][k.id]
		return ok
	}

	seq := s.seq
	for _, w := range writes {
		if _, err := s.table(w.Collection); err != nil {
			return err
		}
		if w.ID == "" {
			return errors.Errorf("%s %s: missing document id", w.Op, w.Collection)
		}
		k := docKey{coll: w.Collection, id: w.ID}
		if _, ok := staged[k]; !ok {
			order = append(order, k)
		}

		switch w.Op {
		case core.OpCreate, core.OpUpdate:
			if w.Op == core.OpCreate && exists(k) {
				return errors.Wrapf(core.ErrDocExists, "%s/%s", w.Collection, w.ID)
			}
			if w.Op == core.OpUpdate && !exists(k) {
				return errors.Wrapf(core.ErrDocNotFound, "%s/%s", w.Collection, w.ID)
			}
			data, err := json.Marshal(w.Doc)
			if err != nil {
				return errors.Wrapf(err, "encoding %s/%s", w.Collection, w.ID)
			}
			doc := &document{schoolID: w.SchoolID, data: data}
			if prev, ok := staged[k]; ok && prev != nil {
				doc.seq = prev.seq
			} else if prev, ok := s.tables[k.coll][k.id]; ok && w.Op == core.OpUpdate {
				doc.seq = prev.seq
			} else {
				seq++
				doc.seq = seq
			}
			staged[k] = doc
		case core.OpDelete:
			staged[k] = nil
		default:
			return errors.Errorf("%s/%s: unknown write op %d", w.Collection, w.ID, w.Op)
		}
	}

	// commit
	for _, k := range order {
		if doc := staged[k]; doc != nil {
			s.tables[k.coll][k.id] = doc
		} else {
			delete(s.tables[k.coll], k.id)
		}
	}
	s.seq = seq
	return nil
}
