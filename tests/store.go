package testutil

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kokulite/core"
)

type storeDoc struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// RunStoreTests checks the behaviour every core.Store must share. reset must empty the store.
func RunStoreTests(t *testing.T, store core.Store, reset func()) {
	ctx := context.Background()
	create := func(id, schoolID, name string) core.Write {
		return core.CreateDoc(core.Units, id, schoolID, storeDoc{ID: id, Name: name})
	}

	t.Run("query keeps insertion order and school scope", func(t *testing.T) {
		reset()
		require.NoError(t, store.Apply(ctx, create("b", "s1", "B"), create("a", "s1", "A"), create("c", "s2", "C")))
		require.NoError(t, store.Apply(ctx, create("d", "s1", "D")))

		var docs []storeDoc
		require.NoError(t, store.Query(ctx, core.Units, "s1", &docs))
		assert.Equal(t, []storeDoc{{ID: "b", Name: "B"}, {ID: "a", Name: "A"}, {ID: "d", Name: "D"}}, docs)

		var none []storeDoc
		require.NoError(t, store.Query(ctx, core.Units, "s3", &none))
		assert.Empty(t, none)
		require.NoError(t, store.Query(ctx, core.Reports, "s1", &none))
		assert.Empty(t, none)
	})

	t.Run("get", func(t *testing.T) {
		reset()
		require.NoError(t, store.Apply(ctx, create("a", "s1", "A")))
		var doc storeDoc
		require.NoError(t, store.Get(ctx, core.Units, "a", &doc))
		assert.Equal(t, storeDoc{ID: "a", Name: "A"}, doc)
		assert.Equal(t, core.ErrDocNotFound, errors.Cause(store.Get(ctx, core.Units, "zz", &doc)))
		assert.Equal(t, core.ErrDocNotFound, errors.Cause(store.Get(ctx, core.Students, "a", &doc)))
	})

	t.Run("update replaces the document in place", func(t *testing.T) {
		reset()
		require.NoError(t, store.Apply(ctx, create("a", "s1", "A"), create("b", "s1", "B")))
		require.NoError(t, store.Apply(ctx, core.UpdateDoc(core.Units, "a", "s1", storeDoc{ID: "a", Name: "A2", Count: 2})))

		var docs []storeDoc
		require.NoError(t, store.Query(ctx, core.Units, "s1", &docs))
		assert.Equal(t, []storeDoc{{ID: "a", Name: "A2", Count: 2}, {ID: "b", Name: "B"}}, docs)
	})

	t.Run("delete", func(t *testing.T) {
		reset()
		require.NoError(t, store.Apply(ctx, create("a", "s1", "A")))
		require.NoError(t, store.Apply(ctx, core.DeleteDoc(core.Units, "a", "s1")))
		var doc storeDoc
		assert.Equal(t, core.ErrDocNotFound, errors.Cause(store.Get(ctx, core.Units, "a", &doc)))
	})

	t.Run("a failing batch writes nothing", func(t *testing.T) {
		reset()
		require.NoError(t, store.Apply(ctx, create("a", "s1", "A")))

		err := store.Apply(ctx, create("b", "s1", "B"), create("a", "s1", "A again"))
		assert.Equal(t, core.ErrDocExists, errors.Cause(err))
		err = store.Apply(ctx, create("c", "s1", "C"), core.UpdateDoc(core.Units, "zz", "s1", storeDoc{ID: "zz"}))
		assert.Equal(t, core.ErrDocNotFound, errors.Cause(err))

		var docs []storeDoc
		require.NoError(t, store.Query(ctx, core.Units, "s1", &docs))
		assert.Equal(t, []storeDoc{{ID: "a", Name: "A"}}, docs)
	})

	t.Run("writes within a batch see each other", func(t *testing.T) {
		reset()
		require.NoError(t, store.Apply(ctx,
			create("a", "s1", "A"),
			core.UpdateDoc(core.Units, "a", "s1", storeDoc{ID: "a", Name: "A2"}),
			create("b", "s1", "B"),
			core.DeleteDoc(core.Units, "b", "s1"),
		))
		var docs []storeDoc
		require.NoError(t, store.Query(ctx, core.Units, "s1", &docs))
		assert.Equal(t, []storeDoc{{ID: "a", Name: "A2"}}, docs)
	})
}
