// Package identity decides whether a display name refers to an existing entity.
//
// Names match when they are equal after trimming surrounding whitespace and lower-casing.
// There is no fuzzy matching: "Chess  Club" and "Chess Club" are distinct entities.
package identity

import "github.com/trezcool/kokulite/core"

type Kind string

const (
	KindUnit    Kind = "unit"
	KindTeacher Kind = "teacher"
)

// Scope partitions identities: names only collide within the same school and kind.
type Scope struct {
	SchoolID string
	Kind     Kind
}

// Key returns the identity key of a display name.
func Key(name string) string {
	return core.CleanString(name, true /* lower */)
}

// Match reports whether two display names refer to the same identity.
func Match(a, b string) bool {
	ka := Key(a)
	return ka != "" && ka == Key(b)
}

// Index maps identity keys to ids. It is not safe for concurrent use; build one per operation from a snapshot.
type Index struct {
	ids map[Scope]map[string]string
}

func NewIndex() *Index {
	return &Index{ids: make(map[Scope]map[string]string)}
}

// Register binds name to id within scope. The first registration wins:
// it returns false, leaving the index untouched, when the name is blank or already bound.
func (idx *Index) Register(scope Scope, name, id string) bool {
	key := Key(name)
	if key == "" {
		return false
	}
	names, ok := idx.ids[scope]
	if !ok {
		names = make(map[string]string)
		idx.ids[scope] = names
	}
	if _, exists := names[key]; exists {
		return false
	}
	names[key] = id
	return true
}

// Resolve returns the id bound to name within scope.
func (idx *Index) Resolve(scope Scope, name string) (string, bool) {
	key := Key(name)
	if key == "" {
		return "", false
	}
	id, ok := idx.ids[scope][key]
	return id, ok
}
