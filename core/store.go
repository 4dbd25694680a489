package core

import (
	"context"
	"errors"
)

// Collection names a set of documents in the Store.
type Collection string

const (
	Users         Collection = "users"
	Students      Collection = "students"
	Units         Collection = "units"
	Attendance    Collection = "attendance"
	Reports       Collection = "reports"
	Achievements  Collection = "achievements"
	Announcements Collection = "announcements" // announcement.Service
)

var Collections = []Collection{Users, Students, Units, Attendance, Reports, Achievements, Announcements}

type WriteOp int

const (
	OpCreate WriteOp = iota + 1
	OpUpdate
	OpDelete
)

func (op WriteOp) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	}
	return "unknown"
}

var (
	ErrDocNotFound = errors.New("document not found")
	ErrDocExists   = errors.New("document already exists")
)

// Write is a single document mutation. Doc is ignored for OpDelete.
type Write struct {
	Collection Collection
	Op         WriteOp
	ID         string
	SchoolID   string
	Doc        interface{}
}

func CreateDoc(coll Collection, id, schoolID string, doc interface{}) Write {
	return Write{Collection: coll, Op: OpCreate, ID: id, SchoolID: schoolID, Doc: doc}
}

func UpdateDoc(coll Collection, id, schoolID string, doc interface{}) Write {
	return Write{Collection: coll, Op: OpUpdate, ID: id, SchoolID: schoolID, Doc: doc}
}

func DeleteDoc(coll Collection, id, schoolID string) Write {
	return Write{Collection: coll, Op: OpDelete, ID: id, SchoolID: schoolID}
}

// Store is a multi-collection document store partitioned by school.
// Documents are JSON encoded; an update replaces the whole document.
type Store interface {
	// Query decodes every document of coll belonging to schoolID, in insertion order, into dst (a pointer to a slice).
	Query(ctx context.Context, coll Collection, schoolID string, dst interface{}) error
	// Get decodes the document `id` of coll into dst, or returns ErrDocNotFound.
	Get(ctx context.Context, coll Collection, id string, dst interface{}) error
	// Apply commits all writes or none of them.
	// Creating an existing id fails with ErrDocExists; updating a missing one with ErrDocNotFound.
	Apply(ctx context.Context, writes ...Write) error
}
