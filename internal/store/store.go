// Package store defines persistence contracts for pacsgate entities.
//
// Two implementations exist: memory (tests and local development) and
// postgres (production). Both return the sentinel errors declared here so
// callers can match with errors.Is regardless of backend.
package store

import (
	"errors"
)

// ErrUnavailable is wrapped around errors caused by the backing store being unreachable.
var ErrUnavailable = errors.New("store unavailable")

// Stores groups the entity stores that share one backing database handle.
type Stores struct {
	Units     UnitStore
	Users     UserStore
	Studies   StudyStore
	Templates TemplateStore
	Reports   ReportStore
	Audit     AuditStore
}

// Page bounds a list query.
type Page struct {
	Limit  int
	Offset int
}
