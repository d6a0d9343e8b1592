package models

import (
	"encoding/json"
	"time"
)

// Template is a report template. Global templates have no unit and are visible to everyone.
type Template struct {
	ID        int64
	UnitID    *int64 // nil if and only if IsGlobal
	Name      string
	Modality  string
	Body      string
	Fields    json.RawMessage
	IsGlobal  bool
	IsActive  bool
	CreatedBy int64

	CreatedAt time.Time
	UpdatedAt time.Time
}
