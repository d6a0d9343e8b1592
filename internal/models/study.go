package models

import "time"

// Study is cached metadata for a DICOM study held on a unit's PACS.
type Study struct {
	ID               int64
	UnitID           int64
	OrthancStudyID   string
	StudyInstanceUID string // immutable, unique within a unit
	PatientName      string
	PatientID        string
	AccessionNumber  string
	StudyDate        string // YYYYMMDD as reported by the PACS
	Modality         string
	Description      string
	Metadata         map[string]any

	CreatedAt time.Time
	UpdatedAt time.Time
}
