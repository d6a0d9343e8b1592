package models

import "time"

// DefaultLocalAETitle is the calling AE title used when a unit does not configure one.
const DefaultLocalAETitle = "PACSMANUS"

// Unit is a tenant: a clinic or imaging facility whose data is isolated from other units.
type Unit struct {
	ID       int64
	Name     string
	Slug     string // unique across all units
	IsActive bool

	// Orthanc web viewer connection
	OrthancBaseURL  string
	OrthancUser     string
	OrthancPassword string
	LogoURL         string

	// Remote PACS connection used for C-FIND/C-MOVE
	PACSHost         string
	PACSPort         int
	PACSAETitle      string
	PACSLocalAETitle string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PACSConfigured reports whether the unit has enough connection details to reach its PACS.
func (u *Unit) PACSConfigured() bool {
	return u.PACSHost != "" && u.PACSPort > 0 && u.PACSAETitle != ""
}

// LocalAETitle returns the calling AE title for the unit, falling back to DefaultLocalAETitle.
func (u *Unit) LocalAETitle() string {
	if u.PACSLocalAETitle == "" {
		return DefaultLocalAETitle
	}
	return u.PACSLocalAETitle
}
