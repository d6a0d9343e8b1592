package models

import "time"

// AuditAction identifies what a principal did.
type AuditAction string

const (
	AuditLogin          AuditAction = "LOGIN"
	AuditLogout         AuditAction = "LOGOUT"
	AuditViewStudy      AuditAction = "VIEW_STUDY"
	AuditOpenViewer     AuditAction = "OPEN_VIEWER"
	AuditCreateReport   AuditAction = "CREATE_REPORT"
	AuditUpdateReport   AuditAction = "UPDATE_REPORT"
	AuditSignReport     AuditAction = "SIGN_REPORT"
	AuditReviseReport   AuditAction = "REVISE_REPORT"
	AuditCreateUser     AuditAction = "CREATE_USER"
	AuditUpdateUser     AuditAction = "UPDATE_USER"
	AuditDeleteUser     AuditAction = "DELETE_USER"
	AuditCreateUnit     AuditAction = "CREATE_UNIT"
	AuditUpdateUnit     AuditAction = "UPDATE_UNIT"
	AuditDeleteUnit     AuditAction = "DELETE_UNIT"
	AuditCreateTemplate AuditAction = "CREATE_TEMPLATE"
	AuditUpdateTemplate AuditAction = "UPDATE_TEMPLATE"
	AuditDeleteTemplate AuditAction = "DELETE_TEMPLATE"
	AuditPACSQuery      AuditAction = "PACS_QUERY"
	AuditPACSDownload   AuditAction = "PACS_DOWNLOAD"
)

// TargetType is the kind of entity an audit entry refers to.
type TargetType string

const (
	TargetUnit     TargetType = "UNIT"
	TargetUser     TargetType = "USER"
	TargetStudy    TargetType = "STUDY"
	TargetTemplate TargetType = "TEMPLATE"
	TargetReport   TargetType = "REPORT"
	TargetPACS     TargetType = "PACS"
)

// AuditEntry is an append-only record of an action. Entries are never updated or deleted.
type AuditEntry struct {
	ID         int64
	UserID     int64
	UnitID     *int64
	Action     AuditAction
	TargetType TargetType
	TargetID   string
	IPAddress  string
	UserAgent  string
	Metadata   map[string]any
	Timestamp  time.Time
}
