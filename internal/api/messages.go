package api

import (
	"encoding/json"
	"time"
)

type Empty struct{}

// IDRequest addresses a single entity.
type IDRequest struct {
	ID int64 `json:"id"`
}

type Unit struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Slug             string    `json:"slug"`
	IsActive         bool      `json:"isActive"`
	OrthancBaseURL   string    `json:"orthancBaseUrl,omitempty"`
	OrthancUser      string    `json:"orthancUser,omitempty"`
	LogoURL          string    `json:"logoUrl,omitempty"`
	PACSHost         string    `json:"pacsHost,omitempty"`
	PACSPort         int       `json:"pacsPort,omitempty"`
	PACSAETitle      string    `json:"pacsAeTitle,omitempty"`
	PACSLocalAETitle string    `json:"pacsLocalAeTitle,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type User struct {
	ID           int64      `json:"id"`
	UnitID       *int64     `json:"unitId"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	LastSignedIn *time.Time `json:"lastSignedIn,omitempty"`
}

type Study struct {
	ID               int64          `json:"id"`
	UnitID           int64          `json:"unitId"`
	OrthancStudyID   string         `json:"orthancStudyId,omitempty"`
	StudyInstanceUID string         `json:"studyInstanceUid"`
	PatientName      string         `json:"patientName"`
	PatientID        string         `json:"patientId"`
	AccessionNumber  string         `json:"accessionNumber"`
	StudyDate        string         `json:"studyDate"`
	Modality         string         `json:"modality"`
	Description      string         `json:"description"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

type Template struct {
	ID        int64           `json:"id"`
	UnitID    *int64          `json:"unitId"`
	Name      string          `json:"name"`
	Modality  string          `json:"modality"`
	Body      string          `json:"body"`
	Fields    json.RawMessage `json:"fields,omitempty"`
	IsGlobal  bool            `json:"isGlobal"`
	IsActive  bool            `json:"isActive"`
	CreatedBy int64           `json:"createdBy"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type Report struct {
	ID                int64      `json:"id"`
	UnitID            int64      `json:"unitId"`
	StudyID           int64      `json:"studyId"`
	StudyInstanceUID  string     `json:"studyInstanceUid"`
	TemplateID        *int64     `json:"templateId"`
	AuthorUserID      int64      `json:"authorUserId"`
	Body              string     `json:"body"`
	Status            string     `json:"status"`
	Version           int        `json:"version"`
	PreviousVersionID *int64     `json:"previousVersionId"`
	SignedAt          *time.Time `json:"signedAt"`
	SignedBy          *int64     `json:"signedBy"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Auth

type MeResponse struct {
	User User `json:"user"`
}

// Units

type ListUnitsResponse struct {
	Units []Unit `json:"units"`
}

type UnitResponse struct {
	Unit Unit `json:"unit"`
}

type CreateUnitRequest struct {
	Name             string `json:"name"`
	Slug             string `json:"slug"`
	OrthancBaseURL   string `json:"orthancBaseUrl,omitempty"`
	OrthancUser      string `json:"orthancUser,omitempty"`
	OrthancPassword  string `json:"orthancPassword,omitempty"`
	LogoURL          string `json:"logoUrl,omitempty"`
	PACSHost         string `json:"pacsHost,omitempty"`
	PACSPort         int    `json:"pacsPort,omitempty"`
	PACSAETitle      string `json:"pacsAeTitle,omitempty"`
	PACSLocalAETitle string `json:"pacsLocalAeTitle,omitempty"`
}

// UpdateUnitRequest changes the fields that are present.
type UpdateUnitRequest struct {
	ID               int64   `json:"id"`
	Name             *string `json:"name,omitempty"`
	Slug             *string `json:"slug,omitempty"`
	IsActive         *bool   `json:"isActive,omitempty"`
	OrthancBaseURL   *string `json:"orthancBaseUrl,omitempty"`
	OrthancUser      *string `json:"orthancUser,omitempty"`
	OrthancPassword  *string `json:"orthancPassword,omitempty"`
	LogoURL          *string `json:"logoUrl,omitempty"`
	PACSHost         *string `json:"pacsHost,omitempty"`
	PACSPort         *int    `json:"pacsPort,omitempty"`
	PACSAETitle      *string `json:"pacsAeTitle,omitempty"`
	PACSLocalAETitle *string `json:"pacsLocalAeTitle,omitempty"`
}

// Users

type ListUsersResponse struct {
	Users []User `json:"users"`
}

type UserResponse struct {
	User User `json:"user"`
}

type CreateUserRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	UnitID *int64 `json:"unitId,omitempty"`
	OpenID string `json:"openId,omitempty"`
}

// UpdateUserRequest changes the fields that are present. Unassign clears the unit.
type UpdateUserRequest struct {
	ID       int64   `json:"id"`
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
	UnitID   *int64  `json:"unitId,omitempty"`
	Unassign bool    `json:"unassign,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// Studies

type ListStudiesRequest struct {
	UnitID          *int64 `json:"unitId,omitempty"`
	PatientName     string `json:"patientName,omitempty"`
	Modality        string `json:"modality,omitempty"`
	StudyDate       string `json:"studyDate,omitempty"`
	AccessionNumber string `json:"accessionNumber,omitempty"`
	Page            int    `json:"page,omitempty"`
	PageSize        int    `json:"pageSize,omitempty"`
}

type ListStudiesResponse struct {
	Studies  []Study `json:"studies"`
	Total    int     `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
}

type StudyResponse struct {
	Study Study `json:"study"`
}

type OpenViewerResponse struct {
	ViewerURL        string `json:"viewerUrl"`
	StudyInstanceUID string `json:"studyInstanceUid"`
	UnitSlug         string `json:"unitSlug"`
}

// Templates

type ListTemplatesResponse struct {
	Templates []Template `json:"templates"`
}

type TemplateResponse struct {
	Template Template `json:"template"`
}

type CreateTemplateRequest struct {
	Name     string          `json:"name"`
	Modality string          `json:"modality,omitempty"`
	Body     string          `json:"body,omitempty"`
	Fields   json.RawMessage `json:"fields,omitempty"`
	IsGlobal bool            `json:"isGlobal,omitempty"`
}

type UpdateTemplateRequest struct {
	ID       int64           `json:"id"`
	Name     *string         `json:"name,omitempty"`
	Modality *string         `json:"modality,omitempty"`
	Body     *string         `json:"body,omitempty"`
	Fields   json.RawMessage `json:"fields,omitempty"`
	IsActive *bool           `json:"isActive,omitempty"`
}

// Reports

type GetReportByStudyRequest struct {
	StudyID int64 `json:"studyId"`
}

type ReportResponse struct {
	Report Report `json:"report"`
}

type CreateReportRequest struct {
	StudyID    int64  `json:"studyId"`
	TemplateID *int64 `json:"templateId,omitempty"`
	Body       string `json:"body,omitempty"`
}

// UpdateReportRequest carries the new body for UpdateReport and ReviseReport.
type UpdateReportRequest struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
}

// PACS

type PacsFilters struct {
	PatientName     string `json:"patientName,omitempty"`
	PatientID       string `json:"patientId,omitempty"`
	Modality        string `json:"modality,omitempty"`
	StudyDate       string `json:"studyDate,omitempty"`
	AccessionNumber string `json:"accessionNumber,omitempty"`
}

type PacsQueryRequest struct {
	UnitID  *int64      `json:"unitId,omitempty"`
	Filters PacsFilters `json:"filters"`
}

type PacsStudy struct {
	StudyInstanceUID  string `json:"studyInstanceUid"`
	StudyID           string `json:"studyId"`
	StudyDate         string `json:"studyDate"`
	StudyTime         string `json:"studyTime"`
	StudyDescription  string `json:"studyDescription"`
	AccessionNumber   string `json:"accessionNumber"`
	PatientName       string `json:"patientName"`
	PatientID         string `json:"patientId"`
	PatientBirthDate  string `json:"patientBirthDate"`
	PatientSex        string `json:"patientSex"`
	Modality          string `json:"modality"`
	NumberOfSeries    int    `json:"numberOfSeries"`
	NumberOfInstances int    `json:"numberOfInstances"`
}

type PacsQueryResponse struct {
	UnitID  int64       `json:"unitId"`
	Studies []PacsStudy `json:"studies"`
	Count   int         `json:"count"`
}

type PacsDownloadRequest struct {
	UnitID           *int64 `json:"unitId,omitempty"`
	StudyInstanceUID string `json:"studyInstanceUid"`
}

type PacsDownloadResponse struct {
	UnitID           int64   `json:"unitId"`
	StudyInstanceUID string  `json:"studyInstanceUid"`
	FileCount        int     `json:"fileCount"`
	Studies          []Study `json:"studies"`
}
