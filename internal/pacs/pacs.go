// Package pacs bridges to a remote PACS through external helper processes.
//
// The DICOM network protocol is not implemented here. A query helper performs
// C-FIND and a move helper performs C-MOVE; both exchange JSON with pacsgate.
// The query helper reads its request on stdin and writes one JSON document to
// stdout. The move helper receives its request as the last argument and prints
// its result as the last JSON line of its output.
package pacs

import (
	"time"

	"github.com/wolfeidau/pacsgate/internal/models"
)

// Endpoint addresses a remote PACS node.
type Endpoint struct {
	Host         string
	Port         int
	AETitle      string
	LocalAETitle string
}

// EndpointForUnit returns the PACS endpoint configured on a unit.
func EndpointForUnit(u *models.Unit) Endpoint {
	return Endpoint{
		Host:         u.PACSHost,
		Port:         u.PACSPort,
		AETitle:      u.PACSAETitle,
		LocalAETitle: u.LocalAETitle(),
	}
}

// Filters narrows a C-FIND query. Empty fields match everything.
type Filters struct {
	PatientName     string `json:"patient_name,omitempty"`
	PatientID       string `json:"patient_id,omitempty"`
	Modality        string `json:"modality,omitempty"`
	StudyDate       string `json:"study_date,omitempty"`
	AccessionNumber string `json:"accession_number,omitempty"`
}

// StudyRecord is one study returned by a C-FIND query.
type StudyRecord struct {
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

// QueryResult is a successful C-FIND response.
type QueryResult struct {
	Studies  []StudyRecord
	Duration time.Duration
}

// MoveResult is a successful C-MOVE response.
type MoveResult struct {
	StudyInstanceUID string
	FileCount        int
	Dir              string // directory holding the retrieved files
	Duration         time.Duration
}

type queryRequest struct {
	PACSHost     string  `json:"pacs_ip"`
	PACSPort     int     `json:"pacs_port"`
	PACSAETitle  string  `json:"pacs_ae_title"`
	LocalAETitle string  `json:"local_ae_title"`
	Filters      Filters `json:"filters"`
}

type queryResponse struct {
	Success bool          `json:"success"`
	Studies []StudyRecord `json:"studies"`
	Count   int           `json:"count"`
	Error   string        `json:"error"`
	Details string        `json:"details"`
}

type moveRequest struct {
	PACSHost         string `json:"pacs_ip"`
	PACSPort         int    `json:"pacs_port"`
	PACSAETitle      string `json:"pacs_ae_title"`
	LocalAETitle     string `json:"local_ae_title"`
	StudyInstanceUID string `json:"study_instance_uid"`
	CacheDir         string `json:"cache_dir"`
}

type moveResponse struct {
	Success          bool   `json:"success"`
	FileCount        int    `json:"file_count"`
	CacheDir         string `json:"cache_dir"`
	StudyInstanceUID string `json:"study_instance_uid"`
	Error            string `json:"error"`
}
