package server

import (
	"github.com/wolfeidau/pacsgate/internal/api"
	"github.com/wolfeidau/pacsgate/internal/models"
	"github.com/wolfeidau/pacsgate/internal/pacs"
)

// unitToAPI never copies the Orthanc password.
func unitToAPI(u *models.Unit) api.Unit {
	return api.Unit{
		ID:               u.ID,
		Name:             u.Name,
		Slug:             u.Slug,
		IsActive:         u.IsActive,
		OrthancBaseURL:   u.OrthancBaseURL,
		OrthancUser:      u.OrthancUser,
		LogoURL:          u.LogoURL,
		PACSHost:         u.PACSHost,
		PACSPort:         u.PACSPort,
		PACSAETitle:      u.PACSAETitle,
		PACSLocalAETitle: u.PACSLocalAETitle,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func userToAPI(u *models.User) api.User {
	return api.User{
		ID:           u.ID,
		UnitID:       u.UnitID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         string(u.Role),
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		LastSignedIn: u.LastSignedIn,
	}
}

func studyToAPI(s *models.Study) api.Study {
	return api.Study{
		ID:               s.ID,
		UnitID:           s.UnitID,
		OrthancStudyID:   s.OrthancStudyID,
		StudyInstanceUID: s.StudyInstanceUID,
		PatientName:      s.PatientName,
		PatientID:        s.PatientID,
		AccessionNumber:  s.AccessionNumber,
		StudyDate:        s.StudyDate,
		Modality:         s.Modality,
		Description:      s.Description,
		Metadata:         s.Metadata,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func studiesToAPI(studies []*models.Study) []api.Study {
	out := make([]api.Study, 0, len(studies))
	for _, s := range studies {
		out = append(out, studyToAPI(s))
	}
	return out
}

func templateToAPI(t *models.Template) api.Template {
	return api.Template{
		ID:        t.ID,
		UnitID:    t.UnitID,
		Name:      t.Name,
		Modality:  t.Modality,
		Body:      t.Body,
		Fields:    t.Fields,
		IsGlobal:  t.IsGlobal,
		IsActive:  t.IsActive,
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func reportToAPI(r *models.Report) api.Report {
	return api.Report{
		ID:                r.ID,
		UnitID:            r.UnitID,
		StudyID:           r.StudyID,
		StudyInstanceUID:  r.StudyInstanceUID,
		TemplateID:        r.TemplateID,
		AuthorUserID:      r.AuthorUserID,
		Body:              r.Body,
		Status:            string(r.Status),
		Version:           r.Version,
		PreviousVersionID: r.PreviousVersionID,
		SignedAt:          r.SignedAt,
		SignedBy:          r.SignedBy,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func pacsStudyToAPI(r pacs.StudyRecord) api.PacsStudy {
	return api.PacsStudy{
		StudyInstanceUID:  r.StudyInstanceUID,
		StudyID:           r.StudyID,
		StudyDate:         r.StudyDate,
		StudyTime:         r.StudyTime,
		StudyDescription:  r.StudyDescription,
		AccessionNumber:   r.AccessionNumber,
		PatientName:       r.PatientName,
		PatientID:         r.PatientID,
		PatientBirthDate:  r.PatientBirthDate,
		PatientSex:        r.PatientSex,
		Modality:          r.Modality,
		NumberOfSeries:    r.NumberOfSeries,
		NumberOfInstances: r.NumberOfInstances,
	}
}
