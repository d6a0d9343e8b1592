package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wolfeidau/pacsgate/internal/api"
)

type PacsQueryCmd struct {
	Unit            int64  `help:"Unit ID (required for admin_master)" default:"0"`
	Patient         string `help:"Patient name, DICOM wildcards allowed"`
	PatientID       string `help:"Patient ID"`
	Modality        string `help:"Modality, e.g. CT"`
	Date            string `help:"Study date or range (YYYYMMDD or YYYYMMDD-YYYYMMDD)"`
	AccessionNumber string `help:"Accession number"`
}

func (q *PacsQueryCmd) Run(ctx context.Context, globals *Globals) error {
	cl, err := newClient(globals, 2*time.Minute)
	if err != nil {
		return err
	}

	req := &api.PacsQueryRequest{
		Filters: api.PacsFilters{
			PatientName:     q.Patient,
			PatientID:       q.PatientID,
			Modality:        q.Modality,
			StudyDate:       q.Date,
			AccessionNumber: q.AccessionNumber,
		},
	}
	if q.Unit != 0 {
		req.UnitID = &q.Unit
	}

	resp, err := cl.QueryPACS(ctx, req)
	if err != nil {
		return fmt.Errorf("PACS query failed: %w", err)
	}

	fmt.Printf("PACS results for unit %d: %d studies\n", resp.UnitID, resp.Count)
	if resp.Count == 0 {
		return nil
	}

	fmt.Printf("%-10s %-6s %-24s %-14s %-8s %-8s %-40s\n", "Date", "Mod", "Patient", "Accession", "Series", "Images", "Study UID")
	fmt.Println(strings.Repeat("─", 116))

	for _, st := range resp.Studies {
		fmt.Printf("%-10s %-6s %-24s %-14s %-8d %-8d %-40s\n",
			st.StudyDate,
			st.Modality,
			truncate(st.PatientName, 24),
			truncate(st.AccessionNumber, 14),
			st.NumberOfSeries,
			st.NumberOfInstances,
			st.StudyInstanceUID)
	}

	return nil
}

type PacsFetchCmd struct {
	Unit     int64  `help:"Unit ID (required for admin_master)" default:"0"`
	StudyUID string `arg:"" help:"Study Instance UID to retrieve"`
}

func (f *PacsFetchCmd) Run(ctx context.Context, globals *Globals) error {
	cl, err := newClient(globals, 15*time.Minute)
	if err != nil {
		return err
	}

	req := &api.PacsDownloadRequest{StudyInstanceUID: f.StudyUID}
	if f.Unit != 0 {
		req.UnitID = &f.Unit
	}

	resp, err := cl.DownloadStudy(ctx, req)
	if err != nil {
		return fmt.Errorf("PACS retrieval failed: %w", err)
	}

	fmt.Printf("Retrieved %d files for %s into unit %d\n", resp.FileCount, resp.StudyInstanceUID, resp.UnitID)
	for _, st := range resp.Studies {
		fmt.Printf("  cached study %d: %s %s %s\n", st.ID, st.StudyDate, st.Modality, st.PatientName)
	}

	return nil
}
