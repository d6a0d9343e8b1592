package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wolfeidau/pacsgate/internal/api"
)

type StudiesCmd struct {
	Unit            int64  `help:"Unit ID (admin_master only)" default:"0"`
	Patient         string `help:"Patient name contains"`
	Modality        string `help:"Modality, e.g. CT"`
	Date            string `help:"Study date (YYYY-MM-DD or YYYYMMDD)"`
	AccessionNumber string `help:"Accession number"`
	Page            int    `help:"Page number" default:"1"`
	PageSize        int    `help:"Number of studies per page" default:"20"`
}

func (s *StudiesCmd) Run(ctx context.Context, globals *Globals) error {
	cl, err := newClient(globals, 30*time.Second)
	if err != nil {
		return err
	}

	req := &api.ListStudiesRequest{
		PatientName:     s.Patient,
		Modality:        s.Modality,
		StudyDate:       s.Date,
		AccessionNumber: s.AccessionNumber,
		Page:            s.Page,
		PageSize:        s.PageSize,
	}
	if s.Unit != 0 {
		req.UnitID = &s.Unit
	}

	resp, err := cl.ListStudies(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to list studies: %w", err)
	}

	if len(resp.Studies) == 0 {
		fmt.Println("No studies found.")
		return nil
	}

	fmt.Printf("%-6s %-6s %-10s %-8s %-24s %-14s %-40s\n", "ID", "Unit", "Date", "Mod", "Patient", "Accession", "Study UID")
	fmt.Println(strings.Repeat("─", 112))

	for _, st := range resp.Studies {
		fmt.Printf("%-6d %-6d %-10s %-8s %-24s %-14s %-40s\n",
			st.ID,
			st.UnitID,
			st.StudyDate,
			st.Modality,
			truncate(st.PatientName, 24),
			truncate(st.AccessionNumber, 14),
			st.StudyInstanceUID)
	}

	lastPage := 1
	if resp.PageSize > 0 {
		lastPage = (resp.Total + resp.PageSize - 1) / resp.PageSize
	}
	fmt.Printf("\nTotal studies: %d\n", resp.Total)
	if lastPage > 1 {
		fmt.Printf("Pages: %d/%d\n", resp.Page, lastPage)
		if resp.Page < lastPage {
			fmt.Printf("Use --page=%d to see next page\n", resp.Page+1)
		}
	}

	return nil
}
