package pacs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// StudySummary describes a study assembled from DICOM files on disk.
type StudySummary struct {
	StudyInstanceUID  string
	PatientName       string
	PatientID         string
	AccessionNumber   string
	StudyDate         string
	Modality          string
	Description       string
	NumberOfSeries    int
	NumberOfInstances int
}

// instance is the header subset read from one DICOM file.
type instance struct {
	StudyInstanceUID  string
	SeriesInstanceUID string
	SOPInstanceUID    string
	PatientName       string
	PatientID         string
	AccessionNumber   string
	StudyDate         string
	Modality          string
	Description       string
}

// Indexer reads DICOM headers from retrieved studies.
type Indexer struct{}

// NewIndexer creates an indexer.
func NewIndexer() *Indexer {
	return &Indexer{}
}

// Index walks dir and summarises every study found in it. Files that are not
// DICOM are skipped.
func (ix *Indexer) Index(ctx context.Context, dir string) ([]StudySummary, error) {
	logger := zerolog.Ctx(ctx)

	var instances []instance
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !d.Type().IsRegular() {
			return nil
		}

		inst, err := readInstance(path)
		if err != nil {
			logger.Debug().Err(err).Str("path", path).Msg("Skipping non-DICOM file")
			return nil
		}
		if inst.StudyInstanceUID == "" {
			return nil
		}
		instances = append(instances, inst)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to index %s: %w", dir, err)
	}

	return summarize(instances), nil
}

func readInstance(path string) (instance, error) {
	f, err := os.Open(path) // #nosec G304 - path comes from walking the cache directory
	if err != nil {
		return instance{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return instance{}, err
	}

	ds, err := dicom.Parse(f, info.Size(), nil, dicom.SkipPixelData())
	if err != nil {
		return instance{}, err
	}

	return instance{
		StudyInstanceUID:  stringByTag(&ds, tag.StudyInstanceUID),
		SeriesInstanceUID: stringByTag(&ds, tag.SeriesInstanceUID),
		SOPInstanceUID:    stringByTag(&ds, tag.SOPInstanceUID),
		PatientName:       stringByTag(&ds, tag.PatientName),
		PatientID:         stringByTag(&ds, tag.PatientID),
		AccessionNumber:   stringByTag(&ds, tag.AccessionNumber),
		StudyDate:         stringByTag(&ds, tag.StudyDate),
		Modality:          stringByTag(&ds, tag.Modality),
		Description:       stringByTag(&ds, tag.StudyDescription),
	}, nil
}

func stringByTag(ds *dicom.Dataset, t tag.Tag) string {
	el, err := ds.FindElementByTag(t)
	if err != nil || el == nil || el.Value == nil {
		return ""
	}
	vals, ok := el.Value.GetValue().([]string)
	if !ok || len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// summarize groups instances by study, counting distinct series and instances.
// The first non-empty value seen wins for each descriptive field.
func summarize(instances []instance) []StudySummary {
	type acc struct {
		summary   StudySummary
		series    map[string]struct{}
		instances map[string]struct{}
	}

	byStudy := map[string]*acc{}
	for i, inst := range instances {
		a, ok := byStudy[inst.StudyInstanceUID]
		if !ok {
			a = &acc{
				summary:   StudySummary{StudyInstanceUID: inst.StudyInstanceUID},
				series:    map[string]struct{}{},
				instances: map[string]struct{}{},
			}
			byStudy[inst.StudyInstanceUID] = a
		}

		fill(&a.summary.PatientName, inst.PatientName)
		fill(&a.summary.PatientID, inst.PatientID)
		fill(&a.summary.AccessionNumber, inst.AccessionNumber)
		fill(&a.summary.StudyDate, inst.StudyDate)
		fill(&a.summary.Modality, inst.Modality)
		fill(&a.summary.Description, inst.Description)

		if inst.SeriesInstanceUID != "" {
			a.series[inst.SeriesInstanceUID] = struct{}{}
		}
		sop := inst.SOPInstanceUID
		if sop == "" {
			sop = fmt.Sprintf("#%d", i)
		}
		a.instances[sop] = struct{}{}
	}

	out := make([]StudySummary, 0, len(byStudy))
	for _, a := range byStudy {
		a.summary.NumberOfSeries = len(a.series)
		a.summary.NumberOfInstances = len(a.instances)
		out = append(out, a.summary)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StudyInstanceUID < out[j].StudyInstanceUID
	})
	return out
}

func fill(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
