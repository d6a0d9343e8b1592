package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wolfeidau/pacsgate/internal/logger"
	"github.com/wolfeidau/pacsgate/internal/models"
	"github.com/wolfeidau/pacsgate/internal/store"
)

const defaultMasterEmail = "admin@pacsgate.local"

type SeedCmd struct {
	MasterEmail   string             `help:"email of the admin_master user to create" default:"admin@pacsgate.local" env:"PACSGATE_SEED_MASTER_EMAIL"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

func (c *SeedCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	stores, closeStores, err := openStores(ctx, log, storePostgres, &c.PostgresStore)
	if err != nil {
		return err
	}
	defer closeStores()

	master, err := seedDemo(ctx, stores, c.MasterEmail)
	if err != nil {
		return err
	}

	log.Info().Int64("user_id", master.ID).Str("email", master.Email).Msg("Demo data loaded")
	return nil
}

type demoUnit struct {
	unit    models.Unit
	studies []models.Study
}

var demoUnits = []demoUnit{
	{
		unit: models.Unit{
			Name:             "Unidade Central",
			Slug:             "unidade-central",
			IsActive:         true,
			OrthancBaseURL:   "http://orthanc-central:8042",
			PACSHost:         "10.0.10.5",
			PACSPort:         104,
			PACSAETitle:      "CENTRAL",
			PACSLocalAETitle: models.DefaultLocalAETitle,
		},
		studies: []models.Study{
			{StudyInstanceUID: "1.2.826.0.1.3680043.8.498.10001", PatientName: "SILVA^MARIA", PatientID: "C-1001", AccessionNumber: "ACC1001", StudyDate: "20240312", Modality: "CT", Description: "CT CHEST W/O CONTRAST"},
			{StudyInstanceUID: "1.2.826.0.1.3680043.8.498.10002", PatientName: "SOUZA^JOAO", PatientID: "C-1002", AccessionNumber: "ACC1002", StudyDate: "20240313", Modality: "CR", Description: "CHEST PA AND LATERAL"},
			{StudyInstanceUID: "1.2.826.0.1.3680043.8.498.10003", PatientName: "OLIVEIRA^ANA", PatientID: "C-1003", AccessionNumber: "ACC1003", StudyDate: "20240314", Modality: "US", Description: "US ABDOMEN COMPLETE"},
		},
	},
	{
		unit: models.Unit{
			Name:        "Unidade Norte",
			Slug:        "unidade-norte",
			IsActive:    true,
			PACSHost:    "10.0.20.5",
			PACSPort:    11112,
			PACSAETitle: "NORTE",
		},
		studies: []models.Study{
			{StudyInstanceUID: "1.2.826.0.1.3680043.8.498.20001", PatientName: "PEREIRA^CARLOS", PatientID: "N-2001", AccessionNumber: "ACC2001", StudyDate: "20240401", Modality: "CT", Description: "CT HEAD W/O CONTRAST"},
			{StudyInstanceUID: "1.2.826.0.1.3680043.8.498.20002", PatientName: "COSTA^LUCIA", PatientID: "N-2002", AccessionNumber: "ACC2002", StudyDate: "20240402", Modality: "CR", Description: "KNEE 2 VIEWS"},
		},
	},
}

var demoTemplates = []models.Template{
	{
		Name:     "Radiografia de Tórax",
		Modality: "CR",
		Body:     "TÉCNICA:\nRadiografia do tórax em PA e perfil.\n\nACHADOS:\n\nIMPRESSÃO:\n",
		Fields:   json.RawMessage(`[{"name":"technique","label":"Técnica"},{"name":"findings","label":"Achados"},{"name":"impression","label":"Impressão"}]`),
	},
	{
		Name:     "Tomografia Computadorizada",
		Modality: "CT",
		Body:     "TÉCNICA:\nAquisição volumétrica sem contraste.\n\nACHADOS:\n\nIMPRESSÃO:\n",
		Fields:   json.RawMessage(`[{"name":"technique","label":"Técnica"},{"name":"contrast","label":"Contraste"},{"name":"findings","label":"Achados"},{"name":"impression","label":"Impressão"}]`),
	},
	{
		Name:     "Ultrassonografia",
		Modality: "US",
		Body:     "EXAME:\n\nACHADOS:\n\nCONCLUSÃO:\n",
		Fields:   json.RawMessage(`[{"name":"findings","label":"Achados"},{"name":"conclusion","label":"Conclusão"}]`),
	},
}

// seedDemo loads demo units with cached studies, global templates and an admin_master user.
// It does nothing but return the master when units already exist.
func seedDemo(ctx context.Context, stores store.Stores, masterEmail string) (*models.User, error) {
	existing, err := stores.Units.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}

	if len(existing) > 0 {
		users, err := stores.Users.List(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		for _, u := range users {
			if u.Email == masterEmail {
				return u, nil
			}
		}
		return nil, fmt.Errorf("store already holds %d units but no user %s", len(existing), masterEmail)
	}

	master := &models.User{Name: "Administrador", Email: masterEmail, Role: models.RoleAdminMaster, IsActive: true}
	if err := stores.Users.Create(ctx, master); err != nil {
		return nil, fmt.Errorf("failed to create master user: %w", err)
	}

	for _, d := range demoUnits {
		unit := d.unit
		if err := stores.Units.Create(ctx, &unit); err != nil {
			return nil, fmt.Errorf("failed to create unit %s: %w", unit.Slug, err)
		}

		for _, s := range d.studies {
			study := s
			study.UnitID = unit.ID
			study.Metadata = map[string]any{"source": "seed"}
			if err := stores.Studies.Upsert(ctx, &study); err != nil {
				return nil, fmt.Errorf("failed to create study %s: %w", study.StudyInstanceUID, err)
			}
		}

		unitID := unit.ID
		radiologist := &models.User{
			Name:     "Radiologista " + unit.Name,
			Email:    "radiologista@" + unit.Slug + ".pacsgate.local",
			Role:     models.RoleRadiologist,
			UnitID:   &unitID,
			IsActive: true,
		}
		if err := stores.Users.Create(ctx, radiologist); err != nil {
			return nil, fmt.Errorf("failed to create radiologist for %s: %w", unit.Slug, err)
		}
	}

	for _, t := range demoTemplates {
		tmpl := t
		tmpl.IsGlobal = true
		tmpl.IsActive = true
		tmpl.CreatedBy = master.ID
		if err := stores.Templates.Create(ctx, &tmpl); err != nil {
			return nil, fmt.Errorf("failed to create template %s: %w", tmpl.Name, err)
		}
	}

	return master, nil
}
