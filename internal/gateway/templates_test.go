package gateway

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/pacsgate/internal/models"
)

// seedTemplates creates a global template and one template in each of units 1 and 2.
func (f *fixture) seedTemplates(t *testing.T) (global, unit1, unit2 *models.Template) {
	t.Helper()
	ctx := context.Background()

	global = &models.Template{Name: "Chest X-Ray", Modality: "CR", Body: "Findings:", IsGlobal: true, IsActive: true, CreatedBy: 1}
	require.NoError(t, f.stores.Templates.Create(ctx, global))

	unit1 = &models.Template{UnitID: ptr(int64(1)), Name: "Unit 1 CT", Modality: "CT", IsActive: true, CreatedBy: 1}
	require.NoError(t, f.stores.Templates.Create(ctx, unit1))

	unit2 = &models.Template{UnitID: ptr(int64(2)), Name: "Unit 2 US", Modality: "US", IsActive: true, CreatedBy: 1}
	require.NoError(t, f.stores.Templates.Create(ctx, unit2))

	return global, unit1, unit2
}

func templateNames(templates []*models.Template) []string {
	names := []string{}
	for _, tmpl := range templates {
		names = append(names, tmpl.Name)
	}
	return names
}

func TestListTemplates(t *testing.T) {
	f := newFixture(t)
	f.seedUnits(t, 2)
	f.seedTemplates(t)
	ctx := context.Background()

	all, err := f.svc.ListTemplates(ctx, master())
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"Chest X-Ray"}, templateNames(all))

	own, err := f.svc.ListTemplates(ctx, member(models.RoleRadiologist, 1))
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"Chest X-Ray", "Unit 1 CT"}, templateNames(own))

	none, err := f.svc.ListTemplates(ctx, unassigned(models.RoleRadiologist))
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestGetTemplate(t *testing.T) {
	f := newFixture(t)
	f.seedUnits(t, 2)
	global, unit1, unit2 := f.seedTemplates(t)
	ctx := context.Background()
	p := member(models.RoleReferringDoctor, 1)

	got, err := f.svc.GetTemplate(ctx, p, global.ID)
	require.NoError(t, err)
	require.True(t, got.IsGlobal)

	_, err = f.svc.GetTemplate(ctx, p, unit1.ID)
	require.NoError(t, err)

	_, err = f.svc.GetTemplate(ctx, p, unit2.ID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.GetTemplate(ctx, p, 404)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.GetTemplate(ctx, unassigned(models.RoleRadiologist), global.ID)
	require.NoError(t, err)
}

func TestCreateTemplate(t *testing.T) {
	f := newFixture(t)
	f.seedUnits(t, 2)
	ctx := context.Background()

	_, err := f.svc.CreateTemplate(ctx, member(models.RoleAdminUnit, 1), TemplateInput{Name: "Global", IsGlobal: true})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.CreateTemplate(ctx, unassigned(models.RoleRadiologist), TemplateInput{Name: "Orphan"})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.CreateTemplate(ctx, master(), TemplateInput{Name: "No unit"})
	require.ErrorIs(t, err, ErrForbidden)
	require.Empty(t, f.entries())

	tmpl, err := f.svc.CreateTemplate(ctx, member(models.RoleRadiologist, 2), TemplateInput{
		Name:     "Abdomen US",
		Modality: "US",
		Body:     "Liver:",
		Fields:   json.RawMessage(`[{"name":"liver","type":"text"}]`),
	})
	require.NoError(t, err)
	require.Equal(t, ptr(int64(2)), tmpl.UnitID)
	require.False(t, tmpl.IsGlobal)
	require.Equal(t, int64(1002), tmpl.CreatedBy)

	global, err := f.svc.CreateTemplate(ctx, master(), TemplateInput{Name: "Global CT", Modality: "CT", IsGlobal: true})
	require.NoError(t, err)
	require.Nil(t, global.UnitID)

	_, err = f.svc.CreateTemplate(ctx, master(), TemplateInput{Name: "Broken", IsGlobal: true, Fields: json.RawMessage(`{`)})
	require.ErrorIs(t, err, ErrInvalidArgument)

	entries := f.entries()
	require.Len(t, entries, 2)
	require.Equal(t, models.AuditCreateTemplate, entries[0].Action)
	require.Equal(t, ptr(int64(2)), entries[0].UnitID)
	require.Nil(t, entries[1].UnitID)
	require.Equal(t, true, entries[1].Metadata["isGlobal"])
}

func TestUpdateAndDeleteTemplate(t *testing.T) {
	f := newFixture(t)
	f.seedUnits(t, 2)
	global, unit1, unit2 := f.seedTemplates(t)
	ctx := context.Background()
	admin1 := member(models.RoleAdminUnit, 1)

	_, err := f.svc.UpdateTemplate(ctx, admin1, global.ID, TemplatePatch{Body: ptr("changed")})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.UpdateTemplate(ctx, admin1, unit2.ID, TemplatePatch{Body: ptr("changed")})
	require.ErrorIs(t, err, ErrForbidden)

	require.ErrorIs(t, f.svc.DeleteTemplate(ctx, admin1, unit2.ID), ErrForbidden)
	require.Empty(t, f.entries())

	updated, err := f.svc.UpdateTemplate(ctx, admin1, unit1.ID, TemplatePatch{Body: ptr("Impression:"), IsActive: ptr(false)})
	require.NoError(t, err)
	require.Equal(t, "Impression:", updated.Body)
	require.False(t, updated.IsActive)

	_, err = f.svc.UpdateTemplate(ctx, master(), global.ID, TemplatePatch{Name: ptr("Chest PA")})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteTemplate(ctx, master(), unit2.ID))
	require.ErrorIs(t, f.svc.DeleteTemplate(ctx, master(), unit2.ID), ErrNotFound)

	entries := f.entries()
	require.Len(t, entries, 3)
	require.Equal(t, models.AuditUpdateTemplate, entries[0].Action)
	require.Equal(t, models.AuditUpdateTemplate, entries[1].Action)
	require.Equal(t, models.AuditDeleteTemplate, entries[2].Action)
	require.Equal(t, "3", entries[2].TargetID)
}
