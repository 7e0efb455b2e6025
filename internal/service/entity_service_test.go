package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
	appErrors "github.com/noah-isme/rvnp-attendance-api/pkg/errors"
)

func TestEntityAddNormalisesAndReportsExisting(t *testing.T) {
	w := newWorld(t)
	hod := w.users.add("h1", models.RoleHOD, "ICT", "")
	ctx := context.Background()

	first, err := w.entitySvc.Add(ctx, sessionFor(hod), models.EntityTrainer, models.CreateEntityRequest{Name: "  jane doe "})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeCreated, first.Outcome)
	assert.Equal(t, "JANE DOE", first.Entity.Name)
	assert.Equal(t, "ICT", first.Entity.DepartmentCode)

	second, err := w.entitySvc.Add(ctx, sessionFor(hod), models.EntityTrainer, models.CreateEntityRequest{Name: "Jane Doe", Department: "ict"})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeAlreadyExists, second.Outcome)
	assert.Equal(t, first.Entity.ID, second.Entity.ID)
	assert.Len(t, w.entities.rows, 1)
}

func TestEntityAddRejectsBadInput(t *testing.T) {
	w := newWorld(t)
	admin := w.users.add("admin", models.RoleSuperAdmin, "", "")
	rep := w.users.add("r1", models.RoleClassRep, "", "")
	w.assignments.rows = []models.ClassRepAssignment{{ID: 1, Username: "r1", ClassName: "ICT-1A", DepartmentCode: "ICT"}}
	ctx := context.Background()

	_, err := w.entitySvc.Add(ctx, sessionFor(admin), models.EntityUnit, models.CreateEntityRequest{Name: "   ", Department: "ICT"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Contains(t, err.Error(), "Unit name is required")

	_, err = w.entitySvc.Add(ctx, sessionFor(admin), models.EntityUnit, models.CreateEntityRequest{Name: "Maths"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = w.entitySvc.Add(ctx, sessionFor(admin), models.EntityKind("room"), models.CreateEntityRequest{Name: "R1", Department: "ICT"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = w.entitySvc.Add(ctx, sessionFor(rep), models.EntityClass, models.CreateEntityRequest{Name: "ICT-9Z"})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	assert.Empty(t, w.entities.rows)
}

func TestEntityDeleteAcrossDepartmentsIsForbidden(t *testing.T) {
	w := newWorld(t)
	hod := w.users.add("h2", models.RoleHOD, "ELEC", "")
	trainer := w.entities.seed(models.EntityTrainer, "JOHN", "ICT")

	err := w.entitySvc.Delete(context.Background(), sessionFor(hod), models.EntityTrainer, trainer.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = w.entities.FindByID(context.Background(), models.EntityTrainer, trainer.ID)
	assert.NoError(t, err)
}

func TestEntityDelete(t *testing.T) {
	w := newWorld(t)
	admin := w.users.add("admin", models.RoleSuperAdmin, "", "")
	unit := w.entities.seed(models.EntityUnit, "MATHS", "ELEC")

	err := w.entitySvc.Delete(context.Background(), sessionFor(admin), models.EntityUnit, 404)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	require.NoError(t, w.entitySvc.Delete(context.Background(), sessionFor(admin), models.EntityUnit, unit.ID))
	assert.Empty(t, w.entities.rows)
}

func TestEntityListNeverLeaksOtherDepartments(t *testing.T) {
	w := newWorld(t)
	admin := w.users.add("admin", models.RoleSuperAdmin, "", "")
	hod := w.users.add("h1", models.RoleHOD, "ICT", "")
	for i := 0; i < 10; i++ {
		department := "ICT"
		if i%3 == 0 {
			department = "ELEC"
		}
		w.entities.seed(models.EntityClass, fmt.Sprintf("CLASS-%02d", i), department)
	}

	scoped, err := w.entitySvc.List(context.Background(), sessionFor(hod), models.EntityClass, "ALL")
	require.NoError(t, err)
	assert.Len(t, scoped, 6)
	for _, e := range scoped {
		assert.Equal(t, "ICT", e.DepartmentCode)
	}

	_, err = w.entitySvc.List(context.Background(), sessionFor(hod), models.EntityClass, "ELEC")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	all, err := w.entitySvc.List(context.Background(), sessionFor(admin), models.EntityClass, "ALL")
	require.NoError(t, err)
	assert.Len(t, all, 10)

	elec, err := w.entitySvc.List(context.Background(), sessionFor(admin), models.EntityClass, "ELEC")
	require.NoError(t, err)
	assert.Len(t, elec, 4)
}
