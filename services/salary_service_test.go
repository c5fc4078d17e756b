package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/distrohq/backoffice_backend/models"
)

func TestPeriodOf(t *testing.T) {
	assert.Equal(t, "2026-09", PeriodOf(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-01", PeriodOf(time.Date(2026, 1, 31, 23, 59, 0, 0, time.UTC)))
}

func TestBuildSalaryRunPaysSalariedRoles(t *testing.T) {
	salesman := models.User{ID: primitive.NewObjectID(), Role: models.RoleSalesman}
	accountant := models.User{ID: primitive.NewObjectID(), Role: models.RoleAccountant}
	unsalaried := models.User{ID: primitive.NewObjectID(), Role: models.RoleMarketingOfficer}
	settings := &models.SalarySettings{Salaries: map[models.Role]float64{
		models.RoleSalesman:   30000,
		models.RoleAccountant: 45000,
	}}

	now := time.Now()
	actor := primitive.NewObjectID()
	payoutID := uuid.NewString()
	records, batch := BuildSalaryRun(settings, []models.User{salesman, accountant, unsalaried},
		"2026-09", payoutID, actor, now)

	require.Len(t, records, 2)
	assert.Equal(t, 2, batch.TotalUsersPaid)
	assert.Equal(t, float64(75000), batch.TotalAmountPaid)
	assert.Equal(t, "2026-09", batch.Period)
	assert.Equal(t, payoutID, batch.PayoutID)
	assert.False(t, batch.IsReversed)
	for _, r := range records {
		assert.Equal(t, models.IncomeSourceSalary, r.SourceType)
		assert.Equal(t, payoutID, r.PayoutID)
		assert.Equal(t, "salary 2026-09", r.Note)
	}
}

func TestBuildSalaryRunSkipsDisabledUsers(t *testing.T) {
	active := models.User{ID: primitive.NewObjectID(), Role: models.RoleSalesman}
	disabled := models.User{ID: primitive.NewObjectID(), Role: models.RoleSalesman, IsDisabled: true}
	settings := &models.SalarySettings{Salaries: map[models.Role]float64{
		models.RoleSalesman: 30000,
	}}

	records, batch := BuildSalaryRun(settings, []models.User{active, disabled},
		"2026-09", uuid.NewString(), primitive.NewObjectID(), time.Now())

	require.Len(t, records, 1)
	assert.Equal(t, active.ID, records[0].UserID)
	assert.Equal(t, float64(30000), batch.TotalAmountPaid)
}

func TestBuildSalaryRunEmptySettings(t *testing.T) {
	user := models.User{ID: primitive.NewObjectID(), Role: models.RoleSalesman}
	settings := &models.SalarySettings{Salaries: map[models.Role]float64{}}

	records, batch := BuildSalaryRun(settings, []models.User{user},
		"2026-09", uuid.NewString(), primitive.NewObjectID(), time.Now())

	assert.Empty(t, records)
	assert.Zero(t, batch.TotalAmountPaid)
	assert.Zero(t, batch.TotalUsersPaid)
}
