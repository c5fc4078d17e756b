package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/distrohq/backoffice_backend/models"
)

func buildChain() (models.User, models.User, models.User, []models.User) {
	director := models.User{ID: primitive.NewObjectID(), Role: models.RoleDivisionalDirector}
	manager := models.User{ID: primitive.NewObjectID(), Role: models.RoleBranchManager, ReferrerID: &director.ID}
	salesman := models.User{ID: primitive.NewObjectID(), Role: models.RoleSalesman, ReferrerID: &manager.ID}
	return salesman, manager, director, []models.User{director, manager, salesman}
}

func TestBuildTokenSaleRecordsDistributesUpline(t *testing.T) {
	salesman, manager, director, all := buildChain()
	customer := models.Customer{
		ID:         primitive.NewObjectID(),
		SalesmanID: salesman.ID,
		SaleDate:   time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
	}
	settings := &models.CommissionSettings{Amounts: map[models.Role]float64{
		models.RoleSalesman:           500,
		models.RoleBranchManager:      300,
		models.RoleDivisionalDirector: 200,
	}}

	records, warnings := BuildTokenSaleRecords(customer, salesman, all, settings)
	require.Empty(t, warnings)
	require.Len(t, records, 3)

	amounts := map[primitive.ObjectID]float64{}
	for _, r := range records {
		amounts[r.UserID] = r.Amount
		assert.Equal(t, models.IncomeSourceTokenSale, r.SourceType)
		assert.Equal(t, customer.SaleDate, r.SaleDate)
		require.NotNil(t, r.CustomerID)
		assert.Equal(t, customer.ID, *r.CustomerID)
	}
	assert.Equal(t, float64(500), amounts[salesman.ID])
	assert.Equal(t, float64(300), amounts[manager.ID])
	assert.Equal(t, float64(200), amounts[director.ID])
}

func TestBuildTokenSaleRecordsSkipsUnconfiguredRoles(t *testing.T) {
	salesman, _, director, all := buildChain()
	customer := models.Customer{ID: primitive.NewObjectID(), SaleDate: time.Now()}
	settings := &models.CommissionSettings{Amounts: map[models.Role]float64{
		models.RoleSalesman:           500,
		models.RoleDivisionalDirector: 200,
		// No amount for branch_manager.
	}}

	records, warnings := BuildTokenSaleRecords(customer, salesman, all, settings)
	require.Empty(t, warnings)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Contains(t, []primitive.ObjectID{salesman.ID, director.ID}, r.UserID)
	}
}

func TestBuildTokenSaleRecordsBrokenReferrerWarns(t *testing.T) {
	ghost := primitive.NewObjectID()
	salesman := models.User{ID: primitive.NewObjectID(), Role: models.RoleSalesman, ReferrerID: &ghost}
	customer := models.Customer{ID: primitive.NewObjectID(), SaleDate: time.Now()}
	settings := &models.CommissionSettings{Amounts: map[models.Role]float64{
		models.RoleSalesman: 500,
	}}

	records, warnings := BuildTokenSaleRecords(customer, salesman, []models.User{salesman}, settings)
	// The salesman is still paid; the gap is reported, not fatal.
	require.Len(t, records, 1)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Error(), ghost.Hex())
}

func TestBuildProductSaleRecordsUsesTierAndPaymentMethod(t *testing.T) {
	salesman, manager, _, all := buildChain()
	max := 200000.0
	settings := &models.ProductCommissionSettings{Tiers: []models.CommissionTier{
		{
			MinPrice: 100000,
			MaxPrice: &max,
			Rates: map[models.Role]models.RoleAmount{
				models.RoleSalesman:      {Cash: 1500, Installments: 1000},
				models.RoleBranchManager: {Cash: 800, Installments: 500},
			},
		},
	}}

	sale := models.ProductSale{
		ID:            primitive.NewObjectID(),
		CustomerID:    primitive.NewObjectID(),
		SalesmanID:    salesman.ID,
		Price:         150000,
		PaymentMethod: models.PaymentMethodCash,
		SaleDate:      time.Now(),
	}

	records, warnings := BuildProductSaleRecords(sale, salesman, all, settings)
	require.Empty(t, warnings)
	require.Len(t, records, 2)

	amounts := map[primitive.ObjectID]float64{}
	for _, r := range records {
		amounts[r.UserID] = r.Amount
		assert.Equal(t, models.IncomeSourceProductSale, r.SourceType)
		require.NotNil(t, r.SaleID)
		assert.Equal(t, sale.ID, *r.SaleID)
	}
	assert.Equal(t, float64(1500), amounts[salesman.ID], "cash sale pays the cash amount")
	assert.Equal(t, float64(800), amounts[manager.ID])

	sale.PaymentMethod = models.PaymentMethodInstallments
	records, _ = BuildProductSaleRecords(sale, salesman, all, settings)
	amounts = map[primitive.ObjectID]float64{}
	for _, r := range records {
		amounts[r.UserID] = r.Amount
	}
	assert.Equal(t, float64(1000), amounts[salesman.ID], "installment sale pays the installment amount")
	assert.Equal(t, float64(500), amounts[manager.ID])
}

func TestBuildProductSaleRecordsNoTierZeroesDistribution(t *testing.T) {
	salesman, _, _, all := buildChain()
	max := 1000.0
	settings := &models.ProductCommissionSettings{Tiers: []models.CommissionTier{
		{MinPrice: 0, MaxPrice: &max, Rates: map[models.Role]models.RoleAmount{
			models.RoleSalesman: {Cash: 100},
		}},
	}}

	sale := models.ProductSale{
		ID:            primitive.NewObjectID(),
		SalesmanID:    salesman.ID,
		Price:         50000,
		PaymentMethod: models.PaymentMethodCash,
	}

	records, warnings := BuildProductSaleRecords(sale, salesman, all, settings)
	assert.Empty(t, records)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Error(), "no commission tier")
}
