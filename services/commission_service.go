// services/commission_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/distrohq/backoffice_backend/config"
	"github.com/distrohq/backoffice_backend/models"
	"github.com/distrohq/backoffice_backend/utils"
)

// CommissionService distributes sale commissions up the referral chain. All
// mutating operations run inside a MongoDB transaction so a sale is never
// half-distributed and never paid twice.
type CommissionService struct {
	db       *mongo.Client
	settings *SettingsService
}

// NewCommissionService creates a new commission service.
func NewCommissionService(db *mongo.Client, settings *SettingsService) *CommissionService {
	return &CommissionService{db: db, settings: settings}
}

// BuildTokenSaleRecords computes the commission ledger entries for a token
// sale. One record per ancestor whose role has a non-zero configured amount,
// the salesman included. Pure function; integrity gaps (broken referrer
// links) are returned as warnings, not errors.
func BuildTokenSaleRecords(customer models.Customer, salesman models.User, allUsers []models.User, settings *models.CommissionSettings) ([]models.IncomeRecord, []*utils.IntegrityWarning) {
	var warnings []*utils.IntegrityWarning

	chain, warn := utils.AncestorChain(salesman, allUsers, true)
	if warn != nil {
		warnings = append(warnings, warn)
	}

	now := time.Now()
	var records []models.IncomeRecord
	for _, ancestor := range chain {
		amount := settings.Amounts[ancestor.Role]
		if amount <= 0 {
			// No commission configured for this role. Deliberate no-op.
			continue
		}
		customerID := customer.ID
		records = append(records, models.IncomeRecord{
			ID:         primitive.NewObjectID(),
			UserID:     ancestor.ID,
			Amount:     amount,
			SourceType: models.IncomeSourceTokenSale,
			SaleDate:   customer.SaleDate,
			CustomerID: &customerID,
			CreatedAt:  now,
		})
	}
	return records, warnings
}

// BuildProductSaleRecords computes the commission ledger entries for a
// product sale. The tier is selected by sale price; each ancestor gets the
// tier's cash or installments amount for their role depending on the sale's
// payment method. A missing tier means no commission is configured for that
// price, which zeroes the whole distribution.
func BuildProductSaleRecords(sale models.ProductSale, salesman models.User, allUsers []models.User, settings *models.ProductCommissionSettings) ([]models.IncomeRecord, []*utils.IntegrityWarning) {
	var warnings []*utils.IntegrityWarning

	tier := utils.SelectTier(settings.Tiers, sale.Price)
	if tier == nil {
		warnings = append(warnings, utils.NewIntegrityWarning(
			"no commission tier configured for price %.2f (sale %s)", sale.Price, sale.ID.Hex()))
		return nil, warnings
	}

	chain, warn := utils.AncestorChain(salesman, allUsers, true)
	if warn != nil {
		warnings = append(warnings, warn)
	}

	now := time.Now()
	var records []models.IncomeRecord
	for _, ancestor := range chain {
		rate, ok := tier.Rates[ancestor.Role]
		if !ok {
			continue
		}
		amount := rate.Cash
		if sale.PaymentMethod == models.PaymentMethodInstallments {
			amount = rate.Installments
		}
		if amount <= 0 {
			continue
		}
		saleID := sale.ID
		customerID := sale.CustomerID
		records = append(records, models.IncomeRecord{
			ID:         primitive.NewObjectID(),
			UserID:     ancestor.ID,
			Amount:     amount,
			SourceType: models.IncomeSourceProductSale,
			SaleDate:   sale.SaleDate,
			CustomerID: &customerID,
			SaleID:     &saleID,
			CreatedAt:  now,
		})
	}
	return records, warnings
}

// ApproveTokenCommission distributes commission for a token sale. The
// customer's commissionStatus is re-read inside the transaction and must
// still be pending; a second approval fails with a conflict error and writes
// nothing.
func (s *CommissionService) ApproveTokenCommission(ctx context.Context, customerID primitive.ObjectID, actorID primitive.ObjectID) ([]models.IncomeRecord, error) {
	settings, err := s.settings.CommissionSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load commission settings: %w", err)
	}

	allUsers, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}

	session, err := s.db.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		customerColl := config.GetCollection(s.db, "customers")

		var customer models.Customer
		if err := customerColl.FindOne(sc, bson.M{"_id": customerID}).Decode(&customer); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, utils.NewValidationError("customerId", "customer not found")
			}
			return nil, err
		}
		if customer.CommissionStatus != models.CommissionStatusPending {
			return nil, utils.NewConflictError("commission for customer %s already processed (%s)",
				customerID.Hex(), customer.CommissionStatus)
		}

		salesman, ok := findUser(allUsers, customer.SalesmanID)
		if !ok {
			return nil, utils.NewValidationError("salesmanId", "registering salesman not found")
		}

		records, warnings := BuildTokenSaleRecords(customer, salesman, allUsers, settings)
		for _, w := range warnings {
			log.Printf("Integrity warning during token commission for %s: %s", customerID.Hex(), w.Message)
		}

		if err := s.insertRecords(sc, records); err != nil {
			return nil, err
		}

		_, err := customerColl.UpdateOne(sc, bson.M{"_id": customerID}, bson.M{"$set": bson.M{
			"commissionStatus": models.CommissionStatusApproved,
			"updatedAt":        time.Now(),
		}})
		if err != nil {
			return nil, err
		}
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	records, _ := result.([]models.IncomeRecord)
	return records, nil
}

// RejectTokenCommission marks a pending token sale's commission as rejected.
// No ledger entries are written.
func (s *CommissionService) RejectTokenCommission(ctx context.Context, customerID primitive.ObjectID, actorID primitive.ObjectID) error {
	session, err := s.db.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		customerColl := config.GetCollection(s.db, "customers")

		var customer models.Customer
		if err := customerColl.FindOne(sc, bson.M{"_id": customerID}).Decode(&customer); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, utils.NewValidationError("customerId", "customer not found")
			}
			return nil, err
		}
		if customer.CommissionStatus != models.CommissionStatusPending {
			return nil, utils.NewConflictError("commission for customer %s already processed (%s)",
				customerID.Hex(), customer.CommissionStatus)
		}

		_, err := customerColl.UpdateOne(sc, bson.M{"_id": customerID}, bson.M{"$set": bson.M{
			"commissionStatus": models.CommissionStatusRejected,
			"updatedAt":        time.Now(),
		}})
		return nil, err
	})
	return err
}

// ApproveProductCommission distributes commission for a product sale using
// the tiered product commission table. Same transactional gating as token
// sales; the sale's delivery status moves to pending delivery as part of the
// same write.
func (s *CommissionService) ApproveProductCommission(ctx context.Context, saleID primitive.ObjectID, actorID primitive.ObjectID) ([]models.IncomeRecord, error) {
	settings, err := s.settings.ProductCommissionSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load product commission settings: %w", err)
	}

	allUsers, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}

	session, err := s.db.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		saleColl := config.GetCollection(s.db, "productSales")

		var sale models.ProductSale
		if err := saleColl.FindOne(sc, bson.M{"_id": saleID}).Decode(&sale); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, utils.NewValidationError("saleId", "product sale not found")
			}
			return nil, err
		}
		if sale.CommissionStatus != models.CommissionStatusPending {
			return nil, utils.NewConflictError("commission for sale %s already processed (%s)",
				saleID.Hex(), sale.CommissionStatus)
		}

		salesman, ok := findUser(allUsers, sale.SalesmanID)
		if !ok {
			return nil, utils.NewValidationError("salesmanId", "selling salesman not found")
		}

		records, warnings := BuildProductSaleRecords(sale, salesman, allUsers, settings)
		for _, w := range warnings {
			log.Printf("Integrity warning during product commission for %s: %s", saleID.Hex(), w.Message)
		}

		if err := s.insertRecords(sc, records); err != nil {
			return nil, err
		}

		_, err := saleColl.UpdateOne(sc, bson.M{"_id": saleID}, bson.M{"$set": bson.M{
			"commissionStatus": models.CommissionStatusApproved,
			"deliveryStatus":   models.DeliveryStatusPending,
			"updatedAt":        time.Now(),
		}})
		if err != nil {
			return nil, err
		}
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	records, _ := result.([]models.IncomeRecord)
	return records, nil
}

// RejectProductCommission marks a pending product sale's commission as
// rejected without writing ledger entries.
func (s *CommissionService) RejectProductCommission(ctx context.Context, saleID primitive.ObjectID, actorID primitive.ObjectID) error {
	session, err := s.db.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		saleColl := config.GetCollection(s.db, "productSales")

		var sale models.ProductSale
		if err := saleColl.FindOne(sc, bson.M{"_id": saleID}).Decode(&sale); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, utils.NewValidationError("saleId", "product sale not found")
			}
			return nil, err
		}
		if sale.CommissionStatus != models.CommissionStatusPending {
			return nil, utils.NewConflictError("commission for sale %s already processed (%s)",
				saleID.Hex(), sale.CommissionStatus)
		}

		_, err := saleColl.UpdateOne(sc, bson.M{"_id": saleID}, bson.M{"$set": bson.M{
			"commissionStatus": models.CommissionStatusRejected,
			"updatedAt":        time.Now(),
		}})
		return nil, err
	})
	return err
}

// insertRecords writes the ledger entries and bumps each earner's running
// balance within the caller's transaction.
func (s *CommissionService) insertRecords(sc mongo.SessionContext, records []models.IncomeRecord) error {
	if len(records) == 0 {
		return nil
	}

	incomeColl := config.GetCollection(s.db, "incomeRecords")
	docs := make([]interface{}, len(records))
	for i, r := range records {
		docs[i] = r
	}
	if _, err := incomeColl.InsertMany(sc, docs); err != nil {
		return fmt.Errorf("failed to insert income records: %w", err)
	}

	userColl := config.GetCollection(s.db, "users")
	for _, r := range records {
		_, err := userColl.UpdateOne(sc, bson.M{"_id": r.UserID}, bson.M{
			"$inc": bson.M{"totalIncome": r.Amount},
			"$set": bson.M{"updatedAt": time.Now()},
		})
		if err != nil {
			return fmt.Errorf("failed to update balance for user %s: %w", r.UserID.Hex(), err)
		}
	}
	return nil
}

// loadUsers fetches the full user list for the in-memory hierarchy walk.
func (s *CommissionService) loadUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := config.GetCollection(s.db, "users").Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func findUser(users []models.User, id primitive.ObjectID) (models.User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}
