// services/salary_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/distrohq/backoffice_backend/config"
	"github.com/distrohq/backoffice_backend/models"
	"github.com/distrohq/backoffice_backend/utils"
)

// SalaryService runs monthly payroll and reverses payout batches. A partial
// unique index on the payout period guarantees at most one non-reversed
// batch per calendar month, so re-triggering a run cannot double-pay.
type SalaryService struct {
	db       *mongo.Client
	settings *SettingsService
}

// NewSalaryService creates a new salary service.
func NewSalaryService(db *mongo.Client, settings *SettingsService) *SalaryService {
	return &SalaryService{db: db, settings: settings}
}

// PeriodOf formats a payout period as "YYYY-MM".
func PeriodOf(t time.Time) string {
	return t.Format("2006-01")
}

// BuildSalaryRun computes the ledger entries and batch summary for one
// payroll run: one salary record per enabled user whose role has a
// configured base salary. Pure function.
func BuildSalaryRun(settings *models.SalarySettings, users []models.User, period string, payoutID string, processedBy primitive.ObjectID, now time.Time) ([]models.IncomeRecord, models.MonthlySalaryPayout) {
	var records []models.IncomeRecord
	var total float64

	for _, user := range users {
		if user.IsDisabled {
			continue
		}
		salary := settings.Salaries[user.Role]
		if salary <= 0 {
			continue
		}
		records = append(records, models.IncomeRecord{
			ID:         primitive.NewObjectID(),
			UserID:     user.ID,
			Amount:     salary,
			SourceType: models.IncomeSourceSalary,
			SaleDate:   now,
			PayoutID:   payoutID,
			Note:       "salary " + period,
			CreatedAt:  now,
		})
		total += salary
	}

	batch := models.MonthlySalaryPayout{
		ID:              primitive.NewObjectID(),
		PayoutID:        payoutID,
		Period:          period,
		ProcessedBy:     processedBy,
		TotalUsersPaid:  len(records),
		TotalAmountPaid: total,
		PayoutDate:      now,
		IsReversed:      false,
	}
	return records, batch
}

// ProcessSalaries pays every salaried user their role's base salary for the
// current month. The whole run is one transaction: the batch summary, all
// ledger entries and all balance increments commit together or not at all. A
// second run for the same month fails with a conflict error.
func (s *SalaryService) ProcessSalaries(ctx context.Context, actorID primitive.ObjectID) (*models.SalaryRunResult, error) {
	settings, err := s.settings.SalarySettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load salary settings: %w", err)
	}
	if len(settings.Salaries) == 0 {
		return nil, utils.NewValidationError("salarySettings", "no base salaries configured")
	}

	cursor, err := config.GetCollection(s.db, "users").Find(ctx, bson.M{"isDisabled": false})
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	now := time.Now()
	period := PeriodOf(now)
	payoutID := uuid.NewString()

	records, batch := BuildSalaryRun(settings, users, period, payoutID, actorID, now)
	if len(records) == 0 {
		return nil, utils.NewValidationError("users", "no eligible users to pay")
	}

	session, err := s.db.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		payoutColl := config.GetCollection(s.db, "monthlySalaryPayouts")

		count, err := payoutColl.CountDocuments(sc, bson.M{"period": period, "isReversed": false})
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, utils.NewConflictError("salaries for %s have already been paid", period)
		}

		if _, err := payoutColl.InsertOne(sc, batch); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, utils.NewConflictError("salaries for %s have already been paid", period)
			}
			return nil, err
		}

		incomeColl := config.GetCollection(s.db, "incomeRecords")
		docs := make([]interface{}, len(records))
		for i, r := range records {
			docs[i] = r
		}
		if _, err := incomeColl.InsertMany(sc, docs); err != nil {
			return nil, err
		}

		userColl := config.GetCollection(s.db, "users")
		for _, r := range records {
			_, err := userColl.UpdateOne(sc, bson.M{"_id": r.UserID}, bson.M{
				"$inc": bson.M{"totalIncome": r.Amount},
				"$set": bson.M{"updatedAt": now},
			})
			if err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	return &models.SalaryRunResult{
		PayoutID:    payoutID,
		Period:      period,
		UsersPaid:   batch.TotalUsersPaid,
		TotalAmount: batch.TotalAmountPaid,
	}, nil
}

// ReverseSalaryPayout deletes every ledger entry of a payout batch, rolls
// each affected balance back, and marks the batch reversed. All-or-nothing:
// a failure mid-way aborts the transaction and leaves the batch untouched.
func (s *SalaryService) ReverseSalaryPayout(ctx context.Context, batchID primitive.ObjectID, actorID primitive.ObjectID) (*models.MonthlySalaryPayout, error) {
	session, err := s.db.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		payoutColl := config.GetCollection(s.db, "monthlySalaryPayouts")

		var batch models.MonthlySalaryPayout
		if err := payoutColl.FindOne(sc, bson.M{"_id": batchID}).Decode(&batch); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, utils.NewValidationError("payoutId", "payout batch not found")
			}
			return nil, err
		}
		if batch.IsReversed {
			return nil, utils.NewConflictError("payout batch %s is already reversed", batchID.Hex())
		}

		incomeColl := config.GetCollection(s.db, "incomeRecords")
		cursor, err := incomeColl.Find(sc, bson.M{"payoutId": batch.PayoutID})
		if err != nil {
			return nil, err
		}
		var records []models.IncomeRecord
		if err := cursor.All(sc, &records); err != nil {
			return nil, err
		}

		now := time.Now()
		userColl := config.GetCollection(s.db, "users")
		for _, r := range records {
			_, err := userColl.UpdateOne(sc, bson.M{"_id": r.UserID}, bson.M{
				"$inc": bson.M{"totalIncome": -r.Amount},
				"$set": bson.M{"updatedAt": now},
			})
			if err != nil {
				return nil, err
			}
		}

		if _, err := incomeColl.DeleteMany(sc, bson.M{"payoutId": batch.PayoutID}); err != nil {
			return nil, err
		}

		batch.IsReversed = true
		batch.ReversedBy = actorID
		batch.ReversedAt = &now
		_, err = payoutColl.UpdateOne(sc, bson.M{"_id": batchID}, bson.M{"$set": bson.M{
			"isReversed": true,
			"reversedBy": actorID,
			"reversedAt": now,
		}})
		if err != nil {
			return nil, err
		}
		return &batch, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.MonthlySalaryPayout), nil
}

// ListPayouts returns payout batches, newest first.
func (s *SalaryService) ListPayouts(ctx context.Context) ([]models.MonthlySalaryPayout, error) {
	cursor, err := config.GetCollection(s.db, "monthlySalaryPayouts").Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "payoutDate", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var payouts []models.MonthlySalaryPayout
	if err := cursor.All(ctx, &payouts); err != nil {
		return nil, err
	}
	return payouts, nil
}
