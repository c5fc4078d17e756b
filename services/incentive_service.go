// services/incentive_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/distrohq/backoffice_backend/config"
	"github.com/distrohq/backoffice_backend/models"
	"github.com/distrohq/backoffice_backend/utils"
)

// IncentiveService awards monthly sales incentives. A user's approved token
// sales for the period are counted against their role's (or salesman
// stage's) target ladder; the highest achieved tier pays out as an ad-hoc
// ledger entry.
type IncentiveService struct {
	db       *mongo.Client
	settings *SettingsService
}

// NewIncentiveService creates a new incentive service.
func NewIncentiveService(db *mongo.Client, settings *SettingsService) *IncentiveService {
	return &IncentiveService{db: db, settings: settings}
}

// IncentiveAward reports one user's award for a period.
type IncentiveAward struct {
	UserID    primitive.ObjectID `json:"userId"`
	UserName  string             `json:"userName"`
	Period    string             `json:"period"`
	SalesMade int                `json:"salesMade"`
	Target    int                `json:"target"`
	Amount    float64            `json:"amount"`
}

// AwardIncentive evaluates and pays one user's incentive for a period
// ("YYYY-MM"). Paying the same user twice for one period fails with a
// conflict error; users below every target get no record and no error, just
// a zero award.
func (s *IncentiveService) AwardIncentive(ctx context.Context, userID primitive.ObjectID, period string, actorID primitive.ObjectID) (*IncentiveAward, error) {
	periodStart, periodEnd, err := periodBounds(period)
	if err != nil {
		return nil, utils.NewValidationError("period", err.Error())
	}

	var user models.User
	if err := config.GetCollection(s.db, "users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewValidationError("userId", "user not found")
		}
		return nil, err
	}

	settings, err := s.settings.IncentiveSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load incentive settings: %w", err)
	}
	ladder := settings.Ladders[models.IncentiveKey(user.Role, user.SalesmanStage)]
	if len(ladder) == 0 {
		return nil, utils.NewValidationError("role", fmt.Sprintf("no incentive ladder configured for %s", user.Role))
	}

	salesCount, err := s.countApprovedSales(ctx, userID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	award := &IncentiveAward{
		UserID:    user.ID,
		UserName:  user.FullName,
		Period:    period,
		SalesMade: salesCount,
	}

	achieved := utils.EvaluateIncentive(ladder, salesCount)
	if achieved == nil {
		// Below every target: nothing to pay.
		return award, nil
	}
	award.Target = achieved.Target
	award.Amount = achieved.Incentive

	note := "incentive " + period

	session, err := s.db.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		incomeColl := config.GetCollection(s.db, "incomeRecords")

		count, err := incomeColl.CountDocuments(sc, bson.M{
			"userId":     userID,
			"sourceType": models.IncomeSourceAdhoc,
			"note":       note,
		})
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, utils.NewConflictError("incentive for %s already awarded to user %s", period, userID.Hex())
		}

		now := time.Now()
		record := models.IncomeRecord{
			ID:         primitive.NewObjectID(),
			UserID:     userID,
			Amount:     achieved.Incentive,
			SourceType: models.IncomeSourceAdhoc,
			SaleDate:   now,
			Note:       note,
			CreatedAt:  now,
		}
		if _, err := incomeColl.InsertOne(sc, record); err != nil {
			return nil, err
		}

		_, err = config.GetCollection(s.db, "users").UpdateOne(sc, bson.M{"_id": userID}, bson.M{
			"$inc": bson.M{"totalIncome": achieved.Incentive},
			"$set": bson.M{"updatedAt": now},
		})
		return nil, err
	})
	if err != nil {
		return nil, err
	}
	return award, nil
}

// countApprovedSales counts a salesman's approved token sales in a period.
func (s *IncentiveService) countApprovedSales(ctx context.Context, userID primitive.ObjectID, from, to time.Time) (int, error) {
	count, err := config.GetCollection(s.db, "customers").CountDocuments(ctx, bson.M{
		"salesmanId":       userID,
		"commissionStatus": models.CommissionStatusApproved,
		"saleDate":         bson.M{"$gte": from, "$lt": to},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count sales: %w", err)
	}
	return int(count), nil
}

func periodBounds(period string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", period)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("period must be formatted YYYY-MM")
	}
	return start, start.AddDate(0, 1, 0), nil
}
