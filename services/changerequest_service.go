// services/changerequest_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/distrohq/backoffice_backend/config"
	"github.com/distrohq/backoffice_backend/models"
	"github.com/distrohq/backoffice_backend/utils"
)

// ChangeRequestService is the approval workflow shared by all five settings
// domains: submit creates a pending request snapshotting the live settings,
// approve applies the proposed settings atomically with the status flip,
// reject discards them. Super admins bypass the workflow and apply directly.
type ChangeRequestService struct {
	db       *mongo.Client
	settings *SettingsService
}

// NewChangeRequestService creates a new change request service.
func NewChangeRequestService(db *mongo.Client, settings *SettingsService) *ChangeRequestService {
	return &ChangeRequestService{db: db, settings: settings}
}

// SubmitResult reports the outcome of a settings change submission.
type SubmitResult struct {
	// Applied is true when the actor's role bypasses the workflow and the
	// settings were written directly.
	Applied bool                  `json:"applied"`
	Request *models.ChangeRequest `json:"request,omitempty"`
}

// Submit proposes new settings for a domain. Non-privileged roles get a
// pending change request; at most one may be pending per domain, a second
// submission fails with a conflict error. Super admin roles apply the change
// immediately without a request.
func (s *ChangeRequestService) Submit(ctx context.Context, domain models.SettingsDomain, actor models.User, payload interface{}) (*SubmitResult, error) {
	if !domain.IsValid() {
		return nil, utils.NewValidationError("domain", fmt.Sprintf("unknown settings domain %q", domain))
	}

	rawPayload, err := bson.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings payload: %w", err)
	}
	newSettings := bson.Raw(rawPayload)

	if err := ValidateSettingsPayload(domain, newSettings); err != nil {
		return nil, err
	}

	if actor.Role.BypassesApproval() {
		if err := s.applySettings(ctx, domain, newSettings, -1, actor.ID); err != nil {
			return nil, err
		}
		s.settings.Invalidate(domain)
		return &SubmitResult{Applied: true}, nil
	}

	session, err := s.db.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		requestColl := config.GetCollection(s.db, "changeRequests")

		count, err := requestColl.CountDocuments(sc, bson.M{
			"domain": domain,
			"status": models.RequestStatusPending,
		})
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, utils.NewConflictError("a pending %s change request already exists", domain)
		}

		currentRaw, version, err := s.settings.Raw(sc, domain)
		if err != nil {
			return nil, err
		}

		request := models.ChangeRequest{
			ID:              primitive.NewObjectID(),
			Domain:          domain,
			RequestedByID:   actor.ID,
			RequestedByName: actor.FullName,
			RequestDate:     time.Now(),
			CurrentSettings: currentRaw,
			NewSettings:     newSettings,
			SettingsVersion: version,
			Status:          models.RequestStatusPending,
		}
		if _, err := requestColl.InsertOne(sc, request); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				// Lost the race against a concurrent submission; the partial
				// unique index on {domain, status:pending} backstops the
				// count check above.
				return nil, utils.NewConflictError("a pending %s change request already exists", domain)
			}
			return nil, err
		}
		return &request, nil
	})
	if err != nil {
		return nil, err
	}
	return &SubmitResult{Request: result.(*models.ChangeRequest)}, nil
}

// Approve applies a pending request's proposed settings and marks it
// approved, in one transaction. The live settings must still be at the
// version snapshotted at submit time, otherwise the approval fails with a
// conflict and the request stays pending.
func (s *ChangeRequestService) Approve(ctx context.Context, requestID primitive.ObjectID, resolver models.User) (*models.ChangeRequest, error) {
	request, err := s.resolve(ctx, requestID, resolver, models.RequestStatusApproved)
	if err != nil {
		return nil, err
	}
	s.settings.Invalidate(request.Domain)
	return request, nil
}

// Reject marks a pending request rejected. Live settings are untouched.
func (s *ChangeRequestService) Reject(ctx context.Context, requestID primitive.ObjectID, resolver models.User) (*models.ChangeRequest, error) {
	return s.resolve(ctx, requestID, resolver, models.RequestStatusRejected)
}

func (s *ChangeRequestService) resolve(ctx context.Context, requestID primitive.ObjectID, resolver models.User, newStatus string) (*models.ChangeRequest, error) {
	if !resolver.Role.CanResolveRequests() {
		return nil, utils.NewValidationError("role", "role may not resolve change requests")
	}

	session, err := s.db.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		requestColl := config.GetCollection(s.db, "changeRequests")

		var request models.ChangeRequest
		if err := requestColl.FindOne(sc, bson.M{"_id": requestID}).Decode(&request); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, utils.NewValidationError("requestId", "change request not found")
			}
			return nil, err
		}
		if request.Status != models.RequestStatusPending {
			return nil, utils.NewConflictError("change request %s already resolved (%s)",
				requestID.Hex(), request.Status)
		}

		if newStatus == models.RequestStatusApproved {
			if err := s.applySettings(sc, request.Domain, request.NewSettings, request.SettingsVersion, resolver.ID); err != nil {
				return nil, err
			}
		}

		now := time.Now()
		request.Status = newStatus
		request.ResolvedByID = &resolver.ID
		request.ResolvedDate = &now
		_, err := requestColl.UpdateOne(sc, bson.M{"_id": requestID}, bson.M{"$set": bson.M{
			"status":       newStatus,
			"resolvedById": resolver.ID,
			"resolvedDate": now,
		}})
		if err != nil {
			return nil, err
		}
		return &request, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.ChangeRequest), nil
}

// PendingRequests lists all pending change requests across domains.
func (s *ChangeRequestService) PendingRequests(ctx context.Context) ([]models.ChangeRequest, error) {
	cursor, err := config.GetCollection(s.db, "changeRequests").Find(ctx,
		bson.M{"status": models.RequestStatusPending},
		options.Find().SetSort(bson.D{{Key: "requestDate", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []models.ChangeRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// RequestHistory lists resolved and pending requests for one domain, newest
// first.
func (s *ChangeRequestService) RequestHistory(ctx context.Context, domain models.SettingsDomain) ([]models.ChangeRequest, error) {
	cursor, err := config.GetCollection(s.db, "changeRequests").Find(ctx,
		bson.M{"domain": domain},
		options.Find().SetSort(bson.D{{Key: "requestDate", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []models.ChangeRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// applySettings writes a proposed payload over the live settings document.
// expectedVersion >= 0 demands the live document still carries that version
// (optimistic precondition); -1 skips the check for the super admin direct
// path. The version is bumped on every write.
func (s *ChangeRequestService) applySettings(ctx context.Context, domain models.SettingsDomain, payload bson.Raw, expectedVersion int64, actorID primitive.ObjectID) error {
	collName, ok := settingsCollections[domain]
	if !ok {
		return fmt.Errorf("unknown settings domain: %s", domain)
	}

	var fields bson.M
	if err := bson.Unmarshal(payload, &fields); err != nil {
		return fmt.Errorf("failed to decode settings payload: %w", err)
	}
	// Bookkeeping fields are owned by this write, not the payload.
	delete(fields, "_id")
	delete(fields, "version")
	delete(fields, "updatedBy")
	delete(fields, "updatedAt")
	fields["updatedBy"] = actorID
	fields["updatedAt"] = time.Now()

	coll := config.GetCollection(s.db, collName)
	update := bson.M{
		"$set": fields,
		"$inc": bson.M{"version": 1},
	}

	if expectedVersion < 0 {
		// Super admin direct path: no precondition, create on first write.
		_, err := coll.UpdateOne(ctx, bson.M{}, update, options.Update().SetUpsert(true))
		return err
	}

	result, err := coll.UpdateOne(ctx, bson.M{"version": expectedVersion}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		if expectedVersion == 0 {
			// The snapshot was taken before any settings document existed,
			// so this may simply be the first write for the domain.
			count, countErr := coll.CountDocuments(ctx, bson.M{})
			if countErr != nil {
				return countErr
			}
			if count == 0 {
				fields["version"] = int64(1)
				_, insErr := coll.InsertOne(ctx, fields)
				return insErr
			}
		}
		return utils.NewConflictError("%s settings changed since the request was submitted", domain)
	}
	return nil
}
