// services/settings_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/distrohq/backoffice_backend/config"
	"github.com/distrohq/backoffice_backend/models"
)

// settingsCollections maps each settings domain to its live document
// collection. Every collection holds exactly one document.
var settingsCollections = map[models.SettingsDomain]string{
	models.DomainCommission:        "commissionSettings",
	models.DomainSalary:            "salarySettings",
	models.DomainIncentive:         "incentiveSettings",
	models.DomainSignupRole:        "signupRoleSettings",
	models.DomainProductCommission: "productCommissionSettings",
}

const settingsCacheTTL = 5 * time.Minute

// SettingsService reads the live settings documents, with a Redis cache in
// front that gets invalidated whenever a change request is approved or a
// super admin applies a change directly.
type SettingsService struct {
	db    *mongo.Client
	cache *redis.Client
}

// NewSettingsService creates a new settings service. The cache client may be
// nil; reads then always go to the database.
func NewSettingsService(db *mongo.Client, cache *redis.Client) *SettingsService {
	return &SettingsService{db: db, cache: cache}
}

// CommissionSettings returns the live token commission settings. A missing
// document means nothing is configured yet and yields empty settings.
func (s *SettingsService) CommissionSettings(ctx context.Context) (*models.CommissionSettings, error) {
	var settings models.CommissionSettings
	if err := s.load(ctx, models.DomainCommission, &settings); err != nil {
		return nil, err
	}
	if settings.Amounts == nil {
		settings.Amounts = map[models.Role]float64{}
	}
	return &settings, nil
}

// ProductCommissionSettings returns the live tiered product commission table.
func (s *SettingsService) ProductCommissionSettings(ctx context.Context) (*models.ProductCommissionSettings, error) {
	var settings models.ProductCommissionSettings
	if err := s.load(ctx, models.DomainProductCommission, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// IncentiveSettings returns the live incentive ladders.
func (s *SettingsService) IncentiveSettings(ctx context.Context) (*models.IncentiveSettings, error) {
	var settings models.IncentiveSettings
	if err := s.load(ctx, models.DomainIncentive, &settings); err != nil {
		return nil, err
	}
	if settings.Ladders == nil {
		settings.Ladders = map[string][]models.IncentiveTier{}
	}
	return &settings, nil
}

// SalarySettings returns the live per-role base salaries.
func (s *SettingsService) SalarySettings(ctx context.Context) (*models.SalarySettings, error) {
	var settings models.SalarySettings
	if err := s.load(ctx, models.DomainSalary, &settings); err != nil {
		return nil, err
	}
	if settings.Salaries == nil {
		settings.Salaries = map[models.Role]float64{}
	}
	return &settings, nil
}

// SignupRoleSettings returns the live signup role visibility settings.
func (s *SettingsService) SignupRoleSettings(ctx context.Context) (*models.SignupRoleSettings, error) {
	var settings models.SignupRoleSettings
	if err := s.load(ctx, models.DomainSignupRole, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Raw returns the live settings document for a domain as raw BSON plus its
// version, for snapshotting into a change request. A missing document
// returns an empty raw value and version 0.
func (s *SettingsService) Raw(ctx context.Context, domain models.SettingsDomain) (bson.Raw, int64, error) {
	collName, ok := settingsCollections[domain]
	if !ok {
		return nil, 0, fmt.Errorf("unknown settings domain: %s", domain)
	}

	var doc bson.Raw
	err := config.GetCollection(s.db, collName).FindOne(ctx, bson.M{}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}

	version := int64(0)
	if v, verr := doc.LookupErr("version"); verr == nil {
		version, _ = v.AsInt64OK()
	}
	return doc, version, nil
}

// Invalidate drops a domain's cache entry after its live settings change.
func (s *SettingsService) Invalidate(domain models.SettingsDomain) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(context.Background(), settingsCacheKey(domain)).Err(); err != nil {
		log.Printf("Failed to invalidate settings cache for %s: %v", domain, err)
	}
}

func settingsCacheKey(domain models.SettingsDomain) string {
	return "settings:" + string(domain)
}

// load fetches a settings document into out, consulting Redis first. Cache
// misses, broken cache entries and Redis outages all fall through to Mongo.
func (s *SettingsService) load(ctx context.Context, domain models.SettingsDomain, out interface{}) error {
	collName, ok := settingsCollections[domain]
	if !ok {
		return fmt.Errorf("unknown settings domain: %s", domain)
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, settingsCacheKey(domain)).Result()
		if err == nil {
			if jsonErr := json.Unmarshal([]byte(cached), out); jsonErr == nil {
				return nil
			}
			log.Printf("Dropping corrupt settings cache entry for %s", domain)
			s.cache.Del(ctx, settingsCacheKey(domain))
		}
	}

	err := config.GetCollection(s.db, collName).FindOne(ctx, bson.M{}).Decode(out)
	if err != nil && err != mongo.ErrNoDocuments {
		return fmt.Errorf("failed to load %s settings: %w", domain, err)
	}

	if s.cache != nil {
		if encoded, jsonErr := json.Marshal(out); jsonErr == nil {
			s.cache.Set(ctx, settingsCacheKey(domain), encoded, settingsCacheTTL)
		}
	}
	return nil
}
