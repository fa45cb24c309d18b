package service

import (
	"context"

	"gecko_rack/internal/domain"

	"gorm.io/gorm"
)

// AlertService lists geckos whose care is overdue under an alert policy.
type AlertService struct {
	db     *gorm.DB
	policy domain.AlertPolicy
	now    Clock
}

func NewAlertService(db *gorm.DB, policy domain.AlertPolicy, now Clock) *AlertService {
	if db == nil {
		panic("database connection cannot be nil for AlertService")
	}
	if now == nil {
		now = utcNow
	}
	if policy.Threshold <= 0 {
		policy = domain.NewAlertPolicy(policy.Name, 0)
	}
	return &AlertService{db: db, policy: policy, now: now}
}

// Policy is the policy alerts are evaluated with.
func (s *AlertService) Policy() domain.AlertPolicy { return s.policy }

// List returns one alert per gecko of the owner with at least one overdue category.
func (s *AlertService) List(ctx context.Context, owner Owner) ([]domain.Alert, error) {
	tx := s.db.WithContext(ctx)
	var geckos []domain.Gecko
	if err := tx.Preload("Rack").Where("rack_id IN (?)", ownedRackIDs(tx, owner)).Order("id").Find(&geckos).Error; err != nil {
		return nil, err
	}
	ids := make([]uint, len(geckos))
	for i := range geckos {
		ids[i] = geckos[i].ID
	}
	last, err := latestCare(tx, ids)
	if err != nil {
		return nil, err
	}
	now := s.now()
	alerts := make([]domain.Alert, 0)
	for i := range geckos {
		g := &geckos[i]
		g.Status = domain.DeriveStatus(last[g.ID], now, s.policy.Threshold)
		if alert, ok := s.policy.Evaluate(g, last[g.ID], now); ok {
			alerts = append(alerts, alert)
		}
	}
	return alerts, nil
}
