package service

import (
	"context"
	"time"

	"gecko_rack/internal/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CareLogService records care events. Logs are append-only; the only mutation
// after insert is deletion.
type CareLogService struct {
	db  *gorm.DB
	now Clock
}

func NewCareLogService(db *gorm.DB, now Clock) *CareLogService {
	if db == nil {
		panic("database connection cannot be nil for CareLogService")
	}
	if now == nil {
		now = utcNow
	}
	return &CareLogService{db: db, now: now}
}

// CareLogInput describes a new log. A nil CreatedAt means now.
type CareLogInput struct {
	Type      domain.CareType
	Note      *string
	Value     *string
	CreatedAt *time.Time
}

// List returns a gecko's logs, newest first.
func (s *CareLogService) List(ctx context.Context, owner Owner, geckoID uint) ([]domain.CareLog, error) {
	tx := s.db.WithContext(ctx)
	if _, err := authorizeGecko(tx, owner, geckoID, false); err != nil {
		return nil, err
	}
	var logs []domain.CareLog
	if err := tx.Where("gecko_id = ?", geckoID).Order("created_at DESC, id DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// Append stores a new log for one of the owner's geckos.
func (s *CareLogService) Append(ctx context.Context, owner Owner, geckoID uint, in CareLogInput) (*domain.CareLog, error) {
	if !in.Type.Valid() {
		return nil, validationf("unknown care log type %q", in.Type)
	}
	tx := s.db.WithContext(ctx)
	if _, err := authorizeGecko(tx, owner, geckoID, false); err != nil {
		return nil, err
	}
	at := s.now()
	if in.CreatedAt != nil {
		at = *in.CreatedAt
	}
	log := domain.CareLog{
		GeckoID:   geckoID,
		Type:      in.Type,
		Note:      in.Note,
		Value:     in.Value,
		CreatedAt: at.UTC(), // one zone keeps MAX(created_at) ordering correct on text-backed stores
	}
	if err := tx.Create(&log).Error; err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":  owner.UserID,
		"gecko_id": geckoID,
		"log_id":   log.ID,
		"type":     log.Type,
	}).Info("Care log created")
	return &log, nil
}

// Delete removes one of the owner's logs.
func (s *CareLogService) Delete(ctx context.Context, owner Owner, logID uint) error {
	tx := s.db.WithContext(ctx)
	log, err := authorizeCareLog(tx, owner, logID)
	if err != nil {
		return err
	}
	if err := tx.Delete(log).Error; err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"user_id": owner.UserID, "log_id": logID}).Info("Care log deleted")
	return nil
}

// Weights returns the gecko's weight series from WEIGHT logs, oldest first.
// Logs whose value does not read as grams are skipped.
func (s *CareLogService) Weights(ctx context.Context, owner Owner, geckoID uint) ([]domain.WeightPoint, error) {
	tx := s.db.WithContext(ctx)
	if _, err := authorizeGecko(tx, owner, geckoID, false); err != nil {
		return nil, err
	}
	var logs []domain.CareLog
	if err := tx.Where("gecko_id = ? AND type = ?", geckoID, domain.CareWeight).Order("created_at ASC, id ASC").Find(&logs).Error; err != nil {
		return nil, err
	}
	points := make([]domain.WeightPoint, 0, len(logs))
	for _, l := range logs {
		if l.Value == nil {
			continue
		}
		if grams, ok := domain.ParseGrams(*l.Value); ok {
			points = append(points, domain.WeightPoint{Date: l.CreatedAt, Weight: grams})
		}
	}
	return points, nil
}
