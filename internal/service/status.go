package service

import (
	"context"
	"fmt"
	"time"

	"gecko_rack/internal/domain"
	"gecko_rack/internal/storage"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Clock returns the current time; services take one so tests can pin "now".
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// trackedCare are the categories status and alerts are derived from.
var trackedCare = []domain.CareType{domain.CareFeeding, domain.CareCleaning, domain.CareWater}

// latestCare returns, per gecko, the time of the newest log of each tracked type.
func latestCare(tx *gorm.DB, geckoIDs []uint) (map[uint]domain.LastCare, error) {
	out := make(map[uint]domain.LastCare, len(geckoIDs))
	if len(geckoIDs) == 0 {
		return out, nil
	}
	newest := tx.Model(&domain.CareLog{}).
		Select("gecko_id, type, MAX(created_at) AS last_at").
		Where("gecko_id IN ? AND type IN ?", geckoIDs, trackedCare).
		Group("gecko_id, type")
	var logs []domain.CareLog
	err := tx.Table("care_logs AS c").
		Select("c.gecko_id, c.type, c.created_at").
		Joins("JOIN (?) AS latest ON latest.gecko_id = c.gecko_id AND latest.type = c.type AND latest.last_at = c.created_at", newest).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("latest care logs: %w", err)
	}
	for _, l := range logs {
		if out[l.GeckoID] == nil {
			out[l.GeckoID] = domain.LastCare{}
		}
		out[l.GeckoID][l.Type] = l.CreatedAt
	}
	return out, nil
}

// withStatus fills the derived Status of every gecko in place.
func withStatus(tx *gorm.DB, geckos []domain.Gecko, now time.Time, threshold time.Duration) error {
	ids := make([]uint, len(geckos))
	for i := range geckos {
		ids[i] = geckos[i].ID
	}
	last, err := latestCare(tx, ids)
	if err != nil {
		return err
	}
	for i := range geckos {
		geckos[i].Status = domain.DeriveStatus(last[geckos[i].ID], now, threshold)
	}
	return nil
}

// deleteGeckoRows removes geckos with their logs and photos and returns the photo
// URLs whose files must be removed once the transaction commits.
func deleteGeckoRows(tx *gorm.DB, geckoIDs []uint) ([]string, error) {
	if len(geckoIDs) == 0 {
		return nil, nil
	}
	var urls []string
	if err := tx.Model(&domain.Photo{}).Where("gecko_id IN ?", geckoIDs).Pluck("url", &urls).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("gecko_id IN ?", geckoIDs).Delete(&domain.Photo{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("gecko_id IN ?", geckoIDs).Delete(&domain.CareLog{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("id IN ?", geckoIDs).Delete(&domain.Gecko{}).Error; err != nil {
		return nil, err
	}
	return urls, nil
}

// removeFiles deletes stored images after their rows are gone. Failures only leave
// orphaned files behind, so they are logged and not returned.
func removeFiles(ctx context.Context, store storage.ImageStore, urls []string) {
	if store == nil {
		return
	}
	for _, url := range urls {
		if err := store.Remove(ctx, url); err != nil {
			logrus.WithFields(logrus.Fields{"url": url, "error": err.Error()}).Warn("Failed to remove image file")
		}
	}
}
