package service

import (
	"errors"
	"fmt"

	"gecko_rack/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Owner is the capability every operation receives: the authenticated user on whose
// behalf it runs. Resources are visible only when their transitive owner matches.
type Owner struct {
	UserID uint
}

// ownedRackIDs is a subquery selecting the ids of the owner's racks.
func ownedRackIDs(tx *gorm.DB, owner Owner) *gorm.DB {
	return tx.Model(&domain.Rack{}).Select("id").Where("user_id = ?", owner.UserID)
}

// ownedGeckoIDs is a subquery selecting the ids of the owner's geckos.
func ownedGeckoIDs(tx *gorm.DB, owner Owner) *gorm.DB {
	return tx.Model(&domain.Gecko{}).Select("id").Where("rack_id IN (?)", ownedRackIDs(tx, owner))
}

func lockIf(tx *gorm.DB, lock bool) *gorm.DB {
	if lock {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func authorizeRack(tx *gorm.DB, owner Owner, rackID uint, lock bool) (*domain.Rack, error) {
	var rack domain.Rack
	err := lockIf(tx, lock).Where("id = ? AND user_id = ?", rackID, owner.UserID).First(&rack).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("rack not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load rack %d: %w", rackID, err)
	}
	return &rack, nil
}

func authorizeGecko(tx *gorm.DB, owner Owner, geckoID uint, lock bool) (*domain.Gecko, error) {
	var gecko domain.Gecko
	err := lockIf(tx, lock).Where("id = ? AND rack_id IN (?)", geckoID, ownedRackIDs(tx, owner)).First(&gecko).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("gecko not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load gecko %d: %w", geckoID, err)
	}
	return &gecko, nil
}

func authorizeCareLog(tx *gorm.DB, owner Owner, logID uint) (*domain.CareLog, error) {
	var log domain.CareLog
	err := tx.Where("id = ? AND gecko_id IN (?)", logID, ownedGeckoIDs(tx, owner)).First(&log).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("care log not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load care log %d: %w", logID, err)
	}
	return &log, nil
}

func authorizePhoto(tx *gorm.DB, owner Owner, photoID uint) (*domain.Photo, error) {
	var photo domain.Photo
	err := tx.Where("id = ? AND gecko_id IN (?)", photoID, ownedGeckoIDs(tx, owner)).First(&photo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("photo not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load photo %d: %w", photoID, err)
	}
	return &photo, nil
}
