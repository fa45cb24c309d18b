package service

import (
	"context"
	"errors"
	"time"

	"gecko_rack/internal/domain"
	"gecko_rack/internal/storage"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PhotoService manages the gallery of each gecko. A gecko has at most one main
// photo and its photoUrl always mirrors it.
type PhotoService struct {
	db    *gorm.DB
	store storage.ImageStore
	now   Clock
}

func NewPhotoService(db *gorm.DB, store storage.ImageStore, now Clock) *PhotoService {
	if db == nil {
		panic("database connection cannot be nil for PhotoService")
	}
	if store == nil {
		panic("image store cannot be nil for PhotoService")
	}
	if now == nil {
		now = utcNow
	}
	return &PhotoService{db: db, store: store, now: now}
}

// List returns a gecko's photos, most recently taken first.
func (s *PhotoService) List(ctx context.Context, owner Owner, geckoID uint) ([]domain.Photo, error) {
	tx := s.db.WithContext(ctx)
	if _, err := authorizeGecko(tx, owner, geckoID, false); err != nil {
		return nil, err
	}
	var photos []domain.Photo
	if err := tx.Where("gecko_id = ?", geckoID).Order("taken_at DESC, id DESC").Find(&photos).Error; err != nil {
		return nil, err
	}
	return photos, nil
}

// Add compresses and stores an upload. The first photo of a gecko becomes main.
func (s *PhotoService) Add(ctx context.Context, owner Owner, geckoID uint, data []byte, takenAt *time.Time) (*domain.Photo, error) {
	if len(data) == 0 {
		return nil, validationf("photo file is required")
	}
	if _, err := authorizeGecko(s.db.WithContext(ctx), owner, geckoID, false); err != nil {
		return nil, err
	}
	url, err := s.store.Save(ctx, data)
	if errors.Is(err, storage.ErrUnsupportedImage) {
		return nil, validationf("%s", err.Error())
	}
	if err != nil {
		return nil, err
	}
	at := s.now()
	if takenAt != nil {
		at = *takenAt
	}
	photo := domain.Photo{GeckoID: geckoID, URL: url, TakenAt: at.UTC()}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Locking the gecko serialises concurrent first uploads.
		gecko, err := authorizeGecko(tx, owner, geckoID, true)
		if err != nil {
			return err
		}
		var existing int64
		if err := tx.Model(&domain.Photo{}).Where("gecko_id = ?", gecko.ID).Count(&existing).Error; err != nil {
			return err
		}
		photo.IsMain = existing == 0
		if err := tx.Create(&photo).Error; err != nil {
			return err
		}
		if photo.IsMain {
			return tx.Model(gecko).Update("photo_url", photo.URL).Error
		}
		return nil
	})
	if err != nil {
		removeFiles(ctx, s.store, []string{url})
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":  owner.UserID,
		"gecko_id": geckoID,
		"photo_id": photo.ID,
		"is_main":  photo.IsMain,
	}).Info("Photo added")
	return &photo, nil
}

// SetMain makes a photo the gecko's main photo.
func (s *PhotoService) SetMain(ctx context.Context, owner Owner, photoID uint) (*domain.Photo, error) {
	var photo *domain.Photo
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var (
			gecko *domain.Gecko
			err   error
		)
		if photo, gecko, err = lockPhoto(tx, owner, photoID); err != nil {
			return err
		}
		if err := tx.Model(&domain.Photo{}).Where("gecko_id = ? AND id <> ?", gecko.ID, photo.ID).Update("is_main", false).Error; err != nil {
			return err
		}
		res := tx.Model(photo).Update("is_main", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFoundf("photo not found")
		}
		photo.IsMain = true
		return tx.Model(gecko).Update("photo_url", photo.URL).Error
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user_id": owner.UserID, "gecko_id": photo.GeckoID, "photo_id": photo.ID}).Info("Main photo set")
	return photo, nil
}

// Delete removes a photo and its file. When it was main, the most recently taken
// remaining photo is promoted; with none left the gecko's photoUrl is cleared.
func (s *PhotoService) Delete(ctx context.Context, owner Owner, photoID uint) error {
	var photo *domain.Photo
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var (
			gecko *domain.Gecko
			err   error
		)
		if photo, gecko, err = lockPhoto(tx, owner, photoID); err != nil {
			return err
		}
		if err := tx.Delete(photo).Error; err != nil {
			return err
		}
		if !photo.IsMain {
			return nil
		}
		var next domain.Photo
		err = tx.Where("gecko_id = ?", gecko.ID).Order("taken_at DESC, id DESC").Take(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Model(gecko).Update("photo_url", nil).Error
		}
		if err != nil {
			return err
		}
		if err := tx.Model(&next).Update("is_main", true).Error; err != nil {
			return err
		}
		return tx.Model(gecko).Update("photo_url", next.URL).Error
	})
	if err != nil {
		return err
	}
	removeFiles(ctx, s.store, []string{photo.URL})
	logrus.WithFields(logrus.Fields{"user_id": owner.UserID, "gecko_id": photo.GeckoID, "photo_id": photo.ID}).Info("Photo deleted")
	return nil
}

// lockPhoto locks the photo's gecko and reads the photo again under that lock,
// so IsMain reflects every gallery change committed before it.
func lockPhoto(tx *gorm.DB, owner Owner, photoID uint) (*domain.Photo, *domain.Gecko, error) {
	photo, err := authorizePhoto(tx, owner, photoID)
	if err != nil {
		return nil, nil, err
	}
	gecko, err := authorizeGecko(tx, owner, photo.GeckoID, true)
	if err != nil {
		return nil, nil, err
	}
	var fresh domain.Photo
	err = tx.Where("id = ? AND gecko_id = ?", photoID, gecko.ID).First(&fresh).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, notFoundf("photo not found")
	}
	if err != nil {
		return nil, nil, err
	}
	return &fresh, gecko, nil
}
