package service

import (
	"errors"
	"time"

	"gecko_rack/internal/domain"
	"gecko_rack/internal/storage"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func (s *ServiceSuite) addPhoto(geckoID uint, url string, takenAt time.Time) *domain.Photo {
	data := []byte(url)
	s.store.On("Save", mock.Anything, data).Return(url, nil).Once()
	p, err := s.photos.Add(s.ctx, s.owner, geckoID, data, &takenAt)
	s.Require().NoError(err)
	return p
}

func (s *ServiceSuite) TestFirstPhotoBecomesMain() {
	rack := s.createRack(s.owner, 1, 1)
	g := s.createGecko(s.owner, "Mango", rack.ID, 1, 1)

	first := s.addPhoto(g.ID, "/uploads/1.jpg", s.now.Add(-48*time.Hour))
	second := s.addPhoto(g.ID, "/uploads/2.jpg", s.now)
	s.True(first.IsMain)
	s.False(second.IsMain)
	s.Equal("/uploads/1.jpg", *s.reload(g.ID).PhotoURL)

	photos, err := s.photos.List(s.ctx, s.owner, g.ID)
	s.Require().NoError(err)
	s.Require().Len(photos, 2)
	s.Equal(second.ID, photos[0].ID, "most recently taken first")
}

func (s *ServiceSuite) TestSetMainPhoto() {
	rack := s.createRack(s.owner, 1, 1)
	g := s.createGecko(s.owner, "Mango", rack.ID, 1, 1)
	first := s.addPhoto(g.ID, "/uploads/1.jpg", s.now)
	second := s.addPhoto(g.ID, "/uploads/2.jpg", s.now)

	main, err := s.photos.SetMain(s.ctx, s.owner, second.ID)
	s.Require().NoError(err)
	s.True(main.IsMain)
	s.Equal("/uploads/2.jpg", *s.reload(g.ID).PhotoURL)

	var mains []uint
	s.db.Model(&domain.Photo{}).Where("is_main = ?", true).Pluck("id", &mains)
	s.Equal([]uint{second.ID}, mains)

	_, err = s.photos.SetMain(s.ctx, s.other, first.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *ServiceSuite) TestDeleteMainPhotoPromotesLatest() {
	rack := s.createRack(s.owner, 1, 1)
	g := s.createGecko(s.owner, "Mango", rack.ID, 1, 1)
	main := s.addPhoto(g.ID, "/uploads/main.jpg", s.now.Add(-48*time.Hour))
	s.addPhoto(g.ID, "/uploads/old.jpg", s.now.Add(-72*time.Hour))
	recent := s.addPhoto(g.ID, "/uploads/recent.jpg", s.now.Add(-24*time.Hour))
	s.store.On("Remove", mock.Anything, "/uploads/main.jpg").Return(nil).Once()

	s.Require().NoError(s.photos.Delete(s.ctx, s.owner, main.ID))

	s.Equal("/uploads/recent.jpg", *s.reload(g.ID).PhotoURL)
	var promoted domain.Photo
	s.Require().NoError(s.db.First(&promoted, recent.ID).Error)
	s.True(promoted.IsMain)
}

func (s *ServiceSuite) TestDeletePhotoMadeMainWhileWaitingForLock() {
	rack := s.createRack(s.owner, 1, 1)
	g := s.createGecko(s.owner, "Mango", rack.ID, 1, 1)
	first := s.addPhoto(g.ID, "/uploads/1.jpg", s.now.Add(-time.Hour))
	second := s.addPhoto(g.ID, "/uploads/2.jpg", s.now)
	s.store.On("Remove", mock.Anything, "/uploads/2.jpg").Return(nil).Once()

	// A competing request makes the second photo main just before the gecko lock is taken.
	s.Require().NoError(s.db.Callback().Query().Before("gorm:query").Register("test:set_main", nthGeckoStatement(1, func(db *gorm.DB) {
		tx := db.Session(&gorm.Session{NewDB: true})
		s.Require().NoError(tx.Model(&domain.Photo{}).Where("gecko_id = ?", g.ID).Update("is_main", false).Error)
		s.Require().NoError(tx.Model(&domain.Photo{}).Where("id = ?", second.ID).Update("is_main", true).Error)
		s.Require().NoError(tx.Model(&domain.Gecko{}).Where("id = ?", g.ID).Update("photo_url", second.URL).Error)
	})))

	s.Require().NoError(s.photos.Delete(s.ctx, s.owner, second.ID))

	s.Equal(first.URL, *s.reload(g.ID).PhotoURL)
	var mains []uint
	s.db.Model(&domain.Photo{}).Where("is_main = ?", true).Pluck("id", &mains)
	s.Equal([]uint{first.ID}, mains)
}

func (s *ServiceSuite) TestSetMainPhotoDeletedWhileWaitingForLock() {
	rack := s.createRack(s.owner, 1, 1)
	g := s.createGecko(s.owner, "Mango", rack.ID, 1, 1)
	first := s.addPhoto(g.ID, "/uploads/1.jpg", s.now.Add(-time.Hour))
	second := s.addPhoto(g.ID, "/uploads/2.jpg", s.now)

	s.Require().NoError(s.db.Callback().Query().Before("gorm:query").Register("test:delete_photo", nthGeckoStatement(1, func(db *gorm.DB) {
		s.Require().NoError(db.Session(&gorm.Session{NewDB: true}).Delete(&domain.Photo{}, second.ID).Error)
	})))

	_, err := s.photos.SetMain(s.ctx, s.owner, second.ID)
	s.ErrorIs(err, ErrNotFound)

	s.Equal(first.URL, *s.reload(g.ID).PhotoURL)
	var mains []uint
	s.db.Model(&domain.Photo{}).Where("is_main = ?", true).Pluck("id", &mains)
	s.Equal([]uint{first.ID}, mains)
}

func (s *ServiceSuite) TestDeleteOnlyPhotoClearsPhotoURL() {
	rack := s.createRack(s.owner, 1, 1)
	g := s.createGecko(s.owner, "Mango", rack.ID, 1, 1)
	only := s.addPhoto(g.ID, "/uploads/only.jpg", s.now)
	// A failed file removal does not fail the delete.
	s.store.On("Remove", mock.Anything, "/uploads/only.jpg").Return(errors.New("disk gone")).Once()

	s.ErrorIs(s.photos.Delete(s.ctx, s.other, only.ID), ErrNotFound)
	s.Require().NoError(s.photos.Delete(s.ctx, s.owner, only.ID))
	s.Nil(s.reload(g.ID).PhotoURL)
}

func (s *ServiceSuite) TestAddPhotoRejectsUnsupportedImage() {
	rack := s.createRack(s.owner, 1, 1)
	g := s.createGecko(s.owner, "Mango", rack.ID, 1, 1)
	s.store.On("Save", mock.Anything, []byte("%PDF")).Return("", storage.ErrUnsupportedImage).Once()

	_, err := s.photos.Add(s.ctx, s.owner, g.ID, []byte("%PDF"), nil)
	s.ErrorIs(err, ErrValidation)
	_, err = s.photos.Add(s.ctx, s.owner, g.ID, nil, nil)
	s.ErrorIs(err, ErrValidation)
	_, err = s.photos.Add(s.ctx, s.other, g.ID, []byte("x"), nil)
	s.ErrorIs(err, ErrNotFound)

	var count int64
	s.db.Model(&domain.Photo{}).Count(&count)
	s.Zero(count)
}
