package service

import (
	"errors"
	"fmt"
	"time"

	"gecko_rack/internal/domain"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func (s *ServiceSuite) TestCreateGeckoRoundTripsOptionalFields() {
	rack := s.createRack(s.owner, 3, 3)

	bare := s.createGecko(s.owner, "Mango", rack.ID, 1, 1)
	got, err := s.geckos.Get(s.ctx, s.owner, bare.ID)
	s.Require().NoError(err)
	s.Equal("Mango", got.Name)
	s.Equal(domain.GenderUnknown, got.Gender)
	s.Nil(got.Morph)
	s.Nil(got.BirthDate)
	s.Nil(got.Weight)
	s.Nil(got.Notes)
	s.Nil(got.PhotoURL)
	s.Require().NotNil(got.Rack)
	s.Equal(rack.ID, got.Rack.ID)
	s.Equal(domain.StatusUrgent, got.Status, "a gecko without logs needs care")

	born := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	full, err := s.geckos.Create(s.ctx, s.owner, GeckoFields{
		Name:      " Kiwi ",
		Morph:     ptr("Tangerine"),
		BirthDate: &born,
		Gender:    domain.GenderFemale,
		Weight:    ptr(45.5),
		Notes:     ptr("calm"),
	}, Position{RackID: rack.ID, Row: 2, Column: 3})
	s.Require().NoError(err)
	got, err = s.geckos.Get(s.ctx, s.owner, full.ID)
	s.Require().NoError(err)
	s.Equal("Kiwi", got.Name)
	s.Equal("Tangerine", *got.Morph)
	s.True(born.Equal(*got.BirthDate))
	s.Equal(domain.GenderFemale, got.Gender)
	s.InDelta(45.5, *got.Weight, 1e-9)
	s.Equal(2, got.Row)
	s.Equal(3, got.Column)
}

func (s *ServiceSuite) TestCreateGeckoValidation() {
	rack := s.createRack(s.owner, 2, 2)
	pos := Position{RackID: rack.ID, Row: 1, Column: 1}

	_, err := s.geckos.Create(s.ctx, s.owner, GeckoFields{Name: "  "}, pos)
	s.ErrorIs(err, ErrValidation)
	_, err = s.geckos.Create(s.ctx, s.owner, GeckoFields{Name: "A", Gender: "DRAGON"}, pos)
	s.ErrorIs(err, ErrValidation)
	_, err = s.geckos.Create(s.ctx, s.owner, GeckoFields{Name: "A", Weight: ptr(-1.0)}, pos)
	s.ErrorIs(err, ErrValidation)
}

func (s *ServiceSuite) TestCreateGeckoOnOccupiedCellConflicts() {
	rack := s.createRack(s.owner, 3, 3)
	s.createGecko(s.owner, "Mango", rack.ID, 2, 2)

	_, err := s.geckos.Create(s.ctx, s.owner, GeckoFields{Name: "Kiwi"}, Position{RackID: rack.ID, Row: 2, Column: 2})
	s.ErrorIs(err, ErrConflict)

	var count int64
	s.db.Model(&domain.Gecko{}).Count(&count)
	s.Equal(int64(1), count)
}

func (s *ServiceSuite) TestCreateGeckoOutsideRackFails() {
	rack := s.createRack(s.owner, 2, 2)
	for _, pos := range []Position{{rack.ID, 3, 1}, {rack.ID, 1, 3}, {rack.ID, 0, 1}, {rack.ID, -1, -1}} {
		_, err := s.geckos.Create(s.ctx, s.owner, GeckoFields{Name: "Mango"}, pos)
		s.ErrorIs(err, ErrValidation, "%+v", pos)
	}
}

func (s *ServiceSuite) TestCreateGeckoOnForeignRackFails() {
	foreign := s.createRack(s.other, 2, 2)
	_, err := s.geckos.Create(s.ctx, s.owner, GeckoFields{Name: "Mango"}, Position{RackID: foreign.ID, Row: 1, Column: 1})
	s.ErrorIs(err, ErrValidation)
	s.EqualError(err, "target rack not found")
}

func (s *ServiceSuite) TestForeignGeckoIsNotFound() {
	rack := s.createRack(s.other, 2, 2)
	g := s.createGecko(s.other, "Theirs", rack.ID, 1, 1)

	_, err := s.geckos.Get(s.ctx, s.owner, g.ID)
	s.ErrorIs(err, ErrNotFound)
	_, err = s.geckos.Move(s.ctx, s.owner, g.ID, Position{RackID: rack.ID, Row: 2, Column: 2})
	s.ErrorIs(err, ErrNotFound)
	s.ErrorIs(s.geckos.Delete(s.ctx, s.owner, g.ID), ErrNotFound)

	list, err := s.geckos.List(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *ServiceSuite) TestMoveGecko() {
	first := s.createRack(s.owner, 2, 2)
	second := s.createRack(s.owner, 4, 4)
	g := s.createGecko(s.owner, "Mango", first.ID, 1, 1)
	s.createGecko(s.owner, "Kiwi", second.ID, 4, 4)

	moved, err := s.geckos.Move(s.ctx, s.owner, g.ID, Position{RackID: second.ID, Row: 3, Column: 2})
	s.Require().NoError(err)
	s.Equal(second.ID, moved.RackID)

	stored := s.reload(g.ID)
	s.Equal(second.ID, stored.RackID)
	s.Equal(3, stored.Row)
	s.Equal(2, stored.Column)

	_, err = s.geckos.Move(s.ctx, s.owner, g.ID, Position{RackID: second.ID, Row: 4, Column: 4})
	s.ErrorIs(err, ErrConflict)
	_, err = s.geckos.Move(s.ctx, s.owner, g.ID, Position{RackID: first.ID, Row: 3, Column: 1})
	s.ErrorIs(err, ErrValidation)

	_, err = s.geckos.Move(s.ctx, s.owner, g.ID, Position{RackID: second.ID, Row: 3, Column: 2})
	s.NoError(err, "moving onto its own cell is a no-op")
}

func (s *ServiceSuite) TestUpdateGeckoFieldsAndPosition() {
	rack := s.createRack(s.owner, 3, 3)
	g := s.createGecko(s.owner, "Mango", rack.ID, 1, 1)
	s.createGecko(s.owner, "Kiwi", rack.ID, 1, 2)

	updated, err := s.geckos.Update(s.ctx, s.owner, g.ID, GeckoFields{Name: "Mango II", Gender: domain.GenderMale}, &Position{RackID: rack.ID, Row: 3, Column: 3})
	s.Require().NoError(err)
	s.Equal("Mango II", updated.Name)
	stored := s.reload(g.ID)
	s.Equal(domain.GenderMale, stored.Gender)
	s.Equal(3, stored.Row)

	_, err = s.geckos.Update(s.ctx, s.owner, g.ID, GeckoFields{Name: "Mango"}, &Position{RackID: rack.ID, Row: 1, Column: 2})
	s.ErrorIs(err, ErrConflict)
	s.Equal("Mango II", s.reload(g.ID).Name, "a refused move leaves the fields untouched")
}

func (s *ServiceSuite) TestSwapGeckos() {
	first := s.createRack(s.owner, 2, 2)
	second := s.createRack(s.owner, 3, 3)
	a := s.createGecko(s.owner, "A", first.ID, 1, 1)
	b := s.createGecko(s.owner, "B", second.ID, 3, 2)

	s.Require().NoError(s.geckos.Swap(s.ctx, s.owner, b.ID, a.ID))

	gotA, gotB := s.reload(a.ID), s.reload(b.ID)
	s.Equal([]any{second.ID, 3, 2}, []any{gotA.RackID, gotA.Row, gotA.Column})
	s.Equal([]any{first.ID, 1, 1}, []any{gotB.RackID, gotB.Row, gotB.Column})
}

func (s *ServiceSuite) TestSwapWithUnknownGeckoLeavesStateUnchanged() {
	rack := s.createRack(s.owner, 2, 2)
	a := s.createGecko(s.owner, "A", rack.ID, 1, 1)
	foreignRack := s.createRack(s.other, 2, 2)
	foreign := s.createGecko(s.other, "F", foreignRack.ID, 2, 2)

	s.ErrorIs(s.geckos.Swap(s.ctx, s.owner, a.ID, 9999), ErrNotFound)
	s.ErrorIs(s.geckos.Swap(s.ctx, s.owner, a.ID, foreign.ID), ErrNotFound)

	gotA := s.reload(a.ID)
	s.Equal(1, gotA.Row)
	s.Equal(1, gotA.Column)
	gotF := s.reload(foreign.ID)
	s.Equal(foreignRack.ID, gotF.RackID)
	s.Equal(2, gotF.Row)
}

func (s *ServiceSuite) TestSwapRollsBackWhenAMoveFails() {
	rack := s.createRack(s.owner, 1, 2)
	a := s.createGecko(s.owner, "A", rack.ID, 1, 1)
	b := s.createGecko(s.owner, "B", rack.ID, 1, 2)

	// Update 1 parks A, update 2 moves B, update 3 moves A.
	for _, failAt := range []int{2, 3} {
		name := fmt.Sprintf("test:fail_update_%d", failAt)
		s.Require().NoError(s.db.Callback().Update().Before("gorm:update").Register(name, nthGeckoStatement(failAt, func(db *gorm.DB) {
			db.AddError(errors.New("connection reset"))
		})))

		err := s.geckos.Swap(s.ctx, s.owner, a.ID, b.ID)
		s.Require().NoError(s.db.Callback().Update().Remove(name))
		s.Error(err, "update %d", failAt)

		gotA, gotB := s.reload(a.ID), s.reload(b.ID)
		s.Equal([]any{rack.ID, 1, 1}, []any{gotA.RackID, gotA.Row, gotA.Column}, "update %d", failAt)
		s.Equal([]any{rack.ID, 1, 2}, []any{gotB.RackID, gotB.Row, gotB.Column}, "update %d", failAt)
	}

	var parked int64
	s.db.Model(&domain.Gecko{}).Where("cell_row = ? AND cell_column = ?", domain.ParkedRow, domain.ParkedColumn).Count(&parked)
	s.Zero(parked)
}

func (s *ServiceSuite) TestSwapWithItselfIsRejected() {
	rack := s.createRack(s.owner, 2, 2)
	a := s.createGecko(s.owner, "A", rack.ID, 1, 1)
	s.ErrorIs(s.geckos.Swap(s.ctx, s.owner, a.ID, a.ID), ErrValidation)
}

func (s *ServiceSuite) TestDeleteGeckoRemovesLogsPhotosAndFiles() {
	rack := s.createRack(s.owner, 2, 2)
	g := s.createGecko(s.owner, "Mango", rack.ID, 1, 1)
	s.logCare(s.owner, g.ID, domain.CareFeeding, s.now)
	s.Require().NoError(s.db.Create(&domain.Photo{GeckoID: g.ID, URL: "/uploads/a.jpg", TakenAt: s.now, IsMain: true}).Error)
	s.store.On("Remove", mock.Anything, "/uploads/a.jpg").Return(nil).Once()

	s.Require().NoError(s.geckos.Delete(s.ctx, s.owner, g.ID))

	var logs, photos int64
	s.db.Model(&domain.CareLog{}).Count(&logs)
	s.db.Model(&domain.Photo{}).Count(&photos)
	s.Zero(logs)
	s.Zero(photos)
	_, err := s.geckos.Get(s.ctx, s.owner, g.ID)
	s.ErrorIs(err, ErrNotFound)
}
