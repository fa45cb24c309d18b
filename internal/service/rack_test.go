package service

import (
	"time"

	"gecko_rack/internal/domain"

	"github.com/stretchr/testify/mock"
)

func (s *ServiceSuite) TestCreateRackValidation() {
	_, err := s.racks.Create(s.ctx, s.owner, RackInput{Name: "", Rows: 2, Columns: 2})
	s.ErrorIs(err, ErrValidation)
	_, err = s.racks.Create(s.ctx, s.owner, RackInput{Name: "Main", Rows: 0, Columns: 2})
	s.ErrorIs(err, ErrValidation)
	_, err = s.racks.Create(s.ctx, s.owner, RackInput{Name: "Main", Rows: 2, Columns: -1})
	s.ErrorIs(err, ErrValidation)
}

func (s *ServiceSuite) TestResizeRackRefusesToStrandGeckos() {
	rack := s.createRack(s.owner, 5, 3)
	s.createGecko(s.owner, "Top", rack.ID, 5, 1)

	_, err := s.racks.Update(s.ctx, s.owner, rack.ID, RackUpdate{Rows: ptr(3)})
	s.ErrorIs(err, ErrValidation)

	updated, err := s.racks.Update(s.ctx, s.owner, rack.ID, RackUpdate{Rows: ptr(5), Columns: ptr(1), Name: ptr("Renamed")})
	s.Require().NoError(err)
	s.Equal(5, updated.Rows)
	s.Equal(1, updated.Columns)
	s.Equal("Renamed", updated.Name)

	_, err = s.racks.Update(s.ctx, s.owner, rack.ID, RackUpdate{Rows: ptr(0)})
	s.ErrorIs(err, ErrValidation)
	_, err = s.racks.Update(s.ctx, s.other, rack.ID, RackUpdate{Rows: ptr(6)})
	s.ErrorIs(err, ErrNotFound)
}

func (s *ServiceSuite) TestListRacksDerivesStatus() {
	rack := s.createRack(s.owner, 2, 2)
	cared := s.createGecko(s.owner, "Cared", rack.ID, 1, 1)
	s.createGecko(s.owner, "Neglected", rack.ID, 2, 2)
	s.logCare(s.owner, cared.ID, domain.CareFeeding, s.now.Add(-48*time.Hour))
	s.logCare(s.owner, cared.ID, domain.CareFeeding, s.now.Add(-100*time.Hour))
	s.logCare(s.owner, cared.ID, domain.CareCleaning, s.now.Add(-time.Hour))
	s.createRack(s.other, 1, 1)

	racks, err := s.racks.List(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Require().Len(racks, 1)
	s.Require().Len(racks[0].Geckos, 2)
	s.Equal("Neglected", racks[0].Geckos[0].Name, "top row first")
	s.Equal(domain.StatusUrgent, racks[0].Geckos[0].Status)
	s.Equal(domain.StatusGood, racks[0].Geckos[1].Status)
}

func (s *ServiceSuite) TestRackGrid() {
	rack := s.createRack(s.owner, 2, 3)
	s.createGecko(s.owner, "Mango", rack.ID, 2, 3)

	grid, err := s.racks.Grid(s.ctx, s.owner, rack.ID)
	s.Require().NoError(err)
	s.Require().Len(grid.Cells, 2)
	s.Len(grid.Cells[0], 3)
	s.Require().NotNil(grid.Cells[0][2].Gecko)
	s.Equal("Mango", grid.Cells[0][2].Gecko.Name)
	s.Equal(domain.StatusUrgent, grid.Cells[0][2].Status)
	s.Equal(domain.StatusEmpty, grid.Cells[1][0].Status)

	_, err = s.racks.Grid(s.ctx, s.other, rack.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *ServiceSuite) TestDeleteRackCascades() {
	rack := s.createRack(s.owner, 3, 3)
	keep := s.createRack(s.owner, 1, 1)
	kept := s.createGecko(s.owner, "Kept", keep.ID, 1, 1)
	for i, name := range []string{"A", "B", "C"} {
		g := s.createGecko(s.owner, name, rack.ID, 1, i+1)
		s.logCare(s.owner, g.ID, domain.CareFeeding, s.now)
		url := "/uploads/" + name + ".jpg"
		s.Require().NoError(s.db.Create(&domain.Photo{GeckoID: g.ID, URL: url, TakenAt: s.now, IsMain: true}).Error)
		s.store.On("Remove", mock.Anything, url).Return(nil).Once()
	}
	s.logCare(s.owner, kept.ID, domain.CareFeeding, s.now)

	s.ErrorIs(s.racks.Delete(s.ctx, s.other, rack.ID), ErrNotFound)
	s.Require().NoError(s.racks.Delete(s.ctx, s.owner, rack.ID))

	var geckos, logs, photos int64
	s.db.Model(&domain.Gecko{}).Count(&geckos)
	s.db.Model(&domain.CareLog{}).Count(&logs)
	s.db.Model(&domain.Photo{}).Count(&photos)
	s.Equal(int64(1), geckos)
	s.Equal(int64(1), logs)
	s.Zero(photos)
	_, err := s.racks.Get(s.ctx, s.owner, rack.ID)
	s.ErrorIs(err, ErrNotFound)
}
