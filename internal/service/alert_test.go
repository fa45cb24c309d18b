package service

import (
	"time"

	"gecko_rack/internal/domain"
)

func (s *ServiceSuite) TestAlertsFollowPolicy() {
	rack := s.createRack(s.owner, 2, 2)
	fine := s.createGecko(s.owner, "Fine", rack.ID, 1, 1)
	hungry := s.createGecko(s.owner, "Hungry", rack.ID, 1, 2)
	s.logCare(s.owner, fine.ID, domain.CareFeeding, s.now.Add(-time.Hour))
	s.logCare(s.owner, fine.ID, domain.CareCleaning, s.now.Add(-time.Hour))
	s.logCare(s.owner, hungry.ID, domain.CareFeeding, s.now.Add(-5*24*time.Hour))
	s.logCare(s.owner, hungry.ID, domain.CareCleaning, s.now.Add(-time.Hour))
	foreignRack := s.createRack(s.other, 1, 1)
	s.createGecko(s.other, "Theirs", foreignRack.ID, 1, 1)

	alerts, err := NewAlertService(s.db, domain.NewAlertPolicy(domain.PolicyFeedingCleaning, 0), s.clock).List(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Require().Len(alerts, 1)
	s.Equal(hungry.ID, alerts[0].Gecko.ID)
	s.True(alerts[0].NeedsFeeding)
	s.False(alerts[0].NeedsCleaning)
	s.False(alerts[0].NeedsWater)
	s.Require().NotNil(alerts[0].LastFeeding)
	s.True(s.now.Add(-5 * 24 * time.Hour).Equal(*alerts[0].LastFeeding))
	s.Require().NotNil(alerts[0].Gecko.Rack)

	alerts, err = NewAlertService(s.db, domain.NewAlertPolicy(domain.PolicyFeedingCleaningWater, 0), s.clock).List(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Require().Len(alerts, 2, "nobody was given water")
	s.True(alerts[0].NeedsWater)
	s.False(alerts[0].NeedsFeeding)
}

func (s *ServiceSuite) TestAlertsEmptyIsNotNil() {
	alerts, err := NewAlertService(s.db, domain.AlertPolicy{}, s.clock).List(s.ctx, s.owner)
	s.Require().NoError(err)
	s.NotNil(alerts)
	s.Empty(alerts)
}
