package service

import (
	"time"

	"gecko_rack/internal/domain"
	"gecko_rack/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func (s *ServiceSuite) TestRegisterAndLogin() {
	auth := NewAuthService(s.db, nil, "secret", time.Hour)

	session, err := auth.Register(s.ctx, " New@Example.com ", "longenough", "New Keeper")
	s.Require().NoError(err)
	s.Equal("new@example.com", session.User.Email)
	claims, err := utils.ParseJWT(session.Token, "secret")
	s.Require().NoError(err)
	s.Equal(session.User.ID, claims.UserID)

	var stored domain.User
	s.Require().NoError(s.db.First(&stored, session.User.ID).Error)
	s.NotEqual("longenough", stored.Password)

	_, err = auth.Register(s.ctx, "new@example.com", "longenough", "Again")
	s.ErrorIs(err, ErrEmailTaken)

	login, err := auth.Login(s.ctx, "NEW@example.com", "longenough")
	s.Require().NoError(err)
	s.Equal(session.User.ID, login.User.ID)
	s.NotEmpty(login.Token)

	_, err = auth.Login(s.ctx, "new@example.com", "wrongpassword")
	s.ErrorIs(err, ErrInvalidCredentials)
	_, err = auth.Login(s.ctx, "nobody@example.com", "longenough")
	s.ErrorIs(err, ErrInvalidCredentials)
	s.ErrorIs(err, ErrAuth)
}

func (s *ServiceSuite) TestRegisterValidation() {
	auth := NewAuthService(s.db, nil, "secret", time.Hour)
	for _, tc := range []struct{ email, password, name string }{
		{"not-an-email", "longenough", "A"},
		{"a@example.com", "short", "A"},
		{"a@example.com", "longenough", "  "},
	} {
		_, err := auth.Register(s.ctx, tc.email, tc.password, tc.name)
		s.ErrorIs(err, ErrValidation, tc.email)
	}
}

func (s *ServiceSuite) TestMeUsesProfileCache() {
	mr := miniredis.RunT(s.T())
	auth := NewAuthService(s.db, redis.NewClient(&redis.Options{Addr: mr.Addr()}), "secret", time.Hour)
	session, err := auth.Register(s.ctx, "cached@example.com", "longenough", "Cached")
	s.Require().NoError(err)
	owner := Owner{UserID: session.User.ID}

	me, err := auth.Me(s.ctx, owner)
	s.Require().NoError(err)
	s.Equal("Cached", me.Name)
	s.True(mr.Exists(profileKey(owner.UserID)))

	s.Require().NoError(s.db.Model(&domain.User{}).Where("id = ?", owner.UserID).Update("name", "Renamed").Error)
	me, err = auth.Me(s.ctx, owner)
	s.Require().NoError(err)
	s.Equal("Cached", me.Name, "served from cache")

	mr.FlushAll()
	me, err = auth.Me(s.ctx, owner)
	s.Require().NoError(err)
	s.Equal("Renamed", me.Name)

	_, err = NewAuthService(s.db, nil, "secret", time.Hour).Me(s.ctx, Owner{UserID: 9999})
	s.ErrorIs(err, ErrNotFound)
}

func (s *ServiceSuite) TestUserExists() {
	auth := NewAuthService(s.db, nil, "secret", time.Hour)
	ok, err := auth.Exists(s.ctx, s.owner.UserID)
	s.Require().NoError(err)
	s.True(ok)
	ok, err = auth.Exists(s.ctx, 9999)
	s.Require().NoError(err)
	s.False(ok)
}
