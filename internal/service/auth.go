package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gecko_rack/internal/db"
	"gecko_rack/internal/domain"
	"gecko_rack/internal/utils"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt ignores anything longer
	profileCacheTTL   = 10 * time.Minute
)

// AuthService registers users and issues their bearer tokens.
type AuthService struct {
	db     *gorm.DB
	rdb    *redis.Client
	secret string
	ttl    time.Duration
}

// NewAuthService builds an AuthService. rdb may be nil, which disables the
// profile cache.
func NewAuthService(db *gorm.DB, rdb *redis.Client, secret string, ttl time.Duration) *AuthService {
	if db == nil {
		panic("database connection cannot be nil for AuthService")
	}
	if secret == "" {
		panic("JWT secret cannot be empty for AuthService")
	}
	return &AuthService{db: db, rdb: rdb, secret: secret, ttl: ttl}
}

// Session is the result of a successful register or login.
type Session struct {
	User  *domain.User
	Token string
}

func profileKey(userID uint) string {
	return fmt.Sprintf("user:profile:%d", userID)
}

// Register creates an account and signs the caller in.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if !emailRegex.MatchString(email) {
		return nil, validationf("a valid email is required")
	}
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return nil, validationf("password must be %d-%d characters", minPasswordLength, maxPasswordLength)
	}
	if name == "" {
		return nil, validationf("name is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := domain.User{Email: email, Password: string(hash), Name: name}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	token, err := utils.GenerateJWT(user.ID, s.secret, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID}).Info("User registered")
	return &Session{User: &user, Token: token}, nil
}

// Login verifies credentials. Unknown emails and wrong passwords fail alike.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		logrus.WithFields(logrus.Fields{"user_id": user.ID}).Warn("Login failed")
		return nil, ErrInvalidCredentials
	}
	token, err := utils.GenerateJWT(user.ID, s.secret, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID}).Info("User logged in")
	return &Session{User: &user, Token: token}, nil
}

// Me returns the caller's profile, served from Redis when cached.
func (s *AuthService) Me(ctx context.Context, owner Owner) (*domain.User, error) {
	var user domain.User
	key := profileKey(owner.UserID)
	if found, err := utils.GetCache(ctx, s.rdb, key, &user); err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Profile cache read failed")
	} else if found {
		return &user, nil
	}
	err := s.db.WithContext(ctx).First(&user, owner.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("user not found")
	}
	if err != nil {
		return nil, err
	}
	if err := utils.SetCache(ctx, s.rdb, key, user, profileCacheTTL); err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Profile cache write failed")
	}
	return &user, nil
}

// Exists reports whether the user behind a token still has an account.
func (s *AuthService) Exists(ctx context.Context, userID uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
