package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gecko_rack/internal/db"
	"gecko_rack/internal/domain"
	"gecko_rack/internal/storage"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// GeckoService owns placement of geckos on rack cells. Every position change keeps
// at most one gecko per cell.
type GeckoService struct {
	db        *gorm.DB
	store     storage.ImageStore
	now       Clock
	threshold time.Duration
}

func NewGeckoService(db *gorm.DB, store storage.ImageStore, now Clock, threshold time.Duration) *GeckoService {
	if db == nil {
		panic("database connection cannot be nil for GeckoService")
	}
	if now == nil {
		now = utcNow
	}
	if threshold <= 0 {
		threshold = domain.DefaultCareThreshold
	}
	return &GeckoService{db: db, store: store, now: now, threshold: threshold}
}

// GeckoFields are the descriptive attributes of a gecko.
type GeckoFields struct {
	Name      string
	Morph     *string
	BirthDate *time.Time
	Gender    domain.Gender
	Weight    *float64
	Notes     *string
}

// Position addresses a cell.
type Position struct {
	RackID uint
	Row    int
	Column int
}

func (f *GeckoFields) normalize() error {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return validationf("gecko name is required")
	}
	if f.Gender == "" {
		f.Gender = domain.GenderUnknown
	}
	if !f.Gender.Valid() {
		return validationf("gender must be MALE, FEMALE or UNKNOWN")
	}
	if f.Weight != nil && *f.Weight < 0 {
		return validationf("weight cannot be negative")
	}
	return nil
}

// checkTarget verifies the target rack belongs to the owner, the cell is inside
// it and no other gecko occupies it. The rack row is locked so a concurrent
// resize cannot shrink it underneath the placement.
func checkTarget(tx *gorm.DB, owner Owner, pos Position, movingID uint) error {
	rack, err := authorizeRack(tx, owner, pos.RackID, true)
	if errors.Is(err, ErrNotFound) {
		return validationf("target rack not found")
	}
	if err != nil {
		return err
	}
	if !rack.Contains(pos.Row, pos.Column) {
		return validationf("position (%d, %d) is outside rack %q (%dx%d)", pos.Row, pos.Column, rack.Name, rack.Rows, rack.Columns)
	}
	var occupant domain.Gecko
	err = tx.Select("id", "name").
		Where("rack_id = ? AND cell_row = ? AND cell_column = ? AND id <> ?", pos.RackID, pos.Row, pos.Column, movingID).
		Take(&occupant).Error
	if err == nil {
		return conflictf("cell (%d, %d) is already occupied by %s", pos.Row, pos.Column, occupant.Name)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check cell: %w", err)
	}
	return nil
}

func cellConflict(err error, pos Position) error {
	if db.IsDuplicateKey(err) {
		return conflictf("cell (%d, %d) is already occupied", pos.Row, pos.Column)
	}
	return err
}

// List returns every gecko of the owner with its rack and care status.
func (s *GeckoService) List(ctx context.Context, owner Owner) ([]domain.Gecko, error) {
	tx := s.db.WithContext(ctx)
	var geckos []domain.Gecko
	if err := tx.Preload("Rack").Where("rack_id IN (?)", ownedRackIDs(tx, owner)).Order("id").Find(&geckos).Error; err != nil {
		return nil, err
	}
	if err := withStatus(tx, geckos, s.now(), s.threshold); err != nil {
		return nil, err
	}
	return geckos, nil
}

// Get returns one gecko with its rack, full care history (newest first) and status.
func (s *GeckoService) Get(ctx context.Context, owner Owner, geckoID uint) (*domain.Gecko, error) {
	tx := s.db.WithContext(ctx)
	gecko, err := authorizeGecko(tx, owner, geckoID, false)
	if err != nil {
		return nil, err
	}
	if err := tx.Preload("Rack").Preload("CareLogs", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC, id DESC")
	}).First(gecko, gecko.ID).Error; err != nil {
		return nil, err
	}
	last := domain.LastCare{}
	for _, l := range gecko.CareLogs {
		if _, seen := last[l.Type]; !seen {
			last[l.Type] = l.CreatedAt
		}
	}
	gecko.Status = domain.DeriveStatus(last, s.now(), s.threshold)
	return gecko, nil
}

// Create places a new gecko on a free cell of one of the owner's racks.
func (s *GeckoService) Create(ctx context.Context, owner Owner, f GeckoFields, pos Position) (*domain.Gecko, error) {
	if err := f.normalize(); err != nil {
		return nil, err
	}
	gecko := domain.Gecko{
		Name:      f.Name,
		Morph:     f.Morph,
		BirthDate: f.BirthDate,
		Gender:    f.Gender,
		Weight:    f.Weight,
		Notes:     f.Notes,
		RackID:    pos.RackID,
		Row:       pos.Row,
		Column:    pos.Column,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkTarget(tx, owner, pos, 0); err != nil {
			return err
		}
		return cellConflict(tx.Create(&gecko).Error, pos)
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":  owner.UserID,
		"gecko_id": gecko.ID,
		"rack_id":  gecko.RackID,
		"row":      gecko.Row,
		"column":   gecko.Column,
	}).Info("Gecko created")
	return &gecko, nil
}

// Update replaces the descriptive fields of a gecko. A non-nil pos also moves it,
// with the same checks as Move.
func (s *GeckoService) Update(ctx context.Context, owner Owner, geckoID uint, f GeckoFields, pos *Position) (*domain.Gecko, error) {
	if err := f.normalize(); err != nil {
		return nil, err
	}
	var gecko *domain.Gecko
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if gecko, err = authorizeGecko(tx, owner, geckoID, true); err != nil {
			return err
		}
		gecko.Name, gecko.Morph, gecko.BirthDate = f.Name, f.Morph, f.BirthDate
		gecko.Gender, gecko.Weight, gecko.Notes = f.Gender, f.Weight, f.Notes
		columns := []string{"name", "morph", "birth_date", "gender", "weight", "notes"}
		if pos != nil && !samePosition(gecko, *pos) {
			if err := checkTarget(tx, owner, *pos, gecko.ID); err != nil {
				return err
			}
			gecko.RackID, gecko.Row, gecko.Column = pos.RackID, pos.Row, pos.Column
			columns = append(columns, "rack_id", "cell_row", "cell_column")
		}
		err = tx.Model(gecko).Select(columns).Updates(gecko).Error
		if pos != nil {
			err = cellConflict(err, *pos)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user_id": owner.UserID, "gecko_id": gecko.ID}).Info("Gecko updated")
	return gecko, nil
}

func samePosition(g *domain.Gecko, pos Position) bool {
	return g.RackID == pos.RackID && g.Row == pos.Row && g.Column == pos.Column
}

// Move relocates a gecko to a free cell of any of the owner's racks.
func (s *GeckoService) Move(ctx context.Context, owner Owner, geckoID uint, pos Position) (*domain.Gecko, error) {
	var gecko *domain.Gecko
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if gecko, err = authorizeGecko(tx, owner, geckoID, true); err != nil {
			return err
		}
		if samePosition(gecko, pos) {
			return nil
		}
		if err := checkTarget(tx, owner, pos, gecko.ID); err != nil {
			return err
		}
		err = tx.Model(gecko).Updates(map[string]any{
			"rack_id":     pos.RackID,
			"cell_row":    pos.Row,
			"cell_column": pos.Column,
		}).Error
		if err != nil {
			return cellConflict(err, pos)
		}
		gecko.RackID, gecko.Row, gecko.Column = pos.RackID, pos.Row, pos.Column
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":  owner.UserID,
		"gecko_id": gecko.ID,
		"rack_id":  pos.RackID,
		"row":      pos.Row,
		"column":   pos.Column,
	}).Info("Gecko moved")
	return gecko, nil
}

// Swap exchanges the cells of two geckos in one transaction. Both rows are locked,
// then A is parked off-grid so the cell index never holds two geckos, B takes A's
// cell and A takes B's. The parked state is never committed.
func (s *GeckoService) Swap(ctx context.Context, owner Owner, firstID, secondID uint) error {
	if firstID == secondID {
		return validationf("cannot swap a gecko with itself")
	}
	var a, b *domain.Gecko
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock in id order so two opposite swaps cannot deadlock.
		lo, hi := firstID, secondID
		if lo > hi {
			lo, hi = hi, lo
		}
		first, err := authorizeGecko(tx, owner, lo, true)
		if err != nil {
			return err
		}
		second, err := authorizeGecko(tx, owner, hi, true)
		if err != nil {
			return err
		}
		a, b = first, second
		if a.ID != firstID {
			a, b = b, a
		}
		from, to := *a, *b
		if err := tx.Model(a).Updates(map[string]any{"cell_row": domain.ParkedRow, "cell_column": domain.ParkedColumn}).Error; err != nil {
			return fmt.Errorf("park gecko %d: %w", a.ID, err)
		}
		if err := tx.Model(b).Updates(map[string]any{"rack_id": from.RackID, "cell_row": from.Row, "cell_column": from.Column}).Error; err != nil {
			return fmt.Errorf("move gecko %d: %w", b.ID, err)
		}
		if err := tx.Model(a).Updates(map[string]any{"rack_id": to.RackID, "cell_row": to.Row, "cell_column": to.Column}).Error; err != nil {
			return fmt.Errorf("move gecko %d: %w", a.ID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":   owner.UserID,
		"gecko_id1": firstID,
		"gecko_id2": secondID,
	}).Info("Geckos swapped")
	return nil
}

// Delete removes a gecko with its care logs, photos and image files.
func (s *GeckoService) Delete(ctx context.Context, owner Owner, geckoID uint) error {
	var urls []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		gecko, err := authorizeGecko(tx, owner, geckoID, true)
		if err != nil {
			return err
		}
		urls, err = deleteGeckoRows(tx, []uint{gecko.ID})
		return err
	})
	if err != nil {
		return err
	}
	removeFiles(ctx, s.store, urls)
	logrus.WithFields(logrus.Fields{"user_id": owner.UserID, "gecko_id": geckoID, "photos_removed": len(urls)}).Info("Gecko deleted")
	return nil
}
