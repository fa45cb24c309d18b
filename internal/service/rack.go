package service

import (
	"context"
	"strings"
	"time"

	"gecko_rack/internal/domain"
	"gecko_rack/internal/storage"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RackService manages racks and their dimensions.
type RackService struct {
	db        *gorm.DB
	store     storage.ImageStore
	now       Clock
	threshold time.Duration
}

// NewRackService builds a RackService. store receives the image files of geckos
// removed by a cascading delete.
func NewRackService(db *gorm.DB, store storage.ImageStore, now Clock, threshold time.Duration) *RackService {
	if db == nil {
		panic("database connection cannot be nil for RackService")
	}
	if now == nil {
		now = utcNow
	}
	if threshold <= 0 {
		threshold = domain.DefaultCareThreshold
	}
	return &RackService{db: db, store: store, now: now, threshold: threshold}
}

// RackInput creates a rack.
type RackInput struct {
	Name    string
	Rows    int
	Columns int
}

// RackUpdate changes the supplied fields of a rack.
type RackUpdate struct {
	Name    *string
	Rows    *int
	Columns *int
}

func validateDimensions(rows, columns int) error {
	if rows < 1 || columns < 1 {
		return validationf("rows and columns must be at least 1")
	}
	return nil
}

func preloadGeckos(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Geckos", func(db *gorm.DB) *gorm.DB {
		return db.Order("cell_row DESC, cell_column ASC")
	})
}

// List returns the owner's racks with their geckos and care status.
func (s *RackService) List(ctx context.Context, owner Owner) ([]domain.Rack, error) {
	tx := s.db.WithContext(ctx)
	var racks []domain.Rack
	if err := preloadGeckos(tx).Where("user_id = ?", owner.UserID).Order("id").Find(&racks).Error; err != nil {
		return nil, err
	}
	now := s.now()
	for i := range racks {
		if err := withStatus(tx, racks[i].Geckos, now, s.threshold); err != nil {
			return nil, err
		}
	}
	return racks, nil
}

// Get returns one rack of the owner with its geckos and care status.
func (s *RackService) Get(ctx context.Context, owner Owner, rackID uint) (*domain.Rack, error) {
	tx := s.db.WithContext(ctx)
	rack, err := authorizeRack(tx, owner, rackID, false)
	if err != nil {
		return nil, err
	}
	if err := tx.Where("rack_id = ?", rack.ID).Order("cell_row DESC, cell_column ASC").Find(&rack.Geckos).Error; err != nil {
		return nil, err
	}
	if err := withStatus(tx, rack.Geckos, s.now(), s.threshold); err != nil {
		return nil, err
	}
	return rack, nil
}

// Grid returns the rack laid out as cells, top row first, empty cells included.
func (s *RackService) Grid(ctx context.Context, owner Owner, rackID uint) (*domain.Grid, error) {
	rack, err := s.Get(ctx, owner, rackID)
	if err != nil {
		return nil, err
	}
	geckos := rack.Geckos
	rack.Geckos = nil
	return domain.BuildGrid(rack, geckos), nil
}

// Create adds a rack for the owner.
func (s *RackService) Create(ctx context.Context, owner Owner, in RackInput) (*domain.Rack, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationf("rack name is required")
	}
	if err := validateDimensions(in.Rows, in.Columns); err != nil {
		return nil, err
	}
	rack := domain.Rack{Name: name, Rows: in.Rows, Columns: in.Columns, UserID: owner.UserID}
	if err := s.db.WithContext(ctx).Create(&rack).Error; err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id": owner.UserID,
		"rack_id": rack.ID,
		"rows":    rack.Rows,
		"columns": rack.Columns,
	}).Info("Rack created")
	return &rack, nil
}

// Update renames and/or resizes a rack. Shrinking is refused while any gecko sits
// outside the new bounds.
func (s *RackService) Update(ctx context.Context, owner Owner, rackID uint, in RackUpdate) (*domain.Rack, error) {
	var rack *domain.Rack
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		rack, err = authorizeRack(tx, owner, rackID, true)
		if err != nil {
			return err
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return validationf("rack name is required")
			}
			rack.Name = name
		}
		rows, columns := rack.Rows, rack.Columns
		if in.Rows != nil {
			rows = *in.Rows
		}
		if in.Columns != nil {
			columns = *in.Columns
		}
		if err := validateDimensions(rows, columns); err != nil {
			return err
		}
		if rows < rack.Rows || columns < rack.Columns {
			var outside int64
			if err := tx.Model(&domain.Gecko{}).
				Where("rack_id = ? AND (cell_row > ? OR cell_column > ?)", rack.ID, rows, columns).
				Count(&outside).Error; err != nil {
				return err
			}
			if outside > 0 {
				return validationf("cannot resize rack to %dx%d: %d gecko(s) would be outside the grid", rows, columns, outside)
			}
		}
		rack.Rows, rack.Columns = rows, columns
		return tx.Model(rack).Select("name", "rows", "columns").Updates(rack).Error
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id": owner.UserID,
		"rack_id": rack.ID,
		"rows":    rack.Rows,
		"columns": rack.Columns,
	}).Info("Rack updated")
	return rack, nil
}

// Delete removes a rack together with its geckos, their logs, photos and files.
func (s *RackService) Delete(ctx context.Context, owner Owner, rackID uint) error {
	var urls []string
	var removed int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rack, err := authorizeRack(tx, owner, rackID, true)
		if err != nil {
			return err
		}
		var geckoIDs []uint
		if err := tx.Model(&domain.Gecko{}).Where("rack_id = ?", rack.ID).Pluck("id", &geckoIDs).Error; err != nil {
			return err
		}
		if urls, err = deleteGeckoRows(tx, geckoIDs); err != nil {
			return err
		}
		removed = len(geckoIDs)
		return tx.Delete(rack).Error
	})
	if err != nil {
		return err
	}
	removeFiles(ctx, s.store, urls)
	logrus.WithFields(logrus.Fields{
		"user_id":        owner.UserID,
		"rack_id":        rackID,
		"geckos_removed": removed,
	}).Info("Rack deleted")
	return nil
}
