package domain

import "time"

// Gender of a gecko
type Gender string

const (
	GenderMale    Gender = "MALE"
	GenderFemale  Gender = "FEMALE"
	GenderUnknown Gender = "UNKNOWN"
)

// Valid reports whether g is one of the known genders.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderUnknown:
		return true
	}
	return false
}

// Gecko Model
type Gecko struct {
	ID        uint       `gorm:"primaryKey" json:"id"`                                                    // Primary key
	Name      string     `gorm:"size:100;not null" json:"name"`                                           // Gecko name
	Morph     *string    `gorm:"size:100" json:"morph"`                                                   // Morph, free text
	BirthDate *time.Time `json:"birthDate"`                                                               // Hatch date
	Gender    Gender     `gorm:"size:16;not null;default:UNKNOWN" json:"gender"`                          // MALE, FEMALE or UNKNOWN
	Weight    *float64   `json:"weight"`                                                                  // Grams
	Notes     *string    `gorm:"type:text" json:"notes"`                                                  // Free notes
	PhotoURL  *string    `gorm:"size:512" json:"photoUrl"`                                                // Mirrors the main photo URL
	RackID    uint       `gorm:"not null;uniqueIndex:idx_gecko_cell" json:"rackId"`                       // Owning rack
	Row       int        `gorm:"column:cell_row;not null;uniqueIndex:idx_gecko_cell" json:"row"`          // 1-based row
	Column    int        `gorm:"column:cell_column;not null;uniqueIndex:idx_gecko_cell" json:"column"`    // 1-based column
	Rack      *Rack      `json:"rack,omitempty"`                                                          // Preloaded rack
	CareLogs  []CareLog  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"careLogs,omitempty"` // Care history
	Photos    []Photo    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"photos,omitempty"`   // Gallery
	Status    Status     `gorm:"-" json:"status,omitempty"`                                               // Derived on read
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ParkedRow and ParkedColumn mark a gecko that is mid-swap. They are outside every
// rack, so the cell index never sees them collide with a real position.
const (
	ParkedRow    = -1
	ParkedColumn = -1
)
