package domain

import "time"

// Photo Model
type Photo struct {
	ID        uint      `gorm:"primaryKey" json:"id"`              // Primary key
	GeckoID   uint      `gorm:"index;not null" json:"geckoId"`     // Owning gecko
	URL       string    `gorm:"size:512;not null" json:"photoUrl"` // Public URL of the stored image
	TakenAt   time.Time `gorm:"index;not null" json:"takenAt"`     // When the picture was taken
	IsMain    bool      `gorm:"not null;default:false" json:"isMain"`
	CreatedAt time.Time `json:"createdAt"`
}
