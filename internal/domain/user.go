package domain

import "time"

// User Model
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                                   // Primary key
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`             // Unique, lower-cased email
	Password  string    `gorm:"not null" json:"-"`                                      // Hashed password
	Name      string    `gorm:"size:100;not null" json:"name"`                          // Display name
	Racks     []Rack    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"` // Owned racks
	CreatedAt time.Time `json:"createdAt"`                                              // Registration time
}
