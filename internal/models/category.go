package models

import "time"

// Category represents a spending category. The name is the identifier;
// transactions reference it by name, not by foreign key.
type Category struct {
	Name      string `gorm:"primaryKey;size:64"`
	IsDefault bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
}
