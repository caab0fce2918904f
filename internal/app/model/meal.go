package model

import (
	"time"

	"gorm.io/gorm"
)

// Meal is a cook's listing. Writes are gated on the cook being active and
// verified; browsing is public.
type Meal struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CookID      uint           `gorm:"not null;index" json:"cook_id"`
	Cook        User           `gorm:"foreignKey:CookID" json:"-"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Price       float64        `gorm:"not null" json:"price"`
	Category    string         `gorm:"type:varchar(50);index" json:"category"`
	ImageURL    string         `gorm:"type:text" json:"image_url"`
	Available   bool           `gorm:"default:true" json:"available"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Meal) TableName() string {
	return "meals"
}
