package models

import (
	"slices"
	"time"
)

// Product is a farmer's listing. Orders never reference its price after
// placement; they carry their own snapshot.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	FarmerID    string    `json:"farmer_id" gorm:"type:varchar(36);index" bson:"farmer_id"`
	Name        string    `json:"name" gorm:"type:varchar(100)" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Unit        string    `json:"unit" gorm:"type:varchar(32)" bson:"unit"`
	Price       float64   `json:"price" bson:"price"`
	Stock       int       `json:"stock" bson:"stock"`
	Available   bool      `json:"available" bson:"available"`
	Varieties   []string  `json:"varieties" gorm:"serializer:json" bson:"varieties"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// AcceptsVariety reports whether variety may be selected for this product.
// Products without declared varieties accept any value.
func (p *Product) AcceptsVariety(variety string) bool {
	if variety == "" || len(p.Varieties) == 0 {
		return true
	}
	return slices.Contains(p.Varieties, variety)
}
