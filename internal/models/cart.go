package models

import "time"

// CartItem is a line in a buyer's cart.
type CartItem struct {
	ID              uint   `json:"-" gorm:"primaryKey;autoIncrement" bson:"-"`
	CartID          string `json:"-" gorm:"type:varchar(36);index" bson:"-"`
	ProductID       string `json:"product_id" gorm:"type:varchar(36)" bson:"product_id"`
	Quantity        int    `json:"quantity" bson:"quantity"`
	SelectedVariety string `json:"selected_variety" gorm:"type:varchar(100)" bson:"selected_variety"`
}

// Cart stages items for a single buyer against a single farmer.
type Cart struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	BuyerID   string     `json:"buyer_id" gorm:"type:varchar(36);uniqueIndex" bson:"buyer_id"`
	FarmerID  string     `json:"farmer_id" gorm:"type:varchar(36)" bson:"farmer_id"`
	Items     []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" bson:"items"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// NewCart returns an empty cart bound to farmerID.
func NewCart(buyerID, farmerID string) *Cart {
	return &Cart{BuyerID: buyerID, FarmerID: farmerID, Items: []CartItem{}}
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Item returns the line for productID, if present.
func (c *Cart) Item(productID string) (CartItem, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.Items[i], true
	}
	return CartItem{}, false
}

// AcceptsFarmer reports whether a product of farmerID may join the cart.
// An emptied cart can be re-bound to another farmer.
func (c *Cart) AcceptsFarmer(farmerID string) bool {
	return len(c.Items) == 0 || c.FarmerID == farmerID
}

// AddItem increments the existing line for productID or appends a new one.
// The first selected variety of a line is kept.
func (c *Cart) AddItem(farmerID, productID string, quantity int, variety string) {
	if len(c.Items) == 0 {
		c.FarmerID = farmerID
	}
	if i := c.indexOf(productID); i >= 0 {
		c.Items[i].Quantity += quantity
		if c.Items[i].SelectedVariety == "" {
			c.Items[i].SelectedVariety = variety
		}
		return
	}
	c.Items = append(c.Items, CartItem{ProductID: productID, Quantity: quantity, SelectedVariety: variety})
}

// SetQuantity sets the quantity of an existing line.
func (c *Cart) SetQuantity(productID string, quantity int) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.Items[i].Quantity = quantity
	return true
}

// RemoveItem drops the line for productID and reports whether one existed.
func (c *Cart) RemoveItem(productID string) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// Count is the number of lines, not units.
func (c *Cart) Count() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}
