package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
//
//	Pending ──┬──> Accepted ──> Delivered
//	          │
//	          └──> Cancelled
//
// Delivered and Cancelled are terminal.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusAccepted  OrderStatus = "Accepted"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusAccepted, OrderStatusCancelled},
	OrderStatusAccepted:  {OrderStatusDelivered},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// ParseOrderStatus accepts only the four known states, case-sensitively,
// since the values are persisted verbatim.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	status := OrderStatus(s)
	if _, ok := orderTransitions[status]; !ok {
		return "", false
	}
	return status, true
}

// IsTerminal reports whether no transition may leave s.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// CanTransitionTo reports whether s → next appears in the transition table.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CancelledBy records which party cancelled an order.
type CancelledBy string

const (
	CancelledByNone   CancelledBy = ""
	CancelledByBuyer  CancelledBy = "buyer"
	CancelledByFarmer CancelledBy = "farmer"
)

// OrderItem is a point-in-time snapshot of a cart line.
type OrderItem struct {
	ID              uint    `json:"-" gorm:"primaryKey;autoIncrement" bson:"-"`
	OrderID         string  `json:"-" gorm:"type:varchar(36);index" bson:"-"`
	ProductID       string  `json:"product_id" gorm:"type:varchar(36)" bson:"product_id"`
	ProductName     string  `json:"product_name" bson:"product_name"`
	Unit            string  `json:"unit" bson:"unit"`
	Price           float64 `json:"price" bson:"price"` // Price at the time of order
	Quantity        int     `json:"quantity" bson:"quantity"`
	SelectedVariety string  `json:"selected_variety" bson:"selected_variety"`
}

// SnapshotItem captures product data for a cart line at order time.
func SnapshotItem(product *Product, line CartItem) OrderItem {
	return OrderItem{
		ProductID:       product.ID,
		ProductName:     product.Name,
		Unit:            product.Unit,
		Price:           product.Price,
		Quantity:        line.Quantity,
		SelectedVariety: line.SelectedVariety,
	}
}

// Address is a shipping address; absent parts are empty strings.
type Address struct {
	Street     string `json:"street" bson:"street"`
	City       string `json:"city" bson:"city"`
	State      string `json:"state" bson:"state"`
	PostalCode string `json:"postal_code" bson:"postal_code"`
	Country    string `json:"country" bson:"country"`
}

// ContactInfo is how the buyer can be reached about a delivery.
type ContactInfo struct {
	Name  string `json:"name" bson:"name"`
	Phone string `json:"phone" bson:"phone"`
	Email string `json:"email" bson:"email"`
}

// Order represents a placed checkout.
type Order struct {
	ID                   string      `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	BuyerID              string      `json:"buyer_id" gorm:"type:varchar(36);index" bson:"buyer_id"`
	FarmerID             string      `json:"farmer_id" gorm:"type:varchar(36);index" bson:"farmer_id"`
	Items                []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" bson:"items"`
	TotalAmount          float64     `json:"total_amount" bson:"total_amount"`
	DeliveryInstructions string      `json:"delivery_instructions" bson:"delivery_instructions"`
	ContactInfo          ContactInfo `json:"contact_info" gorm:"embedded;embeddedPrefix:contact_" bson:"contact_info"`
	ShippingAddress      Address     `json:"shipping_address" gorm:"embedded;embeddedPrefix:address_" bson:"shipping_address"`
	Status               OrderStatus `json:"status" gorm:"type:varchar(20);index" bson:"status"`
	CancelledBy          CancelledBy `json:"cancelled_by,omitempty" gorm:"type:varchar(20)" bson:"cancelled_by"`
	CancellationReason   string      `json:"cancellation_reason,omitempty" bson:"cancellation_reason"`
	PlacedAt             time.Time   `json:"placed_at" bson:"placed_at"`
	UpdatedAt            time.Time   `json:"updated_at" bson:"updated_at"`
}

// IsParty reports whether userID is the order's buyer or farmer.
func (o *Order) IsParty(userID string) bool {
	return userID != "" && (o.BuyerID == userID || o.FarmerID == userID)
}

// StatusChange is the full set of fields a transition writes.
type StatusChange struct {
	From               OrderStatus
	To                 OrderStatus
	CancelledBy        CancelledBy
	CancellationReason string
}

// OrderSummary is the notification payload for an order.
type OrderSummary struct {
	OrderID     string      `json:"order_id"`
	BuyerID     string      `json:"buyer_id"`
	FarmerID    string      `json:"farmer_id"`
	Status      OrderStatus `json:"status"`
	ItemCount   int         `json:"item_count"`
	TotalAmount float64     `json:"total_amount"`
	CancelledBy CancelledBy `json:"cancelled_by,omitempty"`
	Reason      string      `json:"cancellation_reason,omitempty"`
	PlacedAt    time.Time   `json:"placed_at"`
}

func (o *Order) Summary() OrderSummary {
	return OrderSummary{
		OrderID:     o.ID,
		BuyerID:     o.BuyerID,
		FarmerID:    o.FarmerID,
		Status:      o.Status,
		ItemCount:   len(o.Items),
		TotalAmount: o.TotalAmount,
		CancelledBy: o.CancelledBy,
		Reason:      o.CancellationReason,
		PlacedAt:    o.PlacedAt,
	}
}

// TotalOf sums price × quantity over items, rounded to cents.
func TotalOf(items []OrderItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total.Round(2).InexactFloat64()
}
