package model

import "time"

type FulfillmentType string

const (
	FulfillmentPickup   FulfillmentType = "PICKUP"
	FulfillmentDelivery FulfillmentType = "DELIVERY"
)

type OrderStatus string

const (
	OrderCreated   OrderStatus = "CREATED"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderCancelled OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentInitiated PaymentStatus = "INITIATED"
	PaymentConfirmed PaymentStatus = "CONFIRMED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

type Category struct {
	ID       string `gorm:"primaryKey;size:64;not null"`
	Name     string `gorm:"size:128;uniqueIndex;not null"`
	IsActive bool   `gorm:"not null;default:true"`
}

type Product struct {
	ID            string `gorm:"primaryKey;size:64;not null"`
	SKU           string `gorm:"size:32;uniqueIndex;not null"`
	Name          string `gorm:"size:255;index;not null"`
	Brand         string `gorm:"size:128"`
	PriceCents    int64  `gorm:"not null"` // minor currency units, never float
	IsActive      bool   `gorm:"index;not null;default:true"`
	IsDeliverable bool   `gorm:"not null;default:true"`
	CategoryID    *string
	CreatedAt     time.Time
}

type Order struct {
	ID               string          `gorm:"primaryKey;size:64;not null"`
	CustomerName     string          `gorm:"size:128;not null"`
	CustomerPhone    string          `gorm:"size:32;not null"`
	Fulfillment      FulfillmentType `gorm:"size:16;not null"`
	Status           OrderStatus     `gorm:"size:16;index;not null"`
	SubtotalCents    int64           `gorm:"not null"`
	ShippingCents    int64           `gorm:"not null"`
	ShippingProvider string          `gorm:"size:32"` // empty for pickup
	TotalCents       int64           `gorm:"not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Items    []OrderItem `gorm:"foreignKey:OrderID"`
	Address  *Address    `gorm:"foreignKey:OrderID"`
	Delivery *Delivery   `gorm:"foreignKey:OrderID"`
}

type OrderItem struct {
	ID        uint   `gorm:"primaryKey"`
	OrderID   string `gorm:"size:64;index;not null"`
	ProductID string `gorm:"size:64;index;not null"`
	Qty       int64  `gorm:"not null"`
	UnitCents int64  `gorm:"not null"` // price snapshot at order time
	LineCents int64  `gorm:"not null"`
	CreatedAt time.Time
}

type Address struct {
	ID         uint   `gorm:"primaryKey"`
	OrderID    string `gorm:"size:64;uniqueIndex;not null"`
	Line1      string `gorm:"size:255;not null"`
	City       string `gorm:"size:128;not null"`
	State      string `gorm:"size:64;not null"`
	PostalCode string `gorm:"size:16;not null"`
	Phone      string `gorm:"size:32;not null"`
	Reference  string `gorm:"size:255"`
	Notes      string `gorm:"size:255"`
	Lat        *float64
	Lng        *float64
}

// DeliveryWindow is seed/admin data; the core never creates windows, it only
// consumes their capacity through Delivery rows.
type DeliveryWindow struct {
	ID        string    `gorm:"primaryKey;size:64;not null"`
	Date      time.Time `gorm:"index;not null"`
	StartTime string    `gorm:"size:8;not null"` // "09:00"
	EndTime   string    `gorm:"size:8;not null"`
	Capacity  int64     `gorm:"not null"`
}

// Delivery links one order to one window; the existence of this row is what
// consumes one unit of the window's capacity.
type Delivery struct {
	ID        uint   `gorm:"primaryKey"`
	OrderID   string `gorm:"size:64;uniqueIndex;not null"`
	WindowID  string `gorm:"size:64;index;not null"`
	CreatedAt time.Time
}

type Payment struct {
	ID          string        `gorm:"primaryKey;size:64;not null"`
	OrderID     string        `gorm:"size:64;index;not null"`
	Provider    string        `gorm:"size:32;not null"`
	Status      PaymentStatus `gorm:"size:16;index;not null"`
	AmountCents int64         `gorm:"not null"`
	Currency    string        `gorm:"size:8;not null"`
	ExternalRef *string       `gorm:"size:128"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
