package dto

import (
	"regexp"

	"pharmacy-order-api/internal/apperr"
	"pharmacy-order-api/internal/model"
)

type CartItem struct {
	ProductID string `json:"productId"`
	Qty       int64  `json:"qty"`
}

type AddressInput struct {
	Line1      string   `json:"line1"`
	Reference  string   `json:"reference,omitempty"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	PostalCode string   `json:"postalCode"`
	Phone      string   `json:"phone"`
	Notes      string   `json:"notes,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
}

type DeliveryInput struct {
	WindowID string       `json:"windowId"`
	Address  AddressInput `json:"address"`
}

type PlaceOrderRequest struct {
	CustomerName    string         `json:"customerName"`
	CustomerPhone   string         `json:"customerPhone"`
	Items           []CartItem     `json:"items"`
	FulfillmentType string         `json:"fulfillmentType,omitempty"` // defaults to PICKUP
	Delivery        *DeliveryInput `json:"delivery,omitempty"`

	// ShippingCents is accepted for backwards compatibility but ignored;
	// shipping is always recomputed server-side.
	ShippingCents *int64 `json:"shippingCents,omitempty"`
}

var phoneRe = regexp.MustCompile(`^[+]?[\d\s().-]{7,20}$`)

// Validate performs the field-level syntactic checks on the inbound payload.
// Business-rule validation (pricing, eligibility, capacity) happens in the
// services.
func (r *PlaceOrderRequest) Validate() error {
	if len(r.CustomerName) < 2 {
		return apperr.InvalidField("customerName", "customerName must be at least 2 characters")
	}
	if !phoneRe.MatchString(r.CustomerPhone) {
		return apperr.InvalidField("customerPhone", "customerPhone must look like a valid phone")
	}
	switch r.FulfillmentType {
	case "", string(model.FulfillmentPickup):
	case string(model.FulfillmentDelivery):
		if r.Delivery == nil {
			return apperr.InvalidField("delivery", "delivery is required for DELIVERY orders")
		}
		if r.Delivery.WindowID == "" {
			return apperr.InvalidField("delivery.windowId", "windowId is required")
		}
	default:
		return apperr.InvalidField("fulfillmentType", "fulfillmentType must be PICKUP or DELIVERY")
	}
	return nil
}

// Mode resolves the request's fulfillment type, defaulting to PICKUP.
func (r *PlaceOrderRequest) Mode() model.FulfillmentType {
	if r.FulfillmentType == string(model.FulfillmentDelivery) {
		return model.FulfillmentDelivery
	}
	return model.FulfillmentPickup
}

type CreateIntentRequest struct {
	OrderID  string `json:"orderId"`
	Provider string `json:"provider,omitempty"`
}

type ConfirmPaymentRequest struct {
	PaymentID   string  `json:"paymentId"`
	ExternalRef *string `json:"externalRef,omitempty"`
}

type OrderStatusResponse struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

type ReceiptItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Qty       int64  `json:"qty"`
	UnitCents int64  `json:"unitCents"`
	LineCents int64  `json:"lineCents"`
}

type ReceiptPayment struct {
	ID          string  `json:"id"`
	Provider    string  `json:"provider"`
	Status      string  `json:"status"`
	AmountCents int64   `json:"amountCents"`
	Currency    string  `json:"currency"`
	ExternalRef *string `json:"externalRef"`
}

type ReceiptDelivery struct {
	WindowID  string `json:"windowId"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type Receipt struct {
	OrderID          string           `json:"orderId"`
	CreatedAt        string           `json:"createdAt"`
	Status           string           `json:"status"`
	CustomerName     string           `json:"customerName"`
	CustomerPhone    string           `json:"customerPhone"`
	Fulfillment      string           `json:"fulfillment"`
	Items            []ReceiptItem    `json:"items"`
	SubtotalCents    int64            `json:"subtotalCents"`
	ShippingCents    int64            `json:"shippingCents"`
	ShippingProvider string           `json:"shippingProvider,omitempty"`
	TotalCents       int64            `json:"totalCents"`
	Address          *AddressInput    `json:"address,omitempty"`
	Delivery         *ReceiptDelivery `json:"delivery,omitempty"`
	Payment          *ReceiptPayment  `json:"payment"`
	QRString         string           `json:"qrString"`
}

type WindowAvailability struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Capacity  int64  `json:"capacity"`
	Booked    int64  `json:"booked"`
	Available int64  `json:"available"`
}

type IntentResponse struct {
	OrderID     string         `json:"orderId"`
	AlreadyPaid bool           `json:"alreadyPaid,omitempty"`
	Payment     *model.Payment `json:"payment"`
}

type ConfirmResponse struct {
	Payment *model.Payment `json:"payment"`
	Order   *model.Order   `json:"order"`
}
