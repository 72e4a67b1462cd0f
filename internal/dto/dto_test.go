package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmacy-order-api/internal/apperr"
	"pharmacy-order-api/internal/model"
)

func validRequest() *PlaceOrderRequest {
	return &PlaceOrderRequest{
		CustomerName:  "Jane Doe",
		CustomerPhone: "+1 (555) 123-4567",
		Items:         []CartItem{{ProductID: "prod-a", Qty: 1}},
	}
}

func TestValidateDefaultsToPickup(t *testing.T) {
	req := validRequest()
	require.NoError(t, req.Validate())
	assert.Equal(t, model.FulfillmentPickup, req.Mode())
}

func TestValidateRejectsBadFields(t *testing.T) {
	cases := []struct {
		field  string
		mutate func(*PlaceOrderRequest)
	}{
		{"customerName", func(r *PlaceOrderRequest) { r.CustomerName = "J" }},
		{"customerPhone", func(r *PlaceOrderRequest) { r.CustomerPhone = "abc" }},
		{"fulfillmentType", func(r *PlaceOrderRequest) { r.FulfillmentType = "DRONE" }},
		{"delivery", func(r *PlaceOrderRequest) { r.FulfillmentType = "DELIVERY" }},
		{"delivery.windowId", func(r *PlaceOrderRequest) {
			r.FulfillmentType = "DELIVERY"
			r.Delivery = &DeliveryInput{}
		}},
	}
	for _, tc := range cases {
		req := validRequest()
		tc.mutate(req)

		err := req.Validate()
		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr, tc.field)
		assert.Equal(t, apperr.CodeInvalidRequest, appErr.Code)
		assert.Equal(t, tc.field, appErr.Field)
	}
}

func TestValidateDelivery(t *testing.T) {
	req := validRequest()
	req.FulfillmentType = "DELIVERY"
	req.Delivery = &DeliveryInput{WindowID: "win-1"}

	require.NoError(t, req.Validate())
	assert.Equal(t, model.FulfillmentDelivery, req.Mode())
}
