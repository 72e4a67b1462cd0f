package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmacy-order-api/internal/apperr"
	"pharmacy-order-api/internal/dto"
	"pharmacy-order-api/internal/model"
)

func validAddress() dto.AddressInput {
	return dto.AddressInput{
		Line1:      "742 Evergreen Terrace",
		City:       "Springfield",
		State:      "FL",
		PostalCode: "32003",
		Phone:      "+1 555 123 4567",
	}
}

func pickupRequest(items ...dto.CartItem) PlaceOrderInput {
	return PlaceOrderInput{
		CustomerName:  "Jane Doe",
		CustomerPhone: "+1 555 000 1111",
		Items:         items,
		Fulfillment:   Pickup{},
	}
}

func deliveryRequest(windowID string, items ...dto.CartItem) PlaceOrderInput {
	in := pickupRequest(items...)
	in.Fulfillment = DeliverTo{
		WindowID: windowID,
		Address:  validAddress(),
	}
	return in
}

func TestPlaceOrderPickup(t *testing.T) {
	env := newTestEnv(t)
	seedProduct(t, env.db, "prod-a", 250, true, true)
	seedProduct(t, env.db, "prod-b", 380, true, true)

	order, err := env.orders.PlaceOrder(context.Background(), pickupRequest(
		dto.CartItem{ProductID: "prod-a", Qty: 2},
		dto.CartItem{ProductID: "prod-b", Qty: 1},
	))
	require.NoError(t, err)

	assert.Equal(t, model.OrderCreated, order.Status)
	assert.Equal(t, model.FulfillmentPickup, order.Fulfillment)
	assert.Equal(t, int64(880), order.SubtotalCents)
	assert.Equal(t, int64(0), order.ShippingCents)
	assert.Equal(t, int64(880), order.TotalCents)
	assert.Empty(t, order.ShippingProvider)
	assert.Len(t, order.Items, 2)
	assert.Nil(t, order.Address)
	assert.Nil(t, order.Delivery)
}

func TestPlaceOrderPriceSnapshotImmutable(t *testing.T) {
	env := newTestEnv(t)
	seedProduct(t, env.db, "prod-a", 250, true, true)

	ctx := context.Background()
	order, err := env.orders.PlaceOrder(ctx, pickupRequest(dto.CartItem{ProductID: "prod-a", Qty: 2}))
	require.NoError(t, err)

	// a later catalog price change must not touch the stored order
	require.NoError(t, env.db.Model(&model.Product{}).
		Where("id = ?", "prod-a").
		Update("price_cents", 9999).Error)

	fresh, _, err := env.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, fresh.Items, 1)
	assert.Equal(t, int64(250), fresh.Items[0].UnitCents)
	assert.Equal(t, int64(500), fresh.Items[0].LineCents)
	assert.Equal(t, int64(500), fresh.TotalCents)
}

func TestPlaceOrderDelivery(t *testing.T) {
	env := newTestEnv(t)
	seedProduct(t, env.db, "prod-a", 250, true, true)
	windowID := seedWindow(t, env.db, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), 10)

	order, err := env.orders.PlaceOrder(context.Background(), deliveryRequest(windowID,
		dto.CartItem{ProductID: "prod-a", Qty: 3},
	))
	require.NoError(t, err)

	assert.Equal(t, model.FulfillmentDelivery, order.Fulfillment)
	assert.Equal(t, int64(750), order.SubtotalCents)
	assert.Equal(t, int64(1000), order.ShippingCents)
	assert.Equal(t, int64(1750), order.TotalCents)
	assert.Equal(t, "SIMULATED", order.ShippingProvider)

	require.NotNil(t, order.Address)
	assert.Equal(t, "Springfield", order.Address.City)
	require.NotNil(t, order.Delivery)
	assert.Equal(t, windowID, order.Delivery.WindowID)
}

func TestPlaceOrderDeliveryAddressValidation(t *testing.T) {
	env := newTestEnv(t)
	seedProduct(t, env.db, "prod-a", 250, true, true)
	windowID := seedWindow(t, env.db, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), 10)

	cases := []struct {
		field  string
		mutate func(*dto.AddressInput)
	}{
		{"address.line1", func(a *dto.AddressInput) { a.Line1 = "abc" }},
		{"address.city", func(a *dto.AddressInput) { a.City = "" }},
		{"address.state", func(a *dto.AddressInput) { a.State = "" }},
		{"address.postalCode", func(a *dto.AddressInput) { a.PostalCode = "12" }},
		{"address.phone", func(a *dto.AddressInput) { a.Phone = "123" }},
	}
	for _, tc := range cases {
		addr := validAddress()
		tc.mutate(&addr)
		in := pickupRequest(dto.CartItem{ProductID: "prod-a", Qty: 1})
		in.Fulfillment = DeliverTo{WindowID: windowID, Address: addr}

		_, err := env.orders.PlaceOrder(context.Background(), in)
		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr, tc.field)
		assert.Equal(t, apperr.CodeInvalidRequest, appErr.Code)
		assert.Equal(t, tc.field, appErr.Field)
	}
}

func TestPlaceOrderWindowNotFound(t *testing.T) {
	env := newTestEnv(t)
	seedProduct(t, env.db, "prod-a", 250, true, true)

	_, err := env.orders.PlaceOrder(context.Background(), deliveryRequest("no-such-window",
		dto.CartItem{ProductID: "prod-a", Qty: 1},
	))
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestPlaceOrderCapacityExceeded(t *testing.T) {
	env := newTestEnv(t)
	seedProduct(t, env.db, "prod-a", 250, true, true)
	windowID := seedWindow(t, env.db, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), 1)

	ctx := context.Background()
	_, err := env.orders.PlaceOrder(ctx, deliveryRequest(windowID, dto.CartItem{ProductID: "prod-a", Qty: 1}))
	require.NoError(t, err)

	_, err = env.orders.PlaceOrder(ctx, deliveryRequest(windowID, dto.CartItem{ProductID: "prod-a", Qty: 1}))
	assert.True(t, apperr.Is(err, apperr.CodeCapacityExceeded))

	// the losing attempt must leave no partial aggregate behind
	var orders, deliveries, addresses int64
	require.NoError(t, env.db.Model(&model.Order{}).Count(&orders).Error)
	require.NoError(t, env.db.Model(&model.Delivery{}).Count(&deliveries).Error)
	require.NoError(t, env.db.Model(&model.Address{}).Count(&addresses).Error)
	assert.Equal(t, int64(1), orders)
	assert.Equal(t, int64(1), deliveries)
	assert.Equal(t, int64(1), addresses)
}

func TestPlaceOrderCapacityRace(t *testing.T) {
	env := newTestEnv(t)
	seedProduct(t, env.db, "prod-a", 250, true, true)
	windowID := seedWindow(t, env.db, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), 1)

	const attempts = 4
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.orders.PlaceOrder(context.Background(),
				deliveryRequest(windowID, dto.CartItem{ProductID: "prod-a", Qty: 1}))
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case apperr.Is(err, apperr.CodeCapacityExceeded):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, attempts-1, lost)

	var deliveries int64
	require.NoError(t, env.db.Model(&model.Delivery{}).Where("window_id = ?", windowID).Count(&deliveries).Error)
	assert.Equal(t, int64(1), deliveries)
}

func TestCancelOrderPolicy(t *testing.T) {
	env := newTestEnv(t)
	seedProduct(t, env.db, "prod-a", 250, true, true)

	ctx := context.Background()
	order, err := env.orders.PlaceOrder(ctx, pickupRequest(dto.CartItem{ProductID: "prod-a", Qty: 1}))
	require.NoError(t, err)

	cancelled, err := env.orders.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, cancelled.Status)

	// cancelling twice is rejected
	_, err = env.orders.CancelOrder(ctx, order.ID)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidState))

	// a paid order cannot be cancelled without a refund flow
	paid, err := env.orders.PlaceOrder(ctx, pickupRequest(dto.CartItem{ProductID: "prod-a", Qty: 1}))
	require.NoError(t, err)
	intent, err := env.payments.CreateIntent(ctx, paid.ID, "")
	require.NoError(t, err)
	_, err = env.payments.Confirm(ctx, intent.Payment.ID, nil)
	require.NoError(t, err)

	_, err = env.orders.CancelOrder(ctx, paid.ID)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidState))

	_, err = env.orders.CancelOrder(ctx, "no-such-order")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestGetOrderAndStatus(t *testing.T) {
	env := newTestEnv(t)
	seedProduct(t, env.db, "prod-a", 250, true, true)

	ctx := context.Background()
	order, err := env.orders.PlaceOrder(ctx, pickupRequest(dto.CartItem{ProductID: "prod-a", Qty: 1}))
	require.NoError(t, err)

	status, err := env.orders.GetStatus(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, status.OrderID)
	assert.Equal(t, "CREATED", status.Status)

	_, _, err = env.orders.GetOrder(ctx, "no-such-order")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	_, err = env.orders.GetStatus(ctx, "no-such-order")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	_, err = env.orders.GetReceipt(ctx, "no-such-order")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestGetReceipt(t *testing.T) {
	env := newTestEnv(t)
	seedProduct(t, env.db, "prod-a", 250, true, true)
	windowID := seedWindow(t, env.db, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), 10)

	ctx := context.Background()
	order, err := env.orders.PlaceOrder(ctx, deliveryRequest(windowID, dto.CartItem{ProductID: "prod-a", Qty: 2}))
	require.NoError(t, err)

	// before payment the receipt exposes no payment at all
	receipt, err := env.orders.GetReceipt(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, receipt.Payment)
	assert.Equal(t, "ORDER:"+order.ID, receipt.QRString)
	require.Len(t, receipt.Items, 1)
	assert.Equal(t, "Product prod-a", receipt.Items[0].Name)
	assert.Equal(t, int64(500), receipt.Items[0].LineCents)
	require.NotNil(t, receipt.Address)
	require.NotNil(t, receipt.Delivery)
	assert.Equal(t, "2026-09-01", receipt.Delivery.Date)

	intent, err := env.payments.CreateIntent(ctx, order.ID, "")
	require.NoError(t, err)
	_, err = env.payments.Confirm(ctx, intent.Payment.ID, nil)
	require.NoError(t, err)

	receipt, err = env.orders.GetReceipt(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, receipt.Payment)
	assert.Equal(t, "CONFIRMED", receipt.Payment.Status)
	assert.Equal(t, order.TotalCents, receipt.Payment.AmountCents)
	assert.Equal(t, "CONFIRMED", receipt.Status)
}

func TestListWindows(t *testing.T) {
	env := newTestEnv(t)
	seedProduct(t, env.db, "prod-a", 250, true, true)
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	windowID := seedWindow(t, env.db, date, 2)
	seedWindow(t, env.db, date.Add(24*time.Hour), 5) // other day, filtered out

	ctx := context.Background()
	_, err := env.orders.PlaceOrder(ctx, deliveryRequest(windowID, dto.CartItem{ProductID: "prod-a", Qty: 1}))
	require.NoError(t, err)

	windows, err := env.orders.ListWindows(ctx, "2026-09-01")
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, windowID, windows[0].ID)
	assert.Equal(t, int64(2), windows[0].Capacity)
	assert.Equal(t, int64(1), windows[0].Booked)
	assert.Equal(t, int64(1), windows[0].Available)

	_, err = env.orders.ListWindows(ctx, "not-a-date")
	assert.True(t, apperr.Is(err, apperr.CodeInvalidRequest))
}
