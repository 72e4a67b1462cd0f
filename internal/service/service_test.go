package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pharmacy-order-api/internal/client"
	"pharmacy-order-api/internal/config"
	"pharmacy-order-api/internal/model"
	"pharmacy-order-api/internal/repository"
)

var testShipping = config.Shipping{
	BaseFeeCents:  1000,
	IncludedUnits: 10,
	PerUnitCents:  100,
	Provider:      "SIMULATED",
}

var testPayment = config.Payment{
	DefaultProvider: "SIMULATED",
	Currency:        "USD",
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection serializes sqlite writers across goroutines
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, client.Migrate(db))
	return db
}

type testEnv struct {
	db       *gorm.DB
	pricing  PricingEngine
	orders   OrderService
	payments PaymentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	log := zap.NewNop()

	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	windowRepo := repository.NewWindowRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	pricing := NewPricingEngine(productRepo, testShipping)

	return &testEnv{
		db:       db,
		pricing:  pricing,
		orders:   NewOrderService(db, log, pricing, productRepo, orderRepo, windowRepo, paymentRepo),
		payments: NewPaymentService(db, log, testPayment, orderRepo, paymentRepo),
	}
}

func seedProduct(t *testing.T, db *gorm.DB, id string, priceCents int64, active, deliverable bool) {
	t.Helper()
	require.NoError(t, db.Create(&model.Product{
		ID:            id,
		SKU:           "SKU-" + id,
		Name:          "Product " + id,
		PriceCents:    priceCents,
		IsActive:      active,
		IsDeliverable: deliverable,
	}).Error)
}

func seedWindow(t *testing.T, db *gorm.DB, date time.Time, capacity int64) string {
	t.Helper()
	id := uuid.NewString()
	require.NoError(t, db.Create(&model.DeliveryWindow{
		ID:        id,
		Date:      date,
		StartTime: "09:00",
		EndTime:   "11:00",
		Capacity:  capacity,
	}).Error)
	return id
}
