package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pharmacy-order-api/internal/model"
)

type WindowRepository interface {
	// LockWithBookedCount loads the window under a row lock and counts its
	// booked deliveries. Must be called inside the transaction that will
	// create the Delivery row, so the check and the insert commit together.
	LockWithBookedCount(ctx context.Context, tx *gorm.DB, windowID string) (*model.DeliveryWindow, int64, error)
	CreateDelivery(ctx context.Context, tx *gorm.DB, delivery *model.Delivery) error
	ListByDate(ctx context.Context, date time.Time) ([]*model.DeliveryWindow, map[string]int64, error)
	FindByID(ctx context.Context, windowID string) (*model.DeliveryWindow, error)
}

type windowRepoImpl struct {
	db *gorm.DB
}

func NewWindowRepository(db *gorm.DB) WindowRepository {
	return &windowRepoImpl{
		db: db,
	}
}

func (r *windowRepoImpl) LockWithBookedCount(ctx context.Context, tx *gorm.DB, windowID string) (*model.DeliveryWindow, int64, error) {
	q := tx.WithContext(ctx)
	// sqlite has no FOR UPDATE; its single-writer transactions already
	// serialize competing bookings.
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var window model.DeliveryWindow
	err := q.Where("id = ?", windowID).First(&window).Error
	if err != nil {
		return nil, 0, err
	}

	var booked int64
	err = tx.WithContext(ctx).Model(&model.Delivery{}).
		Where("window_id = ?", windowID).
		Count(&booked).Error
	if err != nil {
		return nil, 0, err
	}

	return &window, booked, nil
}

func (r *windowRepoImpl) CreateDelivery(ctx context.Context, tx *gorm.DB, delivery *model.Delivery) error {
	return tx.WithContext(ctx).Create(delivery).Error
}

func (r *windowRepoImpl) ListByDate(ctx context.Context, date time.Time) ([]*model.DeliveryWindow, map[string]int64, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	var windows []*model.DeliveryWindow
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date < ?", dayStart, dayEnd).
		Order("start_time asc").
		Find(&windows).Error
	if err != nil {
		return nil, nil, err
	}

	type bookedRow struct {
		WindowID string
		Booked   int64
	}
	var rows []bookedRow
	err = r.db.WithContext(ctx).Model(&model.Delivery{}).
		Select("window_id, count(*) as booked").
		Group("window_id").
		Scan(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	booked := make(map[string]int64, len(rows))
	for _, row := range rows {
		booked[row.WindowID] = row.Booked
	}

	return windows, booked, nil
}

func (r *windowRepoImpl) FindByID(ctx context.Context, windowID string) (*model.DeliveryWindow, error) {
	var window model.DeliveryWindow
	err := r.db.WithContext(ctx).Where("id = ?", windowID).First(&window).Error
	if err != nil {
		return nil, err
	}

	return &window, nil
}
