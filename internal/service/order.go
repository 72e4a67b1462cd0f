package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pharmacy-order-api/internal/apperr"
	"pharmacy-order-api/internal/dto"
	"pharmacy-order-api/internal/model"
	"pharmacy-order-api/internal/repository"
)

// Fulfillment is a closed variant over the two fulfillment modes: a delivery
// order cannot be expressed without its address and window.
type Fulfillment interface {
	mode() model.FulfillmentType
}

type Pickup struct{}

func (Pickup) mode() model.FulfillmentType { return model.FulfillmentPickup }

type DeliverTo struct {
	Address  dto.AddressInput
	WindowID string
}

func (DeliverTo) mode() model.FulfillmentType { return model.FulfillmentDelivery }

type PlaceOrderInput struct {
	CustomerName  string
	CustomerPhone string
	Items         []dto.CartItem
	Fulfillment   Fulfillment
}

type OrderService interface {
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*model.Order, error)
	GetOrder(ctx context.Context, orderID string) (*model.Order, []*model.Payment, error)
	GetStatus(ctx context.Context, orderID string) (*dto.OrderStatusResponse, error)
	GetReceipt(ctx context.Context, orderID string) (*dto.Receipt, error)
	CancelOrder(ctx context.Context, orderID string) (*model.Order, error)
	ListWindows(ctx context.Context, dateISO string) ([]*dto.WindowAvailability, error)
}

type orderServiceImpl struct {
	db          *gorm.DB
	logger      *zap.Logger
	pricing     PricingEngine
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	windowRepo  repository.WindowRepository
	paymentRepo repository.PaymentRepository
}

func NewOrderService(
	db *gorm.DB,
	logger *zap.Logger,
	pricing PricingEngine,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	windowRepo repository.WindowRepository,
	paymentRepo repository.PaymentRepository,
) OrderService {
	return &orderServiceImpl{
		db:          db,
		logger:      logger,
		pricing:     pricing,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		windowRepo:  windowRepo,
		paymentRepo: paymentRepo,
	}
}

// PlaceOrder is the single entry point that creates an order: pricing and
// eligibility run first, then the aggregate (order, items, address, delivery)
// is persisted in one transaction. For delivery orders the window's remaining
// capacity is checked under a row lock inside that same transaction, so two
// placements racing for the last slot serialize and exactly one wins.
func (s *orderServiceImpl) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*model.Order, error) {
	if in.Fulfillment == nil {
		in.Fulfillment = Pickup{}
	}
	mode := in.Fulfillment.mode()

	// Catalog lookups happen before the transaction opens to keep lock
	// duration short.
	priced, err := s.pricing.Price(ctx, in.Items, mode)
	if err != nil {
		return nil, err
	}

	var deliverTo *DeliverTo
	if d, ok := in.Fulfillment.(DeliverTo); ok {
		if err := validateAddress(&d.Address); err != nil {
			return nil, err
		}
		deliverTo = &d
	}

	order := &model.Order{
		ID:               uuid.NewString(),
		CustomerName:     in.CustomerName,
		CustomerPhone:    in.CustomerPhone,
		Fulfillment:      mode,
		Status:           model.OrderCreated,
		SubtotalCents:    priced.SubtotalCents,
		ShippingCents:    priced.ShippingCents,
		ShippingProvider: priced.ShippingProvider,
		TotalCents:       priced.TotalCents,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if deliverTo != nil {
			window, booked, err := s.windowRepo.LockWithBookedCount(ctx, tx, deliverTo.WindowID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("delivery window")
				}
				return fmt.Errorf("lock delivery window: %w", err)
			}
			if booked >= window.Capacity {
				return apperr.CapacityExceeded("delivery window is full")
			}
		}

		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order: %w", err)
		}

		items := make([]*model.OrderItem, len(priced.Lines))
		for i, line := range priced.Lines {
			items[i] = &model.OrderItem{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Qty:       line.Qty,
				UnitCents: line.UnitCents,
				LineCents: line.LineCents,
			}
		}
		if err := s.orderRepo.CreateItems(ctx, tx, items); err != nil {
			return fmt.Errorf("store order items: %w", err)
		}

		if deliverTo != nil {
			addr := deliverTo.Address
			if err := s.orderRepo.CreateAddress(ctx, tx, &model.Address{
				OrderID:    order.ID,
				Line1:      addr.Line1,
				City:       addr.City,
				State:      addr.State,
				PostalCode: addr.PostalCode,
				Phone:      addr.Phone,
				Reference:  addr.Reference,
				Notes:      addr.Notes,
				Lat:        addr.Lat,
				Lng:        addr.Lng,
			}); err != nil {
				return fmt.Errorf("store address: %w", err)
			}

			if err := s.windowRepo.CreateDelivery(ctx, tx, &model.Delivery{
				OrderID:  order.ID,
				WindowID: deliverTo.WindowID,
			}); err != nil {
				return fmt.Errorf("store delivery: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("fulfillment", string(mode)),
		zap.Int64("total_cents", order.TotalCents),
	)

	return s.orderRepo.FindByID(ctx, nil, order.ID)
}

func validateAddress(addr *dto.AddressInput) error {
	if len(addr.Line1) < 5 {
		return apperr.InvalidField("address.line1", "line1 must be at least 5 characters")
	}
	if len(addr.City) < 2 {
		return apperr.InvalidField("address.city", "city is required")
	}
	if len(addr.State) < 2 {
		return apperr.InvalidField("address.state", "state is required")
	}
	if len(addr.PostalCode) < 4 {
		return apperr.InvalidField("address.postalCode", "postalCode must be at least 4 characters")
	}
	if len(addr.Phone) < 7 {
		return apperr.InvalidField("address.phone", "phone must be at least 7 characters")
	}
	return nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, orderID string) (*model.Order, []*model.Payment, error) {
	order, err := s.orderRepo.FindByID(ctx, nil, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound("order")
		}
		return nil, nil, err
	}

	payments, err := s.paymentRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("list payments: %w", err)
	}

	return order, payments, nil
}

func (s *orderServiceImpl) GetStatus(ctx context.Context, orderID string) (*dto.OrderStatusResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, nil, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order")
		}
		return nil, err
	}

	return &dto.OrderStatusResponse{OrderID: order.ID, Status: string(order.Status)}, nil
}

// GetReceipt builds the denormalized receipt view: only the most recent
// CONFIRMED payment is exposed, never INITIATED or failed attempts.
func (s *orderServiceImpl) GetReceipt(ctx context.Context, orderID string) (*dto.Receipt, error) {
	order, err := s.orderRepo.FindByID(ctx, nil, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order")
		}
		return nil, err
	}

	productIDs := make([]string, len(order.Items))
	for i, item := range order.Items {
		productIDs[i] = item.ProductID
	}
	names, err := s.productRepo.FindNamesByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch product names: %w", err)
	}

	receipt := &dto.Receipt{
		OrderID:          order.ID,
		CreatedAt:        order.CreatedAt.UTC().Format(time.RFC3339),
		Status:           string(order.Status),
		CustomerName:     order.CustomerName,
		CustomerPhone:    order.CustomerPhone,
		Fulfillment:      string(order.Fulfillment),
		Items:            make([]dto.ReceiptItem, len(order.Items)),
		SubtotalCents:    order.SubtotalCents,
		ShippingCents:    order.ShippingCents,
		ShippingProvider: order.ShippingProvider,
		TotalCents:       order.TotalCents,
		QRString:         "ORDER:" + order.ID,
	}
	for i, item := range order.Items {
		receipt.Items[i] = dto.ReceiptItem{
			ProductID: item.ProductID,
			Name:      names[item.ProductID],
			Qty:       item.Qty,
			UnitCents: item.UnitCents,
			LineCents: item.LineCents,
		}
	}

	if order.Address != nil {
		receipt.Address = &dto.AddressInput{
			Line1:      order.Address.Line1,
			Reference:  order.Address.Reference,
			City:       order.Address.City,
			State:      order.Address.State,
			PostalCode: order.Address.PostalCode,
			Phone:      order.Address.Phone,
			Notes:      order.Address.Notes,
			Lat:        order.Address.Lat,
			Lng:        order.Address.Lng,
		}
	}

	if order.Delivery != nil {
		window, err := s.windowRepo.FindByID(ctx, order.Delivery.WindowID)
		if err != nil {
			return nil, fmt.Errorf("fetch delivery window: %w", err)
		}
		receipt.Delivery = &dto.ReceiptDelivery{
			WindowID:  window.ID,
			Date:      window.Date.UTC().Format("2006-01-02"),
			StartTime: window.StartTime,
			EndTime:   window.EndTime,
		}
	}

	payment, err := s.paymentRepo.LatestConfirmedByOrder(ctx, nil, orderID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("fetch confirmed payment: %w", err)
	}
	if payment != nil {
		receipt.Payment = &dto.ReceiptPayment{
			ID:          payment.ID,
			Provider:    payment.Provider,
			Status:      string(payment.Status),
			AmountCents: payment.AmountCents,
			Currency:    payment.Currency,
			ExternalRef: payment.ExternalRef,
		}
	}

	return receipt, nil
}

// CancelOrder cancels only orders that are still CREATED. Paid orders need a
// refund flow that does not exist here, so they are rejected instead of
// silently cancelled.
func (s *orderServiceImpl) CancelOrder(ctx context.Context, orderID string) (*model.Order, error) {
	won, err := s.orderRepo.UpdateStatusFrom(ctx, nil, orderID, model.OrderCreated, model.OrderCancelled)
	if err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}

	order, err := s.orderRepo.FindByID(ctx, nil, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order")
		}
		return nil, err
	}

	if !won {
		return nil, apperr.InvalidState(fmt.Sprintf("cannot cancel a %s order", order.Status))
	}

	s.logger.Info("order cancelled", zap.String("order_id", order.ID))
	return order, nil
}

func (s *orderServiceImpl) ListWindows(ctx context.Context, dateISO string) ([]*dto.WindowAvailability, error) {
	date, err := time.Parse("2006-01-02", dateISO)
	if err != nil {
		return nil, apperr.InvalidField("date", "date must be YYYY-MM-DD")
	}

	windows, booked, err := s.windowRepo.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list windows: %w", err)
	}

	out := make([]*dto.WindowAvailability, len(windows))
	for i, w := range windows {
		b := booked[w.ID]
		available := w.Capacity - b
		if available < 0 {
			available = 0
		}
		out[i] = &dto.WindowAvailability{
			ID:        w.ID,
			Date:      w.Date.UTC().Format("2006-01-02"),
			StartTime: w.StartTime,
			EndTime:   w.EndTime,
			Capacity:  w.Capacity,
			Booked:    b,
			Available: available,
		}
	}

	return out, nil
}
