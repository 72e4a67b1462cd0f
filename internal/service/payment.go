package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pharmacy-order-api/internal/apperr"
	"pharmacy-order-api/internal/config"
	"pharmacy-order-api/internal/dto"
	"pharmacy-order-api/internal/model"
	"pharmacy-order-api/internal/repository"
)

type PaymentService interface {
	CreateIntent(ctx context.Context, orderID, provider string) (*dto.IntentResponse, error)
	Confirm(ctx context.Context, paymentID string, externalRef *string) (*dto.ConfirmResponse, error)
	Get(ctx context.Context, paymentID string) (*dto.ConfirmResponse, error)
}

type paymentServiceImpl struct {
	db          *gorm.DB
	logger      *zap.Logger
	cfg         config.Payment
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
}

func NewPaymentService(
	db *gorm.DB,
	logger *zap.Logger,
	cfg config.Payment,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
) PaymentService {
	return &paymentServiceImpl{
		db:          db,
		logger:      logger,
		cfg:         cfg,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
	}
}

// CreateIntent opens a new INITIATED payment for the order's total. Retries
// may leave several INITIATED payments per order; an already paid order
// short-circuits to its confirmed payment instead of creating another one.
func (s *paymentServiceImpl) CreateIntent(ctx context.Context, orderID, provider string) (*dto.IntentResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, nil, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order")
		}
		return nil, err
	}

	if order.Status == model.OrderCancelled {
		return nil, apperr.InvalidState("order is cancelled")
	}

	if order.Status == model.OrderConfirmed {
		confirmed, err := s.paymentRepo.LatestConfirmedByOrder(ctx, nil, order.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("fetch confirmed payment: %w", err)
		}
		return &dto.IntentResponse{OrderID: order.ID, AlreadyPaid: true, Payment: confirmed}, nil
	}

	if provider == "" {
		provider = s.cfg.DefaultProvider
	}

	payment := &model.Payment{
		ID:          uuid.NewString(),
		OrderID:     order.ID,
		Provider:    provider,
		Status:      model.PaymentInitiated,
		AmountCents: order.TotalCents,
		Currency:    s.cfg.Currency,
	}
	if err := s.paymentRepo.Create(ctx, nil, payment); err != nil {
		return nil, fmt.Errorf("store payment: %w", err)
	}

	s.logger.Info("payment intent created",
		zap.String("payment_id", payment.ID),
		zap.String("order_id", order.ID),
		zap.Int64("amount_cents", payment.AmountCents),
	)

	return &dto.IntentResponse{OrderID: order.ID, Payment: payment}, nil
}

// Confirm drives INITIATED -> CONFIRMED and marks the owning order CONFIRMED
// in the same transaction. Confirming an already confirmed payment is a
// no-op that returns the current state, so clients and webhook deliveries can
// retry safely. Terminal failures (FAILED, CANCELLED) are rejected.
func (s *paymentServiceImpl) Confirm(ctx context.Context, paymentID string, externalRef *string) (*dto.ConfirmResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, nil, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("payment")
		}
		return nil, err
	}

	switch payment.Status {
	case model.PaymentConfirmed:
		return s.resultFor(ctx, paymentID)
	case model.PaymentFailed, model.PaymentCancelled:
		return nil, apperr.InvalidState(fmt.Sprintf("cannot confirm a %s payment", payment.Status))
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		won, err := s.paymentRepo.ConfirmFromInitiated(ctx, tx, paymentID, externalRef)
		if err != nil {
			return fmt.Errorf("confirm payment: %w", err)
		}
		if !won {
			// Lost the race: a concurrent confirm got here first, or an
			// external actor moved the payment to a terminal failure.
			current, err := s.paymentRepo.FindByID(ctx, tx, paymentID)
			if err != nil {
				return err
			}
			if current.Status == model.PaymentConfirmed {
				return nil
			}
			return apperr.InvalidState(fmt.Sprintf("cannot confirm a %s payment", current.Status))
		}

		orderWon, err := s.orderRepo.UpdateStatusFrom(ctx, tx, payment.OrderID, model.OrderCreated, model.OrderConfirmed)
		if err != nil {
			return fmt.Errorf("confirm order: %w", err)
		}
		if !orderWon {
			// Rolls the payment update back too: the order was cancelled or
			// already paid through a different payment.
			order, err := s.orderRepo.FindByID(ctx, tx, payment.OrderID)
			if err != nil {
				return err
			}
			if order.Status == model.OrderConfirmed {
				return apperr.InvalidState("order is already paid")
			}
			return apperr.InvalidState(fmt.Sprintf("order is %s", order.Status))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment confirmed",
		zap.String("payment_id", paymentID),
		zap.String("order_id", payment.OrderID),
	)

	return s.resultFor(ctx, paymentID)
}

func (s *paymentServiceImpl) Get(ctx context.Context, paymentID string) (*dto.ConfirmResponse, error) {
	return s.resultFor(ctx, paymentID)
}

func (s *paymentServiceImpl) resultFor(ctx context.Context, paymentID string) (*dto.ConfirmResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, nil, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("payment")
		}
		return nil, err
	}

	order, err := s.orderRepo.FindByID(ctx, nil, payment.OrderID)
	if err != nil {
		return nil, fmt.Errorf("fetch order: %w", err)
	}

	return &dto.ConfirmResponse{Payment: payment, Order: order}, nil
}
